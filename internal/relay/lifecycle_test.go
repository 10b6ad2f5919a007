package relay

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/louisbranch/shellrelay/internal/cachestore"
	errs "github.com/louisbranch/shellrelay/internal/platform/errors"
)

func shellUpstream() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/" {
			http.NotFound(w, req)
			return
		}
		_, _ = w.Write([]byte("<html>root</html>"))
	})
	mux.HandleFunc("/static/style.css", func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte("body { margin: 0 }"))
	})
	mux.HandleFunc("/static/offline.js", func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte("console.log('offline')"))
	})
	return mux
}

func TestInstallPrecachesEveryShellAsset(t *testing.T) {
	upstream := httptest.NewServer(shellUpstream())
	defer upstream.Close()

	r, _ := newTestRelay(t, upstream.URL)
	ctx := context.Background()

	if err := r.Install(ctx); err != nil {
		t.Fatalf("install: %v", err)
	}

	for _, asset := range DefaultShellAssets {
		_, ok, err := r.store.Match(ctx, cachestore.Key(http.MethodGet, asset))
		if err != nil {
			t.Fatalf("match %s: %v", asset, err)
		}
		if !ok {
			t.Fatalf("expected %s in cache after install", asset)
		}
	}

	// First install: activation has no prior stores to delete.
	if err := r.Activate(ctx); err != nil {
		t.Fatalf("activate: %v", err)
	}
	names, err := r.registry.Names(ctx)
	if err != nil {
		t.Fatalf("names: %v", err)
	}
	if len(names) != 1 || names[0] != StoreName {
		t.Fatalf("names = %v, want [%s]", names, StoreName)
	}
}

func TestInstallFailsWhenAnyAssetIsMissing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/" {
			http.NotFound(w, req)
			return
		}
		_, _ = w.Write([]byte("<html>root</html>"))
	})
	upstream := httptest.NewServer(mux)
	defer upstream.Close()

	r, _ := newTestRelay(t, upstream.URL)

	err := r.Install(context.Background())
	if err == nil {
		t.Fatal("expected install failure")
	}
	if !errors.Is(err, errs.New(errs.CodeInstallIncomplete, "")) {
		t.Fatalf("expected INSTALL_INCOMPLETE, got %v", err)
	}
}

func TestInstallFailsWhenUpstreamIsUnreachable(t *testing.T) {
	upstream := httptest.NewServer(shellUpstream())
	upstream.Close() // network down

	r, _ := newTestRelay(t, upstream.URL)

	if err := r.Install(context.Background()); err == nil {
		t.Fatal("expected install failure")
	}
}

func TestActivateRemovesStaleStores(t *testing.T) {
	upstream := httptest.NewServer(shellUpstream())
	defer upstream.Close()

	r, _ := newTestRelay(t, upstream.URL)
	ctx := context.Background()

	snapshot := cachestore.Snapshot{StatusCode: http.StatusOK, Body: []byte("old")}
	for _, stale := range []string{"shell-v0", "shell-v0-beta"} {
		store, err := r.registry.Open(ctx, stale)
		if err != nil {
			t.Fatalf("open %s: %v", stale, err)
		}
		if err := store.Put(ctx, cachestore.Key(http.MethodGet, "/"), snapshot); err != nil {
			t.Fatalf("seed %s: %v", stale, err)
		}
	}
	seedSnapshot(t, r, "/", "<html>current</html>")

	if err := r.Activate(ctx); err != nil {
		t.Fatalf("activate: %v", err)
	}

	names, err := r.registry.Names(ctx)
	if err != nil {
		t.Fatalf("names: %v", err)
	}
	if len(names) != 1 || names[0] != StoreName {
		t.Fatalf("names = %v, want exactly [%s]", names, StoreName)
	}

	// The current store's contents survive activation.
	got, ok, err := r.store.Match(ctx, cachestore.Key(http.MethodGet, "/"))
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if !ok || string(got.Body) != "<html>current</html>" {
		t.Fatalf("current store content lost: ok=%v body=%q", ok, got.Body)
	}
}
