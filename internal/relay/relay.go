// Package relay implements the offline-resilience intermediary.
//
// The relay fronts the upstream application server: it pre-caches the shell
// asset list at install time, prunes stale cache store versions at
// activation, applies a network-first-with-fallback policy to every
// intercepted request, and owns the shared connectivity status it broadcasts
// to connected status clients.
package relay

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/shellrelay/internal/cachestore"
	errs "github.com/louisbranch/shellrelay/internal/platform/errors"
)

const (
	// StoreName is the current cache store version. Bumping the tag on
	// deploy invalidates every previously cached shell asset.
	StoreName = "shell-v1"

	// WSPath is the well-known registration path status clients dial.
	WSPath = "/offline/ws"

	// HealthPath answers liveness probes.
	HealthPath = "/offline/healthz"

	// rootKeyPath is the navigation fallback document.
	rootKeyPath = "/"
)

// DefaultShellAssets is the fixed set of root-relative paths pre-cached at
// install time. Deployment tooling keeps this list in sync with shipped
// assets.
var DefaultShellAssets = []string{
	"/",
	"/static/style.css",
	"/static/offline.js",
}

// Config carries relay construction parameters.
type Config struct {
	// UpstreamURL is the base URL of the application server being fronted.
	UpstreamURL string
	// StoreName overrides the current cache store version name.
	StoreName string
	// ShellAssets overrides the pre-cached asset list.
	ShellAssets []string
	// Client overrides the HTTP client used for upstream fetches.
	Client *http.Client
}

// Relay is the cache intermediary.
type Relay struct {
	upstream  *url.URL
	client    *http.Client
	registry  cachestore.Registry
	store     cachestore.Store
	storeName string
	assets    []string
	status    *statusCell
	hub       *hub
	tracer    trace.Tracer

	// afterStore observes async snapshot writes; tests use it to wait for
	// the store-after-respond goroutine.
	afterStore func(error)
}

// New builds a relay over the given snapshot registry.
func New(cfg Config, registry cachestore.Registry) (*Relay, error) {
	if registry == nil {
		return nil, errs.New(errs.CodeConfigInvalid, "snapshot registry is required")
	}
	upstream, err := url.Parse(strings.TrimSpace(cfg.UpstreamURL))
	if err != nil {
		return nil, errs.Wrap(errs.CodeConfigInvalid, "parse upstream url", err)
	}
	if upstream.Scheme == "" || upstream.Host == "" {
		return nil, errs.New(errs.CodeConfigInvalid, fmt.Sprintf("upstream url %q must be absolute", cfg.UpstreamURL))
	}

	storeName := strings.TrimSpace(cfg.StoreName)
	if storeName == "" {
		storeName = StoreName
	}
	assets := cfg.ShellAssets
	if len(assets) == 0 {
		assets = DefaultShellAssets
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	store, err := registry.Open(context.Background(), storeName)
	if err != nil {
		return nil, errs.Wrap(errs.CodeStoreUnavailable, "open current cache store", err)
	}

	r := &Relay{
		upstream:  upstream,
		client:    client,
		registry:  registry,
		store:     store,
		storeName: storeName,
		assets:    assets,
		hub:       newHub(),
		tracer:    otel.Tracer("github.com/louisbranch/shellrelay/internal/relay"),
	}
	r.status = newStatusCell(r.hub.broadcast)
	return r, nil
}

// Handler returns the full relay surface: the status websocket, the health
// endpoint, and the fetch interception path for everything else.
func (r *Relay) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(WSPath, r.hub.handler(r.status.last))
	mux.HandleFunc(HealthPath, func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.HandleFunc("/", r.handleFetch)
	return mux
}

// Status returns the last broadcast connectivity status.
func (r *Relay) Status() string {
	return string(r.status.last())
}

func (r *Relay) upstreamFor(path, rawQuery string) string {
	target := *r.upstream
	target.Path = strings.TrimRight(target.Path, "/") + path
	target.RawQuery = rawQuery
	return target.String()
}
