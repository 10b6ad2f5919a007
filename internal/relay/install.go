package relay

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/louisbranch/shellrelay/internal/cachestore"
	errs "github.com/louisbranch/shellrelay/internal/platform/errors"
)

// Install eagerly populates the current cache store with the shell asset
// list. Any asset that cannot be fetched and stored fails the whole install:
// a partially populated shell must never activate.
func (r *Relay) Install(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, asset := range r.assets {
		asset := asset
		g.Go(func() error {
			return r.precacheAsset(ctx, asset)
		})
	}
	if err := g.Wait(); err != nil {
		return errs.Wrap(errs.CodeInstallIncomplete, "pre-cache shell assets", err)
	}
	return nil
}

func (r *Relay) precacheAsset(ctx context.Context, asset string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.upstreamFor(asset, ""), nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", asset, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", asset, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("fetch %s: status %d", asset, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", asset, err)
	}

	snapshot := cachestore.Snapshot{
		StatusCode: resp.StatusCode,
		Header:     cloneHeader(resp.Header),
		Body:       body,
	}
	if err := r.store.Put(ctx, cachestore.Key(http.MethodGet, asset), snapshot); err != nil {
		return fmt.Errorf("store %s: %w", asset, err)
	}
	return nil
}
