package relay

import (
	"context"
	"io"
	"log"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/shellrelay/internal/cachestore"
	errs "github.com/louisbranch/shellrelay/internal/platform/errors"
	"github.com/louisbranch/shellrelay/internal/protocol"
)

// servedFromHeader marks responses served out of the shell cache so fallback
// serving is visible in access logs.
const servedFromHeader = "X-Served-From"

// hopByHopHeaders are stripped when relaying in either direction.
var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// handleFetch applies the interception decision procedure to one request.
//
// Non-GET and cross-origin requests pass through untouched. Same-origin GET
// requests go network-first; navigations gate the shared status, and the
// fallback tier serves the shell cache when the live fetch fails.
func (r *Relay) handleFetch(w http.ResponseWriter, req *http.Request) {
	ctx, span := r.tracer.Start(req.Context(), "relay.fetch", trace.WithAttributes(
		attribute.String("http.method", req.Method),
		attribute.String("url.path", req.URL.Path),
	))
	defer span.End()
	req = req.WithContext(ctx)

	if req.Method != http.MethodGet {
		span.SetAttributes(attribute.String("relay.tier", "pass-through"))
		r.passThrough(w, req)
		return
	}
	if r.crossOrigin(req) {
		span.SetAttributes(attribute.String("relay.tier", "pass-through"))
		r.passThrough(w, req)
		return
	}

	navigation := isNavigation(req)
	span.SetAttributes(attribute.Bool("relay.navigation", navigation))

	resp, err := r.liveFetch(req)

	var failure errs.Code
	switch {
	case err != nil:
		failure = errs.CodeOf(err)
	case resp.StatusCode < http.StatusBadRequest:
		// Broadcast before any fallback logic can run for this request.
		if navigation {
			r.status.setAndBroadcast(protocol.StatusOnline)
		}
		span.SetAttributes(attribute.String("relay.tier", "live"))
		r.serveLive(w, req, resp)
		return
	case navigation:
		// HTTP-level error on a navigation: enter the fallback tier tagged
		// as a server failure.
		failure = errs.CodeFetchUpstreamStatus
		drainAndClose(resp)
	default:
		// Non-navigation HTTP error: the caller sees the upstream failure
		// verbatim. Sub-resources have no defined offline substitute.
		span.SetAttributes(attribute.String("relay.tier", "upstream-error"))
		relayResponse(w, resp)
		return
	}

	span.SetAttributes(attribute.String("relay.tier", "fallback"),
		attribute.String("relay.failure", string(failure)))
	r.serveFallback(w, req, navigation, failure)
}

// liveFetch attempts the upstream request. A returned error means a
// network-level failure: no response at all.
func (r *Relay) liveFetch(req *http.Request) (*http.Response, error) {
	out, err := http.NewRequestWithContext(req.Context(), http.MethodGet, r.upstreamFor(req.URL.Path, req.URL.RawQuery), nil)
	if err != nil {
		return nil, errs.Wrap(errs.CodeFetchNetwork, "build upstream request", err)
	}
	copyHeader(out.Header, req.Header)

	resp, err := r.client.Do(out)
	if err != nil {
		return nil, errs.Wrap(errs.CodeFetchNetwork, "live fetch failed", err)
	}
	return resp, nil
}

// serveLive relays an OK upstream response and stores a copy afterwards.
// The caller never waits on the cache write.
func (r *Relay) serveLive(w http.ResponseWriter, req *http.Request, resp *http.Response) {
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		// The upstream died mid-body. Too late for the fallback tier: the
		// status line already reflects a live response.
		http.Error(w, "upstream read failed", http.StatusBadGateway)
		return
	}

	copyHeader(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(body)

	snapshot := cachestore.Snapshot{
		StatusCode: resp.StatusCode,
		Header:     cloneHeader(resp.Header),
		Body:       body,
	}
	key := cachestore.Key(http.MethodGet, requestPath(req))
	go func() {
		err := r.store.Put(context.Background(), key, snapshot)
		if err != nil {
			log.Printf("relay: store snapshot %s: %v", key, err)
		}
		if r.afterStore != nil {
			r.afterStore(err)
		}
	}()
}

// serveFallback is the cache tier: exact match first, then the cached root
// document, then a synthetic failure.
//
// Only navigations reach the cache. A failed sub-resource propagates to the
// caller even when a cached copy exists: stale assets are never served
// silently. And only navigations flap the shared status; they are the
// user-perceived "is the app reachable" signal.
func (r *Relay) serveFallback(w http.ResponseWriter, req *http.Request, navigation bool, failure errs.Code) {
	if !navigation {
		writeSyntheticFailure(w)
		return
	}

	ctx := req.Context()

	key := cachestore.Key(http.MethodGet, requestPath(req))
	snapshot, ok, err := r.store.Match(ctx, key)
	if err != nil {
		log.Printf("relay: match %s: %v", key, err)
		ok = false
	}

	if !ok {
		rootKey := cachestore.Key(http.MethodGet, rootKeyPath)
		snapshot, ok, err = r.store.Match(ctx, rootKey)
		if err != nil {
			log.Printf("relay: match %s: %v", rootKey, err)
			ok = false
		}
	}

	// The broadcast happens whether or not a snapshot was found.
	r.status.setAndBroadcast(failureStatus(failure))

	if !ok {
		writeSyntheticFailure(w)
		return
	}
	serveSnapshot(w, snapshot)
}

func serveSnapshot(w http.ResponseWriter, snapshot cachestore.Snapshot) {
	copyHeader(w.Header(), snapshot.Header)
	w.Header().Set(servedFromHeader, "shell-cache")
	w.WriteHeader(snapshot.StatusCode)
	_, _ = w.Write(snapshot.Body)
}

// writeSyntheticFailure is the HTTP-native stand-in for an opaque network
// error result.
func writeSyntheticFailure(w http.ResponseWriter) {
	http.Error(w, "upstream unreachable and no cached copy", http.StatusBadGateway)
}

// passThrough proxies a request the relay does not intercept.
func (r *Relay) passThrough(w http.ResponseWriter, req *http.Request) {
	target := r.upstreamFor(req.URL.Path, req.URL.RawQuery)
	if req.URL.IsAbs() {
		target = req.URL.String()
	}

	out, err := http.NewRequestWithContext(req.Context(), req.Method, target, req.Body)
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	copyHeader(out.Header, req.Header)

	resp, err := r.client.Do(out)
	if err != nil {
		http.Error(w, "upstream unreachable", http.StatusBadGateway)
		return
	}
	relayResponse(w, resp)
}

func relayResponse(w http.ResponseWriter, resp *http.Response) {
	defer func() {
		_ = resp.Body.Close()
	}()
	copyHeader(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
}

// crossOrigin reports whether the request targets a host other than the
// origin this relay fronts. Origin-form requests are always same-origin.
func (r *Relay) crossOrigin(req *http.Request) bool {
	if !req.URL.IsAbs() {
		return false
	}
	return !strings.EqualFold(req.URL.Host, r.upstream.Host)
}

// isNavigation reports whether the request loads a top-level document.
// Fetch-metadata is authoritative when present; otherwise a leading
// text/html Accept preference is treated as a navigation.
func isNavigation(req *http.Request) bool {
	if mode := req.Header.Get("Sec-Fetch-Mode"); mode != "" {
		return mode == "navigate"
	}
	accept := req.Header.Get("Accept")
	first, _, _ := strings.Cut(accept, ",")
	mediaType, _, _ := strings.Cut(first, ";")
	return strings.TrimSpace(mediaType) == "text/html"
}

func failureStatus(failure errs.Code) protocol.Status {
	if failure == errs.CodeFetchUpstreamStatus {
		return protocol.StatusServerError
	}
	return protocol.StatusNetworkError
}

func requestPath(req *http.Request) string {
	path := req.URL.Path
	if path == "" {
		path = rootKeyPath
	}
	if req.URL.RawQuery != "" {
		path += "?" + req.URL.RawQuery
	}
	return path
}

func copyHeader(dst, src http.Header) {
	for name, values := range src {
		if isHopByHop(name) {
			continue
		}
		for _, value := range values {
			dst.Add(name, value)
		}
	}
}

func cloneHeader(src http.Header) http.Header {
	dst := http.Header{}
	copyHeader(dst, src)
	return dst
}

func isHopByHop(name string) bool {
	for _, hop := range hopByHopHeaders {
		if strings.EqualFold(name, hop) {
			return true
		}
	}
	return false
}

func drainAndClose(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
