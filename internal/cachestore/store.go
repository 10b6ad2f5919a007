// Package cachestore defines the versioned shell-cache contracts.
//
// A Registry holds any number of named stores in one backing database. The
// relay keeps exactly one store "current" by baking a version tag into its
// name; stores under stale names are pruned at activation.
package cachestore

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Snapshot is a stored copy of one upstream response.
type Snapshot struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	StoredAt   time.Time
}

// Key builds the request identity a snapshot is stored under.
//
// The method is part of the identity even though only GET requests are ever
// cached, so a snapshot can never be served for a different method.
func Key(method, url string) string {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}
	return method + " " + strings.TrimSpace(url)
}

// Store reads and writes snapshots for one named cache store.
//
// Match on a missing key returns (Snapshot{}, false, nil). Put is an upsert;
// concurrent writers to the same key resolve last-write-wins.
type Store interface {
	Name() string
	Match(ctx context.Context, key string) (Snapshot, bool, error)
	Put(ctx context.Context, key string, snapshot Snapshot) error
	Delete(ctx context.Context, key string) error
}

// Registry manages the set of named stores in one backing database.
type Registry interface {
	Open(ctx context.Context, name string) (Store, error)
	Names(ctx context.Context) ([]string, error)
	Remove(ctx context.Context, name string) error
	Close() error
}
