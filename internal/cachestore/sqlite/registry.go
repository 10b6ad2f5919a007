// Package sqlite provides SQLite-backed persistence for shell cache stores.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/shellrelay/internal/cachestore"
	"github.com/louisbranch/shellrelay/internal/cachestore/sqlite/migrations"
	"github.com/louisbranch/shellrelay/internal/platform/storage/sqlitemigrate"
	_ "modernc.org/sqlite"
)

// Registry holds every named cache store in one SQLite database.
type Registry struct {
	sqlDB *sql.DB
}

// Open opens and migrates a snapshot registry at path.
func Open(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, "."); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Registry{sqlDB: sqlDB}, nil
}

// Close releases the underlying SQLite connection.
func (r *Registry) Close() error {
	if r == nil || r.sqlDB == nil {
		return nil
	}
	return r.sqlDB.Close()
}

// Open returns the store for name, creating nothing until the first Put.
func (r *Registry) Open(ctx context.Context, name string) (cachestore.Store, error) {
	if r == nil || r.sqlDB == nil {
		return nil, fmt.Errorf("registry is not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("store name is required")
	}
	return &store{name: name, sqlDB: r.sqlDB}, nil
}

// Names lists every store name that currently holds at least one snapshot.
func (r *Registry) Names(ctx context.Context) ([]string, error) {
	if r == nil || r.sqlDB == nil {
		return nil, fmt.Errorf("registry is not configured")
	}

	rows, err := r.sqlDB.QueryContext(ctx, `SELECT DISTINCT store_name FROM snapshots ORDER BY store_name`)
	if err != nil {
		return nil, fmt.Errorf("list store names: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan store name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate store names: %w", err)
	}
	return names, nil
}

// Remove deletes every snapshot held under name.
func (r *Registry) Remove(ctx context.Context, name string) error {
	if r == nil || r.sqlDB == nil {
		return fmt.Errorf("registry is not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("store name is required")
	}

	if _, err := r.sqlDB.ExecContext(ctx, `DELETE FROM snapshots WHERE store_name = ?`, name); err != nil {
		return fmt.Errorf("remove store %s: %w", name, err)
	}
	return nil
}

type store struct {
	name  string
	sqlDB *sql.DB
}

func (s *store) Name() string {
	return s.name
}

// Match loads a snapshot by request key.
func (s *store) Match(ctx context.Context, key string) (cachestore.Snapshot, bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return cachestore.Snapshot{}, false, fmt.Errorf("request key is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT status_code, header_json, body, stored_at
		 FROM snapshots
		 WHERE store_name = ? AND request_key = ?`,
		s.name,
		key,
	)

	var snapshot cachestore.Snapshot
	var headerJSON string
	var storedAt int64
	if err := row.Scan(&snapshot.StatusCode, &headerJSON, &snapshot.Body, &storedAt); err != nil {
		if err == sql.ErrNoRows {
			return cachestore.Snapshot{}, false, nil
		}
		return cachestore.Snapshot{}, false, fmt.Errorf("match snapshot: %w", err)
	}

	header := http.Header{}
	if headerJSON != "" {
		if err := json.Unmarshal([]byte(headerJSON), &header); err != nil {
			return cachestore.Snapshot{}, false, fmt.Errorf("decode snapshot header: %w", err)
		}
	}
	snapshot.Header = header
	snapshot.StoredAt = time.UnixMilli(storedAt).UTC()
	return snapshot, true, nil
}

// Put upserts a snapshot by request key.
func (s *store) Put(ctx context.Context, key string, snapshot cachestore.Snapshot) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("request key is required")
	}
	if snapshot.StatusCode == 0 {
		return fmt.Errorf("snapshot status code is required")
	}

	if snapshot.StoredAt.IsZero() {
		snapshot.StoredAt = time.Now().UTC()
	}
	header := snapshot.Header
	if header == nil {
		header = http.Header{}
	}
	body := snapshot.Body
	if body == nil {
		body = []byte{}
	}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("encode snapshot header: %w", err)
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO snapshots (store_name, request_key, status_code, header_json, body, stored_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(store_name, request_key) DO UPDATE SET
		    status_code = excluded.status_code,
		    header_json = excluded.header_json,
		    body = excluded.body,
		    stored_at = excluded.stored_at`,
		s.name,
		key,
		snapshot.StatusCode,
		string(headerJSON),
		body,
		snapshot.StoredAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put snapshot: %w", err)
	}
	return nil
}

// Delete removes a snapshot by request key. Deleting a missing key is a no-op.
func (s *store) Delete(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("request key is required")
	}

	if _, err := s.sqlDB.ExecContext(
		ctx,
		`DELETE FROM snapshots WHERE store_name = ? AND request_key = ?`,
		s.name,
		key,
	); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}
