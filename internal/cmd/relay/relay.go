// Package relay wires configuration and process lifecycle for cmd/relay.
package relay

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/louisbranch/shellrelay/internal/cachestore/sqlite"
	"github.com/louisbranch/shellrelay/internal/platform/config"
	"github.com/louisbranch/shellrelay/internal/platform/otel"
	"github.com/louisbranch/shellrelay/internal/relay"
)

// Config holds the relay command configuration. Environment variables seed
// the values; flags override them.
type Config struct {
	HTTPAddr    string `env:"SHELLRELAY_HTTP_ADDR" envDefault:"localhost:8090"`
	UpstreamURL string `env:"SHELLRELAY_UPSTREAM_URL" envDefault:"http://localhost:8080"`
	StorePath   string `env:"SHELLRELAY_STORE_PATH" envDefault:"shell-cache.db"`
}

// ParseConfig loads the environment layer and parses flag overrides on top.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.UpstreamURL, "upstream-url", cfg.UpstreamURL, "Upstream application base URL")
	fs.StringVar(&cfg.StorePath, "store-path", cfg.StorePath, "SQLite shell cache path")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Run installs the shell cache, activates the current store version, and
// serves until the context ends. An incomplete install aborts startup so the
// previously deployed process keeps serving.
func Run(ctx context.Context, cfg Config) error {
	shutdown, err := otel.Setup(ctx, "shellrelay")
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("shutdown tracing: %v", err)
		}
	}()

	registry, err := sqlite.Open(cfg.StorePath)
	if err != nil {
		return fmt.Errorf("open shell cache: %w", err)
	}
	defer func() {
		if err := registry.Close(); err != nil {
			log.Printf("close shell cache: %v", err)
		}
	}()

	r, err := relay.New(relay.Config{UpstreamURL: cfg.UpstreamURL}, registry)
	if err != nil {
		return fmt.Errorf("init relay: %w", err)
	}
	if err := r.Install(ctx); err != nil {
		return fmt.Errorf("install shell cache: %w", err)
	}
	if err := r.Activate(ctx); err != nil {
		return fmt.Errorf("activate shell cache: %w", err)
	}

	server := relay.NewServer(cfg.HTTPAddr, r)
	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve relay: %w", err)
	}
	return nil
}
