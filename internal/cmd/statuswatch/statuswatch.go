// Package statuswatch wires configuration and lifecycle for cmd/statuswatch.
package statuswatch

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/louisbranch/shellrelay/internal/client"
	"github.com/louisbranch/shellrelay/internal/platform/config"
)

// Config holds the statuswatch command configuration. Environment variables
// seed the values; flags override them.
type Config struct {
	RelayURL string `env:"SHELLRELAY_WATCH_RELAY_URL" envDefault:"http://localhost:8090"`
	Locale   string `env:"SHELLRELAY_WATCH_LOCALE" envDefault:"en-US"`
}

// ParseConfig loads the environment layer and parses flag overrides on top.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.RelayURL, "relay-url", cfg.RelayURL, "Relay HTTP base URL")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "Banner copy locale")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Run watches the relay's status feed and logs banner transitions until the
// context ends.
func Run(ctx context.Context, cfg Config) error {
	c, err := client.New(client.Config{
		RelayURL: cfg.RelayURL,
		Locale:   cfg.Locale,
		Banner:   client.NewTextBanner(log.Printf),
	})
	if err != nil {
		return fmt.Errorf("init status client: %w", err)
	}

	if err := c.Run(ctx); err != nil {
		return fmt.Errorf("watch status feed: %w", err)
	}
	return nil
}
