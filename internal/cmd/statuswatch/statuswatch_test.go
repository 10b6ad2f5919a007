package statuswatch

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("statuswatch", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.RelayURL != "http://localhost:8090" {
		t.Fatalf("relay url = %q, want default", cfg.RelayURL)
	}
	if cfg.Locale != "en-US" {
		t.Fatalf("locale = %q, want default", cfg.Locale)
	}
}

func TestParseConfigFlags(t *testing.T) {
	fs := flag.NewFlagSet("statuswatch", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-relay-url", "http://relay:9000", "-locale", "pt-BR"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.RelayURL != "http://relay:9000" {
		t.Fatalf("relay url = %q, want flag value", cfg.RelayURL)
	}
	if cfg.Locale != "pt-BR" {
		t.Fatalf("locale = %q, want flag value", cfg.Locale)
	}
}

func TestParseConfigEnvFallback(t *testing.T) {
	t.Setenv("SHELLRELAY_WATCH_RELAY_URL", "http://relay:7000")

	fs := flag.NewFlagSet("statuswatch", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.RelayURL != "http://relay:7000" {
		t.Fatalf("relay url = %q, want env value", cfg.RelayURL)
	}
}
