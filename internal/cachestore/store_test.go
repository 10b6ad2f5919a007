package cachestore

import (
	"net/http"
	"testing"
)

func TestKeyIncludesMethod(t *testing.T) {
	if got := Key(http.MethodGet, "/dashboard"); got != "GET /dashboard" {
		t.Fatalf("key = %q, want %q", got, "GET /dashboard")
	}
}

func TestKeyNormalizes(t *testing.T) {
	if got := Key("get", " /dashboard "); got != "GET /dashboard" {
		t.Fatalf("key = %q, want %q", got, "GET /dashboard")
	}
	if got := Key("", "/"); got != "GET /" {
		t.Fatalf("key = %q, want %q", got, "GET /")
	}
}
