package server

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"opmcp/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		BaseURL: "https://openproject.example.com",
		APIKey:  "secret",
	}
}

func TestNew_Succeeds(t *testing.T) {
	s, cleanup, err := New(testConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s == nil {
		t.Fatal("New returned nil server")
	}
	cleanup()
}

func TestNew_WithProxy(t *testing.T) {
	cfg := testConfig()
	cfg.Proxy = "http://proxy.internal:3128"

	s, cleanup, err := New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("New with proxy: %v", err)
	}
	if s == nil {
		t.Fatal("New returned nil server")
	}
	cleanup()
}

func TestNew_InvalidProxyURL(t *testing.T) {
	cfg := testConfig()
	cfg.Proxy = "http://[::1"

	_, _, err := New(cfg, zerolog.Nop())
	if err == nil {
		t.Fatal("New accepted an unparseable proxy URL")
	}
	if !strings.Contains(err.Error(), "proxy") {
		t.Errorf("error = %q, want mention of the proxy", err)
	}
}
