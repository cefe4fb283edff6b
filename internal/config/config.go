// Package config loads server settings from an optional TOML file,
// a .env file and the process environment, in that order of
// precedence (environment wins).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config is everything the server needs to run.
type Config struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	Proxy   string `toml:"proxy"`

	TimeoutSeconds  int `toml:"timeout_seconds"`
	CacheTTLSeconds int `toml:"cache_ttl_seconds"`

	LogLevel string `toml:"log_level"`

	HTTPAddr string `toml:"http_addr"`

	// HTTPAPIKeys maps bearer tokens to client names for the HTTP
	// transport. Empty means unauthenticated access.
	HTTPAPIKeys map[string]string `toml:"-"`
}

// Timeout returns the request timeout, or zero to use the client
// default.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CacheTTL returns the metadata cache lifetime, or zero to use the
// client default.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Load reads configuration. A TOML file at path (if path is non-empty)
// sets the base values, a .env file in the working directory fills the
// environment, and environment variables override everything.
func Load(path string) (*Config, error) {
	cfg := &Config{
		LogLevel: "info",
		HTTPAddr: ":8090",
	}

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	// Missing .env is fine; explicit files are the exception.
	_ = godotenv.Load()

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("OPENPROJECT_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("OPENPROJECT_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("OPENPROJECT_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("OPENPROJECT_TIMEOUT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("OPENPROJECT_TIMEOUT must be a number of seconds, got %q", v)
		}
		cfg.TimeoutSeconds = n
	}
	if v := os.Getenv("OPENPROJECT_CACHE_TTL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("OPENPROJECT_CACHE_TTL must be a number of seconds, got %q", v)
		}
		cfg.CacheTTLSeconds = n
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("MCP_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("MCP_API_KEYS"); v != "" {
		cfg.HTTPAPIKeys = parseAPIKeys(v)
	}
	return nil
}

// parseAPIKeys parses "token:Name,token2:Name2". A token without a
// name gets the name "client".
func parseAPIKeys(raw string) map[string]string {
	keys := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		token, name, found := strings.Cut(pair, ":")
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if !found || strings.TrimSpace(name) == "" {
			keys[token] = "client"
			continue
		}
		keys[token] = strings.TrimSpace(name)
	}
	return keys
}

func (c *Config) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("OPENPROJECT_URL is required")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("OPENPROJECT_URL must start with http:// or https://")
	}
	if c.APIKey == "" {
		return fmt.Errorf("OPENPROJECT_API_KEY is required")
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.CacheTTLSeconds < 0 {
		return fmt.Errorf("cache TTL must not be negative")
	}
	return nil
}
