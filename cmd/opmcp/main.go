// opmcp: OpenProject MCP Server
//
// Bridges AI assistants to an OpenProject instance over the Model
// Context Protocol: work packages, projects, time tracking, members,
// relations and weekly reports.
//
// Usage:
//
//	opmcp serve        # Start MCP server (stdio transport)
//	opmcp serve-http   # Start MCP server (streamable HTTP transport)
//	opmcp update       # Update to the latest version
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"opmcp/internal/config"
	"opmcp/internal/httpserver"
	opserver "opmcp/internal/server"
	"opmcp/internal/updater"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := runStdio(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "serve-http":
		if err := runHTTP(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "update":
		runUpdate()
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("opmcp v%s\n", opserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// loadConfig parses the shared flags and loads configuration from the
// optional TOML file, .env and the environment.
func loadConfig(name string, args []string) (*config.Config, zerolog.Logger, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := fs.String("config", "", "path to a TOML config file")
	if err := fs.Parse(args); err != nil {
		return nil, zerolog.Nop(), err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	// Logs go to stderr: stdout belongs to the stdio transport.
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()

	return cfg, log, nil
}

func runStdio(args []string) error {
	cfg, log, err := loadConfig("serve", args)
	if err != nil {
		return err
	}

	s, cleanup, err := opserver.New(cfg, log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	go checkForUpdates()

	log.Info().Str("url", cfg.BaseURL).Msg("serving MCP over stdio")
	return server.ServeStdio(s)
}

func runHTTP(args []string) error {
	cfg, log, err := loadConfig("serve-http", args)
	if err != nil {
		return err
	}

	s, cleanup, err := opserver.New(cfg, log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	go checkForUpdates()

	httpSrv := httpserver.New(s, cfg.HTTPAddr, cfg.HTTPAPIKeys, log)

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(ctx)
	}
}

// checkForUpdates runs a non-blocking version check and prints a notice
// to stderr if an update is available.
func checkForUpdates() {
	result := updater.CheckVersion(opserver.Version)
	if result.UpdateAvailable {
		fmt.Fprintf(os.Stderr,
			"\n  📦 Update available: v%s → v%s\n"+
				"     Run: opmcp update\n"+
				"     Release: %s\n\n",
			result.CurrentVersion, result.LatestVersion, result.ReleaseURL,
		)
	}
}

// runUpdate performs a self-update to the latest version.
func runUpdate() {
	fmt.Fprintf(os.Stderr, "🔍 Checking for updates...\n")

	result := updater.CheckVersion(opserver.Version)
	if !result.UpdateAvailable {
		fmt.Fprintf(os.Stderr, "✅ Already at the latest version (v%s)\n", result.CurrentVersion)
		return
	}

	fmt.Fprintf(os.Stderr, "📦 New version available: v%s → v%s\n", result.CurrentVersion, result.LatestVersion)
	fmt.Fprintf(os.Stderr, "⬇️  Downloading...\n")

	if err := updater.SelfUpdate(opserver.Version); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Update failed: %v\n", err)
		fmt.Fprintf(os.Stderr, "\n   You can download manually from:\n   %s\n", result.ReleaseURL)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "✅ Updated to v%s!\n", result.LatestVersion)
	fmt.Fprintf(os.Stderr, "   Restart opmcp to use the new version.\n")
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `opmcp v%s — OpenProject MCP Server

Usage:
  opmcp serve [-config FILE]        Start the MCP server on stdio
  opmcp serve-http [-config FILE]   Start the MCP server on streamable HTTP
  opmcp update                      Self-update to the latest release
  opmcp version                     Print the version

Configuration (environment, .env file, or TOML via -config):
  OPENPROJECT_URL        Base URL of the OpenProject instance (required)
  OPENPROJECT_API_KEY    API key for Basic auth (required)
  OPENPROJECT_PROXY      Outbound proxy URL
  OPENPROJECT_TIMEOUT    Request timeout in seconds (default 30)
  OPENPROJECT_CACHE_TTL  Metadata cache TTL in seconds (default 300)
  LOG_LEVEL              trace|debug|info|warn|error (default info)
  MCP_HTTP_ADDR          HTTP listen address (default :8090)
  MCP_API_KEYS           Bearer tokens for HTTP, "token:Name,token2:Name2"
`, opserver.Version)
}
