// Package httpserver serves the MCP server over streamable HTTP for
// remote clients, with optional bearer token authentication.
package httpserver

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

// Server hosts the streamable HTTP transport.
type Server struct {
	httpSrv *http.Server
	log     zerolog.Logger
}

// New builds the HTTP server. apiKeys maps bearer tokens to client
// names; an empty map disables authentication, which is only sensible
// behind a trusted reverse proxy.
func New(mcpServer *server.MCPServer, addr string, apiKeys map[string]string, log zerolog.Logger) *Server {
	stream := server.NewStreamableHTTPServer(mcpServer,
		server.WithEndpointPath("/mcp"),
		server.WithStateLess(true),
	)

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(log))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	if len(apiKeys) == 0 {
		log.Warn().Msg("MCP_API_KEYS not set, HTTP transport is unauthenticated")
		r.Handle("/mcp", stream)
		r.Handle("/mcp/*", stream)
	} else {
		r.Group(func(r chi.Router) {
			r.Use(bearerAuth(apiKeys, log))
			r.Handle("/mcp", stream)
			r.Handle("/mcp/*", stream)
		})
	}

	return &Server{
		httpSrv: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// ListenAndServe blocks serving requests until Shutdown is called or
// the listener fails.
func (s *Server) ListenAndServe() error {
	s.log.Info().Str("addr", s.httpSrv.Addr).Msg("HTTP transport listening")
	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// bearerAuth checks the Authorization header against the configured
// token set. Comparison is constant time per token.
func bearerAuth(apiKeys map[string]string, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if token == "" || token == r.Header.Get("Authorization") {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			for key, name := range apiKeys {
				if subtle.ConstantTimeCompare([]byte(token), []byte(key)) == 1 {
					log.Debug().Str("client", name).Msg("authenticated request")
					next.ServeHTTP(w, r)
					return
				}
			}
			log.Warn().Str("remote", r.RemoteAddr).Msg("rejected request with invalid token")
			http.Error(w, "invalid token", http.StatusUnauthorized)
		})
	}
}

// requestLogger logs one line per request.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("http request")
		})
	}
}
