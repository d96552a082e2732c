package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Server exposes metrics and health on a side listener, separate from the
// user-facing app
type Server struct {
	httpServer *http.Server
	addr       string
}

// NewServer creates an observability server listening on addr
func NewServer(addr string) *Server {
	return &Server{addr: addr}
}

// Start blocks serving /metrics and /health until Shutdown
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
