// Package statusapi serves the cached status document read-only over HTTP.
package statusapi

import (
	"context"
	"net/http"
	"time"

	"aurora-pvlogd/internal/logger"
	"aurora-pvlogd/internal/telemetry"
)

const readHeaderTimeout = 5 * time.Second

type Server struct {
	cache *telemetry.Cache
	srv   *http.Server
}

func New(addr string, cache *telemetry.Cache) *Server {
	s := &Server{cache: cache}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return s
}

// Start runs the listener in the background. Startup failure is logged,
// not fatal: the status endpoint is an accessor, not part of the pipeline.
func (s *Server) Start() {
	go func() {
		logger.Info().Str("addr", s.srv.Addr).Msg("Status endpoint listening")
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("Status endpoint failed")
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet || r.URL.Path != "/" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	logger.Debug().
		Str("remote", r.RemoteAddr).
		Str("path", r.URL.Path).
		Msg("Status request")

	w.Header().Set("Content-Type", "application/json")
	w.Write(s.cache.Serialize())
}
