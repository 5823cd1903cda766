package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/angeloszaimis/devboard/config"
)

// Server wraps http.Server with address validation and graceful shutdown.
type Server struct {
	server          *http.Server
	shutdownTimeout time.Duration
}

// New creates a server for cfg.Address. The address and every timeout in cfg
// are validated before the server is built.
func New(cfg config.ServerConfig, handler http.Handler) (*Server, error) {
	if err := config.ValidateHostPort(cfg.Address); err != nil {
		return nil, err
	}

	timeouts, err := parseTimeouts(cfg)
	if err != nil {
		return nil, err
	}

	srv := &Server{
		server: &http.Server{
			Addr:         cfg.Address,
			Handler:      handler,
			ReadTimeout:  timeouts[0],
			WriteTimeout: timeouts[1],
			IdleTimeout:  timeouts[2],
		},
		shutdownTimeout: timeouts[3],
	}

	return srv, nil
}

// Start begins listening for HTTP requests.
// Returns an error unless the server is shut down cleanly.
func (s *Server) Start() error {
	err := s.server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Shutdown drains in-flight requests, bounded by the configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

func parseTimeouts(cfg config.ServerConfig) ([4]time.Duration, error) {
	var out [4]time.Duration

	fields := []struct {
		name  string
		value string
		def   time.Duration
	}{
		{"read_timeout", cfg.ReadTimeout, 15 * time.Second},
		{"write_timeout", cfg.WriteTimeout, 15 * time.Second},
		{"idle_timeout", cfg.IdleTimeout, 60 * time.Second},
		{"shutdown_timeout", cfg.ShutdownTimeout, 5 * time.Second},
	}

	for i, f := range fields {
		if f.value == "" {
			out[i] = f.def
			continue
		}
		d, err := time.ParseDuration(f.value)
		if err != nil {
			return out, fmt.Errorf("invalid %s %q: %w", f.name, f.value, err)
		}
		out[i] = d
	}

	return out, nil
}
