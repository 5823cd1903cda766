package handler

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/angeloszaimis/devboard/config"
	"github.com/angeloszaimis/devboard/internal/devs"
)

// NameFetcher is satisfied by *devs.Fetcher.
type NameFetcher interface {
	Fetch(ctx context.Context) devs.Result
}

// Renderer is satisfied by *render.Renderer.
type Renderer interface {
	Render(w io.Writer, data []string) error
}

// PageHandler serves the board page on GET /.
type PageHandler struct {
	logger   *slog.Logger
	fetcher  NameFetcher
	renderer Renderer
	onError  string
}

func NewPageHandler(logger *slog.Logger, fetcher NameFetcher, renderer Renderer, onError string) *PageHandler {
	if onError == "" {
		onError = config.OnErrorPlaceholder
	}

	return &PageHandler{
		logger:   logger,
		fetcher:  fetcher,
		renderer: renderer,
		onError:  onError,
	}
}

func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	result := h.fetcher.Fetch(r.Context())
	data := result.Display()

	status := http.StatusOK
	if result.Failed() && h.onError == config.OnErrorUnavailable {
		status = http.StatusServiceUnavailable
	}

	var body bytes.Buffer
	if err := h.renderer.Render(&body, data); err != nil {
		h.logger.Error("Failed to render page", slog.Any("err", err))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(body.Bytes()); err != nil {
		h.logger.Warn("Failed to write response", slog.Any("err", err))
	}

	h.logger.Info("Served page",
		slog.String("from", extractClientIP(r)),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.Int("names", len(data)),
		slog.Bool("db_error", result.Failed()))
}

func extractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
