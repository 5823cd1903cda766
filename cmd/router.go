package main

import (
	"net/http"

	"github.com/angeloszaimis/devboard/internal/metrics"
)

func setupRouter(page http.Handler, m *metrics.Metrics, metricsPath string) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /{$}", page)
	mux.Handle("GET "+metricsPath, m.Handler())

	return m.Middleware(mux)
}
