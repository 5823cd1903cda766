// Package metrics exports the board's Prometheus metrics.
//
// A Metrics value owns its own registry (Go and process collectors included)
// and tracks:
//   - HTTP request counts and latency, recorded by Middleware
//   - devs query outcomes and latency, recorded through ObserveFetch
//   - database reachability as reported by the probe
//
// Handler serves the registry for scraping:
//
//	m := metrics.New("devboard")
//	mux.Handle("GET /{$}", page)
//	mux.Handle("GET /metrics", m.Handler())
//	srv := &http.Server{Handler: m.Middleware(mux)}
package metrics
