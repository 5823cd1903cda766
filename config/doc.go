// Package config loads the application configuration from defaults, an
// optional .env file, an optional config.yaml and environment variables. It
// covers the HTTP server, the devs database connection, page rendering
// policy, the database probe, the metrics exporter and logging.
package config
