// Package logger builds the application's structured slog logger: text output
// for dev and staging, JSON for prod, tagged with the service name and
// environment.
package logger
