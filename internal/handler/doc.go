// Package handler implements the board's page handler. It fetches the names,
// applies the configured failure policy and renders the page.
package handler
