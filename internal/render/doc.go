// Package render turns the fetched names into the HTML page using the
// embedded index.html template and the Sprig function map.
package render
