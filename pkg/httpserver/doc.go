// Package httpserver wraps net/http with graceful shutdown, environment
// configuration and a health endpoint. The engine uses it to serve the cron
// trigger routes, but any http.Handler fits.
package httpserver
