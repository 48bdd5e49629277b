// Package httputil provides shared HTTP response helpers for handlers.
//
// Handlers use these instead of raw http.ResponseWriter calls so JSON
// envelopes, error bodies and cache headers stay consistent across the
// tracking endpoints.
package httputil
