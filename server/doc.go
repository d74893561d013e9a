// Package server exposes theme conversion over HTTP.
//
// Routes:
//
//	POST /convert   multipart form with the stylesheet in field "theme";
//	                responds with the archive as application/x-asar
//	GET  /healthz   liveness probe
//
// A stylesheet without a readable metadata header is answered with 422 and
// a JSON error body. Uploads larger than the configured limit get 413.
package server
