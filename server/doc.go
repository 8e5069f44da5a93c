// Package server provides the HTTP surface: a Gin engine mounted on a root
// ServeMux wrapped with h2c, standard middleware (recovery, request ID,
// CORS, body size limit, request logging), response envelopes and the
// voiceprint/extraction route handlers.
package server
