// Package middleware provides the HTTP middleware chain of the host bridge.
//
// The chain, outermost first:
//
//	Recovery -> RequestID -> Logging -> CORS -> BodyLimit -> mux
//
// Recovery turns panics into 500 responses. RequestID assigns or propagates
// X-Request-ID and stores it in the context so every log line of the
// request carries request_id. Logging records method, path, status and
// latency. CORS restricts browser callers to the configured extension
// origins. BodyLimit enforces server.max_body_bytes.
package middleware
