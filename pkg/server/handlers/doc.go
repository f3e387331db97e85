// Package handlers implements the host bridge endpoints.
//
// Every handler takes its dependencies as small interfaces (Enforcer,
// Lifecycle) so it can be tested without a running manager. Errors are
// returned as
//
//	{"error": {"message": "...", "code": "invalid_duration"}}
//
// with 400 for malformed requests and rejected messages, 413 for bodies
// over the configured limit and 503 when no configuration is active.
package handlers
