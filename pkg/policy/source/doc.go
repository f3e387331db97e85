// Package source fetches raw policy documents.
//
// A deployment has two sources, internal and external. Each is an HTTP
// endpoint, a file URL or a bare path:
//
//	internal, err := source.New("internal", cfg.Policy.InternalURL, client)
//
// Fetch failures are returned, never retried. The lifecycle manager
// degrades a failed source to an empty document.
package source
