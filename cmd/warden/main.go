// Warden is a browser content-policy enforcer.
//
// It fetches an internal and an external policy document, merges them, and
// evaluates every navigated URL against the result. A browser host drives it
// over a local HTTP and WebSocket bridge, reporting navigations and relaying
// disclaimer and sticky-cancellation choices made in the UI.
//
// Usage:
//
//	# Start the enforcer and the host bridge
//	warden run --config /etc/warden/warden.yaml
//
//	# Fetch and parse the policy once, without serving
//	warden fetch --config warden.yaml
//
//	# Show the actions a URL would receive
//	warden evaluate --config warden.yaml https://example.com/ads
//
//	# Print the JSON schema of a policy rule
//	warden schema
//
//	# Show version information
//	warden version
package main

import "os"

func main() {
	os.Exit(Execute())
}
