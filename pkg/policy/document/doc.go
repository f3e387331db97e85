// Package document decodes raw policy documents and merges them.
//
// Policy documents arrive as JSON from two independent sources. They are
// decoded into order-preserving objects so that the category order a policy
// author wrote survives the merge and shows up in evaluation results.
//
// # Merge semantics
//
//	internal := {"a": 1, "tags": ["x"], "nested": {"k": "i"}}
//	external := {"a": 2, "tags": ["y"], "nested": {"j": true}}
//	Merge(internal, external)
//	// {"a": 2, "tags": ["x", "y"], "nested": {"k": "i", "j": true}}
package document
