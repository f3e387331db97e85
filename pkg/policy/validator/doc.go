// Package validator evaluates a navigation target against the active policy.
//
// Evaluation is a pure read of a PolicySummary and the two override stores:
//
//	actions := validator.Evaluate(url, summary, disclaimers, sticky, validator.Options{})
//
// The domain lookup is an exact match on the lower-cased hostname. Each
// category rule of the domain is gated by its conditions, then by the
// override stores. A grant for any member of the rule's resource group
// covers the whole group.
//
// # Failure behavior
//
// Evaluation never returns an error. With FailOpen (the default) a URL that
// cannot be parsed, or a missing configuration, yields no actions. This means
// a broken policy feed never blocks navigation; deployments that prefer to
// block when in doubt select FailClosed.
package validator
