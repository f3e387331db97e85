// Package enforcer applies the active policy to browser events.
//
// BeforeNavigate evaluates every navigation against the active
// configuration, stores the resulting actions under the tab and redirects
// the tab to the block page when any action is block_page. The redirect
// happens at most once per navigation, and the full action list stays
// available to the in-page UI:
//
//	enf, _ := enforcer.New(enforcer.Options{
//	    Summaries:  mgr.Store(),
//	    Redirector: bridge,
//	})
//	decision, err := enf.BeforeNavigate(ctx, enforcer.NavigationEvent{TabID: 7, URL: u})
//
// # Messages
//
// The UI talks to the enforcer with tagged messages:
//
//	{"category": "REQUEST_MESSAGE"}
//	{"category": "STORE_DISCLAIMER_ACCEPTANCE", "data": {"duration": 3600}}
//	{"category": "STORE_STICKY_CANCELLATION", "data": {"duration": 600}}
//
// Durations are in seconds. Grants are stored under the hostname of the
// sender's origin and only affect later evaluations.
package enforcer
