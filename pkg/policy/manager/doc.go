// Package manager owns the policy configuration lifecycle.
//
// A refresh fetches the internal and external documents, merges them
// (external wins on conflict, lists concatenate), parses the result and then
// either persists and activates the new summary or, when nothing usable came
// back, restores the last persisted snapshot:
//
//	mgr, err := manager.New(manager.Options{
//	    Internal:      internal,
//	    External:      external,
//	    Snapshots:     store,
//	    FetchInterval: 15 * time.Minute,
//	})
//	if err := mgr.Start(ctx); err != nil { ... }
//	defer mgr.Close()
//
//	summary := mgr.Store().Summary()
//
// # Lifecycle
//
// The manager moves from uninitialized to loading on its first refresh, and
// between active and refreshing afterwards. Start runs the install refresh,
// registers the periodic refresh with a scheduler and, with Watch set,
// refreshes whenever a file source changes.
//
// # Concurrency
//
// Concurrent Refresh calls share the refresh already in flight. The active
// configuration lives in a ConfigurationStore and is swapped atomically, so
// evaluation never observes a half-built configuration.
//
// # Failure handling
//
// Refresh never fails on its own account. An unreachable source contributes
// an empty document, a snapshot that cannot be saved is logged and the new
// configuration is activated in memory anyway, and a snapshot that cannot be
// loaded leaves the current configuration in place.
package manager
