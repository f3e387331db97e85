// Package storage persists the last good policy summary so that a failed
// or empty refresh can fall back to it.
//
// Every backend holds a single logical record and implements SnapshotStore:
//
//   - MemoryStore keeps the record in process memory.
//   - SQLiteStore writes it to a local database file (modernc.org/sqlite).
//   - RedisStore shares it between enforcer instances.
//
// New selects a backend from configuration. Load returns a nil snapshot
// and a nil error when nothing has ever been saved.
package storage
