// Package store journals orchestrator runs into SQLite.
//
// A journal holds two append-only tables:
//   - runs: one row per `ecsf run`, keyed by a UUIDv7 run id
//   - events: the run's trace events, keyed by (run_id, seq)
//
// Ordering uses the logical seq and tick columns, never wall time, so a
// journal reads back identically no matter when it was written. Event
// detail is stored as canonical JSON.
//
// Journals are opened in WAL mode so `ecsf trace` can read a run that is
// still being written. Older journals are migrated forward on Open through
// PRAGMA user_version.
package store
