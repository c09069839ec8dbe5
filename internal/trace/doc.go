// Package trace records what the orchestrator did, tick by tick.
//
// Every observable step (a request dispatched, a load issued, a reset pass,
// a pulse raised) is emitted as an Event through a Log. The Log stamps each
// event with a strictly increasing Seq and the tick it happened on, then
// fans it out to Recorders: an in-memory Buffer for tests and scenarios, the
// SQLite journal in internal/store for the CLI.
//
// Ordering uses Seq and Tick only, never wall-clock time, so two runs of the
// same request sequence produce byte-identical traces. MarshalCanonical gives
// a stable encoding (sorted keys, NFC strings, no HTML escaping) for golden
// snapshots and the journal's detail column.
package trace
