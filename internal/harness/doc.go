// Package harness runs scene-transition scenarios against the orchestrator.
//
// A scenario builds a real App from a content directory, drives it with
// requests and ticks, and asserts on the recorded trace and the final
// snapshot. Every run is journaled into an in-memory store with a fixed run
// id, and the harness checks that the journal matches the trace.
//
// # Scenario Format
//
//	name: boot_to_level
//	description: "Cold start into Level1"
//	content: ../../../../testdata/content
//	start_scene: Level1
//	load_timeout_ticks: 0
//	loads:
//	  MainMenu: { polls: 2, poll_error: "disk" }
//	steps:
//	  - tick: 6
//	  - request: MainMenu
//	  - teardown: true
//	assertions:
//	  - type: trace_contains
//	    kind: reset
//	    scene: Level1
//	    detail: { created: "3" }
//	  - type: trace_order
//	    kinds: [load_completed, reset, pulse_raised, pulse_cleared]
//	  - type: trace_count
//	    kind: reset
//	    count: 1
//	  - type: final_state
//	    expect: { active: Level1, loader: idle }
//	    flags: { init_completed: true }
//
// Scenes listed under loads use a scripted loader; the rest load with the
// catalog's latency.
//
// # Assertion Types
//
//   - trace_contains: some event matches kind, scene and a detail subset
//   - trace_order: kinds appear as a subsequence of the trace
//   - trace_count: exactly N events match kind, scene and detail
//   - final_state: snapshot fields and active flags after the last step
//
// # Golden Files
//
// RunWithGolden encodes the trace and final snapshot as canonical JSON and
// compares it with testdata/golden/{name}.golden via goldie.
package harness
