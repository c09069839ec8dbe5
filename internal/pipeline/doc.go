// Package pipeline runs stages in a fixed order, once per tick.
//
// # Tick Model
//
// A tick is one discrete step. Within a tick the Runner:
//
//  1. Advances the tick clock and stamps the trace log.
//  2. Drains the request queue and publishes each request on the bus, in
//     submission order. Subscribers react before any stage runs.
//  3. Runs every registered stage, ordered by Group and then by
//     registration order within a group. A stage is skipped when it reports
//     itself disabled or when any flag it requires is not active.
//
// Stage order is total, so no locking is needed around the world context:
// the ordering itself is the concurrency control. Nothing in a tick blocks.
// Long-running work (scene loads) is issued in one tick and polled in later
// ones.
//
// # Errors
//
// A stage error is fatal. The Runner wraps it in a StageError, logs it, and
// refuses to run further ticks. Stage errors mean content or wiring is
// broken (a payload that does not build, a record missing when the ordering
// guarantees it), not a condition a later tick could repair.
package pipeline
