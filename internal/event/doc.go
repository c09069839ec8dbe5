// Package event carries scene-transition requests from callers to the
// components that react to them.
//
// Requests are submitted into a Queue from any goroutine. At the start of
// each tick the pipeline drains the queue and publishes every request on the
// Bus, which calls subscribers synchronously in registration order. The
// fan-out order is therefore explicit: whoever wires the application decides
// it, and every subscriber sees a request in the same tick.
package event
