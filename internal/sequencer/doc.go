// Package sequencer orchestrates the reset pass that follows a scene load.
//
// A request clears InitCompleted at dispatch and marks a transition
// pending. Once ConfigLoaded and SceneLoaded are both active the sequencer
// runs the resource OnNewScene batch for the loaded scene, restores
// InitCompleted, and on the next tick enables ResetPulse for exactly one
// tick. The pulse is only ever raised alongside InitCompleted: when a new
// request arrives before the pulse tick, that pulse is dropped and the next
// reset raises its own.
//
//	Idle      --pending, config+scene ready--> Resetting --batch done--> PostReset
//	PostReset --next tick, pulse raised-->     Idle
//	PostReset --next tick, new request-->      Idle (pulse dropped)
//
// Stages that must not observe a half-reset world require InitCompleted.
// Stages that react once per transition require ResetPulse.
package sequencer
