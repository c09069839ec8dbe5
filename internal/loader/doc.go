// Package loader drives asynchronous scene loads.
//
// The Loader has two halves. OnRequest subscribes to the request bus and
// runs synchronously at dispatch: it unloads the active scene, supersedes
// any in-flight load and records the new target. The stage half runs in
// GroupBasic after the config gate; it issues the load through an
// AssetLoader once config is available and polls it once per tick.
//
// State machine:
//
//	Idle    --request-->          Loading
//	Loading --request-->          Loading (previous handle released)
//	Loading --poll done-->        Idle    (SceneLoaded added)
//	Loading --poll error/timeout--> Failed (SceneLoadFailed added)
//	Failed  --request-->          Loading
//
// At most one scene is active at a time. Unloading when nothing is active
// is a no-op.
package loader
