// Package config loads immutable content configuration and publishes it to
// the world exactly once.
//
// # Content
//
// Content lives in a CUE package directory with three top-level structs:
//
//	scene_config: {
//		MainMenu: {id: 1, max_entities: 16, destroy_capacity: 8}
//		Level1:   {id: 2, max_entities: 256, destroy_capacity: 64}
//	}
//	scene_asset: {
//		MainMenu: {id: 1, level: false, latency_ticks: 1, content: ["camera", "menu"]}
//		Level1:   {id: 2, level: true, latency_ticks: 3, content: ["camera", "player"]}
//	}
//	budget: {
//		scene_slots: "config.max_entities / 4"
//	}
//
// Rows are sorted by their declared id. The number of rows in scene_config
// and in scene_asset must equal the number of loadable scenes, and the ids
// must be exactly 1..N with labels matching scene names. max_entities and
// destroy_capacity must lie in [0, MaxSize]; latency_ticks must not be
// negative. Anything else is a content error: Load returns a *LoadError and
// the process must not start.
//
// budget entries are expressions (github.com/expr-lang/expr) compiled at
// load time and evaluated once per scene when the gate publishes, with the
// environment {scene, level, config}. Floats truncate toward zero and every
// result must lie in [0, MaxSize]. Results are stored on each SceneConfig.
// A declared budget of 0 is a real limit; consumers fall back to their own
// default only when the budget is absent (SceneConfig.BudgetLookup).
//
// # Gate
//
// Gate is the first stage of the pipeline. On its first tick it builds every
// registered payload, stores each in the world under its key, adds
// FlagConfigLoaded and disables itself. Get returns ErrNotFound before that
// tick; asking for config before it is loaded is a programming error.
//
// # Settings
//
// Settings holds runtime knobs read from the environment
// (github.com/caarlos0/env/v11).
package config
