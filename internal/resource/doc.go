// Package resource manages centralized records that must be recreated or
// reset when the scene changes.
//
// Three kinds of record are registered against world keys:
//
//   - General records survive scene changes. They are created on the first
//     new scene and cleared (capacity kept) on every later one.
//   - Scoped records belong to one scene. They are disposed and recreated
//     with the new scene's config on every scene change.
//   - Plain records are value types reset to their zero value.
//
// The registry is driven in batches by phase. A transition whose created
// flag does not match (disposing a disposed record, clearing one never
// created) is a silent no-op.
package resource
