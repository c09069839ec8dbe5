// Package scene defines scene identifiers and the scene asset catalog.
//
// A scene is a discrete, loadable unit of world content identified by an
// ordinal ID. The ordinal range is bounded by two sentinels: None (no scene)
// and Count (one past the last concrete scene). Every valid scene therefore
// satisfies None < id < Count, and the number of valid scenes is Count-1.
//
// Asset describes the backing content of one scene: what it spawns when it
// finishes loading, whether it is a level, and how many ticks the simulated
// loader takes to complete. Catalogs are loaded in bulk by internal/config and
// must contain exactly one asset per valid scene.
package scene
