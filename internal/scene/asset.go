package scene

import (
	"fmt"
	"sort"
)

// Asset is the backing content of one scene.
type Asset struct {
	ID ID

	// Content lists the archetypes spawned as scene-owned entities when the
	// scene finishes loading. They are destroyed with the scene.
	Content []string

	// Level marks gameplay scenes (as opposed to menus).
	Level bool

	// LatencyTicks is how many polls the simulated loader needs before the
	// load reports done. Zero completes on the first poll.
	LatencyTicks int
}

// Catalog holds exactly one asset per loadable scene, indexed by ordinal.
type Catalog struct {
	assets []Asset
}

// NewCatalog sorts assets by scene ID and checks that the set covers every
// loadable scene exactly once. A mismatch is a content error and callers
// treat it as fatal.
func NewCatalog(assets []Asset) (*Catalog, error) {
	if len(assets) != Total() {
		return nil, fmt.Errorf("loaded %d scene assets, want %d", len(assets), Total())
	}

	sorted := make([]Asset, len(assets))
	copy(sorted, assets)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	for i, a := range sorted {
		want := ID(i + 1)
		if a.ID != want {
			return nil, fmt.Errorf("scene asset %d has id %s, want %s", i, a.ID, want)
		}
	}

	return &Catalog{assets: sorted}, nil
}

// Asset returns the asset for id.
func (c *Catalog) Asset(id ID) (Asset, error) {
	if !id.Valid() {
		return Asset{}, fmt.Errorf("no asset for scene %s", id)
	}
	return c.assets[int(id)-1], nil
}

// Len returns the number of assets.
func (c *Catalog) Len() int {
	return len(c.assets)
}
