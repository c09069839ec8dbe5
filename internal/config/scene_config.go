package config

import (
	"fmt"

	"github.com/zhanong/ecsframework/internal/scene"
)

// SceneConfig is the immutable configuration row for one scene.
type SceneConfig struct {
	Scene           scene.ID
	MaxEntities     int
	DestroyCapacity int

	// Budget holds the evaluated budget expressions for this scene.
	Budget map[string]int
}

// BudgetValue returns the evaluated budget named name, or fallback when the
// content does not declare it.
func (c SceneConfig) BudgetValue(name string, fallback int) int {
	if v, ok := c.Budget[name]; ok {
		return v
	}
	return fallback
}

// BudgetLookup returns the evaluated budget named name and whether the
// content declares it. A declared budget may be 0.
func (c SceneConfig) BudgetLookup(name string) (int, bool) {
	v, ok := c.Budget[name]
	return v, ok
}

// SceneConfigs is the per-scene config table, indexed by ordinal.
type SceneConfigs struct {
	rows []SceneConfig
}

// For returns the row for id.
func (t *SceneConfigs) For(id scene.ID) (SceneConfig, error) {
	if t == nil || !id.Valid() || int(id) > len(t.rows) {
		return SceneConfig{}, fmt.Errorf("scene config for %s: %w", id, ErrNotFound)
	}
	return t.rows[int(id)-1], nil
}

// Len returns the number of rows.
func (t *SceneConfigs) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// NewSceneConfigs builds a table from rows in any order. There must be
// exactly one row per loadable scene.
func NewSceneConfigs(rows ...SceneConfig) (*SceneConfigs, error) {
	if len(rows) != scene.Total() {
		return nil, fmt.Errorf("got %d scene configs, want %d", len(rows), scene.Total())
	}
	sorted := make([]SceneConfig, len(rows))
	for _, r := range rows {
		if !r.Scene.Valid() {
			return nil, fmt.Errorf("scene config for invalid scene %s", r.Scene)
		}
		if sorted[int(r.Scene)-1].Scene != scene.None {
			return nil, fmt.Errorf("duplicate scene config for %s", r.Scene)
		}
		sorted[int(r.Scene)-1] = r
	}
	return &SceneConfigs{rows: sorted}, nil
}
