package app

import (
	"github.com/zhanong/ecsframework/internal/world"
)

// Snapshot is a flat view of orchestrator state, used by scenarios and the
// run command's summary.
type Snapshot struct {
	Tick      int64           `yaml:"tick" json:"tick"`
	Active    string          `yaml:"active" json:"active"`
	Loader    string          `yaml:"loader" json:"loader"`
	Sequencer string          `yaml:"sequencer" json:"sequencer"`
	Flags     map[string]bool `yaml:"flags" json:"flags"`
	Stamps    []string        `yaml:"stamps" json:"stamps"`
	Entities  int             `yaml:"entities" json:"entities"`
	Resets    int             `yaml:"resets" json:"resets"`
}

var snapshotFlags = []world.Flag{
	world.FlagConfigLoaded,
	world.FlagSceneLoaded,
	world.FlagInitCompleted,
	world.FlagResetPulse,
	world.FlagSceneLoadFailed,
}

// Snapshot captures the current state. Flags report whether each flag is
// active (present and enabled).
func (a *App) Snapshot() Snapshot {
	flags := make(map[string]bool, len(snapshotFlags))
	for _, f := range snapshotFlags {
		flags[f.String()] = a.world.Active(f)
	}

	stamps := a.managers.Stamps()
	if stamps == nil {
		stamps = []string{}
	}

	return Snapshot{
		Tick:      a.runner.Clock().Current(),
		Active:    a.loader.Active().String(),
		Loader:    a.loader.State().String(),
		Sequencer: a.sequencer.State().String(),
		Flags:     flags,
		Stamps:    stamps,
		Entities:  a.world.Entities().Len(),
		Resets:    a.sequencer.Resets(),
	}
}
