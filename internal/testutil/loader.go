package testutil

import (
	"context"
	"fmt"

	"github.com/zhanong/ecsframework/internal/loader"
	"github.com/zhanong/ecsframework/internal/scene"
)

// Script controls how ScriptedLoader handles one scene.
type Script struct {
	// Polls is how many polls report not done before the load completes.
	Polls int
	// Stall keeps the load pending forever.
	Stall bool
	// IssueErr fails Load itself.
	IssueErr error
	// PollErr is returned by the first poll after Polls pending polls.
	PollErr error
}

// ScriptedLoader is a loader.AssetLoader driven by per-scene scripts.
// Scenes without a script complete on the first poll.
type ScriptedLoader struct {
	Scripts  map[scene.ID]Script
	Issued   []scene.ID
	Released []scene.ID
}

// NewScriptedLoader creates a loader with scripts.
func NewScriptedLoader(scripts map[scene.ID]Script) *ScriptedLoader {
	if scripts == nil {
		scripts = map[scene.ID]Script{}
	}
	return &ScriptedLoader{Scripts: scripts}
}

func (l *ScriptedLoader) Load(_ context.Context, asset scene.Asset) (loader.Handle, error) {
	script := l.Scripts[asset.ID]
	if script.IssueErr != nil {
		return nil, script.IssueErr
	}
	l.Issued = append(l.Issued, asset.ID)
	return &scriptedHandle{owner: l, id: asset.ID, script: script}, nil
}

type scriptedHandle struct {
	owner    *ScriptedLoader
	id       scene.ID
	script   Script
	polls    int
	released bool
}

func (h *scriptedHandle) Poll() (bool, error) {
	if h.released {
		return false, fmt.Errorf("scene %s: %w", h.id, loader.ErrReleased)
	}
	if h.script.Stall {
		return false, nil
	}
	if h.polls < h.script.Polls {
		h.polls++
		return false, nil
	}
	if h.script.PollErr != nil {
		return false, h.script.PollErr
	}
	return true, nil
}

func (h *scriptedHandle) Release() {
	if h.released {
		return
	}
	h.released = true
	h.owner.Released = append(h.owner.Released, h.id)
}
