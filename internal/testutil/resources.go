package testutil

import (
	"fmt"

	"github.com/zhanong/ecsframework/internal/config"
	"github.com/zhanong/ecsframework/internal/resource"
	"github.com/zhanong/ecsframework/internal/scene"
	"github.com/zhanong/ecsframework/internal/world"
)

// Keys for the counting records.
var (
	KeyCountingGeneral = world.NewKey[*CountingGeneral]("testutil.general")
	KeyCountingScoped  = world.NewKey[*CountingScoped]("testutil.scoped")
)

// RegisterCounting registers one counting general and one counting scoped
// record.
func RegisterCounting(r *resource.Registry) {
	resource.RegisterGeneral(r, KeyCountingGeneral, func() *CountingGeneral { return &CountingGeneral{} })
	resource.RegisterScoped(r, KeyCountingScoped, func() *CountingScoped { return &CountingScoped{} })
}

// CountingGeneral counts lifecycle calls.
type CountingGeneral struct {
	Creates  int
	Clears   int
	Disposes int
	created  bool
}

func (c *CountingGeneral) Create() {
	if c.created {
		panic("CountingGeneral: created twice without dispose")
	}
	c.created = true
	c.Creates++
}

func (c *CountingGeneral) Clear()        { c.Clears++ }
func (c *CountingGeneral) Created() bool { return c.created }

func (c *CountingGeneral) Dispose() {
	c.created = false
	c.Disposes++
}

// CountingScoped counts lifecycle calls and records every scene it was
// created for. A double create panics.
type CountingScoped struct {
	Creates  int
	Disposes int
	Scenes   []scene.ID
	Configs  []config.SceneConfig
	created  bool
}

func (c *CountingScoped) Create(cfg config.SceneConfig, id scene.ID) {
	if c.created {
		panic(fmt.Sprintf("CountingScoped: created twice without dispose (scene %s)", id))
	}
	c.created = true
	c.Creates++
	c.Scenes = append(c.Scenes, id)
	c.Configs = append(c.Configs, cfg)
}

func (c *CountingScoped) Created() bool { return c.created }

func (c *CountingScoped) Dispose() {
	c.created = false
	c.Disposes++
}
