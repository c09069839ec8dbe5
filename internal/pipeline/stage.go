package pipeline

import (
	"context"

	"github.com/zhanong/ecsframework/internal/trace"
	"github.com/zhanong/ecsframework/internal/world"
)

// Group orders stages within a tick. Groups run in ascending order.
type Group int

const (
	// GroupBasic holds the orchestrator: config gate, scene loader,
	// transition sequencer.
	GroupBasic Group = iota
	// GroupUpdateOnChange holds stages reacting to changes recorded this tick.
	GroupUpdateOnChange
	// GroupRegularUpdate holds per-tick gameplay stages.
	GroupRegularUpdate
	// GroupHandleUserInput holds stages consuming input.
	GroupHandleUserInput
	// GroupCreateDestroyEntities holds structural changes, applied last.
	GroupCreateDestroyEntities
)

func (g Group) String() string {
	switch g {
	case GroupBasic:
		return "Basic"
	case GroupUpdateOnChange:
		return "UpdateOnChange"
	case GroupRegularUpdate:
		return "RegularUpdate"
	case GroupHandleUserInput:
		return "HandleUserInput"
	case GroupCreateDestroyEntities:
		return "CreateDestroyEntities"
	default:
		return "Unknown"
	}
}

// TickContext is passed to every stage update.
type TickContext struct {
	Ctx   context.Context
	Tick  int64
	World *world.World
	Log   *trace.Log
}

// Stage is one unit of per-tick work.
type Stage interface {
	// Name identifies the stage in logs and errors.
	Name() string
	// Group places the stage in the tick order.
	Group() Group
	// Requires lists flags that must all be active for Update to run.
	Requires() []world.Flag
	// Update performs the stage's work for one tick.
	Update(tc *TickContext) error
}

// Toggler is implemented by stages that can switch themselves off.
// A disabled stage is skipped without checking its required flags.
type Toggler interface {
	Enabled() bool
}

// StageFunc adapts a function into a Stage.
type StageFunc struct {
	StageName   string
	StageGroup  Group
	RequireList []world.Flag
	Fn          func(tc *TickContext) error
}

func (s *StageFunc) Name() string           { return s.StageName }
func (s *StageFunc) Group() Group           { return s.StageGroup }
func (s *StageFunc) Requires() []world.Flag { return s.RequireList }

func (s *StageFunc) Update(tc *TickContext) error {
	if s.Fn == nil {
		return nil
	}
	return s.Fn(tc)
}
