package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/zhanong/ecsframework/internal/app"
	"github.com/zhanong/ecsframework/internal/config"
	"github.com/zhanong/ecsframework/internal/loader"
	"github.com/zhanong/ecsframework/internal/scene"
	"github.com/zhanong/ecsframework/internal/store"
	"github.com/zhanong/ecsframework/internal/testutil"
	"github.com/zhanong/ecsframework/internal/trace"
)

// Harness executes one scenario against a real App.
type Harness struct {
	app     *app.App
	store   *store.Store
	journal *store.Journal
	buffer  *trace.Buffer
	runID   string
	logger  *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation. The run
// id is fixed so repeated runs produce byte-identical journals.
//
// Execution flow:
// 1. Load the content bundle and build the App
// 2. Begin a journaled run
// 3. Start up and execute the steps
// 4. Snapshot, check the journal against the trace, evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	bundle, err := config.Load(scenario.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to load content: %w", err)
	}

	assets, err := newScenarioLoader(scenario.Loads)
	if err != nil {
		return nil, err
	}

	var start scene.ID
	if scenario.StartScene != "" {
		if start, err = scene.Parse(scenario.StartScene); err != nil {
			return nil, fmt.Errorf("start scene: %w", err)
		}
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	runID := testutil.NewFixedRunIDGenerator(scenario.RunID).Generate()
	if err := st.BeginRun(ctx, store.Run{
		ID:         runID,
		ConfigDir:  scenario.Content,
		StartScene: start.String(),
	}); err != nil {
		return nil, err
	}

	// Suppress logs in scenarios
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := &Harness{
		store:   st,
		journal: store.NewJournal(ctx, st, runID, logger),
		buffer:  trace.NewBuffer(),
		runID:   runID,
		logger:  logger,
	}
	h.app = app.New(bundle,
		app.WithLogger(logger),
		app.WithRecorder(h.buffer),
		app.WithRecorder(h.journal),
		app.WithAssetLoader(assets),
		app.WithLoadTimeout(scenario.LoadTimeoutTicks),
		app.WithStartScene(start))

	result := NewResult()
	result.RunID = runID

	if err := h.app.Startup(); err != nil {
		return nil, fmt.Errorf("startup: %w", err)
	}
	if err := h.executeSteps(ctx, scenario.Steps); err != nil {
		return nil, fmt.Errorf("failed to execute steps: %w", err)
	}

	result.State = h.app.Snapshot()
	result.Trace = h.buffer.Events()

	if err := h.finish(ctx, result); err != nil {
		return nil, err
	}

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}
	return result, nil
}

// executeSteps runs the scenario steps in order.
func (h *Harness) executeSteps(ctx context.Context, steps []Step) error {
	for i, step := range steps {
		switch {
		case step.Request != "":
			id, err := scene.Parse(step.Request)
			if err != nil {
				return fmt.Errorf("step %d: %w", i, err)
			}
			if err := h.app.Request(id); err != nil {
				return fmt.Errorf("step %d: request %s: %w", i, id, err)
			}
		case step.Tick > 0:
			for n := 0; n < step.Tick; n++ {
				if err := h.app.Tick(ctx); err != nil {
					return fmt.Errorf("step %d: tick: %w", i, err)
				}
			}
		case step.Teardown:
			if err := h.app.Teardown(); err != nil {
				return fmt.Errorf("step %d: teardown: %w", i, err)
			}
		}

		h.logger.Info("scenario step completed", "step", i, "tick", h.app.Runner().Clock().Current())
	}
	return nil
}

// finish closes the journaled run and checks that it recorded exactly the
// buffered trace.
func (h *Harness) finish(ctx context.Context, result *Result) error {
	if err := h.journal.Err(); err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	if err := h.store.FinishRun(ctx, h.runID, store.StatusCompleted, result.State.Tick, nil); err != nil {
		return err
	}

	_, journaled, err := h.store.ReadRun(ctx, h.runID)
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}
	if len(journaled) != len(result.Trace) {
		result.AddError(fmt.Sprintf("journal has %d events, trace has %d", len(journaled), len(result.Trace)))
		return nil
	}
	for i := range journaled {
		if journaled[i].Seq != result.Trace[i].Seq || journaled[i].Kind != result.Trace[i].Kind {
			result.AddError(fmt.Sprintf("journal event %d is %s#%d, trace has %s#%d",
				i, journaled[i].Kind, journaled[i].Seq, result.Trace[i].Kind, result.Trace[i].Seq))
			return nil
		}
	}
	return nil
}

// scenarioLoader routes scripted scenes to a ScriptedLoader and everything
// else to the simulated loader.
type scenarioLoader struct {
	simulated *loader.SimulatedLoader
	scripted  *testutil.ScriptedLoader
}

func newScenarioLoader(loads map[string]LoadScript) (*scenarioLoader, error) {
	scripts := make(map[scene.ID]testutil.Script, len(loads))
	for name, ls := range loads {
		id, err := scene.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("loads: %w", err)
		}
		script := testutil.Script{Polls: ls.Polls, Stall: ls.Stall}
		if ls.IssueError != "" {
			script.IssueErr = errors.New(ls.IssueError)
		}
		if ls.PollError != "" {
			script.PollErr = errors.New(ls.PollError)
		}
		scripts[id] = script
	}
	return &scenarioLoader{
		simulated: loader.NewSimulatedLoader(),
		scripted:  testutil.NewScriptedLoader(scripts),
	}, nil
}

func (l *scenarioLoader) Load(ctx context.Context, asset scene.Asset) (loader.Handle, error) {
	if _, ok := l.scripted.Scripts[asset.ID]; ok {
		return l.scripted.Load(ctx, asset)
	}
	return l.simulated.Load(ctx, asset)
}
