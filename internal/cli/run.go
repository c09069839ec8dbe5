package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zhanong/ecsframework/internal/app"
	"github.com/zhanong/ecsframework/internal/config"
	"github.com/zhanong/ecsframework/internal/store"
	"github.com/zhanong/ecsframework/internal/trace"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database    string
	Ticks       int64
	Interval    time.Duration
	StartScene  string
	LoadTimeout int

	// RunIDs allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs trace.RunIDGenerator

	// Env overrides the process environment for settings (for testing).
	Env map[string]string
}

// RunSummary is the run command's result.
type RunSummary struct {
	RunID    string       `json:"run_id,omitempty"`
	Status   string       `json:"status"`
	Snapshot app.Snapshot `json:"snapshot"`
	Error    string       `json:"error,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <config-dir>",
		Short: "Run the orchestrator over a content directory",
		Long: `Load CUE content and tick the orchestrator.

Settings come from ECSF_* environment variables; flags override them.
With --db (or ECSF_DB) every trace event is journaled into SQLite.
The run stops after --ticks ticks, on Ctrl-C, or when a stage fails.

Example:
  ecsf run ./content --ticks 120
  ecsf run ./content --db ./ecsf.db --start Level1 --interval 1ms`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrchestrator(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (default $ECSF_DB)")
	cmd.Flags().Int64Var(&opts.Ticks, "ticks", 0, "stop after this many ticks (0 runs until interrupted)")
	cmd.Flags().DurationVar(&opts.Interval, "interval", 0, "tick interval (default $ECSF_TICK_INTERVAL)")
	cmd.Flags().StringVar(&opts.StartScene, "start", "", "scene requested after startup (default $ECSF_START_SCENE)")
	cmd.Flags().IntVar(&opts.LoadTimeout, "load-timeout", 0, "fail loads pending after this many polls (default $ECSF_LOAD_TIMEOUT_TICKS)")

	return cmd
}

// resolveSettings reads the environment and applies flags the user set.
func resolveSettings(opts *RunOptions, cmd *cobra.Command) (config.Settings, error) {
	var (
		settings config.Settings
		err      error
	)
	if opts.Env != nil {
		settings, err = config.SettingsFrom(opts.Env)
	} else {
		settings, err = config.LoadSettings()
	}
	if err != nil {
		return config.Settings{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		settings.Database = opts.Database
	}
	if flags.Changed("interval") {
		settings.TickInterval = opts.Interval
	}
	if flags.Changed("start") {
		settings.StartScene = opts.StartScene
	}
	if flags.Changed("load-timeout") {
		settings.LoadTimeoutTicks = opts.LoadTimeout
	}
	if opts.Verbose {
		settings.LogLevel = "debug"
	}
	if err := settings.Validate(); err != nil {
		return config.Settings{}, err
	}
	return settings, nil
}

func runOrchestrator(opts *RunOptions, configDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	settings, err := resolveSettings(opts, cmd)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid settings", err)
	}
	start, _ := settings.Start()

	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: settings.Level(),
	})
	logger := slog.New(handler)

	logger.Info("loading content", "dir", configDir)
	bundle, err := config.Load(configDir)
	if err != nil {
		var le *config.LoadError
		if errors.As(err, &le) && le.Code != config.ErrCodeNotFound && le.Code != config.ErrCodeScanError {
			_ = formatter.Error(le.Code, le.Message, le.Path)
			return WrapExitError(ExitFailure, "invalid content", err)
		}
		return WrapExitError(ExitCommandError, "failed to load content", err)
	}
	logger.Info("content loaded", "files", bundle.FileCount, "budgets", len(bundle.Budget.Names()))

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	appOpts := []app.Option{
		app.WithLogger(logger),
		app.WithLoadTimeout(settings.LoadTimeoutTicks),
		app.WithStartScene(start),
	}

	var (
		st      *store.Store
		journal *store.Journal
		runID   string
	)
	if settings.Database != "" {
		logger.Info("opening journal", "path", settings.Database)
		st, err = store.Open(settings.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()

		ids := opts.RunIDs
		if ids == nil {
			ids = trace.UUIDv7Generator{}
		}
		runID = ids.Generate()
		if err := st.BeginRun(ctx, store.Run{ID: runID, ConfigDir: configDir, StartScene: start.String()}); err != nil {
			return WrapExitError(ExitCommandError, "failed to begin run", err)
		}
		// Teardown events are journaled after an interrupt cancels ctx.
		journal = store.NewJournal(context.WithoutCancel(ctx), st, runID, logger)
		appOpts = append(appOpts, app.WithRecorder(journal))
	}

	a := app.New(bundle, appOpts...)
	if err := a.Startup(); err != nil {
		return WrapExitError(ExitFailure, "startup failed", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	logger.Info("orchestrator starting",
		"start_scene", start.String(),
		"interval", settings.TickInterval,
		"ticks", opts.Ticks)
	runErr := a.Run(ctx, settings.TickInterval, opts.Ticks)
	if errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded) {
		runErr = nil
	}

	summary := RunSummary{RunID: runID, Status: store.StatusCompleted, Snapshot: a.Snapshot()}
	if runErr != nil {
		summary.Status = store.StatusFailed
		summary.Error = runErr.Error()
	}

	if err := a.Teardown(); err != nil {
		logger.Error("teardown failed", "error", err)
		if runErr == nil {
			runErr = err
		}
	}

	if st != nil {
		if err := journal.Err(); err != nil && runErr == nil {
			runErr = fmt.Errorf("journal: %w", err)
			summary.Status = store.StatusFailed
			summary.Error = runErr.Error()
		}
		if err := st.FinishRun(context.WithoutCancel(ctx), runID, summary.Status, summary.Snapshot.Tick, runErr); err != nil {
			logger.Error("failed to finish run", "run_id", runID, "error", err)
		}
	}

	logger.Info("orchestrator stopped", "ticks", summary.Snapshot.Tick, "status", summary.Status)

	if formatter.JSON() {
		resp := CLIResponse{Status: "ok", Data: summary, RunID: runID}
		if runErr != nil {
			resp.Status = "error"
			resp.Error = &CLIError{Code: "E_RUN_FAILED", Message: runErr.Error()}
		}
		if err := formatter.Respond(resp); err != nil {
			return err
		}
	} else {
		printRunSummary(formatter, summary)
	}

	if runErr != nil {
		return WrapExitError(ExitFailure, "run failed", runErr)
	}
	return nil
}

func printRunSummary(f *OutputFormatter, s RunSummary) {
	if s.RunID != "" {
		f.Textf("run %s: %s", s.RunID, s.Status)
	} else {
		f.Textf("run: %s", s.Status)
	}
	snap := s.Snapshot
	f.Textf("  ticks:     %d", snap.Tick)
	f.Textf("  scene:     %s", snap.Active)
	f.Textf("  loader:    %s", snap.Loader)
	f.Textf("  sequencer: %s", snap.Sequencer)
	f.Textf("  resets:    %d", snap.Resets)
	f.Textf("  entities:  %d", snap.Entities)
	if s.Error != "" {
		f.Textf("  error:     %s", s.Error)
	}
}
