package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhanong/ecsframework/internal/store"
	"github.com/zhanong/ecsframework/internal/trace"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string
	Kind     string // optional - filter to one event kind
}

// RunListing is one row of the run list.
type RunListing struct {
	ID         string `json:"id"`
	ConfigDir  string `json:"config_dir"`
	StartScene string `json:"start_scene"`
	Status     string `json:"status"`
	Ticks      int64  `json:"ticks"`
	Error      string `json:"error,omitempty"`
}

// TraceResult holds one run's journal.
type TraceResult struct {
	Run      RunListing    `json:"run"`
	Timeline []trace.Event `json:"timeline"`
	Stats    TraceStats    `json:"stats"`
}

// TraceStats holds summary statistics for a run.
type TraceStats struct {
	TotalEvents int            `json:"total_events"`
	Resets      int            `json:"resets"`
	LoadsFailed int            `json:"loads_failed"`
	ByKind      map[string]int `json:"by_kind"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect journaled runs",
		Long: `Inspect runs journaled by "ecsf run --db".

Without --run, lists every run (oldest first). With --run, prints the run's
events in emission order, optionally filtered by --kind.

Examples:
  ecsf trace --db ./ecsf.db
  ecsf trace --db ./ecsf.db --run 0190b6c4-...
  ecsf trace --db ./ecsf.db --run 0190b6c4-... --kind reset --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id to show")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "filter to one event kind")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Opening creates the file, so a typo would silently yield an empty journal.
	if _, err := os.Stat(opts.Database); err != nil {
		return WrapExitError(ExitCommandError, "database not found", err)
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if opts.RunID == "" {
		return listRuns(ctx, st, formatter)
	}
	return showRun(ctx, st, opts, formatter)
}

func listRuns(ctx context.Context, st *store.Store, f *OutputFormatter) error {
	runs, err := st.ListRuns(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	listing := make([]RunListing, len(runs))
	for i, r := range runs {
		listing[i] = toListing(r)
	}

	if f.JSON() {
		return f.Success(listing)
	}
	if len(listing) == 0 {
		fmt.Fprintln(f.Writer, "No runs journaled.")
		return nil
	}
	for _, r := range listing {
		fmt.Fprintf(f.Writer, "%s  %-9s  ticks=%-6d start=%-8s %s\n", r.ID, r.Status, r.Ticks, r.StartScene, r.ConfigDir)
		if r.Error != "" {
			fmt.Fprintf(f.Writer, "    error: %s\n", r.Error)
		}
	}
	return nil
}

func showRun(ctx context.Context, st *store.Store, opts *TraceOptions, f *OutputFormatter) error {
	run, events, err := st.ReadRun(ctx, opts.RunID)
	if errors.Is(err, store.ErrRunNotFound) {
		_ = f.Error("E_RUN_NOT_FOUND", fmt.Sprintf("run not found: %s", opts.RunID), nil)
		return WrapExitError(ExitFailure, "run not found", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	stats := buildStats(events)

	timeline := events
	if opts.Kind != "" {
		if timeline, err = st.ReadEvents(ctx, opts.RunID, trace.Kind(opts.Kind)); err != nil {
			return WrapExitError(ExitCommandError, "failed to read events", err)
		}
	}

	result := TraceResult{Run: toListing(run), Timeline: timeline, Stats: stats}
	if f.JSON() {
		return f.Respond(CLIResponse{Status: "ok", Data: result, RunID: run.ID})
	}

	fmt.Fprintf(f.Writer, "Run %s (%s, %d ticks)\n", run.ID, run.Status, run.Ticks)
	fmt.Fprintf(f.Writer, "  config: %s  start: %s\n", run.ConfigDir, run.StartScene)
	if run.Error != "" {
		fmt.Fprintf(f.Writer, "  error: %s\n", run.Error)
	}
	fmt.Fprintln(f.Writer)
	for _, ev := range timeline {
		fmt.Fprintf(f.Writer, "%5d  t%-4d %-22s %-9s %s\n", ev.Seq, ev.Tick, ev.Kind, ev.Scene, formatEventDetail(ev.Detail))
	}
	fmt.Fprintln(f.Writer)
	fmt.Fprintf(f.Writer, "%d events, %d resets, %d failed loads\n", stats.TotalEvents, stats.Resets, stats.LoadsFailed)
	return nil
}

func toListing(r store.Run) RunListing {
	return RunListing{
		ID:         r.ID,
		ConfigDir:  r.ConfigDir,
		StartScene: r.StartScene,
		Status:     r.Status,
		Ticks:      r.Ticks,
		Error:      r.Error,
	}
}

func buildStats(events []trace.Event) TraceStats {
	stats := TraceStats{TotalEvents: len(events), ByKind: map[string]int{}}
	for _, ev := range events {
		stats.ByKind[string(ev.Kind)]++
		switch ev.Kind {
		case trace.KindReset:
			stats.Resets++
		case trace.KindLoadFailed:
			stats.LoadsFailed++
		}
	}
	return stats
}

func formatEventDetail(detail map[string]string) string {
	if len(detail) == 0 {
		return ""
	}
	keys := make([]string, 0, len(detail))
	for k := range detail {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + detail[k]
	}
	return strings.Join(parts, " ")
}
