package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhanong/ecsframework/internal/config"
	"github.com/zhanong/ecsframework/internal/scene"
)

// SceneSummary describes one validated scene.
type SceneSummary struct {
	Scene           string         `json:"scene"`
	Level           bool           `json:"level"`
	LatencyTicks    int            `json:"latency_ticks"`
	Content         []string       `json:"content"`
	MaxEntities     int            `json:"max_entities"`
	DestroyCapacity int            `json:"destroy_capacity"`
	Budget          map[string]int `json:"budget,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool           `json:"valid"`
	Files   int            `json:"files"`
	Budgets []string       `json:"budgets"`
	Scenes  []SceneSummary `json:"scenes"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config-dir>",
		Short: "Validate content without running",
		Long: `Load a CUE content directory and check it the way startup does.

Checks that scene_config and scene_asset cover every scene exactly once with
matching ids, that budget expressions compile, and that every budget
evaluates to a non-negative integer for every scene.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, configDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	result, err := ValidateConfigDir(configDir)
	if err != nil {
		var le *config.LoadError
		if !errors.As(err, &le) {
			_ = formatter.Error(config.ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitFailure, "validation failed", err)
		}
		_ = formatter.Error(le.Code, le.Message, le.Path)
		if !formatter.JSON() && le.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "  at %s:%d\n", le.Pos.Filename(), le.Pos.Line())
		}
		// A missing or unreadable directory is a command error; bad content is a failure.
		switch le.Code {
		case config.ErrCodeNotFound, config.ErrCodeScanError:
			return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", le.Code, le.Message))
		default:
			return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", le.Code, le.Message))
		}
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", result.Files, configDir)

	if formatter.JSON() {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Content valid: %d scene(s), %d budget(s)\n", len(result.Scenes), len(result.Budgets))
	for _, s := range result.Scenes {
		kind := "menu"
		if s.Level {
			kind = "level"
		}
		fmt.Fprintf(formatter.Writer, "  %-10s %-5s latency=%d max_entities=%d destroy_capacity=%d content=[%s]\n",
			s.Scene, kind, s.LatencyTicks, s.MaxEntities, s.DestroyCapacity, strings.Join(s.Content, " "))
		for _, name := range result.Budgets {
			fmt.Fprintf(formatter.Writer, "    %s = %d\n", name, s.Budget[name])
		}
	}
	return nil
}

// ValidateConfigDir loads configDir and evaluates every scene config.
// This is a helper function for external callers.
func ValidateConfigDir(configDir string) (*ValidationResult, error) {
	bundle, err := config.Load(configDir)
	if err != nil {
		return nil, err
	}
	table, err := bundle.SceneConfigs()
	if err != nil {
		return nil, err
	}

	result := &ValidationResult{
		Valid:   true,
		Files:   bundle.FileCount,
		Budgets: bundle.Budget.Names(),
		Scenes:  make([]SceneSummary, 0, scene.Total()),
	}
	if result.Budgets == nil {
		result.Budgets = []string{}
	}
	for _, id := range scene.All() {
		asset, err := bundle.Catalog.Asset(id)
		if err != nil {
			return nil, err
		}
		cfg, err := table.For(id)
		if err != nil {
			return nil, err
		}
		result.Scenes = append(result.Scenes, SceneSummary{
			Scene:           id.String(),
			Level:           asset.Level,
			LatencyTicks:    asset.LatencyTicks,
			Content:         asset.Content,
			MaxEntities:     cfg.MaxEntities,
			DestroyCapacity: cfg.DestroyCapacity,
			Budget:          cfg.Budget,
		})
	}
	return result, nil
}
