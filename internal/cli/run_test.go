package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhanong/ecsframework/internal/store"
	"github.com/zhanong/ecsframework/internal/testutil"
	"github.com/zhanong/ecsframework/internal/trace"
)

func executeRun(t *testing.T, opts *RunOptions, args ...string) (string, error) {
	t.Helper()
	if opts.RootOptions == nil {
		opts.RootOptions = &RootOptions{Format: "text"}
	}
	if opts.Env == nil {
		opts.Env = map[string]string{}
	}
	out := &bytes.Buffer{}
	cmd := newRunCommand(opts)
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRun_BootToLevel(t *testing.T) {
	out, err := executeRun(t, &RunOptions{},
		testutil.ContentDir(t), "--ticks", "6", "--interval", "1ms", "--start", "Level1")
	require.NoError(t, err)
	assert.Contains(t, out, "run: completed")
	assert.Contains(t, out, "ticks:     6")
	assert.Contains(t, out, "scene:     Level1")
	assert.Contains(t, out, "resets:    1")
}

func TestRun_JournalsToDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ecsf.db")
	opts := &RunOptions{
		RootOptions: &RootOptions{Format: "json"},
		RunIDs:      trace.NewFixedGenerator("run-1"),
		Env:         map[string]string{"ECSF_DB": dbPath, "ECSF_TICK_INTERVAL": "1ms"},
	}
	out, err := executeRun(t, opts, testutil.ContentDir(t), "--ticks", "4")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		RunID  string     `json:"run_id"`
		Data   RunSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "run-1", resp.RunID)
	assert.Equal(t, "MainMenu", resp.Data.Snapshot.Active)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	run, events, err := st.ReadRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, store.StatusCompleted, run.Status)
	assert.Equal(t, int64(4), run.Ticks)
	assert.Equal(t, "MainMenu", run.StartScene)
	require.NotEmpty(t, events)
	assert.Equal(t, trace.KindTeardown, events[len(events)-1].Kind)

	resets, err := st.ReadEvents(context.Background(), "run-1", trace.KindReset)
	require.NoError(t, err)
	require.Len(t, resets, 1)
	assert.Equal(t, "MainMenu", resets[0].Scene)
}

func TestRun_FlagsOverrideEnvironment(t *testing.T) {
	opts := &RunOptions{
		RootOptions: &RootOptions{Format: "text"},
		Env:         map[string]string{"ECSF_START_SCENE": "Level1", "ECSF_LOAD_TIMEOUT_TICKS": "10"},
	}
	cmd := newRunCommand(opts)
	require.NoError(t, cmd.ParseFlags([]string{"--start", "MainMenu"}))

	settings, err := resolveSettings(opts, cmd)
	require.NoError(t, err)
	assert.Equal(t, "MainMenu", settings.StartScene)
	assert.Equal(t, 10, settings.LoadTimeoutTicks)
	assert.Equal(t, "info", settings.LogLevel)
}

func TestRun_InvalidSettings(t *testing.T) {
	_, err := executeRun(t, &RunOptions{Env: map[string]string{"ECSF_START_SCENE": "Level9"}},
		testutil.ContentDir(t), "--ticks", "1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid settings")
}

func TestRun_InvalidContent(t *testing.T) {
	dir := testutil.WriteContent(t, "package content\n\nscene_asset: {}\n")
	out, err := executeRun(t, &RunOptions{}, dir, "--ticks", "1", "--interval", "1ms")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E201]")
}

func TestRun_MissingContentDir(t *testing.T) {
	_, err := executeRun(t, &RunOptions{}, filepath.Join(t.TempDir(), "missing"), "--ticks", "1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E005")
}
