package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhanong/ecsframework/internal/testutil"
)

func executeValidate(t *testing.T, format, dir string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{dir})
	err := cmd.Execute()
	return buf.String(), err
}

func TestValidate_Valid(t *testing.T) {
	out, err := executeValidate(t, "text", testutil.ContentDir(t))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Content valid: 2 scene(s), 2 budget(s)")
	assert.Contains(t, out, "scene_slots = 64")
	assert.Contains(t, out, "destroy_queue = 4")
}

func TestValidate_JSON(t *testing.T) {
	out, err := executeValidate(t, "json", testutil.ContentDir(t))
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, []string{"destroy_queue", "scene_slots"}, resp.Data.Budgets)
	require.Len(t, resp.Data.Scenes, 2)
	assert.Equal(t, "MainMenu", resp.Data.Scenes[0].Scene)
	assert.Equal(t, 4, resp.Data.Scenes[0].Budget["scene_slots"])
	assert.Equal(t, "Level1", resp.Data.Scenes[1].Scene)
	assert.True(t, resp.Data.Scenes[1].Level)
	assert.Equal(t, 64, resp.Data.Scenes[1].Budget["destroy_queue"])
}

func TestValidate_MissingDirectory(t *testing.T) {
	_, err := executeValidate(t, "text", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E005")
}

func TestValidate_CountMismatch(t *testing.T) {
	dir := testutil.WriteContent(t, `package content

scene_config: {
	MainMenu: {id: 1, max_entities: 16, destroy_capacity: 8}
}

scene_asset: {
	MainMenu: {id: 1, level: false, latency_ticks: 1, content: []}
	Level1: {id: 2, level: true, latency_ticks: 3, content: []}
}
`)
	out, err := executeValidate(t, "json", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E202", resp.Error.Code)
}

func TestValidate_BadBudget(t *testing.T) {
	dir := testutil.WriteContent(t, `package content

scene_config: {
	MainMenu: {id: 1, max_entities: 16, destroy_capacity: 8}
	Level1: {id: 2, max_entities: 256, destroy_capacity: 64}
}

scene_asset: {
	MainMenu: {id: 1, level: false, latency_ticks: 1, content: []}
	Level1: {id: 2, level: true, latency_ticks: 3, content: []}
}

budget: {
	scene_slots: "config.max_entities +"
}
`)
	out, err := executeValidate(t, "text", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E205]")
}

func TestValidate_NegativeMaxEntities(t *testing.T) {
	dir := testutil.WriteContent(t, `package content

scene_config: {
	MainMenu: {id: 1, max_entities: -16, destroy_capacity: 8}
	Level1: {id: 2, max_entities: 256, destroy_capacity: 64}
}

scene_asset: {
	MainMenu: {id: 1, level: false, latency_ticks: 1, content: []}
	Level1: {id: 2, level: true, latency_ticks: 3, content: []}
}
`)
	out, err := executeValidate(t, "text", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E206]")
	assert.Contains(t, out, "max_entities")
}
