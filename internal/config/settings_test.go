package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhanong/ecsframework/internal/scene"
)

func TestSettingsDefaults(t *testing.T) {
	s, err := SettingsFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, 16*time.Millisecond, s.TickInterval)
	assert.Equal(t, 600, s.LoadTimeoutTicks)
	assert.Equal(t, "", s.Database)
	assert.Equal(t, slog.LevelInfo, s.Level())

	start, err := s.Start()
	require.NoError(t, err)
	assert.Equal(t, scene.MainMenu, start)
}

func TestSettingsOverrides(t *testing.T) {
	s, err := SettingsFrom(map[string]string{
		"ECSF_TICK_INTERVAL":      "5ms",
		"ECSF_LOAD_TIMEOUT_TICKS": "12",
		"ECSF_START_SCENE":        "level1",
		"ECSF_DB":                 "/tmp/trace.db",
		"ECSF_LOG_LEVEL":          "DEBUG",
	})
	require.NoError(t, err)

	assert.Equal(t, 5*time.Millisecond, s.TickInterval)
	assert.Equal(t, 12, s.LoadTimeoutTicks)
	assert.Equal(t, "/tmp/trace.db", s.Database)
	assert.Equal(t, slog.LevelDebug, s.Level())

	start, err := s.Start()
	require.NoError(t, err)
	assert.Equal(t, scene.Level1, start)
}

func TestSettingsEmptyStartScene(t *testing.T) {
	s, err := SettingsFrom(map[string]string{"ECSF_START_SCENE": " "})
	require.NoError(t, err)

	start, err := s.Start()
	require.NoError(t, err)
	assert.Equal(t, scene.None, start)
}

func TestSettingsRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want string
	}{
		{"unknown scene", map[string]string{"ECSF_START_SCENE": "Count"}, "ECSF_START_SCENE"},
		{"zero interval", map[string]string{"ECSF_TICK_INTERVAL": "0s"}, "ECSF_TICK_INTERVAL"},
		{"negative timeout", map[string]string{"ECSF_LOAD_TIMEOUT_TICKS": "-1"}, "ECSF_LOAD_TIMEOUT_TICKS"},
		{"unparseable interval", map[string]string{"ECSF_TICK_INTERVAL": "soon"}, "parse settings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SettingsFrom(tt.vars)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
