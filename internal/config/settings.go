package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/zhanong/ecsframework/internal/scene"
)

// Settings are runtime knobs read from ECSF_* environment variables.
type Settings struct {
	TickInterval     time.Duration `env:"ECSF_TICK_INTERVAL" envDefault:"16ms"`
	LoadTimeoutTicks int           `env:"ECSF_LOAD_TIMEOUT_TICKS" envDefault:"600"`
	StartScene       string        `env:"ECSF_START_SCENE" envDefault:"MainMenu"`
	Database         string        `env:"ECSF_DB"`
	LogLevel         string        `env:"ECSF_LOG_LEVEL" envDefault:"info"`
}

// LoadSettings reads Settings from the process environment.
func LoadSettings() (Settings, error) {
	return parseSettings(env.Options{})
}

// SettingsFrom reads Settings from vars instead of the process environment.
func SettingsFrom(vars map[string]string) (Settings, error) {
	return parseSettings(env.Options{Environment: vars})
}

func parseSettings(opts env.Options) (Settings, error) {
	var s Settings
	if err := env.ParseWithOptions(&s, opts); err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks ranges and the start scene name.
func (s Settings) Validate() error {
	if s.TickInterval <= 0 {
		return fmt.Errorf("ECSF_TICK_INTERVAL must be positive, got %s", s.TickInterval)
	}
	if s.LoadTimeoutTicks < 0 {
		return fmt.Errorf("ECSF_LOAD_TIMEOUT_TICKS must not be negative, got %d", s.LoadTimeoutTicks)
	}
	if _, err := s.Start(); err != nil {
		return fmt.Errorf("ECSF_START_SCENE: %w", err)
	}
	return nil
}

// Start returns the scene requested after startup. An empty value means
// no start scene.
func (s Settings) Start() (scene.ID, error) {
	if strings.TrimSpace(s.StartScene) == "" {
		return scene.None, nil
	}
	return scene.Parse(s.StartScene)
}

// Level maps LogLevel to a slog level. Unknown names mean info.
func (s Settings) Level() slog.Level {
	switch strings.ToLower(strings.TrimSpace(s.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
