package world

// Flag is a readiness marker.
type Flag int

const (
	// FlagConfigLoaded is added once by the config gate and never removed.
	FlagConfigLoaded Flag = iota + 1
	// FlagSceneLoaded is present while a scene is loaded and not being replaced.
	FlagSceneLoaded
	// FlagInitCompleted is present while the centralized records are consistent
	// with the active scene.
	FlagInitCompleted
	// FlagResetPulse is enabled for exactly one tick after a reset completes.
	FlagResetPulse
	// FlagSceneLoadFailed is present while the scene loader is in its failed state.
	FlagSceneLoadFailed
)

func (f Flag) String() string {
	switch f {
	case FlagConfigLoaded:
		return "config_loaded"
	case FlagSceneLoaded:
		return "scene_loaded"
	case FlagInitCompleted:
		return "init_completed"
	case FlagResetPulse:
		return "reset_pulse"
	case FlagSceneLoadFailed:
		return "scene_load_failed"
	default:
		return "unknown"
	}
}

// ParseFlag resolves a flag by its String form.
func ParseFlag(s string) (Flag, bool) {
	for f := FlagConfigLoaded; f <= FlagSceneLoadFailed; f++ {
		if f.String() == s {
			return f, true
		}
	}
	return 0, false
}

type flagState struct {
	enabled bool
}

// AddFlag makes f present and enabled.
func (w *World) AddFlag(f Flag) {
	w.flags[f] = flagState{enabled: true}
}

// RemoveFlag makes f absent. Removing an absent flag is a no-op.
func (w *World) RemoveFlag(f Flag) {
	delete(w.flags, f)
}

// SetFlagEnabled toggles the enabled bit of f, adding it first if absent.
func (w *World) SetFlagEnabled(f Flag, enabled bool) {
	w.flags[f] = flagState{enabled: enabled}
}

// HasFlag reports whether f is present, regardless of its enabled bit.
func (w *World) HasFlag(f Flag) bool {
	_, ok := w.flags[f]
	return ok
}

// Active reports whether f is present and enabled.
func (w *World) Active(f Flag) bool {
	st, ok := w.flags[f]
	return ok && st.enabled
}

// ActiveAll reports whether every flag in fs is active.
func (w *World) ActiveAll(fs ...Flag) bool {
	for _, f := range fs {
		if !w.Active(f) {
			return false
		}
	}
	return true
}
