package scene

import (
	"fmt"
	"strings"
)

// ID identifies a scene by ordinal.
type ID uint8

const (
	// None means no scene. It is never loaded.
	None ID = iota
	// MainMenu is the front-end scene.
	MainMenu
	// Level1 is the first playable level.
	Level1
	// Count is the sentinel one past the last concrete scene.
	Count
)

var names = [...]string{
	None:     "None",
	MainMenu: "MainMenu",
	Level1:   "Level1",
	Count:    "Count",
}

// String returns the scene name, used as the manager stamp and in traces.
func (id ID) String() string {
	if int(id) < len(names) {
		return names[id]
	}
	return fmt.Sprintf("ID(%d)", uint8(id))
}

// Valid reports whether id names a concrete, loadable scene.
func (id ID) Valid() bool {
	return id > None && id < Count
}

// Total returns the number of loadable scenes.
func Total() int {
	return int(Count) - 1
}

// All returns every loadable scene in ordinal order.
func All() []ID {
	ids := make([]ID, 0, Total())
	for id := None + 1; id < Count; id++ {
		ids = append(ids, id)
	}
	return ids
}

// Parse resolves a scene name (case-insensitive). Sentinels are rejected.
func Parse(s string) (ID, error) {
	for _, id := range All() {
		if strings.EqualFold(id.String(), strings.TrimSpace(s)) {
			return id, nil
		}
	}
	return None, fmt.Errorf("unknown scene %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so scenes can be written
// by name in YAML scenarios and environment variables.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
