package testutil

import (
	"fmt"

	"github.com/zhanong/ecsframework/internal/manager"
)

// CallLog collects manager lifecycle calls in order.
type CallLog struct {
	Calls []string
}

func (l *CallLog) add(format string, args ...any) {
	l.Calls = append(l.Calls, fmt.Sprintf(format, args...))
}

// RecordingManager logs its lifecycle. When Replace is set, every new
// scene returns a fresh instance with the next generation number.
type RecordingManager struct {
	manager.Stamped

	Name       string
	Generation int
	Replace    bool
	log        *CallLog
}

// NewRecordingManager returns a factory for a RecordingManager named name.
func NewRecordingManager(log *CallLog, name string, replace bool) func() manager.Manager {
	return func() manager.Manager {
		return &RecordingManager{Name: name, Replace: replace, log: log}
	}
}

func (m *RecordingManager) Initialize() {
	m.log.add("%s#%d.initialize", m.Name, m.Generation)
}

func (m *RecordingManager) OnNewScene() manager.Manager {
	m.log.add("%s#%d.on_new_scene", m.Name, m.Generation)
	if !m.Replace {
		return m
	}
	return &RecordingManager{Name: m.Name, Generation: m.Generation + 1, Replace: true, log: m.log}
}

func (m *RecordingManager) OnDestroy() {
	m.log.add("%s#%d.on_destroy", m.Name, m.Generation)
}
