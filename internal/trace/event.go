package trace

// Kind names an event type.
type Kind string

const (
	KindStartup              Kind = "startup"
	KindTeardown             Kind = "teardown"
	KindRequest              Kind = "request"
	KindConfigLoaded         Kind = "config_loaded"
	KindSceneUnloaded        Kind = "scene_unloaded"
	KindLoadIssued           Kind = "load_issued"
	KindLoadSuperseded       Kind = "load_superseded"
	KindLoadCompleted        Kind = "load_completed"
	KindLoadFailed           Kind = "load_failed"
	KindInitCleared          Kind = "init_cleared"
	KindReset                Kind = "reset"
	KindInitRestored         Kind = "init_restored"
	KindPulseRaised          Kind = "pulse_raised"
	KindPulseCleared         Kind = "pulse_cleared"
	KindPulseDropped         Kind = "pulse_dropped"
	KindResourcesInitialized Kind = "resources_initialized"
	KindResourcesDisposed    Kind = "resources_disposed"
	KindManagersInitialized  Kind = "managers_initialized"
	KindManagerReplaced      Kind = "manager_replaced"
	KindManagersStamped      Kind = "managers_stamped"
	KindManagersDestroyed    Kind = "managers_destroyed"
	KindEntitiesDestroyed    Kind = "entities_destroyed"
)

// Event is one recorded step.
type Event struct {
	Seq    int64             `json:"seq"`
	Tick   int64             `json:"tick"`
	Kind   Kind              `json:"kind"`
	Scene  string            `json:"scene,omitempty"`
	Detail map[string]string `json:"detail,omitempty"`
}

// Recorder receives events in emission order.
type Recorder interface {
	Record(ev Event)
}

// Buffer is an in-memory Recorder.
type Buffer struct {
	events []Event
}

// NewBuffer creates an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{events: []Event{}}
}

// Record implements Recorder.
func (b *Buffer) Record(ev Event) {
	b.events = append(b.events, ev)
}

// Events returns the recorded events in order.
func (b *Buffer) Events() []Event {
	return b.events
}

// Kinds returns only the event kinds, in order.
func (b *Buffer) Kinds() []Kind {
	kinds := make([]Kind, len(b.events))
	for i, ev := range b.events {
		kinds[i] = ev.Kind
	}
	return kinds
}

// Count returns how many events of kind were recorded.
func (b *Buffer) Count(kind Kind) int {
	n := 0
	for _, ev := range b.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

// Log stamps events and forwards them to recorders.
//
// A Log belongs to the tick pipeline and is not safe for concurrent use.
// A nil *Log discards everything, so components can be built without one.
type Log struct {
	seq       int64
	tick      int64
	recorders []Recorder
}

// NewLog creates a log forwarding to recorders.
func NewLog(recorders ...Recorder) *Log {
	return &Log{recorders: recorders}
}

// Attach adds a recorder.
func (l *Log) Attach(r Recorder) {
	if l == nil || r == nil {
		return
	}
	l.recorders = append(l.recorders, r)
}

// SetTick sets the tick stamped on subsequent events.
func (l *Log) SetTick(tick int64) {
	if l == nil {
		return
	}
	l.tick = tick
}

// Tick returns the current tick.
func (l *Log) Tick() int64 {
	if l == nil {
		return 0
	}
	return l.tick
}

// Emit records an event. detail may be nil.
func (l *Log) Emit(kind Kind, scene string, detail map[string]string) {
	if l == nil {
		return
	}
	l.seq++
	ev := Event{
		Seq:    l.seq,
		Tick:   l.tick,
		Kind:   kind,
		Scene:  scene,
		Detail: detail,
	}
	for _, r := range l.recorders {
		r.Record(ev)
	}
}
