package manager

// Manager is a long-lived service with a scene lifecycle. Implementations
// should be pointers: SetStamp must persist, and the registry tells a kept
// manager from a replacement by identity.
type Manager interface {
	Initialize()
	// OnNewScene returns the manager to use for the new scene: the receiver
	// to keep it, or a fresh instance to replace it.
	OnNewScene() Manager
	OnDestroy()
	Stamp() string
	SetStamp(stamp string)
}

// Stamped implements the stamp half of Manager for embedding.
type Stamped struct {
	stamp string
}

func (s *Stamped) Stamp() string         { return s.stamp }
func (s *Stamped) SetStamp(stamp string) { s.stamp = stamp }

// Slot names a manager factory.
type Slot struct {
	Name string
	New  func() Manager
}
