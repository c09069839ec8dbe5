package manager

import "sort"

// Events is a topic-based notifier rebuilt for every scene, so scene code
// never sees subscriptions from the previous scene.
type Events struct {
	Stamped

	handlers  map[string][]func(payload string)
	destroyed bool
	onCreated func(*Events)
}

// NewEvents returns a factory for Events. onCreated, if set, runs for every
// instance the registry installs, including replacements.
func NewEvents(onCreated func(*Events)) func() Manager {
	return func() Manager {
		return newEvents(onCreated)
	}
}

func newEvents(onCreated func(*Events)) *Events {
	return &Events{handlers: make(map[string][]func(string)), onCreated: onCreated}
}

func (e *Events) Initialize() {
	if e.onCreated != nil {
		e.onCreated(e)
	}
}

func (e *Events) OnNewScene() Manager {
	next := newEvents(e.onCreated)
	next.Initialize()
	return next
}

func (e *Events) OnDestroy() {
	e.handlers = nil
	e.destroyed = true
}

// Destroyed reports whether OnDestroy ran.
func (e *Events) Destroyed() bool { return e.destroyed }

// Subscribe adds a handler for topic.
func (e *Events) Subscribe(topic string, fn func(payload string)) {
	if e.destroyed {
		return
	}
	e.handlers[topic] = append(e.handlers[topic], fn)
}

// Publish calls topic handlers in subscription order and returns how many ran.
func (e *Events) Publish(topic, payload string) int {
	hs := e.handlers[topic]
	for _, fn := range hs {
		fn(payload)
	}
	return len(hs)
}

// Topics returns subscribed topics, sorted.
func (e *Events) Topics() []string {
	out := make([]string, 0, len(e.handlers))
	for t := range e.handlers {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
