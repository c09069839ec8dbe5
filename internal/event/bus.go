package event

// Handler reacts to a dispatched request.
type Handler func(Request)

type subscriber struct {
	name    string
	handler Handler
}

// Bus delivers requests to subscribers in registration order.
// Subscribe during wiring, before the first tick.
type Bus struct {
	subs []subscriber
}

// NewBus creates a bus with no subscribers.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe appends a named handler. The name shows up in Subscribers and
// exists so the wiring order can be asserted in tests.
func (b *Bus) Subscribe(name string, h Handler) {
	b.subs = append(b.subs, subscriber{name: name, handler: h})
}

// Publish calls every handler with r, in registration order.
func (b *Bus) Publish(r Request) {
	for _, s := range b.subs {
		s.handler(r)
	}
}

// Subscribers returns subscriber names in delivery order.
func (b *Bus) Subscribers() []string {
	names := make([]string, len(b.subs))
	for i, s := range b.subs {
		names[i] = s.name
	}
	return names
}
