package event

// Handler receives events of the signal it was subscribed to.
type Handler func(Event)

type subscription struct {
	id int
	fn Handler
}

// Bus dispatches events to handlers keyed by signal. The zero value is ready
// to use. A Bus is not safe for concurrent use.
type Bus struct {
	handlers map[Signal][]subscription
	next     int
}

// NewBus returns an empty bus.
func NewBus() *Bus { return &Bus{} }

// Subscribe registers fn for signal s. The returned func removes it.
func (b *Bus) Subscribe(s Signal, fn Handler) (unsubscribe func()) {
	if b.handlers == nil {
		b.handlers = make(map[Signal][]subscription)
	}
	b.next++
	id := b.next
	b.handlers[s] = append(b.handlers[s], subscription{id: id, fn: fn})
	return func() { b.remove(s, id) }
}

func (b *Bus) remove(s Signal, id int) {
	subs := b.handlers[s]
	for i, sub := range subs {
		if sub.id == id {
			b.handlers[s] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Emit runs the handlers of e's signal. Handlers subscribed while Emit runs
// see the next event, not this one.
func (b *Bus) Emit(e Event) {
	subs := b.handlers[e.Signal()]
	for _, sub := range subs {
		sub.fn(e)
	}
}

// Len returns the number of handlers for s.
func (b *Bus) Len(s Signal) int { return len(b.handlers[s]) }

// On subscribes a handler typed by its event.
func On[E Event](b *Bus, fn func(E)) (unsubscribe func()) {
	var zero E
	return b.Subscribe(zero.Signal(), func(e Event) {
		if ev, ok := e.(E); ok {
			fn(ev)
		}
	})
}
