// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugkit Contributors

package plugin

// Handler is one tagged event-handler entry point: a dispatch key, the
// function invoked for events carrying that key, and the
// receives-cancelled flag. Handlers are produced by On, which derives the
// key and wraps the typed function; hand-built Handler values are rejected
// at registration if any field is missing.
type Handler struct {
	// Name identifies the entry point in registration errors and
	// dispatch-fault logs.
	Name string

	// Event is the dispatch key the handler is bound to.
	Event EventType

	// ReceiveCancelled opts the handler into receiving events that an
	// earlier handler cancelled.
	ReceiveCancelled bool

	// Func receives the event. Only events matching the handler's
	// declared variant are delivered.
	Func func(Event)
}

// HandlerOption customizes a handler produced by On.
type HandlerOption func(*Handler)

// ReceiveCancelled opts the handler into cancelled events.
func ReceiveCancelled() HandlerOption {
	return func(h *Handler) {
		h.ReceiveCancelled = true
	}
}

// Listener is an ordered collection of handler entry points owned by one
// plugin. Handler order is declaration order: it is preserved through
// registration and is the dispatch order within the listener.
type Listener struct {
	label    string
	handlers []Handler
}

// NewListener creates a listener. The label identifies the listener in
// registration errors.
func NewListener(label string) *Listener {
	return &Listener{label: label}
}

// Label returns the listener's label.
func (l *Listener) Label() string {
	return l.label
}

// Handlers returns the declared handlers in declaration order.
func (l *Listener) Handlers() []Handler {
	return l.handlers
}

// On declares a handler for the concrete event variant E and appends it to
// the listener. The dispatch key is taken from the prototype, and the
// typed function is checked against the variant at compile time; events of
// any other variant never reach fn.
//
//	lst := plugin.NewListener("chat")
//	plugin.On(lst, "onSay", &SayEvent{}, func(e *SayEvent) { ... })
//	plugin.On(lst, "audit", &SayEvent{}, audit.Record, plugin.ReceiveCancelled())
func On[E Event](l *Listener, name string, proto E, fn func(E), opts ...HandlerOption) *Listener {
	h := Handler{
		Name:  name,
		Event: proto.Type(),
	}
	if fn != nil {
		h.Func = func(ev Event) {
			if e, ok := ev.(E); ok {
				fn(e)
			}
		}
	}
	for _, opt := range opts {
		opt(&h)
	}
	l.handlers = append(l.handlers, h)
	return l
}
