// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugkit Contributors

// Package bus implements the typed event channel between host and
// plugins: ordered handler bindings per event-type key and exact-type
// dispatch.
package bus

import (
	"fmt"
	"sync"

	"github.com/samber/oops"

	"github.com/plugkit/plugkit/pkg/plugin"
)

// binding associates one handler entry point with the plugin that owns it.
type binding struct {
	owner    plugin.Plugin
	listener string
	handler  plugin.Handler
}

// FaultReporter receives handler faults raised during dispatch. The owner
// name falls back to the implementation's type when the plugin carries no
// resolved name.
type FaultReporter func(owner plugin.Plugin, handlerName string, err error)

// Bus maps event-type keys to ordered handler bindings.
//
// Insertion order is dispatch order and is preserved across registration
// calls. Dispatch matches the event's exact type key only; there is no
// supertype fan-out (see plugin.EventType). The bus is safe for
// concurrent reads; mutations are serialized by the manager.
type Bus struct {
	mu       sync.RWMutex
	bindings map[plugin.EventType][]binding
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{
		bindings: make(map[plugin.EventType][]binding),
	}
}

// Register appends the listener's handlers, in declaration order, to the
// lists for their event-type keys.
//
// Registration is atomic: every handler is validated before any binding
// commits, so a malformed handler mid-scan leaves the bus untouched.
// Validation failures carry the INVALID_HANDLER code and name the
// offending entry point.
func (b *Bus) Register(owner plugin.Plugin, l *plugin.Listener) error {
	handlers := l.Handlers()
	for i, h := range handlers {
		if h.Name == "" {
			return oops.Code("INVALID_HANDLER").With("listener", l.Label()).With("index", i).
				New("handler has no name")
		}
		if h.Event == "" {
			return oops.Code("INVALID_HANDLER").With("listener", l.Label()).With("handler", h.Name).
				New("handler declares no event type")
		}
		if h.Func == nil {
			return oops.Code("INVALID_HANDLER").With("listener", l.Label()).With("handler", h.Name).
				New("handler function is nil")
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, h := range handlers {
		b.bindings[h.Event] = append(b.bindings[h.Event], binding{
			owner:    owner,
			listener: l.Label(),
			handler:  h,
		})
	}
	return nil
}

// Fire dispatches the event to the bindings registered for its exact type
// key, in insertion order, and returns the event after all bindings have
// been visited. A binding is skipped iff the event is currently cancelled
// and the binding did not opt into cancelled events. Handler faults go to
// report and never stop dispatch.
func (b *Bus) Fire(event plugin.Event, report FaultReporter) plugin.Event {
	b.mu.RLock()
	bound := b.bindings[event.Type()]
	// Copy so handlers may register or unload without racing the walk.
	snapshot := make([]binding, len(bound))
	copy(snapshot, bound)
	b.mu.RUnlock()

	for _, bd := range snapshot {
		if event.Cancelled() && !bd.handler.ReceiveCancelled {
			continue
		}
		if err := invoke(bd.handler, event); err != nil && report != nil {
			report(bd.owner, bd.handler.Name, err)
		}
	}
	return event
}

// invoke runs one handler, converting a panic into an error.
func invoke(h plugin.Handler, event plugin.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = oops.With("handler", h.Name).With("event_type", string(event.Type())).
				Errorf("handler panicked: %v", r)
		}
	}()
	h.Func(event)
	return nil
}

// RemoveOwner drops every binding owned by the plugin from every
// event-type list, preserving the order of the remainder.
func (b *Bus) RemoveOwner(owner plugin.Plugin) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for key, bound := range b.bindings {
		kept := bound[:0]
		for _, bd := range bound {
			if bd.owner != owner {
				kept = append(kept, bd)
			}
		}
		if len(kept) == 0 {
			delete(b.bindings, key)
			continue
		}
		b.bindings[key] = kept
	}
}

// BindingCount returns the number of bindings for a key.
func (b *Bus) BindingCount(key plugin.EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.bindings[key])
}

// OwnerName names a plugin for fault logs: the resolved name when set,
// otherwise the implementation's type.
func OwnerName(p plugin.Plugin) string {
	if p == nil {
		return "<nil>"
	}
	if name := p.Name(); name != "" {
		return name
	}
	return fmt.Sprintf("%T", p)
}
