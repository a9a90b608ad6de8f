// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugkit Contributors

package plugin

// EventType is the discriminant identifying a concrete event variant.
//
// Dispatch is keyed on this value, never on Go type hierarchies: two event
// variants are routed together iff their Type() values are equal. A handler
// bound to one variant's key never receives another variant, even if the
// two share embedded fields. This exact-variant-only routing is deliberate
// and load-bearing; hosts that want broader fan-out bind a handler per
// variant.
type EventType string

// Event is the contract all event variants satisfy.
//
// Variants embed either Cancellable (opting into cancellation) or NoCancel.
// Cancellable variants must be fired by pointer so handlers observe
// cancellation set by earlier handlers.
type Event interface {
	// Type returns the variant's dispatch key.
	Type() EventType

	// Cancelled reports whether the event has been cancelled.
	Cancelled() bool
}

// Cancellable is embedded by event variants that opt into cancellation.
// The flag defaults to false.
type Cancellable struct {
	cancelled bool
}

// Cancelled reports the cancellation flag.
func (c *Cancellable) Cancelled() bool {
	return c.cancelled
}

// SetCancelled cancels or un-cancels the event. Handlers that have not
// opted into receiving cancelled events are skipped while the flag is set.
func (c *Cancellable) SetCancelled(cancelled bool) {
	c.cancelled = cancelled
}

// NoCancel is embedded by event variants that do not support cancellation.
// Such variants always report not-cancelled and expose no setter.
type NoCancel struct{}

// Cancelled always returns false.
func (NoCancel) Cancelled() bool {
	return false
}
