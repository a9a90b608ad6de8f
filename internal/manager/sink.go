// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugkit Contributors

package manager

// Kind identifies a lifecycle or dispatch notification.
type Kind uint8

// Notification kinds emitted by the manager, one per event kind.
const (
	KindPluginLoaded Kind = iota
	KindPluginUnloaded
	KindLoadError
	KindUnloadError
	KindUnknownPlugin
	KindAllPluginsLoadedError
	KindDispatchError
)

func (k Kind) String() string {
	switch k {
	case KindPluginLoaded:
		return "plugin_loaded"
	case KindPluginUnloaded:
		return "plugin_unloaded"
	case KindLoadError:
		return "plugin_load_error"
	case KindUnloadError:
		return "plugin_unload_error"
	case KindUnknownPlugin:
		return "unknown_plugin_error"
	case KindAllPluginsLoadedError:
		return "all_plugins_loaded_error"
	case KindDispatchError:
		return "event_dispatch_error"
	default:
		return "unknown"
	}
}

// Record is one structured notification handed to the log sink. Plugin is
// the resolved plugin name where available, otherwise a fallback identity
// (candidate file name or implementation type). Batch carries the load
// batch ULID for load-time records, "" otherwise. Err is the causing
// fault, nil for success notifications.
type Record struct {
	Kind   Kind
	Plugin string
	Batch  string
	Err    error
}

// Sink receives manager notifications. Implementations must not call back
// into the manager's mutating operations.
type Sink interface {
	Notify(rec Record)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(rec Record)

// Notify calls f.
func (f SinkFunc) Notify(rec Record) {
	f(rec)
}

// NopSink discards all notifications.
type NopSink struct{}

// Notify does nothing.
func (NopSink) Notify(Record) {}
