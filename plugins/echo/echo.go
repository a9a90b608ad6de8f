// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugkit Contributors

// Package echo implements an example plugin that echoes message events
// back through its logger. It demonstrates entry-type registration,
// listener declaration, and the cross-plugin-lookup capability.
package echo

import (
	"github.com/plugkit/plugkit/pkg/plugin"
)

// Entry is the identifier modules use in their descriptor's entry field.
const Entry = "echo"

func init() {
	plugin.Register(Entry, func() plugin.Plugin { return &Plugin{} })
}

// MessageEventType is the dispatch key for MessageEvent.
const MessageEventType plugin.EventType = "echo.message"

// MessageEvent carries a chat message. Handlers may cancel it to stop
// later handlers from seeing it.
type MessageEvent struct {
	plugin.Cancellable
	Sender string
	Text   string
}

// Type returns the event's dispatch key.
func (*MessageEvent) Type() plugin.EventType {
	return MessageEventType
}

// Plugin echoes message events.
type Plugin struct {
	plugin.Base
}

// OnLoad logs readiness. The declared listener is registered by the host
// right after this hook succeeds.
func (p *Plugin) OnLoad() error {
	p.Logger().Info("echo plugin loaded", "dir", p.Dir())
	return nil
}

// OnUnload releases nothing; the plugin holds no resources.
func (p *Plugin) OnUnload() error {
	p.Logger().Info("echo plugin unloaded")
	return nil
}

// OnAllPluginsLoaded marks the batch completion.
func (p *Plugin) OnAllPluginsLoaded() error {
	p.Logger().Info("all plugins loaded")
	return nil
}

// UsesPlugins marks the plugin as a by-name lookup requester.
func (p *Plugin) UsesPlugins() {}

// Listeners returns the plugin's handler bindings. The host registers
// them after OnLoad.
func (p *Plugin) Listeners() []*plugin.Listener {
	l := plugin.NewListener("echo")
	plugin.On(l, "onMessage", &MessageEvent{}, func(e *MessageEvent) {
		p.Logger().Info("echo", "sender", e.Sender, "text", e.Text)
	})
	return []*plugin.Listener{l}
}
