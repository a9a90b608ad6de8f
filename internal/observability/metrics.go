// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugkit Contributors

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the Prometheus metrics recorded by the plugin manager.
type Metrics struct {
	PluginLoads      *prometheus.CounterVec
	PluginUnloads    *prometheus.CounterVec
	EventsDispatched *prometheus.CounterVec
	HandlerFaults    *prometheus.CounterVec
}

// NewMetrics creates and registers the manager metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PluginLoads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plugkit_plugin_loads_total",
				Help: "Total number of plugin load attempts by status",
			},
			[]string{"status"},
		),
		PluginUnloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plugkit_plugin_unloads_total",
				Help: "Total number of plugin unloads by status",
			},
			[]string{"status"},
		),
		EventsDispatched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plugkit_events_dispatched_total",
				Help: "Total number of events dispatched by event type",
			},
			[]string{"event_type"},
		),
		HandlerFaults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plugkit_handler_faults_total",
				Help: "Total number of handler faults during dispatch by plugin",
			},
			[]string{"plugin"},
		),
	}

	reg.MustRegister(m.PluginLoads)
	reg.MustRegister(m.PluginUnloads)
	reg.MustRegister(m.EventsDispatched)
	reg.MustRegister(m.HandlerFaults)

	return m
}

// RecordLoad increments the load counter with "success" or "error".
func (m *Metrics) RecordLoad(ok bool) {
	if m == nil {
		return
	}
	m.PluginLoads.WithLabelValues(statusLabel(ok)).Inc()
}

// RecordUnload increments the unload counter with "success" or "error".
func (m *Metrics) RecordUnload(ok bool) {
	if m == nil {
		return
	}
	m.PluginUnloads.WithLabelValues(statusLabel(ok)).Inc()
}

// RecordDispatch increments the dispatch counter for an event type.
func (m *Metrics) RecordDispatch(eventType string) {
	if m == nil {
		return
	}
	m.EventsDispatched.WithLabelValues(eventType).Inc()
}

// RecordHandlerFault increments the handler-fault counter for a plugin.
func (m *Metrics) RecordHandlerFault(pluginName string) {
	if m == nil {
		return
	}
	m.HandlerFaults.WithLabelValues(pluginName).Inc()
}

func statusLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}
