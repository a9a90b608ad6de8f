// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugkit Contributors

// Package manager orchestrates the plugin lifecycle: batch load, unload,
// listener registration, event dispatch, and cross-plugin lookup.
package manager

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/Masterminds/semver/v3"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/plugkit/plugkit/internal/bus"
	"github.com/plugkit/plugkit/internal/capability"
	"github.com/plugkit/plugkit/internal/loader"
	"github.com/plugkit/plugkit/internal/observability"
	"github.com/plugkit/plugkit/internal/seal"
	"github.com/plugkit/plugkit/pkg/plugin"
)

// Manager states. Monotonic: Unloaded -> Loading -> Ready, never reset.
// Any state past Unloaded trips the one-shot load guard; Ready gates
// cross-plugin lookup.
const (
	stateUnloaded uint32 = iota
	stateLoading
	stateReady
)

// DefaultAPIVersion is the host API version assumed when none is given.
const DefaultAPIVersion = "1.0.0"

// Manager drives module loading, lifecycle sequencing, listener
// registration, event dispatch, and cross-plugin lookup.
//
// Mutating operations (batch load, unload, register, shutdown) serialize
// on one mutex: at most one runs at a time. Dispatch and lookup read the
// registry and bus through their internal reader locks, so plugin hooks
// invoked during load or dispatch may safely call Fire, GetPluginByName,
// and the accessors without deadlocking.
type Manager struct {
	mu    sync.Mutex
	state atomic.Uint32

	api          any
	apiVersion   *semver.Version
	registry     *Registry
	bus          *bus.Bus
	enforcer     *capability.Enforcer
	sink         Sink
	configSource loader.ConfigSource
	metrics      *observability.Metrics
	factories    map[string]plugin.Factory
	exports      map[string]any
	logger       *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithAPIVersion sets the host API version matched against descriptor
// api-version constraints.
func WithAPIVersion(version string) Option {
	return func(m *Manager) {
		if v, err := semver.NewVersion(version); err == nil {
			m.apiVersion = v
		}
	}
}

// WithConfigSource sets the default-configuration collaborator.
func WithConfigSource(src loader.ConfigSource) Option {
	return func(m *Manager) {
		m.configSource = src
	}
}

// WithMetrics attaches Prometheus metrics recording.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

// WithFactories overrides the entry-type table used for the load batch,
// replacing the global catalog snapshot. Used by hosts and tests that
// assemble their own entry set.
func WithFactories(factories map[string]plugin.Factory) Option {
	return func(m *Manager) {
		m.factories = factories
	}
}

// WithExport publishes a host symbol into the batch's loading scope under
// "module.Symbol" so modules can resolve it.
func WithExport(module, symbol string, value any) Option {
	return func(m *Manager) {
		m.exports[module+"."+symbol] = value
	}
}

// WithLogger sets the logger plugin-scoped loggers derive from.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// New creates a Manager around a host API handle and a log sink. A nil
// sink discards notifications.
func New(api any, sink Sink, opts ...Option) *Manager {
	if sink == nil {
		sink = NopSink{}
	}
	m := &Manager{
		api:          api,
		apiVersion:   semver.MustParse(DefaultAPIVersion),
		registry:     NewRegistry(),
		bus:          bus.New(),
		enforcer:     capability.NewEnforcer(),
		sink:         sink,
		configSource: loader.DirConfigSource{},
		exports:      make(map[string]any),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Ready reports whether the load batch has completed.
func (m *Manager) Ready() bool {
	return m.state.Load() == stateReady
}

// Plugins returns the names of all loaded plugins, sorted.
func (m *Manager) Plugins() []string {
	return m.registry.Names()
}

// LoadPlugins runs the one-shot batch load over the candidate module
// directories, in input order, strictly sequentially.
//
// Per-candidate failures are contained: rolled back, reported to the
// sink, and never surfaced here. The only error LoadPlugins returns is
// the ALREADY_LOADED one-shot violation, which leaves the registry
// untouched. After every candidate has been attempted the manager
// becomes ready and plugins implementing plugin.LoadAware receive
// OnAllPluginsLoaded.
func (m *Manager) LoadPlugins(dirs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.CompareAndSwap(stateUnloaded, stateLoading) {
		return oops.Code("ALREADY_LOADED").New("LoadPlugins may only be called once")
	}

	batch := ulid.Make().String()

	scopeOpts := []loader.ScopeOption{}
	if m.factories != nil {
		scopeOpts = append(scopeOpts, loader.WithFactories(m.factories))
	}
	scope := loader.NewScope(m.api, m.apiVersion, scopeOpts...)
	for ref, value := range m.exports {
		if module, symbol, ok := splitRef(ref); ok {
			scope.Export(module, symbol, value)
		}
	}

	for _, dir := range dirs {
		m.loadCandidate(scope, batch, dir)
	}

	m.state.Store(stateReady)

	for _, name := range m.registry.Names() {
		p, ok := m.registry.Get(name)
		if !ok {
			continue
		}
		aware, ok := p.(plugin.LoadAware)
		if !ok {
			continue
		}
		if err := safeCall(aware.OnAllPluginsLoaded); err != nil {
			m.sink.Notify(Record{Kind: KindAllPluginsLoadedError, Plugin: name, Batch: batch, Err: err})
		}
	}

	return nil
}

// loadCandidate attempts one candidate module. Failures are reported to
// the sink and fully resolved before the next candidate begins.
func (m *Manager) loadCandidate(scope *loader.Scope, batch, dir string) {
	// Until the descriptor resolves, errors carry the candidate's file
	// identity.
	identity := filepath.Base(dir)

	desc, err := loader.ResolveDescriptor(dir)
	if err != nil {
		m.failLoad(nil, identity, batch, err)
		return
	}
	identity = desc.Name

	// Best effort: unresolved symbols are tolerated because a module may
	// reference optional code paths that are never executed.
	for _, perr := range loader.PreflightLinkCheck(desc, scope) {
		m.sink.Notify(Record{Kind: KindLoadError, Plugin: identity, Batch: batch, Err: perr})
	}

	inst, err := loader.Instantiate(scope, desc)
	if err != nil {
		m.failLoad(nil, identity, batch, err)
		return
	}

	icOpts := []plugin.InstallOption{
		plugin.WithAPI(m.api),
		plugin.WithLogger(m.logger.With("plugin", desc.Name)),
		plugin.WithConfigFileName(desc.ConfigFile),
		plugin.WithLookup(func(name string) (plugin.Plugin, bool, error) {
			return m.GetPluginByName(inst, name)
		}),
	}
	configFile := desc.ConfigFile
	if configFile == "" {
		configFile = plugin.DefaultConfigFileName
	}
	payload, hasPayload, err := m.configSource.DefaultConfig(dir, configFile)
	if err != nil {
		m.failLoad(inst, identity, batch, oops.Code("METADATA_ERROR").With("plugin", desc.Name).Wrap(err))
		return
	}
	if hasPayload {
		icOpts = append(icOpts, plugin.WithDefaultConfig(payload))
	}

	if err := inst.Install(plugin.NewInstallContext(seal.New(), desc.Name, dir, icOpts...)); err != nil {
		m.failLoad(inst, identity, batch, err)
		return
	}

	if err := m.registry.Put(desc.Name, inst); err != nil {
		m.failLoad(inst, identity, batch, err)
		return
	}

	if err := m.enforcer.SetGrants(desc.Name, desc.Capabilities); err != nil {
		m.failLoad(inst, identity, batch,
			oops.Code("METADATA_ERROR").With("plugin", desc.Name).Hint("invalid capability grant").Wrap(err))
		return
	}

	if err := safeCall(inst.OnLoad); err != nil {
		m.failLoad(inst, identity, batch,
			oops.Code("INSTANTIATION_ERROR").With("plugin", desc.Name).Hint("OnLoad failed").Wrap(err))
		return
	}

	if err := m.registerDeclared(inst); err != nil {
		m.failLoad(inst, identity, batch, err)
		return
	}

	m.metrics.RecordLoad(true)
	m.sink.Notify(Record{Kind: KindPluginLoaded, Plugin: desc.Name, Batch: batch})
}

// registerDeclared registers the listeners a plugin declares through
// plugin.HasListeners. A malformed handler or a panicking declaration is
// a candidate failure; bindings committed by earlier listeners are rolled
// back with the rest of the candidate.
func (m *Manager) registerDeclared(inst plugin.Plugin) (err error) {
	hl, ok := inst.(plugin.HasListeners)
	if !ok {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = oops.Code("INVALID_HANDLER").With("plugin", inst.Name()).
				Errorf("listener declaration panicked: %v", r)
		}
	}()
	for _, l := range hl.Listeners() {
		if l == nil {
			continue
		}
		if rerr := m.bus.Register(inst, l); rerr != nil {
			return rerr
		}
	}
	return nil
}

// failLoad resolves a candidate failure: registry and grant rollback, the
// partial instance's OnUnload so it can release resources, and a load
// error carrying the candidate's identity and the causing fault.
func (m *Manager) failLoad(inst plugin.Plugin, identity, batch string, err error) {
	if inst != nil {
		if name := inst.Name(); name != "" {
			// Roll back only this instance's registration: on a duplicate
			// name the registry still maps to the earlier instance, which
			// must keep its entry and grants.
			if reg, ok := m.registry.Get(name); ok && reg == inst {
				m.registry.Remove(name)
				m.enforcer.RemoveGrants(name)
			}
			m.bus.RemoveOwner(inst)
		}
		if uerr := safeCall(inst.OnUnload); uerr != nil {
			m.sink.Notify(Record{Kind: KindUnloadError, Plugin: identity, Batch: batch, Err: uerr})
		}
	}
	m.metrics.RecordLoad(false)
	m.sink.Notify(Record{Kind: KindLoadError, Plugin: identity, Batch: batch, Err: err})
}

// UnloadPlugin unloads a plugin: removes it from the registry, drops its
// capability grants and every handler binding it owns, then invokes
// OnUnload. An instance with no resolved name cannot be located in the
// registry; that is reported as an unknown-plugin error with no side
// effects. OnUnload faults are logged, not propagated.
func (m *Manager) UnloadPlugin(p plugin.Plugin) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unloadLocked(p)
}

func (m *Manager) unloadLocked(p plugin.Plugin) {
	if p == nil {
		m.sink.Notify(Record{Kind: KindUnknownPlugin, Plugin: "<nil>"})
		return
	}
	name := p.Name()
	if name == "" {
		m.sink.Notify(Record{Kind: KindUnknownPlugin, Plugin: fmt.Sprintf("%T", p)})
		return
	}

	m.registry.Remove(name)
	m.enforcer.RemoveGrants(name)
	m.bus.RemoveOwner(p)

	ok := true
	if err := safeCall(p.OnUnload); err != nil {
		ok = false
		m.sink.Notify(Record{Kind: KindUnloadError, Plugin: name, Err: err})
	}
	m.metrics.RecordUnload(ok)
	m.sink.Notify(Record{Kind: KindPluginUnloaded, Plugin: name})
}

// HandleShutdown unloads every plugin currently in the registry.
// Iteration order is unspecified; each unload is independently
// fault-isolated.
func (m *Manager) HandleShutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.registry.Instances() {
		m.unloadLocked(p)
	}
}

// RegisterListener registers a listener's handler bindings for a loaded
// plugin. It fails with NOT_LOADED if the plugin is not currently in the
// registry and with INVALID_HANDLER for a malformed handler, in which
// case no binding from this call commits (registration is atomic).
func (m *Manager) RegisterListener(p plugin.Plugin, l *plugin.Listener) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p == nil || l == nil {
		return oops.Code("NOT_LOADED").New("plugin and listener must be non-nil")
	}
	name := p.Name()
	registered, ok := m.registry.Get(name)
	if name == "" || !ok || registered != p {
		return oops.Code("NOT_LOADED").With("plugin", bus.OwnerName(p)).
			New("cannot register listeners for a plugin that is not loaded")
	}

	return m.bus.Register(p, l)
}

// Fire dispatches the event to every binding registered for its exact
// type key, in insertion order, and returns the event after all bindings
// have been visited. Handler faults are reported to the sink with the
// owning plugin's name and never stop dispatch.
func (m *Manager) Fire(event plugin.Event) plugin.Event {
	if event == nil {
		return nil
	}
	m.metrics.RecordDispatch(string(event.Type()))
	return m.bus.Fire(event, func(owner plugin.Plugin, handlerName string, err error) {
		name := bus.OwnerName(owner)
		m.metrics.RecordHandlerFault(name)
		m.sink.Notify(Record{
			Kind:   KindDispatchError,
			Plugin: name,
			Err:    oops.With("handler", handlerName).Wrap(err),
		})
	})
}

// GetPluginByName returns the loaded plugin registered under name on
// behalf of requester.
//
// It fails with CAPABILITY_ERROR unless the requester implements
// plugin.UsesOtherPlugins and holds the "plugins.lookup" grant, and with
// NOT_READY until the load batch has completed. A name that is not loaded
// is not an error: the result is (nil, false, nil).
func (m *Manager) GetPluginByName(requester plugin.Plugin, name string) (plugin.Plugin, bool, error) {
	if _, ok := requester.(plugin.UsesOtherPlugins); !ok {
		return nil, false, oops.Code("CAPABILITY_ERROR").With("plugin", bus.OwnerName(requester)).
			New("requester does not declare the cross-plugin-lookup capability")
	}
	if !m.enforcer.Check(requesterName(requester), capability.Lookup) {
		return nil, false, oops.Code("CAPABILITY_ERROR").With("plugin", bus.OwnerName(requester)).
			With("capability", capability.Lookup).New("requester is not granted the lookup capability")
	}
	if m.state.Load() != stateReady {
		return nil, false, oops.Code("NOT_READY").With("plugin", bus.OwnerName(requester)).
			New("GetPluginByName may only be called after all plugins have been loaded")
	}

	p, ok := m.registry.Get(name)
	if !ok {
		return nil, false, nil
	}
	return p, true, nil
}

func requesterName(p plugin.Plugin) string {
	if p == nil {
		return ""
	}
	return p.Name()
}

// safeCall runs a hook, converting a panic into an error so a faulting
// plugin never takes the host down.
func safeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = oops.Errorf("hook panicked: %v", r)
		}
	}()
	return fn()
}

func splitRef(ref string) (module, symbol string, ok bool) {
	for i := len(ref) - 1; i >= 0; i-- {
		if ref[i] == '.' {
			return ref[:i], ref[i+1:], true
		}
	}
	return "", "", false
}
