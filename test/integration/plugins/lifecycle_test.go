// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugkit Contributors

//go:build integration

package plugins_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/plugkit/plugkit/internal/loader"
	"github.com/plugkit/plugkit/internal/logging"
	"github.com/plugkit/plugkit/internal/manager"
	"github.com/plugkit/plugkit/internal/observability"
	"github.com/plugkit/plugkit/pkg/plugin"
	"github.com/plugkit/plugkit/plugins/echo"
)

var _ = Describe("Plugin host lifecycle", func() {
	var (
		mgr     *manager.Manager
		metrics *observability.Metrics
		logBuf  *bytes.Buffer
	)

	BeforeEach(func() {
		root := GinkgoT().TempDir()
		_, err := writeModuleDir(root, "echo", echo.Entry)
		Expect(err).NotTo(HaveOccurred())
		_, err = writeModuleDir(root, "probe", probeEntry, "plugins.lookup")
		Expect(err).NotTo(HaveOccurred())

		currentProbe = &probePlugin{}

		logBuf = &bytes.Buffer{}
		logger := logging.Setup("plugkit", "test", "json", logBuf)
		metrics = observability.NewMetrics(prometheus.NewRegistry())

		mgr = manager.New(nil, logging.NewSlogSink(logger),
			manager.WithLogger(logger),
			manager.WithMetrics(metrics))

		dirs, err := loader.DiscoverDirs(root)
		Expect(err).NotTo(HaveOccurred())
		Expect(dirs).To(HaveLen(2))
		Expect(mgr.LoadPlugins(dirs)).To(Succeed())
	})

	It("loads every discovered module and becomes ready", func() {
		Expect(mgr.Ready()).To(BeTrue())
		Expect(mgr.Plugins()).To(Equal([]string{"echo", "probe"}))
		Expect(currentProbe.loads).To(Equal(1))
		Expect(currentProbe.batchDone).To(Equal(1))

		loads := metrics.PluginLoads.WithLabelValues("success")
		Expect(testutil.ToFloat64(loads)).To(BeNumerically("==", 2))

		Expect(logBuf.String()).To(ContainSubstring("plugin_loaded"))
	})

	It("routes events to registered listeners and honors cancellation", func() {
		l := plugin.NewListener("probe")
		plugin.On(l, "record", &echo.MessageEvent{}, func(e *echo.MessageEvent) {
			currentProbe.received = append(currentProbe.received, e.Text)
		})
		plugin.On(l, "mute", &echo.MessageEvent{}, func(e *echo.MessageEvent) {
			if e.Text == "secret" {
				e.SetCancelled(true)
			}
		})
		plugin.On(l, "audit", &echo.MessageEvent{}, func(e *echo.MessageEvent) {
			currentProbe.received = append(currentProbe.received, "audit:"+e.Text)
		}, plugin.ReceiveCancelled())
		Expect(mgr.RegisterListener(currentProbe, l)).To(Succeed())

		mgr.Fire(&echo.MessageEvent{Sender: "alice", Text: "hello"})
		out := mgr.Fire(&echo.MessageEvent{Sender: "bob", Text: "secret"})

		Expect(out.Cancelled()).To(BeTrue())
		Expect(currentProbe.received).To(Equal([]string{
			"hello", "audit:hello", "secret", "audit:secret",
		}))

		dispatched := metrics.EventsDispatched.WithLabelValues(string(echo.MessageEventType))
		Expect(testutil.ToFloat64(dispatched)).To(BeNumerically("==", 2))

		// The echo plugin's declared listener was registered during load,
		// so its handler saw the messages too.
		Expect(logBuf.String()).To(ContainSubstring(`"text":"hello"`))
	})

	It("supports cross-plugin lookup after the batch", func() {
		got, ok, err := mgr.GetPluginByName(currentProbe, "echo")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(got).To(BeAssignableToTypeOf(&echo.Plugin{}))

		_, ok, err = mgr.GetPluginByName(currentProbe, "missing")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("unloads every plugin on shutdown", func() {
		mgr.HandleShutdown()

		Expect(mgr.Plugins()).To(BeEmpty())
		Expect(currentProbe.unloads).To(Equal(1))

		unloads := metrics.PluginUnloads.WithLabelValues("success")
		Expect(testutil.ToFloat64(unloads)).To(BeNumerically("==", 2))
		Expect(logBuf.String()).To(ContainSubstring("plugin_unloaded"))
	})
})
