// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugkit Contributors

package logging

import (
	"log/slog"

	"github.com/plugkit/plugkit/internal/manager"
	"github.com/plugkit/plugkit/pkg/errutil"
)

// SlogSink adapts manager notifications to a slog.Logger. Success
// notifications log at info, faults at error with oops context expanded.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink creates a sink over the given logger. A nil logger uses the
// default.
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger}
}

// Notify logs one manager notification.
func (s *SlogSink) Notify(rec manager.Record) {
	logger := s.logger.With("plugin", rec.Plugin)
	if rec.Batch != "" {
		logger = logger.With("batch", rec.Batch)
	}

	if rec.Err != nil {
		errutil.LogError(logger, rec.Kind.String(), rec.Err)
		return
	}
	logger.Info(rec.Kind.String())
}
