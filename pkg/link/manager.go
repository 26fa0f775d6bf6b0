// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package link

import (
	"context"
	"sync"
	"time"

	"github.com/Thermoquad/minewatch/pkg/hazard"
)

// Manager owns at most one active Reader. Replacing the config stops the
// current reader and waits for it before the next one starts.
type Manager struct {
	ctx        context.Context
	opener     Opener
	classifier *hazard.Classifier
	sink       EventSink
	opts       ReaderOptions

	mu     sync.Mutex
	cfg    *Config
	reader *Reader
	closed bool
}

// NewManager creates an idle manager. Readers are children of ctx.
func NewManager(ctx context.Context, opener Opener, classifier *hazard.Classifier, sink EventSink, opts ReaderOptions) *Manager {
	return &Manager{
		ctx:        ctx,
		opener:     opener,
		classifier: classifier,
		sink:       sink,
		opts:       opts.withDefaults(),
	}
}

// SetConfig replaces the active link. A nil cfg stops streaming and leaves the
// manager idle. An invalid cfg is rejected and the current reader is kept.
func (m *Manager) SetConfig(cfg *Config) error {
	if cfg != nil {
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrManagerClosed
	}

	if m.reader != nil {
		m.reader.Stop()
		m.reader = nil
	}

	if cfg == nil {
		m.cfg = nil
		m.opts.Logger.Info().Msg("no port selected, link idle")
		m.sink.PublishStatus(Status{Kind: StatusIdle, Text: "No port selected", Time: time.Now()})
		return nil
	}

	c := *cfg
	m.cfg = &c
	m.opts.Logger.Info().Str("link", c.String()).Msg("starting link reader")
	m.reader = StartReader(m.ctx, c, m.opener, m.classifier, m.sink, m.opts)
	return nil
}

// Config returns the active config, or nil when idle
func (m *Manager) Config() *Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cfg == nil {
		return nil
	}
	c := *m.cfg
	return &c
}

// State returns the state of the active reader
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reader == nil {
		return Disconnected
	}
	return m.reader.State()
}

// Close stops the active reader. The manager cannot be reused.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	if m.reader != nil {
		m.reader.Stop()
		m.reader = nil
	}
}
