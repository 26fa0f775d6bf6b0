// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Thermoquad/minewatch/pkg/config"
	"github.com/Thermoquad/minewatch/pkg/hazard"
	"github.com/Thermoquad/minewatch/pkg/link"
	"github.com/Thermoquad/minewatch/pkg/metrics"
)

// session is the wired pipeline shared by the streaming commands
type session struct {
	settings   *config.Settings
	logger     zerolog.Logger
	logCloser  io.Closer
	metrics    *metrics.Metrics
	classifier *hazard.Classifier
	mailbox    *link.Mailbox
	manager    *link.Manager
	opener     link.Opener
}

func newSession(ctx context.Context, s *config.Settings, tui bool) (*session, error) {
	logger, closer, err := newLogger(s, tui)
	if err != nil {
		return nil, err
	}

	classifier, err := s.Classifier()
	if err != nil {
		closer.Close()
		return nil, err
	}

	opener, err := newOpener(s)
	if err != nil {
		closer.Close()
		return nil, err
	}

	m := metrics.New()
	mailbox := link.NewMailbox(s.MailboxCapacity, m)
	manager := link.NewManager(ctx, opener, classifier, mailbox, s.ReaderOptions(logger, m))

	sess := &session{
		settings:   s,
		logger:     logger,
		logCloser:  closer,
		metrics:    m,
		classifier: classifier,
		mailbox:    mailbox,
		manager:    manager,
		opener:     opener,
	}

	if s.MetricsAddr != "" {
		go sess.serveMetrics(ctx, s.MetricsAddr)
	}
	return sess, nil
}

// start selects the configured or discovered link
func (s *session) start() error {
	cfg, err := resolveLinkConfig(s.settings, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("port discovery failed")
	}
	return s.manager.SetConfig(cfg)
}

func (s *session) Close() {
	s.manager.Close()
	s.logCloser.Close()
}

// serveMetrics serves /metrics until ctx is cancelled
func (s *session) serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.metrics.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info().Str("addr", addr).Msg("serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error().Err(err).Str("addr", addr).Msg("metrics server failed")
	}
}
