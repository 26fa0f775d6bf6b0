// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package link

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Thermoquad/minewatch/pkg/hazard"
	"github.com/Thermoquad/minewatch/pkg/metrics"
)

const (
	// DefaultRetryDelay is the fixed wait between a link failure and the reopen
	DefaultRetryDelay = 2 * time.Second
	// DefaultReadBufferSize is the size of each read from the link
	DefaultReadBufferSize = 256
)

// State is the link reader state
type State int

const (
	Disconnected State = iota
	Connecting
	Streaming
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "DISCONNECTED"
	case Connecting:
		return "CONNECTING"
	case Streaming:
		return "STREAMING"
	default:
		return "UNKNOWN"
	}
}

// ReaderOptions tunes a Reader. Zero values select the defaults.
type ReaderOptions struct {
	RetryDelay     time.Duration
	ReadBufferSize int
	MaxBuffer      int
	Logger         zerolog.Logger
	Metrics        metrics.Recorder
}

func (o ReaderOptions) withDefaults() ReaderOptions {
	if o.RetryDelay <= 0 {
		o.RetryDelay = DefaultRetryDelay
	}
	if o.ReadBufferSize <= 0 {
		o.ReadBufferSize = DefaultReadBufferSize
	}
	if o.Metrics == nil {
		o.Metrics = metrics.Nop{}
	}
	return o
}

// Reader owns one link config and streams it through a Pipeline on its own
// goroutine, reopening the same config after every failure.
type Reader struct {
	cfg    Config
	opener Opener
	sink   EventSink
	opts   ReaderOptions
	logger zerolog.Logger

	pipeline *Pipeline

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	conn    Conn
	state   State
	stopped bool
}

// StartReader starts a reader goroutine for cfg. Events reach sink until Stop
// is called.
func StartReader(parent context.Context, cfg Config, opener Opener, classifier *hazard.Classifier, sink EventSink, opts ReaderOptions) *Reader {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(parent)

	r := &Reader{
		cfg:    cfg,
		opener: opener,
		opts:   opts,
		logger: opts.Logger.With().Str("port", cfg.Port).Logger(),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	r.sink = gatedSink{ctx: ctx, sink: sink}
	r.pipeline = NewPipeline(classifier, r.sink, opts.MaxBuffer, opts.Metrics, r.logger)
	r.pipeline.Source = cfg.String()

	go r.run()
	return r
}

// Config returns the config this reader streams
func (r *Reader) Config() Config {
	return r.cfg
}

// State returns the current reader state
func (r *Reader) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Done is closed once the reader goroutine has exited
func (r *Reader) Done() <-chan struct{} {
	return r.done
}

// Stop cancels the reader, closes its handle and waits for the goroutine to
// exit. No events are delivered after Stop returns.
func (r *Reader) Stop() {
	r.cancel()

	r.mu.Lock()
	r.stopped = true
	conn := r.conn
	r.conn = nil
	r.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	<-r.done
}

func (r *Reader) setState(s State) {
	r.mu.Lock()
	changed := r.state != s
	r.state = s
	r.mu.Unlock()

	if changed {
		r.opts.Metrics.LinkState(int(s))
		r.logger.Info().Str("state", s.String()).Msg("link state changed")
	}
}

// attach records conn as the live handle unless Stop already ran
func (r *Reader) attach(conn Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return false
	}
	r.conn = conn
	return true
}

// detach releases the live handle, reporting whether this goroutine still owns it
func (r *Reader) detach() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	owned := r.conn != nil
	r.conn = nil
	return owned
}

func (r *Reader) status(kind StatusKind, format string, args ...any) {
	r.sink.PublishStatus(Status{Kind: kind, Text: fmt.Sprintf(format, args...), Time: time.Now()})
}

func (r *Reader) run() {
	defer close(r.done)
	defer r.setState(Disconnected)

	for {
		r.setState(Connecting)
		r.status(StatusConnecting, "%s | Connecting", r.cfg)

		conn, err := r.opener(r.ctx, r.cfg)
		if err != nil {
			if r.ctx.Err() != nil {
				return
			}
			r.opts.Metrics.LinkError()
			r.logger.Warn().Err(err).Msg("failed to open link")
			r.status(StatusLinkError, "%s | Error: %v (retrying in %s)", r.cfg, err, r.opts.RetryDelay)
			if !r.backoff() {
				return
			}
			continue
		}

		if !r.attach(conn) {
			conn.Close()
			return
		}

		r.setState(Streaming)
		r.status(StatusAwaiting, "%s | Awaiting data", r.cfg)
		r.pipeline.ResetBuffer()

		err = r.stream(conn)

		if r.detach() {
			conn.Close()
		}
		if r.ctx.Err() != nil {
			return
		}

		r.opts.Metrics.LinkError()
		r.logger.Warn().Err(err).Msg("link read failed")
		r.status(StatusLinkError, "%s | Error: %v (retrying in %s)", r.cfg, err, r.opts.RetryDelay)
		if !r.backoff() {
			return
		}
	}
}

// stream reads until the link fails or the reader is cancelled. A read that
// times out with no data returns (0, nil) and the loop continues.
func (r *Reader) stream(conn Conn) error {
	buf := make([]byte, r.opts.ReadBufferSize)
	for {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		n, err := conn.Read(buf)
		if n > 0 {
			r.pipeline.Process(buf[:n])
		}
		if err != nil {
			return err
		}
	}
}

// backoff waits the fixed retry delay. Returns false if cancelled first.
func (r *Reader) backoff() bool {
	r.setState(Disconnected)

	timer := time.NewTimer(r.opts.RetryDelay)
	defer timer.Stop()

	select {
	case <-r.ctx.Done():
		return false
	case <-timer.C:
		r.opts.Metrics.Reconnect()
		return true
	}
}

// gatedSink forwards events only while ctx is live
type gatedSink struct {
	ctx  context.Context
	sink EventSink
}

func (g gatedSink) PublishPoint(p ClassifiedPoint) {
	if g.ctx.Err() == nil {
		g.sink.PublishPoint(p)
	}
}

func (g gatedSink) PublishStatus(s Status) {
	if g.ctx.Err() == nil {
		g.sink.PublishStatus(s)
	}
}
