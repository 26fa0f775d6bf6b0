// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package link

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Thermoquad/minewatch/pkg/hazard"
	"github.com/Thermoquad/minewatch/pkg/metrics"
	"github.com/Thermoquad/minewatch/pkg/position"
)

// Pipeline runs decode, validate and classify for each chunk read from the
// link and hands the results to a sink. It is owned by a single goroutine.
type Pipeline struct {
	decoder    *position.Decoder
	classifier *hazard.Classifier
	sink       EventSink
	recorder   metrics.Recorder
	logger     zerolog.Logger
	now        func() time.Time

	// Source labels the per-point status line, e.g. the link config
	Source string

	latest     ClassifiedPoint
	hasLatest  bool
	evictedSum uint64
}

// NewPipeline creates a pipeline with a residual buffer capped at maxBuffer
func NewPipeline(classifier *hazard.Classifier, sink EventSink, maxBuffer int, recorder metrics.Recorder, logger zerolog.Logger) *Pipeline {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Pipeline{
		decoder:    position.NewDecoder(maxBuffer),
		classifier: classifier,
		sink:       sink,
		recorder:   recorder,
		logger:     logger,
		now:        time.Now,
	}
}

// Process feeds one chunk and returns the number of points published
func (p *Pipeline) Process(chunk []byte) int {
	frames := p.decoder.Feed(chunk)

	if evicted := p.decoder.Evicted(); evicted > p.evictedSum {
		delta := evicted - p.evictedSum
		p.evictedSum = evicted
		p.recorder.BytesEvicted(int(delta))
		p.logger.Debug().Uint64("bytes", delta).Msg("residual buffer evicted unmatched bytes")
	}

	published := 0
	for _, f := range frames {
		p.recorder.FrameDecoded()

		pt, verr := position.ValidateFrame(f)
		if verr != nil {
			p.recorder.PointRejected()
			p.logger.Debug().Str("frame", f.Raw).Str("type", verr.Type.String()).Msg("frame rejected")
			p.sink.PublishStatus(Status{
				Kind: StatusRejected,
				Text: verr.Message,
				Time: p.now(),
			})
			continue
		}

		res := p.classifier.Classify(pt)
		cp := ClassifiedPoint{
			Point:    pt,
			Status:   res.Status,
			Zone:     res.Zone,
			Distance: res.Distance,
			Time:     p.now(),
		}
		p.latest = cp
		p.hasLatest = true
		p.recorder.PointClassified(res.Status.String())

		p.sink.PublishPoint(cp)
		if p.Source != "" {
			p.sink.PublishStatus(Status{
				Kind: StatusStreaming,
				Text: fmt.Sprintf("%s | Last point %s %s", p.Source, pt, res.Status),
				Time: cp.Time,
			})
		}
		published++
	}
	return published
}

// Latest returns the most recently classified point
func (p *Pipeline) Latest() (ClassifiedPoint, bool) {
	return p.latest, p.hasLatest
}

// ResetBuffer drops residual bytes, used when the link is reopened
func (p *Pipeline) ResetBuffer() {
	p.decoder.Reset()
}

// Buffered returns the number of residual bytes awaiting completion
func (p *Pipeline) Buffered() int {
	return p.decoder.Buffered()
}
