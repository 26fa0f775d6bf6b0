// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package position

import (
	"bytes"
	"math"
)

var framePrefix = []byte(FramePrefix)

// matchResult is the outcome of matching a frame at a prefix position
type matchResult int

const (
	matchComplete matchResult = iota
	matchIncomplete
	matchInvalid
)

// Decoder extracts distance[X,Y] frames from an append-only byte stream.
//
// Bytes that are not part of a completed frame stay in the residual buffer so a
// frame split across reads is reassembled on the next Feed. The residual buffer is
// capped; once it grows past the cap the oldest bytes are discarded.
type Decoder struct {
	buffer    []byte
	maxBuffer int
	evicted   uint64
}

// NewDecoder creates a decoder whose residual buffer never exceeds maxBuffer bytes.
// A non-positive maxBuffer selects DefaultMaxBuffer; smaller caps are raised to
// MinBuffer.
func NewDecoder(maxBuffer int) *Decoder {
	switch {
	case maxBuffer <= 0:
		maxBuffer = DefaultMaxBuffer
	case maxBuffer < MinBuffer:
		maxBuffer = MinBuffer
	}
	return &Decoder{
		buffer:    make([]byte, 0, maxBuffer),
		maxBuffer: maxBuffer,
	}
}

// Reset drops any residual bytes
func (d *Decoder) Reset() {
	d.buffer = d.buffer[:0]
}

// Buffered returns the number of residual bytes held for the next Feed
func (d *Decoder) Buffered() int {
	return len(d.buffer)
}

// Residual returns a copy of the residual buffer
func (d *Decoder) Residual() []byte {
	return append([]byte(nil), d.buffer...)
}

// MaxBuffer returns the residual buffer cap
func (d *Decoder) MaxBuffer() int {
	return d.maxBuffer
}

// Evicted returns the total number of bytes discarded by the buffer cap
func (d *Decoder) Evicted() uint64 {
	return d.evicted
}

// Feed appends chunk to the residual buffer and returns every complete frame in
// left-to-right order. Matched bytes are removed; everything else is kept verbatim.
func (d *Decoder) Feed(chunk []byte) []Frame {
	d.buffer = append(d.buffer, chunk...)

	var frames []Frame
	// Compact in place: out never grows past the read position i
	out := d.buffer[:0]
	i := 0
scan:
	for i < len(d.buffer) {
		idx := bytes.Index(d.buffer[i:], framePrefix)
		if idx < 0 {
			break
		}
		start := i + idx

		n, frame, res := matchFrame(d.buffer[start:])
		switch res {
		case matchComplete:
			out = append(out, d.buffer[i:start]...)
			frames = append(frames, frame)
			i = start + n
		case matchIncomplete:
			// Trailing partial frame, wait for more bytes
			break scan
		case matchInvalid:
			out = append(out, d.buffer[i:start+1]...)
			i = start + 1
		}
	}
	out = append(out, d.buffer[i:]...)
	d.buffer = out

	d.evict()
	return frames
}

// evict discards the oldest bytes beyond the cap
func (d *Decoder) evict() {
	excess := len(d.buffer) - d.maxBuffer
	if excess <= 0 {
		return
	}
	n := copy(d.buffer, d.buffer[excess:])
	d.buffer = d.buffer[:n]
	d.evicted += uint64(excess)

	// A single oversized chunk can leave a large backing array behind
	if cap(d.buffer) > 4*d.maxBuffer {
		d.buffer = append(make([]byte, 0, d.maxBuffer), d.buffer...)
	}
}

// matchFrame matches a frame at the start of b, which begins with FramePrefix.
// Returns the matched length on success.
func matchFrame(b []byte) (int, Frame, matchResult) {
	x, i, res := scanNumber(b, len(FramePrefix), FrameSeparator)
	if res != matchComplete {
		return 0, Frame{}, res
	}
	y, i, res := scanNumber(b, i, FrameTerminator)
	if res != matchComplete {
		return 0, Frame{}, res
	}
	return i, Frame{X: x, Y: y, Raw: string(b[:i])}, matchComplete
}

// scanNumber reads one or more decimal digits at b[i:] followed by term.
// Returns the value and the index just past term.
func scanNumber(b []byte, i int, term byte) (uint64, int, matchResult) {
	start := i
	var v uint64
	overflow := false
	for ; i < len(b) && isDigit(b[i]); i++ {
		digit := uint64(b[i] - '0')
		if v > (math.MaxUint64-digit)/10 {
			overflow = true
		}
		if !overflow {
			v = v*10 + digit
		}
	}

	if i == len(b) {
		return 0, i, matchIncomplete
	}
	if i == start || b[i] != term {
		return 0, i, matchInvalid
	}
	if overflow {
		v = math.MaxUint64
	}
	return v, i + 1, matchComplete
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
