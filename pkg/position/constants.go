// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package position

// Frame token layout: distance[<digits>,<digits>]
const (
	FramePrefix     = "distance["
	FrameSeparator  = ','
	FrameTerminator = ']'
)

// Field bounds in millimeters (inclusive on both axes)
const (
	FieldMin = 0.0
	FieldMax = 4000.0
)

// DefaultMaxBuffer is the residual buffer cap used when none is configured.
const DefaultMaxBuffer = 4096

// MinBuffer is the length of the longest in-field frame, distance[4000,4000].
// A smaller cap would evict a split frame before its tail arrives.
const MinBuffer = len(FramePrefix) + len("4000,4000]")
