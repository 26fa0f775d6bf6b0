// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package position

import "fmt"

// Point is a validated planar position in millimeters
type Point struct {
	X float64
	Y float64
}

// String returns the point as "(x, y)"
func (p Point) String() string {
	return fmt.Sprintf("(%s, %s)", formatMillimeters(p.X), formatMillimeters(p.Y))
}

// Frame is one complete distance[X,Y] token extracted from the stream.
// Values saturate at math.MaxUint64 when the digit run overflows.
type Frame struct {
	X   uint64
	Y   uint64
	Raw string
}

// String returns the raw token
func (f Frame) String() string {
	return f.Raw
}

// formatMillimeters drops the fractional part for whole values
func formatMillimeters(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}
