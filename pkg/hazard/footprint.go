// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hazard

import (
	"fmt"
	"math"

	"github.com/Thermoquad/minewatch/pkg/position"
)

// Footprint is the physical rectangle of the tracked object. The reported point
// sits at (AnchorX, AnchorY) from the rectangle's top-left corner.
type Footprint struct {
	Width   float64 `mapstructure:"width"`
	Height  float64 `mapstructure:"height"`
	AnchorX float64 `mapstructure:"anchor_x"`
	AnchorY float64 `mapstructure:"anchor_y"`
}

// DefaultFootprint returns the 150 x 80 mm footprint anchored at its center
func DefaultFootprint() Footprint {
	return Footprint{
		Width:   DefaultFootprintWidth,
		Height:  DefaultFootprintHeight,
		AnchorX: DefaultFootprintAnchorX,
		AnchorY: DefaultFootprintAnchorY,
	}
}

// Validate checks the footprint has a positive finite area and a finite anchor
func (f Footprint) Validate() error {
	if !finite(f.Width, f.Height, f.AnchorX, f.AnchorY) {
		return fmt.Errorf("%w: dimensions and anchor must be finite (width=%g, height=%g, anchor=%g,%g)", ErrInvalidFootprint, f.Width, f.Height, f.AnchorX, f.AnchorY)
	}
	if !(f.Width > 0 && f.Height > 0) {
		return fmt.Errorf("%w: width and height must be positive (width=%g, height=%g)", ErrInvalidFootprint, f.Width, f.Height)
	}
	return nil
}

// Rect is an axis-aligned rectangle described by its center
type Rect struct {
	CenterX float64
	CenterY float64
	Width   float64
	Height  float64
}

// Rect places the footprint at p
func (f Footprint) Rect(p position.Point) Rect {
	left := p.X - f.AnchorX
	top := p.Y - f.AnchorY
	return Rect{
		CenterX: left + f.Width/2,
		CenterY: top + f.Height/2,
		Width:   f.Width,
		Height:  f.Height,
	}
}

// RectDistance returns the minimum Euclidean distance from r to c (zero when c is inside r)
func RectDistance(r Rect, c position.Point) float64 {
	dx := math.Max(math.Abs(c.X-r.CenterX)-r.Width/2, 0)
	dy := math.Max(math.Abs(c.Y-r.CenterY)-r.Height/2, 0)
	return math.Sqrt(dx*dx + dy*dy)
}
