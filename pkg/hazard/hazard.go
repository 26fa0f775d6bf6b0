// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package hazard classifies a tracked object's footprint against circular
// hazard zones.
package hazard

import (
	"errors"
	"fmt"
	"math"

	"github.com/Thermoquad/minewatch/pkg/position"
)

var (
	// ErrInvalidZone is returned for zones violating 0 <= inner < outer
	ErrInvalidZone = errors.New("invalid hazard zone")
	// ErrInvalidFootprint is returned for footprints without a positive area
	ErrInvalidFootprint = errors.New("invalid footprint")
)

// Status is the safety status of a point, ordered by severity
type Status int

const (
	Safe Status = iota
	Warning
	Mine
)

// String returns the status name
func (s Status) String() string {
	switch s {
	case Safe:
		return "SAFE"
	case Warning:
		return "WARNING"
	case Mine:
		return "MINE"
	default:
		return "UNKNOWN"
	}
}

// Default hazard geometry in millimeters
const (
	DefaultOuterDiameter = 1000.0
	DefaultInnerDiameter = 260.0

	DefaultFootprintWidth   = 150.0
	DefaultFootprintHeight  = 80.0
	DefaultFootprintAnchorX = 75.0
	DefaultFootprintAnchorY = 40.0
)

// Zone is a circular hazard with a warning (outer) and critical (inner) radius
type Zone struct {
	Center      position.Point `mapstructure:"center"`
	OuterRadius float64        `mapstructure:"outer_radius"`
	InnerRadius float64        `mapstructure:"inner_radius"`
}

// Validate checks 0 <= InnerRadius < OuterRadius with a finite center and radii
func (z Zone) Validate() error {
	if !finite(z.Center.X, z.Center.Y, z.OuterRadius, z.InnerRadius) {
		return fmt.Errorf("%w: center and radii must be finite (center=%s, outer=%g, inner=%g)", ErrInvalidZone, z.Center, z.OuterRadius, z.InnerRadius)
	}
	if !(z.InnerRadius >= 0 && z.OuterRadius > 0) {
		return fmt.Errorf("%w: radii must be positive (inner=%g, outer=%g)", ErrInvalidZone, z.InnerRadius, z.OuterRadius)
	}
	if !(z.InnerRadius < z.OuterRadius) {
		return fmt.Errorf("%w: inner radius %g must be smaller than outer radius %g", ErrInvalidZone, z.InnerRadius, z.OuterRadius)
	}
	return nil
}

// finite reports whether every value is neither NaN nor infinite
func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// String returns a short description of the zone
func (z Zone) String() string {
	return fmt.Sprintf("center=%s outer=%g inner=%g", z.Center, z.OuterRadius, z.InnerRadius)
}

// DefaultZones returns the three fixed zones along y=2000
func DefaultZones() []Zone {
	centers := []position.Point{{X: 1000, Y: 2000}, {X: 2000, Y: 2000}, {X: 3000, Y: 2000}}
	zones := make([]Zone, 0, len(centers))
	for _, c := range centers {
		zones = append(zones, Zone{
			Center:      c,
			OuterRadius: DefaultOuterDiameter / 2,
			InnerRadius: DefaultInnerDiameter / 2,
		})
	}
	return zones
}
