// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hazard

import (
	"fmt"
	"math"

	"github.com/Thermoquad/minewatch/pkg/position"
)

// Result is the outcome of classifying one point
type Result struct {
	Status Status
	// Zone is the index of the zone that decided Status, -1 when Safe
	Zone int
	// Distance is the smallest footprint-to-center distance over all zones
	Distance float64
}

// Classifier maps a point to a safety status. It is immutable and safe for
// concurrent use.
type Classifier struct {
	zones     []Zone
	footprint Footprint
}

// NewClassifier validates the zones and footprint
func NewClassifier(zones []Zone, footprint Footprint) (*Classifier, error) {
	if len(zones) == 0 {
		return nil, fmt.Errorf("%w: at least one zone is required", ErrInvalidZone)
	}
	for i, z := range zones {
		if err := z.Validate(); err != nil {
			return nil, fmt.Errorf("zone %d: %w", i, err)
		}
	}
	if err := footprint.Validate(); err != nil {
		return nil, err
	}

	return &Classifier{
		zones:     append([]Zone(nil), zones...),
		footprint: footprint,
	}, nil
}

// MustDefault returns a classifier with the default zones and footprint
func MustDefault() *Classifier {
	c, err := NewClassifier(DefaultZones(), DefaultFootprint())
	if err != nil {
		panic(err)
	}
	return c
}

// Zones returns a copy of the configured zones
func (c *Classifier) Zones() []Zone {
	return append([]Zone(nil), c.zones...)
}

// Footprint returns the configured footprint
func (c *Classifier) Footprint() Footprint {
	return c.footprint
}

// Classify checks every zone before concluding: any inner-radius hit is Mine,
// otherwise any outer-radius hit is Warning, otherwise Safe. Distances equal to a
// radius count as inside.
func (c *Classifier) Classify(p position.Point) Result {
	rect := c.footprint.Rect(p)

	result := Result{Status: Safe, Zone: -1, Distance: math.Inf(1)}
	for i, z := range c.zones {
		d := RectDistance(rect, z.Center)
		if d < result.Distance {
			result.Distance = d
		}

		switch {
		case d <= z.InnerRadius:
			if result.Status < Mine {
				result.Status = Mine
				result.Zone = i
			}
		case d <= z.OuterRadius:
			if result.Status < Warning {
				result.Status = Warning
				result.Zone = i
			}
		}
	}
	return result
}
