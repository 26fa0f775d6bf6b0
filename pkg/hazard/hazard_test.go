// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hazard

import (
	"errors"
	"math"
	"testing"

	"github.com/Thermoquad/minewatch/pkg/position"
)

func pt(x, y float64) position.Point {
	return position.Point{X: x, Y: y}
}

// ============================================================
// Geometry Tests
// ============================================================

func TestFootprint_RectAnchoredAtCenter(t *testing.T) {
	r := DefaultFootprint().Rect(pt(2000, 2000))
	if r.CenterX != 2000 || r.CenterY != 2000 {
		t.Errorf("Expected rect centered on point, got (%v, %v)", r.CenterX, r.CenterY)
	}
	if r.Width != 150 || r.Height != 80 {
		t.Errorf("Expected 150x80, got %vx%v", r.Width, r.Height)
	}
}

func TestFootprint_RectOffsetAnchor(t *testing.T) {
	f := Footprint{Width: 100, Height: 50, AnchorX: 0, AnchorY: 0}
	r := f.Rect(pt(10, 20))
	if r.CenterX != 60 || r.CenterY != 45 {
		t.Errorf("Expected center (60, 45), got (%v, %v)", r.CenterX, r.CenterY)
	}
}

func TestRectDistance(t *testing.T) {
	r := Rect{CenterX: 0, CenterY: 0, Width: 2, Height: 2}
	tests := []struct {
		name     string
		center   position.Point
		expected float64
	}{
		{"inside", pt(0.5, 0.5), 0},
		{"on edge", pt(1, 0), 0},
		{"right of", pt(4, 0), 3},
		{"above", pt(0, -6), 5},
		{"diagonal", pt(4, 5), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if d := RectDistance(r, tt.center); math.Abs(d-tt.expected) > 1e-9 {
				t.Errorf("Expected %v, got %v", tt.expected, d)
			}
		})
	}
}

// ============================================================
// Classifier Tests
// ============================================================

func TestClassify_DefaultScenarios(t *testing.T) {
	c := MustDefault()
	tests := []struct {
		name     string
		point    position.Point
		expected Status
		zone     int
	}{
		{"on middle zone center", pt(2000, 2000), Mine, 1},
		{"between inner and outer", pt(1700, 2000), Warning, 1},
		{"origin far from zones", pt(0, 0), Safe, -1},
		{"far corner", pt(4000, 4000), Safe, -1},
		{"exactly outer radius", pt(425, 2000), Warning, 0},
		{"exactly inner radius", pt(795, 2000), Mine, 0},
		{"just outside inner radius", pt(794, 2000), Warning, 0},
		{"just outside outer radius", pt(424, 2000), Safe, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Classify(tt.point)
			if res.Status != tt.expected {
				t.Errorf("Expected %s, got %s (distance %.2f)", tt.expected, res.Status, res.Distance)
			}
			if res.Zone != tt.zone {
				t.Errorf("Expected zone %d, got %d", tt.zone, res.Zone)
			}
		})
	}
}

func TestClassify_MineOverridesWarning(t *testing.T) {
	zoneA := Zone{Center: pt(1000, 2000), OuterRadius: 500, InnerRadius: 130}
	zoneB := Zone{Center: pt(1300, 2000), OuterRadius: 500, InnerRadius: 100}

	for _, order := range [][]Zone{{zoneA, zoneB}, {zoneB, zoneA}} {
		c, err := NewClassifier(order, DefaultFootprint())
		if err != nil {
			t.Fatalf("NewClassifier: %v", err)
		}
		res := c.Classify(pt(1000, 2000))
		if res.Status != Mine {
			t.Errorf("Expected MINE regardless of zone order, got %s", res.Status)
		}
		if order[res.Zone] != zoneA {
			t.Errorf("Expected deciding zone to be A, got %v", order[res.Zone])
		}
	}
}

func TestClassify_ReportsMinimumDistance(t *testing.T) {
	res := MustDefault().Classify(pt(1700, 2000))
	if math.Abs(res.Distance-225) > 1e-9 {
		t.Errorf("Expected distance 225, got %v", res.Distance)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	c := MustDefault()
	p := pt(1234, 2100)
	first := c.Classify(p)
	for i := 0; i < 100; i++ {
		if got := c.Classify(p); got != first {
			t.Fatalf("Classification changed: %+v != %+v", got, first)
		}
	}
}

func TestStatus_Ordering(t *testing.T) {
	if !(Safe < Warning && Warning < Mine) {
		t.Error("Expected Safe < Warning < Mine")
	}
	if Mine.String() != "MINE" || Warning.String() != "WARNING" || Safe.String() != "SAFE" {
		t.Error("Unexpected status names")
	}
}

// ============================================================
// Configuration Validation Tests
// ============================================================

func TestNewClassifier_RejectsInvalidZones(t *testing.T) {
	tests := []struct {
		name  string
		zones []Zone
	}{
		{"empty", nil},
		{"inner equals outer", []Zone{{Center: pt(0, 0), OuterRadius: 100, InnerRadius: 100}}},
		{"inner larger", []Zone{{Center: pt(0, 0), OuterRadius: 100, InnerRadius: 200}}},
		{"negative inner", []Zone{{Center: pt(0, 0), OuterRadius: 100, InnerRadius: -1}}},
		{"zero outer", []Zone{{Center: pt(0, 0), OuterRadius: 0, InnerRadius: 0}}},
		{"NaN radii", []Zone{{Center: pt(2000, 2000), OuterRadius: math.NaN(), InnerRadius: math.NaN()}}},
		{"NaN inner", []Zone{{Center: pt(2000, 2000), OuterRadius: 500, InnerRadius: math.NaN()}}},
		{"NaN outer", []Zone{{Center: pt(2000, 2000), OuterRadius: math.NaN(), InnerRadius: 130}}},
		{"infinite outer", []Zone{{Center: pt(2000, 2000), OuterRadius: math.Inf(1), InnerRadius: 130}}},
		{"NaN center", []Zone{{Center: pt(math.NaN(), 2000), OuterRadius: 500, InnerRadius: 130}}},
		{"infinite center", []Zone{{Center: pt(2000, math.Inf(-1)), OuterRadius: 500, InnerRadius: 130}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClassifier(tt.zones, DefaultFootprint())
			if !errors.Is(err, ErrInvalidZone) {
				t.Errorf("Expected ErrInvalidZone, got %v", err)
			}
		})
	}
}

func TestNewClassifier_RejectsInvalidFootprint(t *testing.T) {
	tests := []struct {
		name      string
		footprint Footprint
	}{
		{"zero width", Footprint{Width: 0, Height: 80}},
		{"NaN width", Footprint{Width: math.NaN(), Height: 80, AnchorX: 75, AnchorY: 40}},
		{"NaN height", Footprint{Width: 150, Height: math.NaN(), AnchorX: 75, AnchorY: 40}},
		{"infinite width", Footprint{Width: math.Inf(1), Height: 80, AnchorX: 75, AnchorY: 40}},
		{"NaN anchor", Footprint{Width: 150, Height: 80, AnchorX: math.NaN(), AnchorY: 40}},
		{"infinite anchor", Footprint{Width: 150, Height: 80, AnchorX: 75, AnchorY: math.Inf(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClassifier(DefaultZones(), tt.footprint)
			if !errors.Is(err, ErrInvalidFootprint) {
				t.Errorf("Expected ErrInvalidFootprint, got %v", err)
			}
		})
	}
}

func TestNewClassifier_CopiesZones(t *testing.T) {
	zones := DefaultZones()
	c, err := NewClassifier(zones, DefaultFootprint())
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}
	zones[1].InnerRadius = 0
	if c.Zones()[1].InnerRadius != DefaultInnerDiameter/2 {
		t.Error("Classifier should not observe caller mutations")
	}
}
