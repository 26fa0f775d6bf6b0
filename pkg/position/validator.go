// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package position

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AnomalyType represents the reason a coordinate pair was rejected
type AnomalyType int

const (
	AnomalyOutOfBounds AnomalyType = iota
	AnomalyNotANumber
	AnomalyMalformedInput
)

// String returns a short name for the anomaly
func (a AnomalyType) String() string {
	switch a {
	case AnomalyOutOfBounds:
		return "OUT_OF_BOUNDS"
	case AnomalyNotANumber:
		return "NOT_A_NUMBER"
	case AnomalyMalformedInput:
		return "MALFORMED_INPUT"
	default:
		return "UNKNOWN"
	}
}

// ValidationError represents a rejected coordinate pair
type ValidationError struct {
	Type    AnomalyType
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	return v.Message
}

// Validate accepts (x, y) iff both lie within [FieldMin, FieldMax]
func Validate(x, y float64) (Point, *ValidationError) {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return Point{}, &ValidationError{
			Type:    AnomalyNotANumber,
			Message: fmt.Sprintf("Coordinate is not a finite number (x=%v, y=%v)", x, y),
			Details: map[string]interface{}{"x": x, "y": y},
		}
	}

	if !inField(x) || !inField(y) {
		return Point{}, &ValidationError{
			Type: AnomalyOutOfBounds,
			Message: fmt.Sprintf("Coordinate out of range (x=%s, y=%s, valid: %d-%d mm)",
				formatMillimeters(x), formatMillimeters(y), int(FieldMin), int(FieldMax)),
			Details: map[string]interface{}{"x": x, "y": y, "min": FieldMin, "max": FieldMax},
		}
	}

	return Point{X: x, Y: y}, nil
}

// ValidateFrame validates an extracted frame, keeping the raw token in the details
func ValidateFrame(f Frame) (Point, *ValidationError) {
	if f.X > uint64(FieldMax) || f.Y > uint64(FieldMax) {
		return Point{}, &ValidationError{
			Type: AnomalyOutOfBounds,
			Message: fmt.Sprintf("Frame %s out of range (x=%d, y=%d, valid: %d-%d mm)",
				f.Raw, f.X, f.Y, int(FieldMin), int(FieldMax)),
			Details: map[string]interface{}{"x": f.X, "y": f.Y, "raw": f.Raw, "min": FieldMin, "max": FieldMax},
		}
	}
	return Validate(float64(f.X), float64(f.Y))
}

// ParseManual parses operator-entered coordinates and validates them
func ParseManual(xText, yText string) (Point, *ValidationError) {
	x, errX := strconv.ParseFloat(strings.TrimSpace(xText), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(yText), 64)
	if errX != nil || errY != nil {
		return Point{}, &ValidationError{
			Type:    AnomalyMalformedInput,
			Message: fmt.Sprintf("Coordinates must be numbers (x=%q, y=%q)", xText, yText),
			Details: map[string]interface{}{"x": xText, "y": yText},
		}
	}
	return Validate(x, y)
}

func inField(v float64) bool {
	return v >= FieldMin && v <= FieldMax
}
