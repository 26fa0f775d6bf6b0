// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package position extracts distance[X,Y] position frames from a raw byte
// stream and validates them against the 4000 x 4000 mm field.
package position
