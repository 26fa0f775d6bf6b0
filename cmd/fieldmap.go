// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Thermoquad/minewatch/pkg/hazard"
	"github.com/Thermoquad/minewatch/pkg/position"
)

type fieldCell int

const (
	cellEmpty fieldCell = iota
	cellWarning
	cellMine
	cellPoint
)

const (
	fieldCols = 40
	fieldRows = 20
)

var (
	fieldEmptyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	fieldWarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	fieldMineStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// fieldGrid rasterizes the field with y increasing upward. Zone rings are drawn
// from their radii; the point cell, when given, overrides the ring underneath.
func fieldGrid(zones []hazard.Zone, point *position.Point, cols, rows int) [][]fieldCell {
	span := position.FieldMax - position.FieldMin
	cellW := span / float64(cols)
	cellH := span / float64(rows)

	grid := make([][]fieldCell, rows)
	for r := range grid {
		grid[r] = make([]fieldCell, cols)
		y := position.FieldMax - (float64(r)+0.5)*cellH
		for c := range grid[r] {
			x := position.FieldMin + (float64(c)+0.5)*cellW
			grid[r][c] = zoneCell(zones, x, y)
		}
	}

	if point != nil {
		c := clampIndex(int((point.X-position.FieldMin)/cellW), cols)
		r := rows - 1 - clampIndex(int((point.Y-position.FieldMin)/cellH), rows)
		grid[r][c] = cellPoint
	}
	return grid
}

func zoneCell(zones []hazard.Zone, x, y float64) fieldCell {
	cell := cellEmpty
	for _, z := range zones {
		d := math.Hypot(x-z.Center.X, y-z.Center.Y)
		if d <= z.InnerRadius {
			return cellMine
		}
		if d <= z.OuterRadius {
			cell = cellWarning
		}
	}
	return cell
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// renderField draws the grid with the point marker coloured by status
func renderField(grid [][]fieldCell, status hazard.Status) string {
	pointStyle := statusStyle(status).Bold(true)

	var s strings.Builder
	for r, row := range grid {
		for _, cell := range row {
			switch cell {
			case cellMine:
				s.WriteString(fieldMineStyle.Render("▓"))
			case cellWarning:
				s.WriteString(fieldWarningStyle.Render("░"))
			case cellPoint:
				s.WriteString(pointStyle.Render("●"))
			default:
				s.WriteString(fieldEmptyStyle.Render("·"))
			}
		}
		if r < len(grid)-1 {
			s.WriteString("\n")
		}
	}
	return s.String()
}

func statusStyle(status hazard.Status) lipgloss.Style {
	switch status {
	case hazard.Mine:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	case hazard.Warning:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	}
}
