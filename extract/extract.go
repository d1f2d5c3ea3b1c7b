// Package extract identifies the translatable cells of a grid. A cell is
// translatable only if its value is a string whose trimmed form is non-empty;
// numbers, booleans, and blank cells are never queued for translation.
package extract

import (
	"strings"

	"github.com/gridlate/gridlate/grid"
)

// Cells walks a grid in row-major order (column-major within each row) and
// returns the translatable cells it finds. The walk is pure and stable: the
// same grid always yields the same cells in the same order.
func Cells(g grid.Grid) []grid.Cell {
	var cells []grid.Cell
	for r, row := range g {
		for c, v := range row {
			s, ok := v.(string)
			if !ok || strings.TrimSpace(s) == "" {
				continue
			}
			cells = append(cells, grid.Cell{
				Ref:  grid.CellRef{Row: r, Col: c},
				Text: s,
			})
		}
	}
	return cells
}

// UniqueTexts returns the distinct source texts of cells in first-seen order.
// Texts are keyed by exact string equality — case- and whitespace-sensitive —
// so "Hello" and "hello " are two entries.
func UniqueTexts(cells []grid.Cell) []string {
	seen := make(map[string]bool, len(cells))
	var texts []string
	for _, c := range cells {
		if seen[c.Text] {
			continue
		}
		seen[c.Text] = true
		texts = append(texts, c.Text)
	}
	return texts
}
