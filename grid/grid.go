// Package grid defines the working data model for spreadsheet translation:
// a rectangular grid of cell values, cell/range references in A1 notation,
// the reconciliation step that merges translation outcomes back into a grid,
// and the Host interface through which a spreadsheet application is driven.
package grid

import (
	"fmt"
	"strings"
)

// Grid is a row-major rectangular sequence of cell values. A cell value is
// a string, a number, a bool, or nil (empty). The grid is produced and
// consumed by the host collaborator; the core never holds it beyond one
// operation.
type Grid [][]any

// CellRef identifies a position in the working grid (zero-based).
type CellRef struct {
	Row int
	Col int
}

// Cell pairs a grid position with the translatable source text found there.
type Cell struct {
	Ref  CellRef
	Text string
}

// Shape returns the row and column counts of the grid. Columns are taken
// from the first row; the host guarantees rectangular ranges.
func (g Grid) Shape() (rows, cols int) {
	rows = len(g)
	if rows > 0 {
		cols = len(g[0])
	}
	return rows, cols
}

// Clone returns a deep copy of the grid's row structure. Cell values are
// copied by assignment, which is sufficient for the scalar types a grid
// holds.
func (g Grid) Clone() Grid {
	out := make(Grid, len(g))
	for i, row := range g {
		out[i] = make([]any, len(row))
		copy(out[i], row)
	}
	return out
}

// ---------------------------------------------------------------------------
// A1 notation
// ---------------------------------------------------------------------------

// CellName formats a CellRef in A1 notation ("A1", "AB12").
func CellName(ref CellRef) string {
	return colName(ref.Col) + fmt.Sprint(ref.Row+1)
}

// RangeName formats a rectangular range in A1 notation. A single-cell range
// is formatted without the colon.
func RangeName(start, end CellRef) string {
	if start == end {
		return CellName(start)
	}
	return CellName(start) + ":" + CellName(end)
}

// colName converts a zero-based column index to spreadsheet letters.
func colName(col int) string {
	name := ""
	for col >= 0 {
		name = string(rune('A'+col%26)) + name
		col = col/26 - 1
	}
	return name
}

// ParseCellName parses an A1-notation cell reference into a CellRef.
func ParseCellName(s string) (CellRef, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	i := 0
	col := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		col = col*26 + int(s[i]-'A') + 1
		i++
	}
	if i == 0 || i == len(s) {
		return CellRef{}, fmt.Errorf("invalid cell reference %q", s)
	}
	row := 0
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return CellRef{}, fmt.Errorf("invalid cell reference %q", s)
		}
		row = row*10 + int(s[i]-'0')
	}
	if row == 0 {
		return CellRef{}, fmt.Errorf("invalid cell reference %q", s)
	}
	return CellRef{Row: row - 1, Col: col - 1}, nil
}

// ParseRange parses an A1-notation range ("A1:C3" or a bare "B2") into its
// top-left and bottom-right corners.
func ParseRange(s string) (start, end CellRef, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CellRef{}, CellRef{}, fmt.Errorf("empty range reference")
	}
	parts := strings.SplitN(s, ":", 2)
	start, err = ParseCellName(parts[0])
	if err != nil {
		return CellRef{}, CellRef{}, err
	}
	if len(parts) == 1 {
		return start, start, nil
	}
	end, err = ParseCellName(parts[1])
	if err != nil {
		return CellRef{}, CellRef{}, err
	}
	if end.Row < start.Row || end.Col < start.Col {
		return CellRef{}, CellRef{}, fmt.Errorf("inverted range %q", s)
	}
	return start, end, nil
}

// LocalRef resolves a sheet-relative address from a fully qualified one:
// "Sheet1!A1:B2" and "'My Sheet'!A1:B2" both yield "A1:B2". An address
// without a sheet qualifier is returned unchanged.
func LocalRef(ref string) string {
	if i := strings.LastIndexByte(ref, '!'); i >= 0 {
		return ref[i+1:]
	}
	return ref
}
