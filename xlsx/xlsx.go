// Package xlsx adapts an .xlsx workbook (via excelize) to the grid.Host
// interface so the CLI can translate real spreadsheet files. It is a thin
// adapter: all translation semantics live behind grid.Host.
package xlsx

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/gridlate/gridlate/grid"
)

// Workbook is an open .xlsx file implementing grid.Host.
type Workbook struct {
	f    *excelize.File
	path string
}

// Open opens an existing workbook.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return &Workbook{f: f, path: path}, nil
}

// Save writes the workbook back to its original path.
func (w *Workbook) Save() error {
	if err := w.f.Save(); err != nil {
		return fmt.Errorf("saving %s: %w", w.path, err)
	}
	return nil
}

// SaveAs writes the workbook to a different path.
func (w *Workbook) SaveAs(path string) error {
	if err := w.f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

// Close releases the underlying file.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// FirstSheet returns the workbook's first worksheet name.
func (w *Workbook) FirstSheet() string {
	names := w.f.GetSheetList()
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

// ---------------------------------------------------------------------------
// grid.Host
// ---------------------------------------------------------------------------

// SheetNames enumerates worksheet names in workbook order.
func (w *Workbook) SheetNames() ([]string, error) {
	return w.f.GetSheetList(), nil
}

// UsedRange returns the A1 address of the sheet's populated rectangle, or
// "A1" for an empty sheet.
func (w *Workbook) UsedRange(sheet string) (string, error) {
	rows, err := w.f.GetRows(sheet)
	if err != nil {
		return "", fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return "A1", nil
	}
	cols := 0
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	if cols == 0 {
		return "A1", nil
	}
	end := grid.CellRef{Row: len(rows) - 1, Col: cols - 1}
	return grid.RangeName(grid.CellRef{}, end), nil
}

// Read returns the values of a rectangular range as a grid, plus the
// resolved local address. An empty ref reads the sheet's used range.
func (w *Workbook) Read(sheet, ref string) (grid.Grid, string, error) {
	local := grid.LocalRef(ref)
	if local == "" {
		var err error
		local, err = w.UsedRange(sheet)
		if err != nil {
			return nil, "", err
		}
	}
	start, end, err := grid.ParseRange(local)
	if err != nil {
		return nil, "", err
	}

	out := make(grid.Grid, end.Row-start.Row+1)
	for r := range out {
		out[r] = make([]any, end.Col-start.Col+1)
		for c := range out[r] {
			axis, err := excelize.CoordinatesToCellName(start.Col+c+1, start.Row+r+1)
			if err != nil {
				return nil, "", err
			}
			v, err := w.cellValue(sheet, axis)
			if err != nil {
				return nil, "", err
			}
			out[r][c] = v
		}
	}
	return out, local, nil
}

// cellValue reads one cell and coerces it to the grid value model: nil for
// blank, bool, float64 for numeric, string otherwise. Coercion matters —
// numeric cells must never be queued for translation.
func (w *Workbook) cellValue(sheet, axis string) (any, error) {
	s, err := w.f.GetCellValue(sheet, axis)
	if err != nil {
		return nil, fmt.Errorf("reading cell %s!%s: %w", sheet, axis, err)
	}
	if s == "" {
		return nil, nil
	}
	ct, err := w.f.GetCellType(sheet, axis)
	if err != nil {
		return s, nil
	}
	switch ct {
	case excelize.CellTypeBool:
		return s == "TRUE" || s == "1", nil
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return n, nil
		}
	}
	return s, nil
}

// Write puts a grid of values back onto a range.
func (w *Workbook) Write(sheet, ref string, values grid.Grid) error {
	start, _, err := grid.ParseRange(grid.LocalRef(ref))
	if err != nil {
		return err
	}
	for r, row := range values {
		for c, v := range row {
			if v == nil {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(start.Col+c+1, start.Row+r+1)
			if err != nil {
				return err
			}
			if err := w.f.SetCellValue(sheet, axis, v); err != nil {
				return fmt.Errorf("writing cell %s!%s: %w", sheet, axis, err)
			}
		}
	}
	return nil
}

// CopySheet duplicates src, positioned at the end of the workbook, under a
// "name (2)"-style name chosen here.
func (w *Workbook) CopySheet(src string) error {
	from, err := w.f.GetSheetIndex(src)
	if err != nil {
		return fmt.Errorf("copying sheet %q: %w", src, err)
	}
	if from < 0 {
		return fmt.Errorf("no such sheet %q", src)
	}

	existing := make(map[string]bool)
	for _, n := range w.f.GetSheetList() {
		existing[n] = true
	}
	name := ""
	for n := 2; ; n++ {
		name = fmt.Sprintf("%s (%d)", src, n)
		if !existing[name] {
			break
		}
	}

	to, err := w.f.NewSheet(name)
	if err != nil {
		return fmt.Errorf("creating sheet %q: %w", name, err)
	}
	if err := w.f.CopySheet(from, to); err != nil {
		return fmt.Errorf("copying sheet %q: %w", src, err)
	}
	return nil
}

// RenameSheet renames a worksheet.
func (w *Workbook) RenameSheet(from, to string) error {
	if err := w.f.SetSheetName(from, to); err != nil {
		return fmt.Errorf("renaming sheet %q: %w", from, err)
	}
	return nil
}
