package xlsx

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/gridlate/gridlate/grid"
)

// newTestWorkbook writes a small workbook to a temp file and opens it
// through the adapter.
func newTestWorkbook(t *testing.T) *Workbook {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	_ = f.SetSheetName(sheet, "Data")
	_ = f.SetCellValue("Data", "A1", "Hello")
	_ = f.SetCellValue("Data", "B1", 42)
	_ = f.SetCellValue("Data", "A2", "World")
	_ = f.SetCellValue("Data", "B2", true)

	path := filepath.Join(t.TempDir(), "test.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("saving fixture: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("closing fixture: %v", err)
	}

	wb, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { wb.Close() })
	return wb
}

func TestWorkbookRead(t *testing.T) {
	wb := newTestWorkbook(t)

	g, local, err := wb.Read("Data", "A1:B2")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if local != "A1:B2" {
		t.Errorf("local = %q", local)
	}

	if g[0][0] != "Hello" || g[1][0] != "World" {
		t.Errorf("text cells = %v / %v", g[0][0], g[1][0])
	}
	if _, ok := g[0][1].(float64); !ok {
		t.Errorf("numeric cell read as %T (%v)", g[0][1], g[0][1])
	}
	if _, ok := g[1][1].(bool); !ok {
		t.Errorf("bool cell read as %T (%v)", g[1][1], g[1][1])
	}
}

func TestWorkbookReadUsedRange(t *testing.T) {
	wb := newTestWorkbook(t)

	g, local, err := wb.Read("Data", "")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if local != "A1:B2" {
		t.Errorf("resolved range = %q", local)
	}
	rows, cols := g.Shape()
	if rows != 2 || cols != 2 {
		t.Errorf("shape = %dx%d", rows, cols)
	}
}

func TestWorkbookWrite(t *testing.T) {
	wb := newTestWorkbook(t)

	out := grid.Grid{{"Bonjour", nil}, {"Monde", nil}}
	if err := wb.Write("Data", "A1:B2", out); err != nil {
		t.Fatalf("Write: %v", err)
	}

	g, _, err := wb.Read("Data", "A1:B2")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if g[0][0] != "Bonjour" || g[1][0] != "Monde" {
		t.Errorf("written cells = %v / %v", g[0][0], g[1][0])
	}
	// nil values in the output grid leave cells untouched.
	if _, ok := g[0][1].(float64); !ok {
		t.Errorf("untouched cell = %T (%v)", g[0][1], g[0][1])
	}
}

func TestWorkbookCopySheet(t *testing.T) {
	wb := newTestWorkbook(t)

	if err := wb.CopySheet("Data"); err != nil {
		t.Fatalf("CopySheet: %v", err)
	}

	names, err := wb.SheetNames()
	if err != nil {
		t.Fatalf("SheetNames: %v", err)
	}
	found := ""
	for _, n := range names {
		if n != "Data" {
			found = n
		}
	}
	if found != "Data (2)" {
		t.Fatalf("copy name = %q (sheets %v)", found, names)
	}

	g, _, err := wb.Read(found, "A1")
	if err != nil {
		t.Fatalf("Read copy: %v", err)
	}
	if g[0][0] != "Hello" {
		t.Errorf("copy contents = %v", g[0][0])
	}
}

func TestWorkbookRenameSheet(t *testing.T) {
	wb := newTestWorkbook(t)

	if err := wb.RenameSheet("Data", "Daten"); err != nil {
		t.Fatalf("RenameSheet: %v", err)
	}
	names, _ := wb.SheetNames()
	if len(names) != 1 || names[0] != "Daten" {
		t.Errorf("sheets = %v", names)
	}
}
