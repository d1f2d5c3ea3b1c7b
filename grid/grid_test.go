package grid

import "testing"

// ---- A1 notation ----

func TestCellName(t *testing.T) {
	tests := []struct {
		ref  CellRef
		want string
	}{
		{CellRef{0, 0}, "A1"},
		{CellRef{1, 1}, "B2"},
		{CellRef{11, 25}, "Z12"},
		{CellRef{0, 26}, "AA1"},
		{CellRef{99, 27}, "AB100"},
		{CellRef{0, 701}, "ZZ1"},
		{CellRef{0, 702}, "AAA1"},
	}
	for _, tt := range tests {
		if got := CellName(tt.ref); got != tt.want {
			t.Errorf("CellName(%+v) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}

func TestParseCellName(t *testing.T) {
	t.Run("round-trips CellName", func(t *testing.T) {
		for _, ref := range []CellRef{{0, 0}, {5, 2}, {11, 25}, {0, 26}, {999, 702}} {
			got, err := ParseCellName(CellName(ref))
			if err != nil {
				t.Fatalf("ParseCellName(%q): %v", CellName(ref), err)
			}
			if got != ref {
				t.Errorf("round-trip %+v -> %q -> %+v", ref, CellName(ref), got)
			}
		}
	})

	t.Run("accepts lowercase and whitespace", func(t *testing.T) {
		got, err := ParseCellName("  b2 ")
		if err != nil {
			t.Fatalf("ParseCellName: %v", err)
		}
		if (got != CellRef{Row: 1, Col: 1}) {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("rejects malformed references", func(t *testing.T) {
		for _, s := range []string{"", "A", "1", "A0", "1A", "A1B", "!"} {
			if _, err := ParseCellName(s); err == nil {
				t.Errorf("ParseCellName(%q): expected error", s)
			}
		}
	})
}

func TestParseRange(t *testing.T) {
	t.Run("full range", func(t *testing.T) {
		start, end, err := ParseRange("A1:C3")
		if err != nil {
			t.Fatalf("ParseRange: %v", err)
		}
		if (start != CellRef{0, 0}) || (end != CellRef{2, 2}) {
			t.Errorf("got %+v..%+v", start, end)
		}
	})

	t.Run("bare cell is a 1x1 range", func(t *testing.T) {
		start, end, err := ParseRange("B2")
		if err != nil {
			t.Fatalf("ParseRange: %v", err)
		}
		if start != end || (start != CellRef{1, 1}) {
			t.Errorf("got %+v..%+v", start, end)
		}
	})

	t.Run("rejects inverted and empty ranges", func(t *testing.T) {
		for _, s := range []string{"C3:A1", "B5:B2", ""} {
			if _, _, err := ParseRange(s); err == nil {
				t.Errorf("ParseRange(%q): expected error", s)
			}
		}
	})
}

func TestRangeName(t *testing.T) {
	if got := RangeName(CellRef{0, 0}, CellRef{2, 2}); got != "A1:C3" {
		t.Errorf("RangeName = %q", got)
	}
	if got := RangeName(CellRef{1, 1}, CellRef{1, 1}); got != "B2" {
		t.Errorf("single-cell RangeName = %q", got)
	}
}

func TestLocalRef(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Sheet1!A1:B2", "A1:B2"},
		{"'My Sheet'!C3", "C3"},
		{"A1:B2", "A1:B2"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := LocalRef(tt.in); got != tt.want {
			t.Errorf("LocalRef(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// ---- Grid ----

func TestGridShape(t *testing.T) {
	g := Grid{{"a", "b", "c"}, {1.0, nil, true}}
	rows, cols := g.Shape()
	if rows != 2 || cols != 3 {
		t.Errorf("Shape = %d x %d", rows, cols)
	}

	rows, cols = Grid{}.Shape()
	if rows != 0 || cols != 0 {
		t.Errorf("empty Shape = %d x %d", rows, cols)
	}
}

func TestGridClone(t *testing.T) {
	g := Grid{{"a", 1.0}, {nil, "b"}}
	c := g.Clone()

	c[0][0] = "mutated"
	if g[0][0] != "a" {
		t.Errorf("Clone shares row storage with original")
	}
}
