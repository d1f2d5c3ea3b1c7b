package grid

import (
	"reflect"
	"testing"
)

func newTestHost() *MemoryHost {
	h := NewMemoryHost()
	h.AddSheet("Data", Grid{
		{"a", "b"},
		{1.0, "c"},
	})
	return h
}

func TestMemoryHostRead(t *testing.T) {
	h := newTestHost()

	t.Run("reads a sub-range", func(t *testing.T) {
		g, local, err := h.Read("Data", "A1:B1")
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if local != "A1:B1" {
			t.Errorf("local = %q", local)
		}
		if !reflect.DeepEqual(g, Grid{{"a", "b"}}) {
			t.Errorf("got %v", g)
		}
	})

	t.Run("strips the sheet qualifier", func(t *testing.T) {
		_, local, err := h.Read("Data", "Data!A2:B2")
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if local != "A2:B2" {
			t.Errorf("local = %q", local)
		}
	})

	t.Run("reads beyond stored bounds as nil", func(t *testing.T) {
		g, _, err := h.Read("Data", "A1:C3")
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if g[2][2] != nil {
			t.Errorf("out-of-bounds cell = %v", g[2][2])
		}
	})

	t.Run("unknown sheet fails", func(t *testing.T) {
		if _, _, err := h.Read("Nope", "A1"); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestMemoryHostWrite(t *testing.T) {
	h := newTestHost()

	if err := h.Write("Data", "B2:C3", Grid{{"x", "y"}, {"z", "w"}}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	g := h.Sheet("Data")
	if g[1][1] != "x" || g[1][2] != "y" || g[2][1] != "z" || g[2][2] != "w" {
		t.Errorf("sheet after write: %v", g)
	}
	if g[0][0] != "a" {
		t.Errorf("untouched cell changed: %v", g[0][0])
	}
}

func TestMemoryHostCopySheet(t *testing.T) {
	t.Run("synchronous copy is visible immediately", func(t *testing.T) {
		h := newTestHost()
		if err := h.CopySheet("Data"); err != nil {
			t.Fatalf("CopySheet: %v", err)
		}
		names, _ := h.SheetNames()
		if !reflect.DeepEqual(names, []string{"Data", "Data (2)"}) {
			t.Errorf("names = %v", names)
		}
		if !reflect.DeepEqual(h.Sheet("Data (2)"), h.Sheet("Data")) {
			t.Errorf("copy differs from source")
		}
	})

	t.Run("copy names increment", func(t *testing.T) {
		h := newTestHost()
		h.CopySheet("Data")
		h.CopySheet("Data")
		names, _ := h.SheetNames()
		found := false
		for _, n := range names {
			if n == "Data (3)" {
				found = true
			}
		}
		if !found {
			t.Errorf("names = %v", names)
		}
	})

	t.Run("lagged copy appears only after enough listings", func(t *testing.T) {
		h := newTestHost()
		h.CopyLag = 2
		if err := h.CopySheet("Data"); err != nil {
			t.Fatalf("CopySheet: %v", err)
		}

		names, _ := h.SheetNames()
		if len(names) != 1 {
			t.Fatalf("copy visible too early: %v", names)
		}
		names, _ = h.SheetNames()
		if len(names) != 1 {
			t.Fatalf("copy visible too early: %v", names)
		}
		names, _ = h.SheetNames()
		if len(names) != 2 || names[1] != "Data (2)" {
			t.Fatalf("copy never appeared: %v", names)
		}
	})
}

func TestMemoryHostRenameSheet(t *testing.T) {
	h := newTestHost()
	h.AddSheet("Other", Grid{{"x"}})

	if err := h.RenameSheet("Data", "Daten"); err != nil {
		t.Fatalf("RenameSheet: %v", err)
	}
	names, _ := h.SheetNames()
	if !reflect.DeepEqual(names, []string{"Daten", "Other"}) {
		t.Errorf("names = %v", names)
	}

	if err := h.RenameSheet("Daten", "Other"); err == nil {
		t.Fatal("expected collision error")
	}
	if err := h.RenameSheet("Nope", "X"); err == nil {
		t.Fatal("expected missing-sheet error")
	}
}
