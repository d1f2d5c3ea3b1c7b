package grid

import (
	"fmt"
	"strings"
)

// Host is the spreadsheet application boundary. The translation core drives
// a workbook exclusively through this interface; it never owns workbook
// state itself.
//
// CopySheet duplicates a worksheet and lets the host choose the copy's name.
// The operation may complete asynchronously: callers must discover the new
// sheet by diffing SheetNames sets captured before and after the copy, never
// by assuming an index or a name pattern.
type Host interface {
	// SheetNames enumerates worksheet names in workbook order.
	SheetNames() ([]string, error)
	// Read returns the values of a rectangular range and the resolved
	// local (sheet-relative) address of what was read.
	Read(sheet, ref string) (Grid, string, error)
	// Write puts a same-shaped grid of values back onto a range.
	Write(sheet, ref string, values Grid) error
	// CopySheet duplicates the named worksheet, positioned after it.
	CopySheet(src string) error
	// RenameSheet renames a worksheet.
	RenameSheet(from, to string) error
}

// ---------------------------------------------------------------------------
// In-memory host
// ---------------------------------------------------------------------------

// MemoryHost is an in-memory Host used by tests and as the reference
// semantics for real adapters. CopyLag simulates an asynchronous host copy:
// a copied sheet stays invisible to SheetNames for that many calls.
type MemoryHost struct {
	order   []string
	sheets  map[string]Grid
	pending []pendingSheet

	// CopyLag is the number of SheetNames calls a fresh copy stays hidden.
	CopyLag int
}

type pendingSheet struct {
	name  string
	after string // sheet the copy is positioned after
	lag   int
}

// NewMemoryHost creates an empty in-memory workbook.
func NewMemoryHost() *MemoryHost {
	return &MemoryHost{sheets: make(map[string]Grid)}
}

// AddSheet appends a worksheet with the given contents.
func (h *MemoryHost) AddSheet(name string, values Grid) {
	if _, ok := h.sheets[name]; !ok {
		h.order = append(h.order, name)
	}
	h.sheets[name] = values.Clone()
}

// Sheet returns the full contents of a worksheet (for test assertions).
func (h *MemoryHost) Sheet(name string) Grid {
	return h.sheets[name]
}

// SheetNames enumerates worksheets, materializing any pending copies whose
// lag has expired.
func (h *MemoryHost) SheetNames() ([]string, error) {
	var still []pendingSheet
	for _, p := range h.pending {
		if p.lag > 0 {
			p.lag--
			still = append(still, p)
			continue
		}
		h.insertAfter(p.name, p.after)
	}
	h.pending = still

	names := make([]string, len(h.order))
	copy(names, h.order)
	return names, nil
}

func (h *MemoryHost) insertAfter(name, after string) {
	for i, n := range h.order {
		if n == after {
			h.order = append(h.order[:i+1], append([]string{name}, h.order[i+1:]...)...)
			return
		}
	}
	h.order = append(h.order, name)
}

// Read returns the values of ref on the named sheet plus the local address.
func (h *MemoryHost) Read(sheet, ref string) (Grid, string, error) {
	g, ok := h.sheets[sheet]
	if !ok {
		return nil, "", fmt.Errorf("no such sheet %q", sheet)
	}
	local := LocalRef(ref)
	start, end, err := ParseRange(local)
	if err != nil {
		return nil, "", err
	}
	out := make(Grid, end.Row-start.Row+1)
	for r := range out {
		out[r] = make([]any, end.Col-start.Col+1)
		for c := range out[r] {
			gr, gc := start.Row+r, start.Col+c
			if gr < len(g) && gc < len(g[gr]) {
				out[r][c] = g[gr][gc]
			}
		}
	}
	return out, local, nil
}

// Write puts values back onto ref, growing the stored sheet as needed.
func (h *MemoryHost) Write(sheet, ref string, values Grid) error {
	g, ok := h.sheets[sheet]
	if !ok {
		return fmt.Errorf("no such sheet %q", sheet)
	}
	start, _, err := ParseRange(LocalRef(ref))
	if err != nil {
		return err
	}
	for r, row := range values {
		for c, v := range row {
			gr, gc := start.Row+r, start.Col+c
			for len(g) <= gr {
				g = append(g, nil)
			}
			for len(g[gr]) <= gc {
				g[gr] = append(g[gr], nil)
			}
			g[gr][gc] = v
		}
	}
	h.sheets[sheet] = g
	return nil
}

// CopySheet duplicates src. The copy's name follows the host convention
// "name (2)", "name (3)", ... and becomes visible after CopyLag SheetNames
// calls.
func (h *MemoryHost) CopySheet(src string) error {
	g, ok := h.sheets[src]
	if !ok {
		return fmt.Errorf("no such sheet %q", src)
	}
	name := ""
	for n := 2; ; n++ {
		name = fmt.Sprintf("%s (%d)", src, n)
		if _, taken := h.sheets[name]; !taken && !h.pendingName(name) {
			break
		}
	}
	h.sheets[name] = g.Clone()
	if h.CopyLag > 0 {
		h.pending = append(h.pending, pendingSheet{name: name, after: src, lag: h.CopyLag})
	} else {
		h.insertAfter(name, src)
	}
	return nil
}

func (h *MemoryHost) pendingName(name string) bool {
	for _, p := range h.pending {
		if strings.EqualFold(p.name, name) {
			return true
		}
	}
	return false
}

// RenameSheet renames a worksheet in place.
func (h *MemoryHost) RenameSheet(from, to string) error {
	g, ok := h.sheets[from]
	if !ok {
		return fmt.Errorf("no such sheet %q", from)
	}
	if _, taken := h.sheets[to]; taken {
		return fmt.Errorf("sheet %q already exists", to)
	}
	delete(h.sheets, from)
	h.sheets[to] = g
	for i, n := range h.order {
		if n == from {
			h.order[i] = to
		}
	}
	return nil
}
