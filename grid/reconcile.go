package grid

// Reconcile merges resolved translations back onto the original grid and
// returns a new grid of identical shape. For every translatable cell whose
// source text appears in resolved, the translated value is written (truncated
// to maxLen runes). Cells whose text is absent from resolved — failed or
// unresolved translations — keep their original value, as do all
// non-translatable cells. This is the data-safety contract: a failure never
// replaces or blanks existing data.
func Reconcile(original Grid, cells []Cell, resolved map[string]string, maxLen int) Grid {
	out := original.Clone()
	for _, c := range cells {
		translated, ok := resolved[c.Text]
		if !ok {
			continue
		}
		out[c.Ref.Row][c.Ref.Col] = Truncate(translated, maxLen)
	}
	return out
}

// Truncate limits s to at most maxLen runes. Counting runes rather than
// bytes keeps multi-byte target languages from being cut mid-character.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}
