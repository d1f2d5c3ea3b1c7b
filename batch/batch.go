// Package batch partitions source texts into API-sized batches under two
// budgets: a maximum item count and a maximum total character count.
package batch

// Split greedily accumulates texts into batches. A batch is closed before
// adding the next text would exceed maxChars, or once it holds maxItems
// items. A single text longer than maxChars flushes the current batch and is
// placed alone in its own batch — the network layer is responsible for
// surfacing a size failure for it rather than silently truncating.
//
// The concatenation of the returned batches, in order, reproduces the input
// exactly once.
func Split(texts []string, maxItems, maxChars int) [][]string {
	var batches [][]string
	var current []string
	chars := 0

	flush := func() {
		if len(current) > 0 {
			batches = append(batches, current)
			current = nil
			chars = 0
		}
	}

	for _, t := range texts {
		if len(t) > maxChars {
			// Oversized text: deliberate singleton batch.
			flush()
			batches = append(batches, []string{t})
			continue
		}
		if len(current) >= maxItems || chars+len(t) > maxChars {
			flush()
		}
		current = append(current, t)
		chars += len(t)
	}
	flush()

	return batches
}
