package grid

import (
	"fmt"
	"strings"
)

// MaxSheetNameLength is the longest worksheet name the host accepts.
const MaxSheetNameLength = 31

// illegalSheetNameChars are characters spreadsheet applications reject in
// worksheet names.
const illegalSheetNameChars = `:\/?*[]`

// SanitizeSheetName strips characters that are illegal in a worksheet name
// and truncates the result to MaxSheetNameLength runes. An empty result
// falls back to "Sheet".
func SanitizeSheetName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if strings.ContainsRune(illegalSheetNameChars, r) {
			continue
		}
		b.WriteRune(r)
	}
	clean := strings.TrimSpace(b.String())
	if clean == "" {
		clean = "Sheet"
	}
	return Truncate(clean, MaxSheetNameLength)
}

// UniqueSheetName returns name if it does not collide (case-insensitively)
// with any existing sheet name, otherwise appends a numeric suffix ("_1",
// "_2", ...), shortening the base as needed to keep the combined length
// within MaxSheetNameLength, and increments until the name is unique.
func UniqueSheetName(name string, existing []string) string {
	taken := make(map[string]bool, len(existing))
	for _, e := range existing {
		taken[strings.ToLower(e)] = true
	}

	name = SanitizeSheetName(name)
	if !taken[strings.ToLower(name)] {
		return name
	}

	for n := 1; ; n++ {
		suffix := fmt.Sprintf("_%d", n)
		base := Truncate(name, MaxSheetNameLength-len(suffix))
		candidate := base + suffix
		if !taken[strings.ToLower(candidate)] {
			return candidate
		}
	}
}
