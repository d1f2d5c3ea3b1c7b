package grid

import (
	"strings"
	"testing"
)

func TestSanitizeSheetName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain name unchanged", "Report", "Report"},
		{"illegal characters stripped", `Q1: sales/forecast?`, "Q1 salesforecast"},
		{"brackets and stars stripped", "[Draft]*v2", "Draftv2"},
		{"backslash stripped", `a\b`, "ab"},
		{"whitespace trimmed", "  Data  ", "Data"},
		{"empty falls back", "", "Sheet"},
		{"only illegal characters falls back", "***", "Sheet"},
		{"truncated to limit", strings.Repeat("a", 40), strings.Repeat("a", 31)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeSheetName(tt.in); got != tt.want {
				t.Errorf("SanitizeSheetName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestUniqueSheetName(t *testing.T) {
	t.Run("no collision returns name as-is", func(t *testing.T) {
		if got := UniqueSheetName("Bericht", []string{"Report", "Data"}); got != "Bericht" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("collision appends numeric suffix", func(t *testing.T) {
		if got := UniqueSheetName("Report", []string{"Report"}); got != "Report_1" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("suffix increments past taken suffixes", func(t *testing.T) {
		existing := []string{"Report", "Report_1"}
		if got := UniqueSheetName("Report", existing); got != "Report_2" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("collisions are case-insensitive", func(t *testing.T) {
		if got := UniqueSheetName("report", []string{"REPORT"}); got != "report_1" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("suffix stays within the length limit", func(t *testing.T) {
		long := strings.Repeat("a", 31)
		got := UniqueSheetName(long, []string{long})
		if len(got) > MaxSheetNameLength {
			t.Fatalf("len = %d", len(got))
		}
		if !strings.HasSuffix(got, "_1") {
			t.Errorf("got %q", got)
		}
	})
}
