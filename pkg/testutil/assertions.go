package testutil

import (
	"strings"
	"testing"

	"github.com/vanderheijden86/techtips/pkg/model"
)

// AssertInstructionCount verifies the expected number of instructions.
func AssertInstructionCount(t *testing.T, items []model.Instruction, expected int) {
	t.Helper()
	if len(items) != expected {
		t.Fatalf("expected %d instructions, got %d", expected, len(items))
	}
}

// AssertNoDuplicateIDs verifies all instruction IDs are set and unique.
func AssertNoDuplicateIDs(t *testing.T, items []model.Instruction) {
	t.Helper()
	seen := make(map[string]bool, len(items))
	for i, in := range items {
		if in.ID == "" {
			t.Errorf("instruction %d (%s) has no ID", i, in.Title)
			continue
		}
		if seen[in.ID] {
			t.Errorf("duplicate instruction ID: %s", in.ID)
		}
		seen[in.ID] = true
	}
}

// AssertAllValid verifies all instructions pass validation.
func AssertAllValid(t *testing.T, items []model.Instruction) {
	t.Helper()
	for i, in := range items {
		if err := in.Validate(); err != nil {
			t.Errorf("instruction %d (%s) invalid: %v", i, in.Title, err)
		}
	}
}

// AssertSameContent compares two collections record by record, ignoring IDs.
// Order matters, for records and for steps.
func AssertSameContent(t *testing.T, got, want []model.Instruction) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d instructions, got %d", len(want), len(got))
	}
	for i := range want {
		g, w := got[i], want[i]
		if g.Title != w.Title || g.Category != w.Category || g.Background != w.Background {
			t.Errorf("record %d: got {%q %q %q}, want {%q %q %q}",
				i, g.Category, g.Title, g.Background, w.Category, w.Title, w.Background)
		}
		if strings.Join(g.Steps, "\x00") != strings.Join(w.Steps, "\x00") {
			t.Errorf("record %d (%s): steps differ\n got: %q\nwant: %q", i, w.Title, g.Steps, w.Steps)
		}
	}
}

// Titles returns the titles of items in order.
func Titles(items []model.Instruction) []string {
	out := make([]string, len(items))
	for i, in := range items {
		out[i] = in.Title
	}
	return out
}
