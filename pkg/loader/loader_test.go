package loader_test

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/techtips/pkg/debug"
	"github.com/vanderheijden86/techtips/pkg/loader"
	"github.com/vanderheijden86/techtips/pkg/model"
	"github.com/vanderheijden86/techtips/pkg/testutil"
)

const shareAFile = `[
  {"category": "Files", "title": "Share a File", "background": "onedrive",
   "steps": ["Open OneDrive.", "Select Share."]}
]`

func TestParse_ShareAFile(t *testing.T) {
	items, err := loader.Parse(strings.NewReader(shareAFile), loader.ParseOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertInstructionCount(t, items, 1)

	in := items[0]
	if in.Title != "Share a File" || in.Category != "Files" || in.Background != "onedrive" {
		t.Fatalf("unexpected record: %+v", in)
	}
	if len(in.Steps) != 2 || in.Steps[0] != "Open OneDrive." || in.Steps[1] != "Select Share." {
		t.Fatalf("steps out of order: %v", in.Steps)
	}
	if in.ID == "" {
		t.Fatal("expected an ID to be assigned at load time")
	}
}

func TestParse_SkipsMalformedRecordsWithoutCorruptingNeighbours(t *testing.T) {
	doc := `[
  {"category": "Printing", "title": "Good One", "steps": ["a", "b"]},
  {"category": "Printing", "title": 42, "steps": ["x"]},
  "not an object",
  {"category": "Printing", "title": "No Steps", "steps": []},
  {"category": "Printing", "title": "Blank Step", "steps": ["ok", ""]},
  null,
  {"category": "Printing", "title": "Good Two", "steps": ["c"]}
]`
	var warnings []string
	items, err := loader.Parse(strings.NewReader(doc), loader.ParseOptions{
		WarningHandler: func(msg string) { warnings = append(warnings, msg) },
	})
	if err != nil {
		t.Fatalf("expected success with skipped records, got: %v", err)
	}

	testutil.AssertInstructionCount(t, items, 2)
	if items[0].Title != "Good One" || items[1].Title != "Good Two" {
		t.Fatalf("unexpected titles: %q, %q", items[0].Title, items[1].Title)
	}
	if got := strings.Join(items[0].Steps, ","); got != "a,b" {
		t.Fatalf("neighbour steps corrupted: %q", got)
	}
	if got := strings.Join(items[1].Steps, ","); got != "c" {
		t.Fatalf("neighbour steps corrupted: %q", got)
	}
	if len(warnings) != 5 {
		t.Fatalf("expected 5 warnings, got %d: %v", len(warnings), warnings)
	}
}

func TestParse_DocumentLevelFailures(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"whitespace", "  \n\t "},
		{"object instead of array", `{"title": "x", "steps": ["a"]}`},
		{"truncated", `[{"title": "x", "steps": ["a"]`},
		{"garbage", `not json at all`},
		{"null", `null`},
		{"number", `42`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := loader.Parse(strings.NewReader(tt.doc), loader.ParseOptions{})
			if !errors.Is(err, loader.ErrDecodeFailure) {
				t.Fatalf("expected ErrDecodeFailure, got %v", err)
			}
			if len(items) != 0 {
				t.Fatalf("expected no items on failure, got %d", len(items))
			}
		})
	}
}

func TestParse_NullIsMalformedNotEmpty(t *testing.T) {
	res := loader.Collect("null.json", func(opts loader.ParseOptions) ([]model.Instruction, error) {
		return loader.Parse(strings.NewReader("null"), opts)
	})
	if !res.Failed() || !res.Malformed() {
		t.Fatalf("null document should be malformed, got err=%v", res.Err)
	}
}

func TestParse_WarningsNameSourcePositions(t *testing.T) {
	doc := `[
  "not an object",
  {"title": "Good", "steps": ["a"]},
  {"steps": ["orphan"]}
]`
	var warnings []string
	_, err := loader.Parse(strings.NewReader(doc), loader.ParseOptions{
		WarningHandler: func(msg string) { warnings = append(warnings, msg) },
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", warnings)
	}
	if !strings.Contains(warnings[0], "record 0") {
		t.Errorf("first warning = %q, want record 0", warnings[0])
	}
	if !strings.Contains(warnings[1], "#2") {
		t.Errorf("second warning = %q, want #2", warnings[1])
	}
}

func TestParseYAML_WarningsNameSourcePositions(t *testing.T) {
	doc := `
- just a string
- title: Good
  steps: [a]
- steps: [orphan]
`
	var warnings []string
	if _, err := loader.ParseYAML(strings.NewReader(doc), loader.ParseOptions{
		WarningHandler: func(msg string) { warnings = append(warnings, msg) },
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) != 2 || !strings.Contains(warnings[1], "#2") {
		t.Errorf("warnings = %v, want the invalid record named #2", warnings)
	}
}

func TestParse_EmptyArrayIsNotAnError(t *testing.T) {
	items, err := loader.Parse(strings.NewReader("[]"), loader.ParseOptions{})
	if err != nil {
		t.Fatalf("empty array should load cleanly, got %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items, got %d", len(items))
	}
}

func TestParse_StripsBOM(t *testing.T) {
	doc := "\xEF\xBB\xBF" + shareAFile
	items, err := loader.Parse(strings.NewReader(doc), loader.ParseOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertInstructionCount(t, items, 1)
}

func TestParse_IgnoresPersistedIDs(t *testing.T) {
	doc := `[{"id": "fixed", "title": "T", "steps": ["a"]}, {"id": "fixed", "title": "U", "steps": ["b"]}]`
	items, err := loader.Parse(strings.NewReader(doc), loader.ParseOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertNoDuplicateIDs(t, items)
	for _, in := range items {
		if in.ID == "fixed" {
			t.Fatalf("ID should be assigned at load time, not read from the resource")
		}
	}
}

func TestParse_NormalizesMissingCategories(t *testing.T) {
	doc := `[
  {"category": "Printing", "title": "A", "steps": ["a"]},
  {"title": "B", "steps": ["b"]},
  {"category": "  ", "title": "C", "steps": ["c"]}
]`
	items, err := loader.Parse(strings.NewReader(doc), loader.ParseOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"Printing", model.DefaultCategory, model.DefaultCategory}
	for i, in := range items {
		if in.Category != want[i] {
			t.Errorf("record %d: category = %q, want %q", i, in.Category, want[i])
		}
	}
}

func TestParse_FlatCollectionKeepsNoCategories(t *testing.T) {
	doc := `[{"title": "A", "steps": ["a"]}, {"title": "B", "steps": ["b"]}]`
	items, err := loader.Parse(strings.NewReader(doc), loader.ParseOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, in := range items {
		if in.HasCategory() {
			t.Fatalf("flat collection should stay uncategorized, got %q", in.Category)
		}
	}
}

func TestParse_Filter(t *testing.T) {
	doc := `[{"category": "A", "title": "one", "steps": ["a"]}, {"category": "B", "title": "two", "steps": ["b"]}]`
	items, err := loader.Parse(strings.NewReader(doc), loader.ParseOptions{
		Filter: func(in *model.Instruction) bool { return in.Category == "B" },
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertInstructionCount(t, items, 1)
	if items[0].Title != "two" {
		t.Fatalf("unexpected record: %q", items[0].Title)
	}
}

func TestParse_CustomIDGenerator(t *testing.T) {
	n := 0
	doc := `[{"title": "A", "steps": ["a"]}, {"title": "B", "steps": ["b"]}]`
	items, err := loader.Parse(strings.NewReader(doc), loader.ParseOptions{
		NewID: func() string { n++; return fmt.Sprintf("id-%d", n) },
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items[0].ID != "id-1" || items[1].ID != "id-2" {
		t.Fatalf("unexpected IDs: %q, %q", items[0].ID, items[1].ID)
	}
}

func TestPrepare_DuplicateGeneratedIDsStayUnique(t *testing.T) {
	records := []model.Instruction{
		{Title: "A", Steps: []string{"a"}},
		{Title: "B", Steps: []string{"b"}},
		{Title: "C", Steps: []string{"c"}},
	}
	items := loader.Prepare(records, loader.ParseOptions{NewID: func() string { return "same" }})
	testutil.AssertNoDuplicateIDs(t, items)
}

func TestPrepare_IDsUniqueWithDebugAssertions(t *testing.T) {
	debug.SetEnabled(true)
	debug.SetOutput(io.Discard)
	defer debug.SetEnabled(false)

	records := []model.Instruction{{Title: "A", Steps: []string{"a"}}, {Title: "B", Steps: []string{"b"}}}
	items := loader.Prepare(records, loader.ParseOptions{NewID: func() string { return "same" }})
	testutil.AssertNoDuplicateIDs(t, items)
}

func TestPrepare_DoesNotMutateInput(t *testing.T) {
	records := []model.Instruction{{Title: "  A  ", Steps: []string{"a"}}}
	items := loader.Prepare(records, loader.ParseOptions{})
	if records[0].Title != "  A  " || records[0].ID != "" {
		t.Fatalf("input mutated: %+v", records[0])
	}
	items[0].Steps[0] = "changed"
	if records[0].Steps[0] != "a" {
		t.Fatal("prepared records share step storage with input")
	}
}

func TestParseYAML(t *testing.T) {
	doc := `
- category: Files
  title: Share a File
  background: onedrive
  steps:
    - Open OneDrive.
    - Select Share.
- category: Files
  title: Broken
  steps: not-a-list
- title: Uncategorized
  steps: [one]
`
	var warnings []string
	items, err := loader.ParseYAML(strings.NewReader(doc), loader.ParseOptions{
		WarningHandler: func(msg string) { warnings = append(warnings, msg) },
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertInstructionCount(t, items, 2)
	if items[0].Steps[1] != "Select Share." {
		t.Fatalf("unexpected steps: %v", items[0].Steps)
	}
	if items[1].Category != model.DefaultCategory {
		t.Fatalf("expected default category, got %q", items[1].Category)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", warnings)
	}
}

func TestParseYAML_TopLevelMustBeSequence(t *testing.T) {
	_, err := loader.ParseYAML(strings.NewReader("title: nope\n"), loader.ParseOptions{})
	if !errors.Is(err, loader.ErrDecodeFailure) {
		t.Fatalf("expected ErrDecodeFailure, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "instructions.json")
	if err := os.WriteFile(jsonPath, []byte(shareAFile), 0o644); err != nil {
		t.Fatal(err)
	}
	items, err := loader.LoadFile(jsonPath)
	if err != nil {
		t.Fatalf("LoadFile json: %v", err)
	}
	testutil.AssertInstructionCount(t, items, 1)

	yamlPath := filepath.Join(dir, "instructions.yml")
	if err := os.WriteFile(yamlPath, []byte("- title: A\n  steps: [a]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	items, err = loader.LoadFile(yamlPath)
	if err != nil {
		t.Fatalf("LoadFile yaml: %v", err)
	}
	testutil.AssertInstructionCount(t, items, 1)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := loader.LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, loader.ErrResourceNotFound) {
		t.Fatalf("expected ErrResourceNotFound, got %v", err)
	}
}

func TestLoadFile_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "instructions.txt")
	if err := os.WriteFile(path, []byte(shareAFile), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := loader.LoadFile(path)
	if !errors.Is(err, loader.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestLoadedCountMatchesWellFormedRecords(t *testing.T) {
	gen := testutil.NewDefault()
	records := gen.Instructions(40)
	doc := testutil.EncodeWithNoise(t, records, 7)

	items, err := loader.Parse(strings.NewReader(doc), loader.ParseOptions{WarningHandler: func(string) {}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertInstructionCount(t, items, len(records))
	testutil.AssertSameContent(t, items, records)
}
