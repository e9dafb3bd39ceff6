package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vanderheijden86/techtips/pkg/content"
	"github.com/vanderheijden86/techtips/pkg/loader"
	"github.com/vanderheijden86/techtips/pkg/model"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func groupedItems() []model.Instruction {
	return []model.Instruction{
		{Category: "Printing", Title: "Add the Office Printer", Background: "printer", Steps: []string{"Open Settings.", "Click Add device."}},
		{Category: "Email & Outlook", Title: "Set Up Outlook", Steps: []string{"Open Outlook.", "Sign in."}},
		{Category: "Printing", Title: "Clear a Paper Jam", Steps: []string{"Open tray 2."}},
	}
}

func TestCreateSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Share a File", "share-a-file"},
		{"Email & Outlook", "email-outlook"},
		{"  Wi-Fi: Connect!  ", "wi-fi-connect"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := createSlug(tt.in); got != tt.want {
			t.Errorf("createSlug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUniqueSlug(t *testing.T) {
	counts := map[string]int{}
	got := []string{
		uniqueSlug("printing", counts),
		uniqueSlug("printing", counts),
		uniqueSlug("printing", counts),
		uniqueSlug("", counts),
	}
	want := []string{"printing", "printing-1", "printing-2", "section"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slug %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestGenerateMarkdownGrouped(t *testing.T) {
	md := GenerateMarkdown(groupedItems(), MarkdownOptions{Title: "Office Help", Now: fixedNow, ShowBackground: true})

	for _, want := range []string{
		"# Office Help\n",
		"| Email & Outlook | 1 |",
		"| Printing | 2 |",
		"| **Total** | 3 |",
		"- [Printing](#printing)",
		"  - [Clear a Paper Jam](#clear-a-paper-jam)",
		"## Email & Outlook\n",
		"### Add the Office Printer\n",
		"*Background: `printer`*",
		"1. Open Settings.\n2. Click Add device.\n",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}

	// Categories are emitted in sorted order; records keep load order inside.
	email := strings.Index(md, "## Email & Outlook")
	printing := strings.Index(md, "## Printing")
	printer := strings.Index(md, "### Add the Office Printer")
	jam := strings.Index(md, "### Clear a Paper Jam")
	if !(email < printing && printing < printer && printer < jam) {
		t.Errorf("unexpected section order: email=%d printing=%d printer=%d jam=%d", email, printing, printer, jam)
	}
}

func TestGenerateMarkdownFlat(t *testing.T) {
	md := GenerateMarkdown(content.Fixture(), MarkdownOptions{Now: fixedNow})

	if !strings.HasPrefix(md, "# Tech Tips\n") {
		t.Errorf("expected default title, got %q", md[:min(len(md), 20)])
	}
	if strings.Contains(md, "Background:") {
		t.Error("background line should be omitted unless requested")
	}
	if !strings.Contains(md, "## Share a File\n\n1. Open OneDrive.\n2. Select Share.\n") {
		t.Error("flat card for Share a File not rendered")
	}
	if strings.Contains(md, "| General |") {
		t.Error("flat content should not get a synthetic category row")
	}
}

func TestGenerateMarkdownDuplicateTitles(t *testing.T) {
	items := []model.Instruction{
		{Title: "Restart", Steps: []string{"a"}},
		{Title: "Restart", Steps: []string{"b"}},
	}
	md := GenerateMarkdown(items, MarkdownOptions{Now: fixedNow})
	if !strings.Contains(md, `<a id="restart"></a>`) || !strings.Contains(md, `<a id="restart-1"></a>`) {
		t.Errorf("expected unique anchors for duplicate titles:\n%s", md)
	}
}

func TestGenerateMarkdownEmpty(t *testing.T) {
	md := GenerateMarkdown(nil, MarkdownOptions{Now: fixedNow})
	if !strings.Contains(md, "No instructions available.") {
		t.Errorf("expected empty notice, got %q", md)
	}
}

func TestInstructionMarkdown(t *testing.T) {
	in := model.Instruction{Title: "Share a File", Background: "onedrive", Steps: []string{"Open OneDrive.", "Select Share."}}
	got := InstructionMarkdown(in, true)
	want := "# Share a File\n\n*Background: `onedrive`*\n\n1. Open OneDrive.\n2. Select Share.\n\n"
	if got != want {
		t.Errorf("InstructionMarkdown = %q, want %q", got, want)
	}
}

func TestLiteralMarkdown(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`Open **OneDrive**.`, `Open **OneDrive**.`},
		{`Go to C:\Users\name\_Documents_`, `Go to C:\\Users\\name\\\_Documents\_`},
		{`Run my_script.ps1`, `Run my\_script.ps1`},
		{"Type `ipconfig`", "Type `ipconfig`"},
	}
	for _, tt := range tests {
		if got := LiteralMarkdown(tt.in); got != tt.want {
			t.Errorf("LiteralMarkdown(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	in := model.Instruction{Title: "Map the S_Drive", Steps: []string{`Open \\fileserver\share`}}
	got := InstructionMarkdown(in, false)
	if !strings.Contains(got, `# Map the S\_Drive`) || !strings.Contains(got, `1. Open \\\\fileserver\\share`) {
		t.Errorf("card should escape literal characters, got %q", got)
	}
}

func TestSaveMarkdownToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "handbook.md")
	if err := SaveMarkdownToFile(groupedItems(), path, MarkdownOptions{Now: fixedNow}); err != nil {
		t.Fatalf("SaveMarkdownToFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "## Printing") {
		t.Error("saved handbook missing category section")
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "instructions.json")
	items := groupedItems()
	if err := WriteJSON(items, path); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	loaded, err := loader.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(loaded) != len(items) {
		t.Fatalf("loaded %d records, want %d", len(loaded), len(items))
	}
	for i := range items {
		if loaded[i].Title != items[i].Title || loaded[i].Category != items[i].Category {
			t.Errorf("record %d = %q/%q, want %q/%q", i, loaded[i].Category, loaded[i].Title, items[i].Category, items[i].Title)
		}
		if strings.Join(loaded[i].Steps, "|") != strings.Join(items[i].Steps, "|") {
			t.Errorf("record %d steps = %v, want %v", i, loaded[i].Steps, items[i].Steps)
		}
	}
}

func TestMarshalJSONOmitsIDs(t *testing.T) {
	data, err := MarshalJSON([]model.Instruction{{ID: "abc", Title: "t", Steps: []string{"s"}}})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "abc") {
		t.Errorf("IDs must not be written: %s", data)
	}
	if strings.Contains(string(data), "category") {
		t.Errorf("empty category should be omitted: %s", data)
	}
}
