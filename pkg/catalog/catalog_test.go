package catalog_test

import (
	"fmt"
	"reflect"
	"sort"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/techtips/pkg/catalog"
	"github.com/vanderheijden86/techtips/pkg/loader"
	"github.com/vanderheijden86/techtips/pkg/model"
	"github.com/vanderheijden86/techtips/pkg/testutil"
)

func shareAFile() []model.Instruction {
	return loader.Prepare([]model.Instruction{{
		Category:   "Files",
		Title:      "Share a File",
		Background: "onedrive",
		Steps:      []string{"Open OneDrive.", "Select Share."},
	}}, loader.ParseOptions{})
}

func TestShareAFileScenario(t *testing.T) {
	items := shareAFile()

	if got := catalog.Categories(items); !reflect.DeepEqual(got, []string{"Files"}) {
		t.Fatalf("Categories = %v, want [Files]", got)
	}
	filtered := catalog.FilterByCategory(items, "Files")
	testutil.AssertInstructionCount(t, filtered, 1)
	if filtered[0].ID != items[0].ID {
		t.Fatal("filter should return the one record")
	}
}

func TestCategoriesSortedAndDistinct(t *testing.T) {
	items := []model.Instruction{
		{Category: "Printing", Title: "a", Steps: []string{"x"}},
		{Category: "Email & Outlook", Title: "b", Steps: []string{"x"}},
		{Category: "Printing", Title: "c", Steps: []string{"x"}},
		{Category: "", Title: "d", Steps: []string{"x"}},
		{Category: "Microsoft 365", Title: "e", Steps: []string{"x"}},
	}
	want := []string{"Email & Outlook", "Microsoft 365", "Printing"}
	if got := catalog.Categories(items); !reflect.DeepEqual(got, want) {
		t.Fatalf("Categories = %v, want %v", got, want)
	}
}

func TestCategoriesEmpty(t *testing.T) {
	if got := catalog.Categories(nil); len(got) != 0 {
		t.Fatalf("expected no categories, got %v", got)
	}
	if catalog.Grouped(nil) {
		t.Fatal("nil collection is not grouped")
	}
}

func TestFilterPreservesOrder(t *testing.T) {
	items := []model.Instruction{
		{Category: "A", Title: "1", Steps: []string{"x"}},
		{Category: "B", Title: "2", Steps: []string{"x"}},
		{Category: "A", Title: "3", Steps: []string{"x"}},
		{Category: "A", Title: "4", Steps: []string{"x"}},
	}
	got := testutil.Titles(catalog.FilterByCategory(items, "A"))
	if !reflect.DeepEqual(got, []string{"1", "3", "4"}) {
		t.Fatalf("filter order = %v", got)
	}
	if got := catalog.FilterByCategory(items, "missing"); len(got) != 0 {
		t.Fatalf("expected nothing for unknown category, got %v", got)
	}
}

func TestCatalogIndex(t *testing.T) {
	items := loader.Prepare(testutil.NewDefault().Instructions(30), loader.ParseOptions{})
	c := catalog.New(items)

	if c.Len() != 30 || c.IsEmpty() {
		t.Fatalf("Len = %d", c.Len())
	}
	if !c.Grouped() {
		t.Fatal("expected grouped catalog")
	}
	total := 0
	for i, name := range c.Categories() {
		if got, ok := c.CategoryAt(i); !ok || got != name {
			t.Fatalf("CategoryAt(%d) = %q, %v", i, got, ok)
		}
		if c.IndexOfCategory(name) != i {
			t.Fatalf("IndexOfCategory(%q) = %d, want %d", name, c.IndexOfCategory(name), i)
		}
		if c.Count(name) == 0 {
			t.Fatalf("category %q has no records", name)
		}
		total += c.Count(name)
		testutil.AssertSameContent(t, c.InCategory(name), catalog.FilterByCategory(items, name))
	}
	if total != c.Len() {
		t.Fatalf("category counts sum to %d, want %d", total, c.Len())
	}
	if c.IndexOfCategory("nope") != -1 {
		t.Fatal("unknown category should have index -1")
	}

	for _, in := range items {
		got, ok := c.ByID(in.ID)
		if !ok || got.Title != in.Title {
			t.Fatalf("ByID(%s) = %+v, %v", in.ID, got, ok)
		}
	}
	if _, ok := c.ByID("missing"); ok {
		t.Fatal("unexpected hit for missing ID")
	}
}

func TestCatalogIsolatedFromCaller(t *testing.T) {
	items := shareAFile()
	c := catalog.New(items)

	items[0].Steps[0] = "tampered"
	if got, _ := c.At(0); got.Steps[0] != "Open OneDrive." {
		t.Fatalf("catalog shares storage with input: %q", got.Steps[0])
	}

	all := c.All()
	all[0].Steps[1] = "tampered"
	if got, _ := c.At(0); got.Steps[1] != "Select Share." {
		t.Fatalf("catalog shares storage with All(): %q", got.Steps[1])
	}
}

func TestCatalogSearch(t *testing.T) {
	items := []model.Instruction{
		{Category: "Printing", Title: "Add the Office Printer", Steps: []string{"Open Settings."}},
		{Category: "Microsoft 365", Title: "Share a File", Steps: []string{"Open OneDrive."}},
		{Category: "Email & Outlook", Title: "Create a Signature", Steps: []string{"Open Outlook."}},
	}
	c := catalog.New(items)

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"Add the Office Printer", "Share a File", "Create a Signature"}},
		{"printer", []string{"Add the Office Printer"}},
		{"ONEDRIVE", []string{"Share a File"}},
		{"outlook", []string{"Create a Signature"}},
		{"open", []string{"Add the Office Printer", "Share a File", "Create a Signature"}},
		{"zzz", nil},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("q=%q", tt.query), func(t *testing.T) {
			got := testutil.Titles(c.Search(tt.query))
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Search(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestIndexByTitle(t *testing.T) {
	items := []model.Instruction{
		{Category: "A", Title: "Same", Steps: []string{"x"}},
		{Category: "B", Title: "Same", Steps: []string{"y"}},
	}
	c := catalog.New(items)
	if got := c.IndexByTitle("B", "Same"); got != 1 {
		t.Fatalf("IndexByTitle(B) = %d", got)
	}
	if got := c.IndexByTitle("", "Same"); got != 0 {
		t.Fatalf("IndexByTitle(any) = %d", got)
	}
	if got := c.IndexByTitle("A", "Other"); got != -1 {
		t.Fatalf("IndexByTitle(missing) = %d", got)
	}
}

// instructionsGen draws collections whose categories come from a small pool,
// so duplicates are common.
func instructionsGen() *rapid.Generator[[]model.Instruction] {
	return rapid.Custom(func(t *rapid.T) []model.Instruction {
		n := rapid.IntRange(0, 40).Draw(t, "n")
		pool := []string{"Email & Outlook", "Printing", "Password & Login", "Microsoft 365", "Networking & Wi-Fi", "Files"}
		items := make([]model.Instruction, n)
		for i := range items {
			items[i] = model.Instruction{
				Category: rapid.SampledFrom(pool).Draw(t, "category"),
				Title:    fmt.Sprintf("t%d", i),
				Steps:    []string{"s"},
			}
		}
		return loader.Prepare(items, loader.ParseOptions{})
	})
}

func TestCategoriesProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		items := instructionsGen().Draw(t, "items")
		got := catalog.Categories(items)

		if !sort.StringsAreSorted(got) {
			t.Fatalf("categories not sorted: %v", got)
		}
		distinct := make(map[string]bool)
		for _, in := range items {
			distinct[in.Category] = true
		}
		if len(got) != len(distinct) {
			t.Fatalf("got %d categories, want %d distinct", len(got), len(distinct))
		}
		for i, c := range got {
			if !distinct[c] {
				t.Fatalf("category %q not present in records", c)
			}
			if i > 0 && got[i-1] == c {
				t.Fatalf("duplicate category %q", c)
			}
		}
	})
}

func TestPartitionProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		items := instructionsGen().Draw(t, "items")

		seen := make(map[string]int)
		for _, c := range catalog.Categories(items) {
			for _, in := range catalog.FilterByCategory(items, c) {
				seen[in.ID]++
			}
		}
		if len(seen) != len(items) {
			t.Fatalf("partition covers %d records, want %d", len(seen), len(items))
		}
		for id, n := range seen {
			if n != 1 {
				t.Fatalf("record %s appears %d times", id, n)
			}
		}
	})
}
