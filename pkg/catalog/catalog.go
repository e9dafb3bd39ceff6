// Package catalog derives the category index from a loaded instruction
// collection. Everything here is a pure function of the collection; nothing
// is maintained incrementally because the collection never changes after load.
package catalog

import (
	"sort"
	"strings"

	"github.com/vanderheijden86/techtips/pkg/metrics"
	"github.com/vanderheijden86/techtips/pkg/model"
)

// Categories returns the distinct non-empty categories in items, sorted
// lexicographically. A category is only ever produced by an existing record.
func Categories(items []model.Instruction) []string {
	set := make(map[string]struct{})
	for i := range items {
		if items[i].HasCategory() {
			set[items[i].Category] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// FilterByCategory returns the records whose category equals c, preserving
// their relative order.
func FilterByCategory(items []model.Instruction, c string) []model.Instruction {
	var out []model.Instruction
	for i := range items {
		if items[i].Category == c {
			out = append(out, items[i])
		}
	}
	return out
}

// Grouped reports whether any record carries a category.
func Grouped(items []model.Instruction) bool {
	for i := range items {
		if items[i].HasCategory() {
			return true
		}
	}
	return false
}

// Catalog is an immutable, indexed view over one loaded collection.
type Catalog struct {
	items      []model.Instruction
	byID       map[string]int
	categories []string
	groups     map[string][]int
}

// New indexes items. The slice is copied; later changes by the caller do
// not affect the catalog.
func New(items []model.Instruction) *Catalog {
	defer metrics.Timer(metrics.CatalogBuild)()

	c := &Catalog{
		items:  make([]model.Instruction, len(items)),
		byID:   make(map[string]int, len(items)),
		groups: make(map[string][]int),
	}
	for i := range items {
		c.items[i] = items[i].Clone()
		if items[i].ID != "" {
			c.byID[items[i].ID] = i
		}
		if items[i].HasCategory() {
			c.groups[items[i].Category] = append(c.groups[items[i].Category], i)
		}
	}
	c.categories = Categories(c.items)
	return c
}

// Empty returns a catalog with no records.
func Empty() *Catalog {
	return New(nil)
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	return len(c.items)
}

// IsEmpty reports whether the catalog holds no records.
func (c *Catalog) IsEmpty() bool {
	return len(c.items) == 0
}

// All returns a copy of every record in load order.
func (c *Catalog) All() []model.Instruction {
	out := make([]model.Instruction, len(c.items))
	for i := range c.items {
		out[i] = c.items[i].Clone()
	}
	return out
}

// At returns the record at position i in load order.
func (c *Catalog) At(i int) (model.Instruction, bool) {
	if i < 0 || i >= len(c.items) {
		return model.Instruction{}, false
	}
	return c.items[i].Clone(), true
}

// Grouped reports whether the catalog has any categories.
func (c *Catalog) Grouped() bool {
	return len(c.categories) > 0
}

// Categories returns the sorted category names.
func (c *Catalog) Categories() []string {
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

// CategoryAt returns the i-th category in sorted order.
func (c *Catalog) CategoryAt(i int) (string, bool) {
	if i < 0 || i >= len(c.categories) {
		return "", false
	}
	return c.categories[i], true
}

// IndexOfCategory returns the position of name in Categories, or -1.
func (c *Catalog) IndexOfCategory(name string) int {
	i := sort.SearchStrings(c.categories, name)
	if i < len(c.categories) && c.categories[i] == name {
		return i
	}
	return -1
}

// Count returns the number of records in category name.
func (c *Catalog) Count(name string) int {
	return len(c.groups[name])
}

// InCategory returns the records of category name in load order.
func (c *Catalog) InCategory(name string) []model.Instruction {
	idx := c.groups[name]
	if len(idx) == 0 {
		return nil
	}
	out := make([]model.Instruction, len(idx))
	for i, j := range idx {
		out[i] = c.items[j].Clone()
	}
	return out
}

// ByID looks a record up by its load-time ID.
func (c *Catalog) ByID(id string) (model.Instruction, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.Instruction{}, false
	}
	return c.items[i].Clone(), true
}

// IndexByTitle returns the load-order position of the first record titled
// title within category (any category when category is empty), or -1.
func (c *Catalog) IndexByTitle(category, title string) int {
	for i := range c.items {
		if c.items[i].Title != title {
			continue
		}
		if category == "" || c.items[i].Category == category {
			return i
		}
	}
	return -1
}

// Search returns records whose title, category or steps contain query,
// case-insensitively, in load order. An empty query matches everything.
func (c *Catalog) Search(query string) []model.Instruction {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return c.All()
	}
	var out []model.Instruction
	for i := range c.items {
		if matches(&c.items[i], q) {
			out = append(out, c.items[i].Clone())
		}
	}
	return out
}

func matches(in *model.Instruction, q string) bool {
	if strings.Contains(strings.ToLower(in.Title), q) || strings.Contains(strings.ToLower(in.Category), q) {
		return true
	}
	for _, s := range in.Steps {
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	return false
}
