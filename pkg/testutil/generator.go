// Package testutil provides deterministic instruction fixtures and assertions
// shared by the package tests.
package testutil

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/techtips/pkg/model"
)

// GeneratorConfig controls instruction generation.
type GeneratorConfig struct {
	Seed       int64    // Random seed for determinism (0 = fixed default)
	Categories []string // Category pool; nil means uncategorized records
	MinSteps   int      // Minimum steps per record (default 1)
	MaxSteps   int      // Maximum steps per record (default 6)
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:       42,
		Categories: []string{"Email & Outlook", "Printing", "Password & Login", "Microsoft 365", "Networking & Wi-Fi"},
		MinSteps:   1,
		MaxSteps:   6,
	}
}

// Generator creates instruction fixtures.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	if cfg.MinSteps < 1 {
		cfg.MinSteps = 1
	}
	if cfg.MaxSteps < cfg.MinSteps {
		cfg.MaxSteps = cfg.MinSteps
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// Instructions returns n valid records with distinct titles. IDs are left
// empty; they are assigned by the loader.
func (g *Generator) Instructions(n int) []model.Instruction {
	out := make([]model.Instruction, n)
	for i := range out {
		steps := g.cfg.MinSteps + g.rng.Intn(g.cfg.MaxSteps-g.cfg.MinSteps+1)
		in := model.Instruction{
			Title:      fmt.Sprintf("Instruction %03d", i),
			Background: fmt.Sprintf("bg-%d", g.rng.Intn(4)),
			Steps:      make([]string, steps),
		}
		if len(g.cfg.Categories) > 0 {
			in.Category = g.cfg.Categories[g.rng.Intn(len(g.cfg.Categories))]
		}
		for s := range in.Steps {
			in.Steps[s] = fmt.Sprintf("Step %d of %s.", s+1, in.Title)
		}
		out[i] = in
	}
	return out
}

// malformedRecords are entries that must be skipped without side effects.
var malformedRecords = []string{
	`"just a string"`,
	`{"title": 42, "steps": ["x"]}`,
	`{"title": "No steps", "steps": []}`,
	`{"title": "", "steps": ["orphan"]}`,
	`{"title": "Bad steps", "steps": "not a list"}`,
	`null`,
	`[1, 2, 3]`,
}

// EncodeWithNoise encodes records as a JSON array with noise malformed entries
// interleaved at deterministic positions.
func EncodeWithNoise(t testing.TB, records []model.Instruction, noise int) string {
	t.Helper()
	parts := make([]string, 0, len(records)+noise)
	for i, in := range records {
		if i < noise {
			parts = append(parts, malformedRecords[i%len(malformedRecords)])
		}
		data, err := json.Marshal(in)
		if err != nil {
			t.Fatalf("encode record %d: %v", i, err)
		}
		parts = append(parts, string(data))
	}
	for i := len(records); i < noise; i++ {
		parts = append(parts, malformedRecords[i%len(malformedRecords)])
	}
	return "[" + strings.Join(parts, ",\n") + "]"
}

// EncodeJSON encodes records as a JSON array.
func EncodeJSON(t testing.TB, records []model.Instruction) string {
	t.Helper()
	return EncodeWithNoise(t, records, 0)
}
