//go:build ignore

// generate_testdata.go creates sample content packs for manual testing and
// benchmarking.
// Usage: go run scripts/generate_testdata.go
//
// Creates, for each dataset, a JSON file, a YAML file and a SQLite pack:
//
//	testdata/generated/small.{json,yaml,db}   (20 instructions)
//	testdata/generated/medium.{json,yaml,db}  (200 instructions)
//	testdata/generated/large.{json,yaml,db}   (2000 instructions)
//	testdata/generated/flat.{json,yaml,db}    (30 uncategorized instructions)
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/techtips/pkg/export"
	"github.com/vanderheijden86/techtips/pkg/model"
	"github.com/vanderheijden86/techtips/pkg/testutil"
)

type datasetSpec struct {
	name string
	size int
	flat bool
}

var datasets = []datasetSpec{
	{"small", 20, false},
	{"medium", 200, false},
	{"large", 2000, false},
	{"flat", 30, true},
}

type yamlRecord struct {
	Category   string   `yaml:"category,omitempty"`
	Title      string   `yaml:"title"`
	Background string   `yaml:"background,omitempty"`
	Steps      []string `yaml:"steps"`
}

func main() {
	outputDir := filepath.Join("testdata", "generated")
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for _, ds := range datasets {
		fmt.Printf("Generating %s dataset (%d instructions)...\n", ds.name, ds.size)

		cfg := testutil.DefaultConfig()
		cfg.Seed = int64(ds.size) // Reproducible per-size
		if ds.flat {
			cfg.Categories = nil
		}
		items := testutil.New(cfg).Instructions(ds.size)

		base := filepath.Join(outputDir, ds.name)
		if err := export.WriteJSON(items, base+".json"); err != nil {
			fail(err)
		}
		if err := writeYAML(items, base+".yaml"); err != nil {
			fail(err)
		}
		pack := export.NewSQLiteExporter(items)
		pack.Config.Title = "techtips " + ds.name
		if err := pack.Export(base + ".db"); err != nil {
			fail(err)
		}

		fmt.Printf("  Written %s.{json,yaml,db}\n", base)
	}

	fmt.Println("\nDone! Sample content created in", outputDir)
}

func writeYAML(items []model.Instruction, path string) error {
	records := make([]yamlRecord, len(items))
	for i, in := range items {
		records[i] = yamlRecord{Category: in.Category, Title: in.Title, Background: in.Background, Steps: in.Steps}
	}
	data, err := yaml.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
