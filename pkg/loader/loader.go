// Package loader decodes instruction resources into model.Instruction records.
//
// Decoding is best effort per record: a malformed or invalid entry is skipped
// with a warning and never disturbs its neighbours. Only a document that cannot
// be read as a sequence at all is reported as an error.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/techtips/pkg/debug"
	"github.com/vanderheijden86/techtips/pkg/model"
)

// ContentEnvVar names the environment variable that points at a content file.
const ContentEnvVar = "TECHTIPS_CONTENT"

// Sentinel errors. Callers match them with errors.Is.
var (
	ErrResourceNotFound  = errors.New("instruction resource not found")
	ErrDecodeFailure     = errors.New("instruction resource could not be decoded")
	ErrUnsupportedFormat = errors.New("unsupported instruction resource format")
)

// Format identifies the encoding of an instruction resource.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the format from a file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}
}

// ParseOptions configures decoding.
type ParseOptions struct {
	// WarningHandler is called for every skipped record.
	// If nil, warnings go to the debug log.
	WarningHandler func(string)

	// Filter optionally drops decoded records. Return true to keep.
	Filter func(*model.Instruction) bool

	// NewID generates record IDs. Defaults to uuid.NewString.
	NewID func() string
}

func (o ParseOptions) warn() func(string) {
	if o.WarningHandler != nil {
		return o.WarningHandler
	}
	return func(msg string) {
		debug.Log("loader warning: %s", msg)
	}
}

// Parse decodes a JSON array of instruction records.
// Handles UTF-8 BOM stripping and per-record validation.
func Parse(r io.Reader, opts ParseOptions) ([]model.Instruction, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading instruction resource: %w", err)
	}
	data = bytes.TrimSpace(stripBOM(data))
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrDecodeFailure)
	}

	// A bare null would unmarshal into a nil slice without error.
	if data[0] != '[' {
		return nil, fmt.Errorf("%w: top level must be an array", ErrDecodeFailure)
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}

	warn := opts.warn()
	decoded := make([]model.Instruction, 0, len(raws))
	positions := make([]int, 0, len(raws))
	for i, raw := range raws {
		var in model.Instruction
		if err := json.Unmarshal(raw, &in); err != nil {
			warn(fmt.Sprintf("skipping malformed record %d: %v", i, err))
			continue
		}
		decoded = append(decoded, in)
		positions = append(positions, i)
	}

	return prepare(decoded, positions, opts), nil
}

// ParseYAML decodes a YAML sequence of instruction records.
func ParseYAML(r io.Reader, opts ParseOptions) ([]model.Instruction, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading instruction resource: %w", err)
	}
	data = bytes.TrimSpace(stripBOM(data))
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrDecodeFailure)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 || doc.Content[0].Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: top level must be a sequence", ErrDecodeFailure)
	}

	warn := opts.warn()
	nodes := doc.Content[0].Content
	decoded := make([]model.Instruction, 0, len(nodes))
	positions := make([]int, 0, len(nodes))
	for i, node := range nodes {
		var in model.Instruction
		if err := node.Decode(&in); err != nil {
			warn(fmt.Sprintf("skipping malformed record %d (line %d): %v", i, node.Line, err))
			continue
		}
		decoded = append(decoded, in)
		positions = append(positions, i)
	}

	return prepare(decoded, positions, opts), nil
}

// ParseFormat decodes r with the parser for the given format.
func ParseFormat(r io.Reader, format Format, opts ParseOptions) ([]model.Instruction, error) {
	switch format {
	case FormatJSON:
		return Parse(r, opts)
	case FormatYAML:
		return ParseYAML(r, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// LoadFile reads instructions from a JSON or YAML file.
func LoadFile(path string) ([]model.Instruction, error) {
	return LoadFileWithOptions(path, ParseOptions{})
}

// LoadFileWithOptions reads instructions from a file with custom options.
func LoadFileWithOptions(path string, opts ParseOptions) ([]model.Instruction, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrResourceNotFound, path)
		}
		return nil, fmt.Errorf("failed to open instruction resource: %w", err)
	}
	defer file.Close()

	return ParseFormat(file, format, opts)
}

// Prepare validates decoded records, normalizes categories and assigns IDs.
// Every source (file, database, literal fixture) goes through it, so the
// collection invariants hold regardless of where the records came from.
//
// If at least one record carries a category, records without one are placed
// in model.DefaultCategory. The input slice is not modified.
func Prepare(records []model.Instruction, opts ParseOptions) []model.Instruction {
	return prepare(records, nil, opts)
}

// prepare is Prepare with the position of each record in its source
// document, so warnings name the record the author wrote. A nil positions
// slice means records[i] sits at position i.
func prepare(records []model.Instruction, positions []int, opts ParseOptions) []model.Instruction {
	warn := opts.warn()
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	out := make([]model.Instruction, 0, len(records))
	grouped := false
	for i := range records {
		in := records[i].Clone()
		in.Title = strings.TrimSpace(in.Title)
		in.Category = strings.TrimSpace(in.Category)
		in.Background = strings.TrimSpace(in.Background)

		if err := in.Validate(); err != nil {
			label := in.Title
			if label == "" {
				pos := i
				if positions != nil {
					pos = positions[i]
				}
				label = fmt.Sprintf("#%d", pos)
			}
			warn(fmt.Sprintf("skipping invalid record %s: %v", label, err))
			continue
		}
		if opts.Filter != nil && !opts.Filter(&in) {
			continue
		}
		if in.HasCategory() {
			grouped = true
		}
		out = append(out, in)
	}

	seen := make(map[string]bool, len(out))
	for i := range out {
		if grouped && !out[i].HasCategory() {
			out[i].Category = model.DefaultCategory
		}
		id := newID()
		if seen[id] {
			id = fmt.Sprintf("%s-%d", id, i)
		}
		seen[id] = true
		out[i].ID = id
	}
	debug.Assert(len(seen) == len(out), "instruction IDs must be unique")

	return out
}

// stripBOM removes the UTF-8 Byte Order Mark if present
func stripBOM(b []byte) []byte {
	if bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) {
		return b[3:]
	}
	return b
}
