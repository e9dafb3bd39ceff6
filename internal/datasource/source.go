// Package datasource discovers and selects the instruction resource to load.
// Candidates come from the --content flag, the TECHTIPS_CONTENT env var, the
// config file, well-known file names in the working directory and finally
// the bundled resource; the most authoritative one wins.
package datasource

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vanderheijden86/techtips/pkg/loader"
	"github.com/vanderheijden86/techtips/pkg/model"
)

// SourceType identifies the type of data source
type SourceType string

const (
	// SourceTypeEmbedded is the resource compiled into the binary
	SourceTypeEmbedded SourceType = "embedded"
	// SourceTypeJSON is a JSON array file
	SourceTypeJSON SourceType = "json"
	// SourceTypeYAML is a YAML sequence file
	SourceTypeYAML SourceType = "yaml"
	// SourceTypeSQLite is a SQLite content pack
	SourceTypeSQLite SourceType = "sqlite"
	// SourceTypeFixture is an in-memory collection handed in by the caller
	SourceTypeFixture SourceType = "fixture"
)

// Origin records where a candidate was found.
type Origin string

const (
	OriginFlag     Origin = "flag"
	OriginEnv      Origin = "env"
	OriginConfig   Origin = "config"
	OriginWorkDir  Origin = "workdir"
	OriginBuiltin  Origin = "builtin"
	OriginInjected Origin = "injected"
)

// Priority values for origins (higher = more authoritative)
const (
	PriorityFixture  = 200
	PriorityFlag     = 100
	PriorityEnv      = 80
	PriorityConfig   = 60
	PriorityWorkDir  = 40
	PriorityEmbedded = 0
)

// WorkDirNames are the file names probed in the working directory, in
// preference order.
var WorkDirNames = []string{"instructions.json", "instructions.yaml", "instructions.yml", "instructions.db"}

// DataSource represents a potential source of instruction data
type DataSource struct {
	// Type identifies the source type
	Type SourceType `json:"type"`
	// Path is the absolute path to the source file (empty for embedded and fixture)
	Path string `json:"path,omitempty"`
	// Origin says how the source was discovered
	Origin Origin `json:"origin"`
	// Priority determines preference (higher = preferred)
	Priority int `json:"priority"`
	// ModTime is the last modification time of the source
	ModTime time.Time `json:"mod_time"`
	// Size is the file size in bytes
	Size int64 `json:"size"`
	// Valid indicates whether the source passed validation
	Valid bool `json:"valid"`
	// ValidationError describes why validation failed (if Valid is false)
	ValidationError string `json:"validation_error,omitempty"`
	// InstructionCount is the number of records in the source (set during validation)
	InstructionCount int `json:"instruction_count"`

	// Fixture holds the records of a SourceTypeFixture source.
	Fixture []model.Instruction `json:"-"`
}

// Name returns a short label for logs and the status bar.
func (s DataSource) Name() string {
	switch s.Type {
	case SourceTypeEmbedded:
		return "embedded:instructions.json"
	case SourceTypeFixture:
		return "fixture"
	default:
		return s.Path
	}
}

// String returns a human-readable description of the source
func (s DataSource) String() string {
	status := "valid"
	if !s.Valid {
		status = "unchecked"
		if s.ValidationError != "" {
			status = fmt.Sprintf("invalid: %s", s.ValidationError)
		}
	}
	mod := "-"
	if !s.ModTime.IsZero() {
		mod = s.ModTime.Format(time.RFC3339)
	}
	return fmt.Sprintf("%s (%s via %s, priority=%d, mod=%s, instructions=%d, %s)",
		s.Name(), s.Type, s.Origin, s.Priority, mod, s.InstructionCount, status)
}

// SourceTypeForPath picks the source type from a file extension.
func SourceTypeForPath(path string) (SourceType, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return SourceTypeJSON, nil
	case ".yaml", ".yml":
		return SourceTypeYAML, nil
	case ".db", ".sqlite", ".sqlite3":
		return SourceTypeSQLite, nil
	default:
		return "", fmt.Errorf("%w: %s", loader.ErrUnsupportedFormat, filepath.Base(path))
	}
}

// FileSource describes the file at path. The file need not exist; a missing
// file is reported when the source is loaded.
func FileSource(path string, origin Origin, priority int) (DataSource, error) {
	typ, err := SourceTypeForPath(path)
	if err != nil {
		return DataSource{}, err
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	src := DataSource{Type: typ, Path: path, Origin: origin, Priority: priority}
	if info, err := os.Stat(path); err == nil {
		src.ModTime = info.ModTime()
		src.Size = info.Size()
	}
	return src, nil
}

// EmbeddedSource returns the bundled resource.
func EmbeddedSource() DataSource {
	return DataSource{Type: SourceTypeEmbedded, Origin: OriginBuiltin, Priority: PriorityEmbedded}
}

// FixtureSource wraps an in-memory collection so it can be loaded like any
// other source.
func FixtureSource(items []model.Instruction) DataSource {
	return DataSource{
		Type:     SourceTypeFixture,
		Origin:   OriginInjected,
		Priority: PriorityFixture,
		Fixture:  items,
	}
}

// DiscoveryOptions configures source discovery behavior
type DiscoveryOptions struct {
	// ExplicitPath is the --content flag value
	ExplicitPath string
	// ConfigPath is content.path from the config file
	ConfigPath string
	// WorkDir is probed for WorkDirNames (uses cwd if empty)
	WorkDir string
	// SkipWorkDir disables the working directory probe
	SkipWorkDir bool
	// SkipEmbedded leaves the bundled resource out of the candidates
	SkipEmbedded bool
	// ValidateAfterDiscovery runs validation on each discovered source
	ValidateAfterDiscovery bool
	// Verbose enables detailed logging during discovery
	Verbose bool
	// Logger receives log messages when Verbose is true
	Logger func(msg string)
}

// Discover returns every candidate source, most authoritative first.
// Sources with equal priority are ordered newest first.
func Discover(opts DiscoveryOptions) ([]DataSource, error) {
	if opts.Logger == nil {
		opts.Logger = func(string) {}
	}
	logf := func(format string, args ...any) {
		if opts.Verbose {
			opts.Logger(fmt.Sprintf(format, args...))
		}
	}

	var sources []DataSource
	add := func(path string, origin Origin, priority int) error {
		if path == "" {
			return nil
		}
		src, err := FileSource(path, origin, priority)
		if err != nil {
			return fmt.Errorf("%s content path: %w", origin, err)
		}
		logf("Found %s source: %s", origin, src.Path)
		sources = append(sources, src)
		return nil
	}

	if err := add(opts.ExplicitPath, OriginFlag, PriorityFlag); err != nil {
		return nil, err
	}
	if err := add(os.Getenv(loader.ContentEnvVar), OriginEnv, PriorityEnv); err != nil {
		return nil, err
	}
	if err := add(opts.ConfigPath, OriginConfig, PriorityConfig); err != nil {
		return nil, err
	}

	if !opts.SkipWorkDir {
		dir := opts.WorkDir
		if dir == "" {
			var err error
			dir, err = os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to get current directory: %w", err)
			}
		}
		for _, name := range WorkDirNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			if err := add(path, OriginWorkDir, PriorityWorkDir); err != nil {
				return nil, err
			}
		}
	}

	if !opts.SkipEmbedded {
		sources = append(sources, EmbeddedSource())
	}

	if opts.ValidateAfterDiscovery {
		for i := range sources {
			if err := ValidateSource(&sources[i]); err != nil {
				logf("Validation failed for %s: %v", sources[i].Name(), err)
			}
		}
	}

	sort.SliceStable(sources, func(i, j int) bool {
		if sources[i].Priority != sources[j].Priority {
			return sources[i].Priority > sources[j].Priority
		}
		return sources[i].ModTime.After(sources[j].ModTime)
	})

	logf("Discovered %d sources", len(sources))
	return sources, nil
}

// Resolve picks the source to load. An explicitly named source is returned
// even when it is missing or broken, so the failure is reported instead of
// silently falling through to a different resource.
func Resolve(opts DiscoveryOptions) (DataSource, error) {
	sources, err := Discover(opts)
	if err != nil {
		return DataSource{}, err
	}
	if len(sources) == 0 {
		return DataSource{}, fmt.Errorf("%w: no candidate sources", loader.ErrResourceNotFound)
	}
	return sources[0], nil
}

// ValidateSource loads src and records whether it holds any usable records.
func ValidateSource(src *DataSource) error {
	res := LoadFromSource(*src)
	src.InstructionCount = len(res.Instructions)
	switch {
	case res.Failed():
		src.Valid = false
		src.ValidationError = res.Reason()
		return res.Err
	case res.Empty():
		src.Valid = false
		src.ValidationError = "no instructions"
		return fmt.Errorf("%s: no instructions", src.Name())
	}
	src.Valid = true
	src.ValidationError = ""
	return nil
}
