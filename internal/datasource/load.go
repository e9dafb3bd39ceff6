package datasource

import (
	"bytes"
	"fmt"
	"os"

	"github.com/vanderheijden86/techtips/pkg/content"
	"github.com/vanderheijden86/techtips/pkg/debug"
	"github.com/vanderheijden86/techtips/pkg/loader"
	"github.com/vanderheijden86/techtips/pkg/model"
)

// Load resolves the preferred source and loads it. It never panics; every
// failure is carried in the returned Result.
func Load(opts DiscoveryOptions) (loader.Result, DataSource) {
	src, err := Resolve(opts)
	if err != nil {
		return loader.Result{Source: "discovery", Err: err}, src
	}
	debug.Log("datasource: selected %s", src)
	debug.LogIf(src.Origin == OriginBuiltin, "datasource: no content file found, using the bundled instructions")
	return LoadFromSource(src), src
}

// LoadFromSource loads instructions from a specific DataSource, dispatching
// to the appropriate reader based on source type.
func LoadFromSource(source DataSource) loader.Result {
	return loader.Collect(source.Name(), func(opts loader.ParseOptions) ([]model.Instruction, error) {
		switch source.Type {
		case SourceTypeEmbedded:
			return loader.Parse(bytes.NewReader(content.Bundled()), opts)

		case SourceTypeFixture:
			return loader.Prepare(source.Fixture, opts), nil

		case SourceTypeJSON, SourceTypeYAML:
			return loader.LoadFileWithOptions(source.Path, opts)

		case SourceTypeSQLite:
			if _, err := os.Stat(source.Path); err != nil {
				return nil, fmt.Errorf("%w: %s", loader.ErrResourceNotFound, source.Path)
			}
			reader, err := NewSQLiteReader(source)
			if err != nil {
				return nil, fmt.Errorf("failed to open SQLite source %s: %w", source.Path, err)
			}
			defer reader.Close()
			return reader.LoadInstructions(opts)

		default:
			return nil, fmt.Errorf("%w: source type %q", loader.ErrUnsupportedFormat, source.Type)
		}
	})
}
