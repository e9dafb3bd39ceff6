package loader

import (
	"errors"
	"time"

	"github.com/vanderheijden86/techtips/pkg/debug"
	"github.com/vanderheijden86/techtips/pkg/metrics"
	"github.com/vanderheijden86/techtips/pkg/model"
)

// Result is the outcome of loading an instruction collection. It separates
// "the resource loaded and is empty" from "the resource failed to load",
// which the presentation layer renders the same way but reports differently.
type Result struct {
	Instructions []model.Instruction
	Warnings     []string
	Source       string
	Err          error
	Elapsed      time.Duration
}

// Failed reports whether loading failed.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Empty reports whether there is nothing to display, for whatever reason.
func (r Result) Empty() bool {
	return len(r.Instructions) == 0
}

// NotFound reports whether the resource was missing.
func (r Result) NotFound() bool {
	return errors.Is(r.Err, ErrResourceNotFound)
}

// Malformed reports whether the resource could not be decoded.
func (r Result) Malformed() bool {
	return errors.Is(r.Err, ErrDecodeFailure)
}

// Reason returns a short description of the failure, or "" on success.
func (r Result) Reason() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// LoadFunc decodes a collection, reporting skipped records through opts.
type LoadFunc func(opts ParseOptions) ([]model.Instruction, error)

// Collect runs fn and folds its records, warnings and error into a Result.
// On failure the collection is always empty.
func Collect(source string, fn LoadFunc) Result {
	defer debug.LogEnterExit("loader.Collect " + source)()

	res := Result{Source: source}
	start := time.Now()
	items, err := fn(ParseOptions{
		WarningHandler: func(msg string) {
			debug.Log("%s: %s", source, msg)
			res.Warnings = append(res.Warnings, msg)
		},
	})
	res.Elapsed = time.Since(start)
	debug.LogTiming("load "+source, res.Elapsed)
	metrics.ContentLoad.Record(res.Elapsed)

	if err != nil {
		debug.Log("%s: load failed: %v", source, err)
		res.Err = err
		return res
	}
	res.Instructions = items
	debug.Log("%s: loaded %d instructions (%d skipped)", source, len(items), len(res.Warnings))
	return res
}

// LoadFileResult loads path into a Result.
func LoadFileResult(path string) Result {
	return Collect(path, func(opts ParseOptions) ([]model.Instruction, error) {
		return LoadFileWithOptions(path, opts)
	})
}
