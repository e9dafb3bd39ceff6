package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/techtips/pkg/loader"
	"github.com/vanderheijden86/techtips/pkg/watcher"
)

// FileChangedMsg is sent when the content file changes on disk.
type FileChangedMsg struct {
	Change watcher.Change
}

// WatchErrorMsg carries a watcher error into the Update loop.
type WatchErrorMsg struct {
	Err error
}

// Reloader ties a file watcher to the function that reloads the content.
// Watcher callbacks run on watcher goroutines; everything they report is
// handed to the Update loop through channels.
type Reloader struct {
	w    *watcher.Watcher
	load func() loader.Result
	errs chan error
}

// NewReloader watches path and reloads it with load.
func NewReloader(path string, load func() loader.Result, opts ...watcher.Option) (*Reloader, error) {
	r := &Reloader{
		load: load,
		errs: make(chan error, 4),
	}
	opts = append(opts, watcher.WithOnError(r.report))
	w, err := watcher.New(path, opts...)
	if err != nil {
		return nil, err
	}
	r.w = w
	return r, nil
}

func (r *Reloader) report(err error) {
	select {
	case r.errs <- err:
	default:
		// A backlog of errors says nothing the first few did not.
	}
}

// Start begins watching.
func (r *Reloader) Start(ctx context.Context) error {
	return r.w.Start(ctx)
}

// Stop stops watching.
func (r *Reloader) Stop() {
	r.w.Stop()
}

// Path returns the watched path.
func (r *Reloader) Path() string {
	return r.w.Path()
}

// IsPolling reports whether the watcher fell back to polling.
func (r *Reloader) IsPolling() bool {
	return r.w.IsPolling()
}

// Load reloads the content.
func (r *Reloader) Load() loader.Result {
	return r.load()
}

// WatchFileCmd returns a command that waits for the next change or watcher
// error. It returns nil when nothing is watched.
func WatchFileCmd(r *Reloader) tea.Cmd {
	if r == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case c := <-r.w.Changed():
			return FileChangedMsg{Change: c}
		case err := <-r.errs:
			return WatchErrorMsg{Err: err}
		}
	}
}
