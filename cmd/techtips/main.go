package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/vanderheijden86/techtips/internal/datasource"
	_ "github.com/vanderheijden86/techtips/internal/ttyguard"
	"github.com/vanderheijden86/techtips/pkg/catalog"
	"github.com/vanderheijden86/techtips/pkg/config"
	"github.com/vanderheijden86/techtips/pkg/debug"
	"github.com/vanderheijden86/techtips/pkg/loader"
	"github.com/vanderheijden86/techtips/pkg/nav"
	"github.com/vanderheijden86/techtips/pkg/ui"
	"github.com/vanderheijden86/techtips/pkg/version"
)

// ModeEnvVar overrides ui.mode from the config file.
const ModeEnvVar = "TECHTIPS_MODE"

type options struct {
	content      string
	mode         string
	watch        bool
	pick         bool
	print        bool
	category     string
	search       string
	exportMD     string
	exportSQLite string
	exportJSON   string
	validate     bool
	configPath   string
	version      bool
	help         bool
	cpuProfile   string
}

func (o options) exporting() bool {
	return o.exportMD != "" || o.exportSQLite != "" || o.exportJSON != ""
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (options, *flag.FlagSet, error) {
	var o options
	fs := flag.NewFlagSet("techtips", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.content, "content", "", "Instruction file to load (JSON, YAML or SQLite pack)")
	fs.StringVar(&o.mode, "mode", "", "Navigation mode: auto, grouped or flat")
	fs.BoolVar(&o.watch, "watch", false, "Reload the content file when it changes")
	fs.BoolVar(&o.pick, "pick", false, "Choose an instruction with a prompt before browsing")
	fs.BoolVar(&o.print, "print", false, "Print the instructions as markdown and exit")
	fs.StringVar(&o.category, "category", "", "Only show instructions in this category")
	fs.StringVar(&o.search, "search", "", "Only show instructions whose title, category or steps match")
	fs.StringVar(&o.exportMD, "export-md", "", "Write a markdown handbook to file and exit")
	fs.StringVar(&o.exportSQLite, "export-sqlite", "", "Write a SQLite content pack to file and exit")
	fs.StringVar(&o.exportJSON, "export-json", "", "Write the normalized instructions as JSON and exit")
	fs.BoolVar(&o.validate, "validate", false, "Load the content, report problems and exit")
	fs.StringVar(&o.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/techtips/config.yaml)")
	fs.BoolVar(&o.version, "version", false, "Show version")
	fs.BoolVar(&o.help, "help", false, "Show help")
	fs.StringVar(&o.cpuProfile, "cpu-profile", "", "Write CPU profile to file")
	err := fs.Parse(args)
	return o, fs, err
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, fs, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "Error: unexpected argument %q\n", fs.Arg(0))
		return 2
	}

	// CPU profiling support
	if opts.cpuProfile != "" {
		f, err := os.Create(opts.cpuProfile)
		if err != nil {
			fmt.Fprintf(stderr, "Could not create CPU profile: %v\n", err)
			return 1
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(stderr, "Could not start CPU profile: %v\n", err)
			return 1
		}
		defer pprof.StopCPUProfile()
	}

	defer logMetrics()

	if opts.help {
		fmt.Fprintln(stdout, "Usage: techtips [options]")
		fmt.Fprintln(stdout, "\nBrowse step-by-step tech support instructions.")
		fs.SetOutput(stdout)
		fs.PrintDefaults()
		return 0
	}

	if opts.version {
		fmt.Fprintf(stdout, "techtips %s\n", version.String())
		return 0
	}

	cfg, cfgErr := loadConfig(opts.configPath)
	if cfgErr != nil {
		// Non-fatal: continue with defaults
		fmt.Fprintf(stderr, "Warning: %v (using defaults)\n", cfgErr)
	}

	mode, err := resolveMode(opts.mode, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	discovery := datasource.DiscoveryOptions{
		ExplicitPath: opts.content,
		ConfigPath:   cfg.Content.Path,
		Verbose:      debug.Enabled(),
		Logger:       func(msg string) { debug.Log("%s", msg) },
	}
	res, src := datasource.Load(discovery)

	if opts.validate {
		return runValidate(stdout, stderr, res, src, discovery)
	}

	items := filterInstructions(res.Instructions, opts.category, opts.search)

	if opts.exporting() {
		if res.Failed() {
			fmt.Fprintf(stderr, "Error loading instructions: %v\n", res.Err)
			return 1
		}
		if err := runExports(stdout, items, opts, cfg); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	interactive := isTerminal(stdout)
	c := catalog.New(items)

	var start *ui.Selection
	if opts.pick {
		sel, err := ui.Pick(c, mode)
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return 0
			}
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		start = &sel
	}

	if opts.print || !interactive {
		if start != nil {
			return runPrintPicked(stdout, stderr, c, mode, *start, cfg, interactive)
		}
		return runPrint(stdout, stderr, res, items, opts, cfg, interactive)
	}

	var reloader *ui.Reloader
	if (opts.watch || cfg.Content.Watch) && src.Path != "" {
		filter := func() loader.Result {
			r := datasource.LoadFromSource(src)
			r.Instructions = filterInstructions(r.Instructions, opts.category, opts.search)
			return r
		}
		reloader, err = ui.NewReloader(src.Path, filter)
		if err != nil {
			fmt.Fprintf(stderr, "Warning: cannot watch %s: %v\n", src.Path, err)
		}
	} else if opts.watch {
		fmt.Fprintf(stderr, "Warning: --watch needs a content file; %s cannot change\n", src.Name())
	}

	// stderr belongs to the alt screen from here on
	closeLog := redirectDebugLog()
	defer closeLog()
	debug.Section("techtips " + version.String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if reloader != nil {
		if err := reloader.Start(ctx); err != nil {
			fmt.Fprintf(stderr, "Warning: cannot watch %s: %v\n", src.Path, err)
			reloader = nil
		} else {
			defer reloader.Stop()
		}
	}

	m := ui.NewModel(c, ui.Options{
		Config:   cfg,
		Mode:     mode,
		Source:   sourceLabel(src),
		LoadErr:  res.Err,
		Reloader: reloader,
		Start:    start,
	})
	if err := runTUIProgram(m); err != nil {
		fmt.Fprintf(stderr, "Error running techtips: %v\n", err)
		return 1
	}
	return 0
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// resolveMode applies flag > env > config precedence.
func resolveMode(flagValue string, cfg config.Config) (nav.Mode, error) {
	if flagValue != "" {
		m, err := nav.ParseMode(flagValue)
		if err != nil {
			return nav.ModeAuto, fmt.Errorf("invalid --mode: %w", err)
		}
		return m, nil
	}
	if v := strings.TrimSpace(os.Getenv(ModeEnvVar)); v != "" {
		m, err := nav.ParseMode(v)
		if err != nil {
			return nav.ModeAuto, fmt.Errorf("invalid %s: %w", ModeEnvVar, err)
		}
		return m, nil
	}
	return nav.ParseMode(cfg.UI.Mode)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func sourceLabel(src datasource.DataSource) string {
	if src.Path == "" {
		return src.Name()
	}
	return filepath.Base(src.Path)
}

// redirectDebugLog moves debug output off stderr while the TUI runs. The
// returned func closes the log file.
func redirectDebugLog() func() {
	if !debug.Enabled() || os.Getenv("TECHTIPS_DEBUG_FILE") != "" {
		return func() {}
	}
	path := filepath.Join(os.TempDir(), "techtips-debug.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		debug.SetOutput(io.Discard)
		return func() {}
	}
	debug.SetOutput(f)
	return func() {
		debug.SetOutput(os.Stderr)
		_ = f.Close()
	}
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set TECHTIPS_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("TECHTIPS_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	_, err := p.Run()
	if err != nil && (errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted)) {
		return nil
	}
	return err
}
