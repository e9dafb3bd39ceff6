// Package ttyguard is imported for its side effect: it stops terminal
// background-color probing for invocations whose output is meant for a
// file, a pipe or a script.
package ttyguard

import (
	"os"
	"strings"
)

// TestModeEnvVar marks a run as non-interactive.
const TestModeEnvVar = "TECHTIPS_TEST_MODE"

// init runs before Bubble Tea acquires the terminal (and before any TUI starts).
//
// Lipgloss and glamour ask the terminal for its background color, which emits
// OSC/DSR control sequences to stdout. Those sequences are harmless in a real
// terminal but end up in exported files and piped --validate output.
//
// Termenv skips the probe when CI is set, so set it early for those runs.
func init() {
	if os.Getenv("CI") != "" {
		return
	}
	if !shouldSuppressTTYQueries(os.Args[1:], os.Getenv(TestModeEnvVar) != "") {
		return
	}
	_ = os.Setenv("CI", "1")
}

func shouldSuppressTTYQueries(args []string, envTest bool) bool {
	if envTest {
		return true
	}

	for _, arg := range args {
		name := strings.TrimLeft(arg, "-")
		if name == arg {
			continue // not a flag
		}
		if i := strings.IndexByte(name, '='); i >= 0 {
			name = name[:i]
		}
		if strings.HasPrefix(name, "export-") {
			return true
		}
		switch name {
		case "validate", "version", "help", "h":
			return true
		}
	}

	return false
}
