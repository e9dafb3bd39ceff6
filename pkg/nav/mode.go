// Package nav holds the browsing state machine: category grid, instruction
// list, step viewer and the flat carousel. It has no terminal dependencies;
// pkg/ui renders whatever state a Flow is in.
package nav

import (
	"fmt"
	"strings"
)

// Screen identifies what the flow is currently showing.
type Screen int

const (
	ScreenEmpty    Screen = iota // No instructions loaded
	ScreenGrid                   // One tile per category
	ScreenList                   // Instructions of the selected category
	ScreenDetail                 // Steps of one instruction
	ScreenCarousel               // Flat mode: every instruction, two-axis paging
)

// String returns a short name for the screen.
func (s Screen) String() string {
	switch s {
	case ScreenEmpty:
		return "empty"
	case ScreenGrid:
		return "grid"
	case ScreenList:
		return "list"
	case ScreenDetail:
		return "detail"
	case ScreenCarousel:
		return "carousel"
	default:
		return "unknown"
	}
}

// Mode selects between grouped and flat browsing.
type Mode int

const (
	ModeAuto    Mode = iota // Grouped when the catalog has categories
	ModeGrouped             // Always grid -> list -> detail
	ModeFlat                // Always the carousel
)

// String returns the mode name as accepted by ParseMode.
func (m Mode) String() string {
	switch m {
	case ModeGrouped:
		return "grouped"
	case ModeFlat:
		return "flat"
	default:
		return "auto"
	}
}

// ParseMode parses "auto", "grouped" or "flat". Empty means auto.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ModeAuto, nil
	case "grouped", "grid":
		return ModeGrouped, nil
	case "flat", "carousel":
		return ModeFlat, nil
	default:
		return ModeAuto, fmt.Errorf("unknown mode %q (want auto, grouped or flat)", s)
	}
}
