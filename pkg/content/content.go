// Package content holds the instruction resources bundled into the binary.
package content

import (
	_ "embed"

	"github.com/vanderheijden86/techtips/pkg/model"
)

// ResourceName is the name the bundled resource is reported under.
const ResourceName = "instructions.json"

//go:embed instructions.json
var bundled []byte

// Bundled returns a copy of the embedded JSON resource.
func Bundled() []byte {
	out := make([]byte, len(bundled))
	copy(out, bundled)
	return out
}

// Fixture returns the literal, uncategorized instruction set. It is handed to
// the store explicitly (see datasource.FixtureSource) rather than read as a
// global, so tests can substitute their own records.
func Fixture() []model.Instruction {
	return []model.Instruction{
		{
			Title:      "Reset Your Password",
			Background: "lock",
			Steps: []string{
				"Go to the self-service password reset page.",
				"Verify your identity with your phone.",
				"Enter a new password twice and click Finish.",
			},
		},
		{
			Title:      "Share a File",
			Background: "onedrive",
			Steps: []string{
				"Open OneDrive.",
				"Select Share.",
			},
		},
		{
			Title:      "Add the Office Printer",
			Background: "printer",
			Steps: []string{
				"Open Settings and go to Printers & scanners.",
				"Click Add device.",
				"Select the office printer.",
			},
		},
	}
}
