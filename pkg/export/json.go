package export

import (
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/techtips/pkg/model"
)

// jsonRecord is the on-disk shape of one record. IDs are process-local and
// are not written.
type jsonRecord struct {
	Category   string   `json:"category,omitempty"`
	Title      string   `json:"title"`
	Background string   `json:"background,omitempty"`
	Steps      []string `json:"steps"`
}

// MarshalJSON encodes items as an indented JSON array the JSON loader reads
// back unchanged.
func MarshalJSON(items []model.Instruction) ([]byte, error) {
	records := make([]jsonRecord, len(items))
	for i, in := range items {
		records[i] = jsonRecord{
			Category:   in.Category,
			Title:      in.Title,
			Background: in.Background,
			Steps:      in.StepsCopy(),
		}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal instructions: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteJSON writes items to path as a JSON content resource.
func WriteJSON(items []model.Instruction, path string) error {
	data, err := MarshalJSON(items)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
