// Package model defines the instruction record shared by every layer of techtips.
package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DefaultCategory is assigned to uncategorized records when the rest of the
// collection is grouped, so every record belongs to exactly one category.
const DefaultCategory = "General"

// Instruction is a single titled how-to document with ordered steps.
type Instruction struct {
	// ID is assigned at load time and is unique within one loaded collection.
	// It is never part of the persisted resource.
	ID         string   `json:"-" yaml:"-"`
	Category   string   `json:"category,omitempty" yaml:"category,omitempty"`
	Title      string   `json:"title" yaml:"title" validate:"required,notblank"`
	Steps      []string `json:"steps" yaml:"steps" validate:"required,min=1,dive,notblank"`
	Background string   `json:"background,omitempty" yaml:"background,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// Validate checks the record invariants: a non-blank title and at least one
// non-blank step.
func (i *Instruction) Validate() error {
	if err := validate.Struct(i); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			switch fe.Field() {
			case "Title":
				return fmt.Errorf("title cannot be empty")
			case "Steps":
				return fmt.Errorf("steps must contain at least one entry")
			default:
				if strings.HasPrefix(fe.Field(), "Steps[") {
					return fmt.Errorf("step %s cannot be empty", strings.TrimSuffix(strings.TrimPrefix(fe.Field(), "Steps["), "]"))
				}
			}
		}
		return err
	}
	return nil
}

// HasCategory reports whether the record carries a grouping label.
func (i Instruction) HasCategory() bool {
	return strings.TrimSpace(i.Category) != ""
}

// StepCount returns the number of steps.
func (i Instruction) StepCount() int {
	return len(i.Steps)
}

// Step returns the step at index n, or false when n is out of range.
func (i Instruction) Step(n int) (string, bool) {
	if n < 0 || n >= len(i.Steps) {
		return "", false
	}
	return i.Steps[n], true
}

// StepsCopy returns a copy of the steps so callers cannot reorder the record.
func (i Instruction) StepsCopy() []string {
	out := make([]string, len(i.Steps))
	copy(out, i.Steps)
	return out
}

// Clone returns a deep copy of the instruction.
func (i Instruction) Clone() Instruction {
	c := i
	c.Steps = i.StepsCopy()
	return c
}
