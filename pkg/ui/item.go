package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/vanderheijden86/techtips/pkg/model"
)

// InstructionItem wraps model.Instruction to implement list.Item.
type InstructionItem struct {
	Instruction model.Instruction
	Index       int // position in the flow's current list
}

func (i InstructionItem) Title() string {
	return i.Instruction.Title
}

func (i InstructionItem) Description() string {
	n := i.Instruction.StepCount()
	if n == 1 {
		return "1 step"
	}
	return fmt.Sprintf("%d steps", n)
}

// FilterValue matches on the title and the step text, so "/onedrive" finds
// a card that only mentions OneDrive in a step.
func (i InstructionItem) FilterValue() string {
	var sb strings.Builder
	sb.WriteString(i.Instruction.Title)
	for _, step := range i.Instruction.Steps {
		sb.WriteString(" ")
		sb.WriteString(step)
	}
	return sb.String()
}

func listItems(items []model.Instruction) []list.Item {
	out := make([]list.Item, len(items))
	for i, in := range items {
		out[i] = InstructionItem{Instruction: in, Index: i}
	}
	return out
}
