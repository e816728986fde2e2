package prompt

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Prompter asks the operator a yes/no question. The only callers are
// `grove uproot`/`tree uproot`, which need a single confirmation gate
// before deleting a worktree.
type Prompter interface {
	Confirm(message string, defaultValue bool) (bool, error)
}

// DefaultPrompter implements Prompter against stdin/stdout.
type DefaultPrompter struct {
	reader *bufio.Reader
	writer *os.File
}

// New creates a DefaultPrompter.
func New() *DefaultPrompter {
	return &DefaultPrompter{
		reader: bufio.NewReader(os.Stdin),
		writer: os.Stdout,
	}
}

// Confirm displays a yes/no confirmation prompt.
func (p *DefaultPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	defaultStr := "y/N"
	if defaultValue {
		defaultStr = "Y/n"
	}

	fmt.Fprintf(p.writer, "%s %s [%s]: ", color.YellowString("?"), message, defaultStr)

	input, err := p.reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("failed to read input: %w", err)
	}

	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" {
		return defaultValue, nil
	}

	switch input {
	case "y", "yes", "true", "1":
		return true, nil
	case "n", "no", "false", "0":
		return false, nil
	default:
		return defaultValue, nil
	}
}

var defaultPrompter = New()

// Confirm is a convenience function using the default prompter.
func Confirm(message string, defaultValue bool) (bool, error) {
	return defaultPrompter.Confirm(message, defaultValue)
}

// ConfirmDestructive asks for confirmation before a tree/grove uproot,
// defaulting to "no" and printing a cancellation notice on refusal.
func ConfirmDestructive(operation string) (bool, error) {
	fmt.Fprintf(os.Stdout, "\n%s This is a destructive operation!\n", color.RedString("⚠"))

	message := fmt.Sprintf("Are you sure you want to %s?", operation)
	confirmed, err := Confirm(message, false)
	if err != nil {
		return false, err
	}

	if !confirmed {
		fmt.Fprintf(os.Stdout, "%s Operation cancelled\n", color.YellowString("→"))
	}

	return confirmed, nil
}
