package errors

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Handler renders an error to a writer and resolves its process exit code.
type Handler struct {
	Writer  io.Writer
	Verbose bool
	NoColor bool
}

// DefaultHandler writes to stderr with color enabled.
func DefaultHandler() *Handler {
	return &Handler{Writer: os.Stderr}
}

// Handle prints "Error: <message>" plus any suggestions and returns the exit code.
func (h *Handler) Handle(err error) int {
	if err == nil {
		return 0
	}

	groveErr, ok := err.(*GroveError)
	if !ok {
		h.printf("Error: %v\n", err)
		return 1
	}

	h.printf("Error: %s\n", groveErr.Error())

	if h.Verbose {
		for k, v := range groveErr.Context {
			h.printf("  %s: %s\n", k, v)
		}
	}

	if groveErr.HasSuggestions() {
		fmt.Fprintln(h.Writer)
		h.printf("Possible next steps:\n")
		for _, s := range groveErr.Suggestions {
			h.printf("  - %s\n", s)
		}
	}

	if groveErr.Code > 0 {
		return groveErr.Code
	}
	return 1
}

func (h *Handler) printf(format string, args ...any) {
	if h.NoColor {
		fmt.Fprintf(h.Writer, format, args...)
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprint(h.Writer, color.New(color.FgRed).Sprint(msg))
}

// Print handles err with the default handler and returns the exit code.
func Print(err error) int { return DefaultHandler().Handle(err) }

// Exit handles err with the default handler and terminates the process.
func Exit(err error) { os.Exit(Print(err)) }
