package reporting

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))            // cyan
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true) // green
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true) // red
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))            // yellow
)

// ConsoleSink renders run output as styled lines on a writer.
type ConsoleSink struct {
	out io.Writer
}

// NewConsoleSink returns a sink writing to out.
func NewConsoleSink(out io.Writer) *ConsoleSink {
	return &ConsoleSink{out: out}
}

// Report renders one message.
func (c *ConsoleSink) Report(kind Kind, text string) {
	switch kind {
	case KindStep:
		fmt.Fprintln(c.out, stepStyle.Render("==> "+text))
	case KindSuccess:
		fmt.Fprintln(c.out, successStyle.Render("✓ ")+text)
	case KindFailure:
		fmt.Fprintln(c.out, failureStyle.Render("✗ ")+text)
	case KindHint:
		fmt.Fprintln(c.out, hintStyle.Render("  hint: "+text))
	default:
		fmt.Fprintln(c.out, text)
	}
}
