package probe

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Output is the human-readable sink of a probe run.
type Output interface {
	// Line echoes one line of the response stream verbatim.
	Line(line string)
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Fail(format string, args ...interface{})
	Success(format string, args ...interface{})
}

// ConsoleOutput writes probe output to a terminal, colored unless color.NoColor is set.
type ConsoleOutput struct {
	w       io.Writer
	line    func(a ...interface{}) string
	warn    func(a ...interface{}) string
	fail    func(a ...interface{}) string
	success func(a ...interface{}) string
}

func NewConsoleOutput(w io.Writer) *ConsoleOutput {
	return &ConsoleOutput{
		w:       w,
		line:    color.New(color.FgCyan).SprintFunc(),
		warn:    color.New(color.FgYellow).SprintFunc(),
		fail:    color.New(color.FgRed, color.Bold).SprintFunc(),
		success: color.New(color.FgGreen).SprintFunc(),
	}
}

func (c *ConsoleOutput) Line(line string) {
	fmt.Fprintf(c.w, "  %s %s\n", c.line("<<"), line)
}

func (c *ConsoleOutput) Info(format string, args ...interface{}) {
	fmt.Fprintf(c.w, "  %s\n", fmt.Sprintf(format, args...))
}

func (c *ConsoleOutput) Warn(format string, args ...interface{}) {
	fmt.Fprintf(c.w, "  %s %s\n", c.warn("WARNING:"), fmt.Sprintf(format, args...))
}

func (c *ConsoleOutput) Fail(format string, args ...interface{}) {
	fmt.Fprintf(c.w, "  %s %s\n", c.fail("FAIL:"), fmt.Sprintf(format, args...))
}

func (c *ConsoleOutput) Success(format string, args ...interface{}) {
	fmt.Fprintf(c.w, "  %s %s\n", c.success("OK:"), fmt.Sprintf(format, args...))
}
