package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/scott-nodejs/pandawiki-sse-smoke-tests/framework"

	"github.com/fatih/color"
)

type ConsoleProbeLogger struct {
	Out                  io.Writer
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
}

var (
	probeHeading = color.New(color.Bold).SprintFunc()
	probeFailed  = color.New(color.FgRed, color.Bold).SprintFunc()
	probeSkipped = color.New(color.FgYellow).SprintFunc()
)

func (c *ConsoleProbeLogger) ProbeStarted(id framework.ProbeID) {
	fmt.Fprintf(c.Out, "\n%s\n", probeHeading(fmt.Sprintf("[%s]", id)))
}

func (c *ConsoleProbeLogger) ProbeError(id framework.ProbeID, err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Fprintf(c.Out, "  %s\n", line)
	}
}

func (c *ConsoleProbeLogger) ProbeFinished(id framework.ProbeID, failed bool, debugOutput framework.CapturedOutput) {
	if failed {
		fmt.Fprintf(c.Out, "  %s %s\n", probeFailed("FAILED:"), id)
	}
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		debugOutput.Dump(c.Out, "    DEBUG ")
	}
}

func (c *ConsoleProbeLogger) ProbeSkipped(id framework.ProbeID, reason string) {
	if reason == "" {
		fmt.Fprintf(c.Out, "  %s %s\n", probeSkipped("SKIPPED:"), id)
	} else {
		fmt.Fprintf(c.Out, "  %s %s (%s)\n", probeSkipped("SKIPPED:"), id, reason)
	}
}
