package framework

import (
	"fmt"
	"io"
	"strings"
)

type Results struct {
	Probes   []ProbeResult
	Failures []ProbeResult
	Skipped  []ProbeResult
}

type ProbeResult struct {
	ProbeID ProbeID
	Errors  []error
	Skipped bool
}

// OK is true if no probe failed. Skipped probes do not count as failures.
func (r Results) OK() bool {
	return len(r.Failures) == 0
}

type ProbeID struct {
	Path []string
}

func (p ProbeID) String() string {
	return strings.Join(p.Path, "/")
}

// PrintResults writes a summary of the run.
func PrintResults(out io.Writer, results Results) {
	if results.OK() {
		fmt.Fprintf(out, "All probes passed (%d run, %d skipped)\n",
			len(results.Probes)-len(results.Skipped), len(results.Skipped))
		return
	}
	fmt.Fprintf(out, "FAILED PROBES (%d):\n", len(results.Failures))
	for _, f := range results.Failures {
		fmt.Fprintf(out, "* %s\n", f.ProbeID)
		for _, err := range f.Errors {
			for _, line := range strings.Split(err.Error(), "\n") {
				fmt.Fprintf(out, "    %s\n", line)
			}
		}
	}
}

// ProbeLogger receives notifications about the progress of a probe run. The console
// implementation lives in the main package.
type ProbeLogger interface {
	ProbeStarted(id ProbeID)
	ProbeError(id ProbeID, err error)
	ProbeFinished(id ProbeID, failed bool, debugOutput CapturedOutput)
	ProbeSkipped(id ProbeID, reason string)
}

type nullProbeLogger struct{}

func (n nullProbeLogger) ProbeStarted(ProbeID)                        {}
func (n nullProbeLogger) ProbeError(ProbeID, error)                   {}
func (n nullProbeLogger) ProbeFinished(ProbeID, bool, CapturedOutput) {}
func (n nullProbeLogger) ProbeSkipped(ProbeID, string)                {}
