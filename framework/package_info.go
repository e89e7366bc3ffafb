// Package framework contains the low-level probe runner infrastructure that is not specific
// to the PandaWiki chat endpoints.
//
// The general model is:
//
// 1. Each probe runs inside a Context, which is similar to Go's *testing.T: it associates the
// probe's logic with a ProbeID, accumulates failures, and captures debug output.
//
// 2. A ProbeLogger is told when each probe starts, fails, finishes or is skipped. Debug output
// is handed to it at the end of each probe so it can decide whether to show it.
//
// 3. Filters allow a run to be restricted to some probes by regex.
//
// The domain-specific code that knows what is being probed lives in the probe package.
package framework
