package framework

import (
	"errors"
	"fmt"
	"runtime/debug"
)

type environment struct {
	results     Results
	probeLogger ProbeLogger
	filter      Filter
}

// Context is the scope of one probe, or of a group of probes. It is used similarly to *testing.T:
// it implements the Errorf and FailNow methods expected by testify's require.TestingT, has a Run
// method for nested probes, and captures debug output for the probe it represents.
type Context struct {
	env         *environment
	id          ProbeID
	debugLogger CapturingLogger
	failed      bool
	skipped     bool
	skipReason  string
	errors      []error
}

// Run executes the top-level action and returns the accumulated results of every probe that
// was started with Context.Run.
func Run(
	filter Filter,
	probeLogger ProbeLogger,
	action func(*Context),
) Results {
	if probeLogger == nil {
		probeLogger = nullProbeLogger{}
	}
	env := &environment{
		filter:      filter,
		probeLogger: probeLogger,
	}
	c := &Context{env: env}
	c.run(action, false)
	return env.results
}

func (c *Context) run(action func(*Context), record bool) {
	defer func() {
		if r := recover(); r != nil {
			if !c.skipped {
				c.failed = true
				var addError error
				if _, ok := r.(*Context); ok {
					if len(c.errors) == 0 {
						addError = errors.New("probe failed with no failure message")
					}
				} else {
					addError = fmt.Errorf("unexpected panic in probe: %+v\n%s", r, string(debug.Stack()))
				}
				if addError != nil {
					c.errors = append(c.errors, addError)
					c.env.probeLogger.ProbeError(c.id, addError)
				}
			}
		}
		if !record {
			return
		}
		result := ProbeResult{ProbeID: c.id, Errors: c.errors, Skipped: c.skipped}
		c.env.results.Probes = append(c.env.results.Probes, result)
		if c.skipped {
			c.env.results.Skipped = append(c.env.results.Skipped, result)
		} else if c.failed {
			c.env.results.Failures = append(c.env.results.Failures, result)
		}
	}()

	action(c)
}

func (c *Context) ID() ProbeID {
	return c.id
}

// Run starts a nested probe. It is skipped without calling action if the filter rejects its ID.
func (c *Context) Run(name string, action func(*Context)) {
	id := ProbeID{Path: append(append([]string(nil), c.id.Path...), name)}

	c.env.probeLogger.ProbeStarted(id)
	c1 := &Context{
		id:  id,
		env: c.env,
	}
	if c.env.filter != nil && !c.env.filter(id) {
		c1.skipped = true
		c1.skipReason = "excluded by filter parameters"
		c.env.results.Probes = append(c.env.results.Probes, ProbeResult{ProbeID: id, Skipped: true})
		c.env.results.Skipped = append(c.env.results.Skipped, ProbeResult{ProbeID: id, Skipped: true})
		c.env.probeLogger.ProbeSkipped(id, c1.skipReason)
		return
	}
	c1.run(action, true)
	if c1.skipped {
		c.env.probeLogger.ProbeSkipped(id, c1.skipReason)
	} else {
		c.env.probeLogger.ProbeFinished(id, c1.failed, c1.debugLogger.Output())
	}
}

func (c *Context) Failed() bool {
	return c.failed
}

func (c *Context) Errorf(format string, args ...interface{}) {
	c.failed = true
	err := fmt.Errorf(format, args...)
	c.errors = append(c.errors, err)
	c.env.probeLogger.ProbeError(c.id, err)
}

func (c *Context) FailNow() {
	panic(c)
}

func (c *Context) Skip() {
	c.skipped = true
	panic(c)
}

func (c *Context) SkipWithReason(reason string) {
	c.skipReason = reason
	c.Skip()
}

func (c *Context) Debug(message string, args ...interface{}) {
	c.debugLogger.Printf(message, args...)
}

func (c *Context) DebugLogger() Logger {
	return &c.debugLogger
}
