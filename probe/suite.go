package probe

import (
	"context"

	"github.com/scott-nodejs/pandawiki-sse-smoke-tests/client"
	"github.com/scott-nodejs/pandawiki-sse-smoke-tests/framework"
	"github.com/scott-nodejs/pandawiki-sse-smoke-tests/probedef"

	"github.com/google/uuid"
)

// RunSuite runs the given probes one after another. Each probe gets its own framework.Context,
// so that a failure or even a panic in one probe does not prevent the others from running.
func RunSuite(
	ctx context.Context,
	chatClient *client.ChatClient,
	probes []probedef.ProbeParams,
	filter framework.Filter,
	probeLogger framework.ProbeLogger,
	out Output,
) framework.Results {
	return framework.Run(filter, probeLogger, func(c *framework.Context) {
		for _, params := range probes {
			params := withRequestID(params)
			c.Run(params.Name, func(c *framework.Context) {
				if params.URL == "" {
					c.SkipWithReason("no URL configured")
				}
				c.Debug("Probe %s, request id %s", c.ID(), params.Headers[probedef.HeaderRequestID])
				outcome := RunChatProbe(ctx, chatClient.WithLogger(c.DebugLogger()), params, out)
				c.Debug("Probe stopped: %s (%d events, %d data chunks)",
					outcome.Reason, outcome.Stats.EventCount, outcome.Stats.DataChunks)
				if !outcome.OK {
					if outcome.Err != nil {
						c.Errorf("%s: %s", outcome.Reason, outcome.Err)
					} else {
						c.Errorf("%s", outcome.Reason)
					}
				}
			})
		}
	})
}

// withRequestID returns a copy of params with an X-Request-Id header, unless one is configured.
func withRequestID(params probedef.ProbeParams) probedef.ProbeParams {
	headers := make(map[string]string, len(params.Headers)+1)
	for k, v := range params.Headers {
		headers[k] = v
	}
	if headers[probedef.HeaderRequestID] == "" {
		headers[probedef.HeaderRequestID] = uuid.NewString()
	}
	params.Headers = headers
	return params
}
