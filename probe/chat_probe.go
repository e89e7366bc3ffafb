// Package probe contains the chat smoke probes: one POST to a chat endpoint, followed by a
// line-by-line read of the SSE response until a terminal event, an event cap, the end of the
// stream, a timeout or an interruption.
package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/scott-nodejs/pandawiki-sse-smoke-tests/client"
	"github.com/scott-nodejs/pandawiki-sse-smoke-tests/probedef"
)

// Reason describes why a probe stopped.
type Reason string

const (
	ReasonDone           Reason = "terminal event received"
	ReasonEventCap       Reason = "event cap reached"
	ReasonEndOfStream    Reason = "end of stream"
	ReasonInterrupted    Reason = "interrupted"
	ReasonTimedOut       Reason = "timed out"
	ReasonHTTPStatus     Reason = "unexpected HTTP status"
	ReasonTransport      Reason = "transport error"
	ReasonDecodeFailures Reason = "too many decode failures"
	ReasonBadPayload     Reason = "unexpected event payload"
)

// Causes given to the read context when the probe itself decides to stop reading.
var (
	errTerminalEvent         = errors.New("terminal event received")
	errEventCapReached       = errors.New("event cap reached")
	errTooManyDecodeFailures = errors.New("too many consecutive decode failures")
	errUnexpectedPayload     = errors.New("unexpected event payload")
)

// Outcome is the result of one probe.
type Outcome struct {
	OK         bool
	Reason     Reason
	Err        error
	StatusCode int
	Stats      *Stats
}

type chatProbe struct {
	params              probedef.ProbeParams
	out                 Output
	stats               *Stats
	statusCode          int
	consecutiveFailures int
}

// RunChatProbe sends the probe's chat request and consumes the response stream.
//
// The whole request is bounded by params.Timeout(). Every way of stopping the read goes through
// one cancellable context: a terminal event or the event cap cancel it with a success cause,
// while the timeout or a cancellation of ctx (such as an interrupt signal) make the probe fail.
// Lines that cannot be decoded produce a warning and are otherwise ignored, unless
// params.MaxDecodeFailures is reached. A line that is valid JSON but not an object fails the
// probe.
func RunChatProbe(
	ctx context.Context,
	chatClient *client.ChatClient,
	params probedef.ProbeParams,
	out Output,
) Outcome {
	p := &chatProbe{params: params, out: out, stats: newStats()}

	requestCtx := ctx
	if timeout := params.Timeout(); timeout > 0 {
		var cancelTimeout context.CancelFunc
		requestCtx, cancelTimeout = context.WithTimeout(ctx, timeout)
		defer cancelTimeout()
	}
	readCtx, stop := context.WithCancelCause(requestCtx)
	defer stop(nil)

	out.Info("POST %s", params.URL)
	body, err := json.Marshal(params.Request)
	if err != nil {
		out.Fail("Could not encode request body: %s", err)
		return p.outcome(false, ReasonTransport, err)
	}
	out.Info("Request body: %s", body)

	stream, err := chatClient.OpenStream(readCtx, params)
	if err != nil {
		var statusErr *client.StatusError
		if errors.As(err, &statusErr) {
			p.statusCode = statusErr.StatusCode
			out.Fail("SSE connection failed, status code %d", statusErr.StatusCode)
			out.Info("Response body: %s", statusErr.Body)
			return p.outcome(false, ReasonHTTPStatus, err)
		}
		if readCtx.Err() != nil {
			return p.finish(context.Cause(readCtx))
		}
		out.Fail("Network request failed: %s", err)
		return p.outcome(false, ReasonTransport, err)
	}
	defer stream.Close()

	p.statusCode = stream.StatusCode
	out.Info("Response status: %d", stream.StatusCode)
	p.printHeaders(stream)
	out.Success("SSE connection established, reading stream")

	for {
		select {
		case <-readCtx.Done():
			return p.finish(context.Cause(readCtx))
		case line, ok := <-stream.Lines():
			if readCtx.Err() != nil {
				return p.finish(context.Cause(readCtx))
			}
			if !ok {
				return p.finish(nil)
			}
			if line.Err != nil {
				out.Fail("Network request failed: %s", line.Err)
				return p.outcome(false, ReasonTransport, line.Err)
			}
			if cause := p.handleLine(line.Text); cause != nil {
				stop(cause)
			}
		}
	}
}

// handleLine processes one line and returns a non-nil cause if reading should stop.
func (p *chatProbe) handleLine(line string) error {
	if line == "" {
		return nil
	}
	p.stats.LineCount++
	p.out.Line(line)

	payload, isData := client.DataLinePayload(line)
	if !isData || payload == "" {
		return nil
	}

	event, err := client.DecodeEvent(payload)
	if errors.Is(err, client.ErrNotAnObject) {
		// valid JSON, so it counts as received, but the probe cannot read a type from it
		p.stats.EventCount++
		return fmt.Errorf("%w: %w", errUnexpectedPayload, err)
	}
	if err != nil {
		p.stats.DecodeFailures++
		p.consecutiveFailures++
		p.out.Warn("Could not decode event: %s", err)
		if limit := p.params.MaxDecodeFailures.OrElse(0); limit > 0 && p.consecutiveFailures >= limit {
			return errTooManyDecodeFailures
		}
		return nil
	}
	p.consecutiveFailures = 0
	p.stats.recordEvent(event)

	if event.Type == probedef.EventTypeDone {
		return errTerminalEvent
	}
	if max := p.params.MaxEvents.OrElse(0); max > 0 && p.stats.EventCount >= max {
		return errEventCapReached
	}
	return nil
}

func (p *chatProbe) finish(cause error) Outcome {
	switch {
	case cause == nil:
		p.out.Info("Stream closed by server")
		return p.succeed(ReasonEndOfStream)
	case errors.Is(cause, errTerminalEvent):
		p.out.Info("Received done signal, stream finished")
		return p.succeed(ReasonDone)
	case errors.Is(cause, errEventCapReached):
		p.out.Info("Received %d events, stopping", p.stats.EventCount)
		return p.succeed(ReasonEventCap)
	case errors.Is(cause, errTooManyDecodeFailures):
		p.out.Fail("%d consecutive event lines could not be decoded", p.consecutiveFailures)
		return p.outcome(false, ReasonDecodeFailures, cause)
	case errors.Is(cause, errUnexpectedPayload):
		p.out.Fail("Could not use event: %s", cause)
		return p.outcome(false, ReasonBadPayload, cause)
	case errors.Is(cause, context.DeadlineExceeded):
		err := fmt.Errorf("no result within %s: %w", p.params.Timeout(), cause)
		p.out.Fail("Request timed out after %s", p.params.Timeout())
		return p.outcome(false, ReasonTimedOut, err)
	default:
		p.out.Fail("Probe interrupted")
		return p.outcome(false, ReasonInterrupted, cause)
	}
}

func (p *chatProbe) succeed(reason Reason) Outcome {
	p.printStats()
	p.out.Success("SSE probe completed")
	return p.outcome(true, reason, nil)
}

func (p *chatProbe) outcome(ok bool, reason Reason, err error) Outcome {
	return Outcome{OK: ok, Reason: reason, Err: err, StatusCode: p.statusCode, Stats: p.stats}
}

func (p *chatProbe) printHeaders(stream *client.EventStream) {
	names := make([]string, 0, len(stream.Header))
	for name := range stream.Header {
		names = append(names, name)
	}
	sort.Strings(names)
	p.out.Info("Response headers:")
	for _, name := range names {
		p.out.Info("  %s: %s", name, strings.Join(stream.Header.Values(name), ", "))
	}
}

func (p *chatProbe) printStats() {
	s := p.stats
	p.out.Info("Statistics:")
	p.out.Info("  total events: %d", s.EventCount)
	p.out.Info("  data chunks: %d", s.DataChunks)
	if s.DecodeFailures > 0 {
		p.out.Info("  undecodable lines: %d", s.DecodeFailures)
	}
	for _, t := range s.Types() {
		p.out.Info("  %s events: %d", t, s.TypeCounts[t])
	}
	if s.ConversationID != "" {
		p.out.Info("  conversation id: %s", s.ConversationID)
	}
	for _, e := range s.Errors {
		p.out.Warn("Backend reported an error: %s", e)
	}
}
