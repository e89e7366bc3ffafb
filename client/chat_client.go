package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/scott-nodejs/pandawiki-sse-smoke-tests/framework"
	"github.com/scott-nodejs/pandawiki-sse-smoke-tests/probedef"
)

const maxErrorBodySize = 64 * 1024

// HTTPDoer is the part of *http.Client that ChatClient needs. Tests can substitute their own
// transport by passing any implementation.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// ChatClient sends chat requests to a PandaWiki backend and opens the SSE response stream.
type ChatClient struct {
	httpClient HTTPDoer
	logger     framework.Logger
}

// StatusError is returned by OpenStream if the backend answered with anything but 200.
type StatusError struct {
	StatusCode int
	Header     http.Header
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected response status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected response status %d: %s", e.StatusCode, e.Body)
}

// NewChatClient creates a ChatClient. If httpClient is nil, http.DefaultClient is used; no
// client-level timeout should be set on it, since probes bound each request with a context.
func NewChatClient(httpClient HTTPDoer, logger framework.Logger) *ChatClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = framework.NullLogger()
	}
	return &ChatClient{httpClient: httpClient, logger: logger}
}

// NewRequest builds the POST request for a probe without sending it.
func NewRequest(ctx context.Context, params probedef.ProbeParams) (*http.Request, error) {
	data, err := json.Marshal(params.Request)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, params.URL, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	for k, v := range params.Headers {
		req.Header.Set(k, v)
	}
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// OpenStream posts the chat request and, if the backend answers 200, returns the response as an
// EventStream. The stream stays bound to ctx: cancelling ctx stops the read. The caller must
// close the returned stream.
func (c *ChatClient) OpenStream(ctx context.Context, params probedef.ProbeParams) (*EventStream, error) {
	streamCtx, cancel := context.WithCancel(ctx)

	req, err := NewRequest(streamCtx, params)
	if err != nil {
		cancel()
		return nil, err
	}

	c.logger.Printf("POST %s", params.URL)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("request to %s failed: %w", params.URL, err)
	}
	c.logger.Printf("Got status %d from %s", resp.StatusCode, params.URL)

	if resp.StatusCode != http.StatusOK {
		defer cancel()
		statusErr := &StatusError{StatusCode: resp.StatusCode, Header: resp.Header}
		if resp.Body != nil {
			data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
			_ = resp.Body.Close()
			statusErr.Body = string(data)
		}
		return nil, statusErr
	}

	return newEventStream(resp, c.logger, cancel), nil
}

// WithLogger returns a ChatClient that shares this client's transport but logs to logger.
func (c *ChatClient) WithLogger(logger framework.Logger) *ChatClient {
	if logger == nil {
		logger = framework.NullLogger()
	}
	return &ChatClient{httpClient: c.httpClient, logger: logger}
}
