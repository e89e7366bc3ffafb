package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/scott-nodejs/pandawiki-sse-smoke-tests/mockchat"
	"github.com/scott-nodejs/pandawiki-sse-smoke-tests/probedef"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paramsFor(url string) probedef.ProbeParams {
	return probedef.ProbeParams{
		Name:    "test",
		URL:     url,
		Headers: probedef.StreamHeaders("kb-1"),
		Request: probedef.ChatRequest{Message: "Hello", AppType: probedef.AppTypeWeb},
	}
}

type failingDoer struct{ err error }

func (f failingDoer) Do(*http.Request) (*http.Response, error) { return nil, f.err }

func TestOpenStreamSendsChatRequest(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(
		httphelpers.HandlerWithResponse(200, nil, []byte("data: {\"type\":\"done\"}\n")))

	httphelpers.WithServer(handler, func(server *httptest.Server) {
		c := NewChatClient(nil, nil)
		s, err := c.OpenStream(context.Background(), paramsFor(server.URL+probedef.MessagePath))
		require.NoError(t, err)
		defer s.Close()

		assert.Equal(t, 200, s.StatusCode)
		assert.Equal(t, `data: {"type":"done"}`, requireLine(t, s).Text)
		requireEnd(t, s)

		info := <-requestsCh
		assert.Equal(t, "POST", info.Request.Method)
		assert.Equal(t, probedef.MessagePath, info.Request.URL.Path)
		assert.Equal(t, "application/json", info.Request.Header.Get("Content-Type"))
		assert.Equal(t, "text/event-stream", info.Request.Header.Get("Accept"))
		assert.Equal(t, "kb-1", info.Request.Header.Get(probedef.HeaderKBID))
		assert.JSONEq(t, `{"message":"Hello","app_type":1,"nonce":"","conversation_id":""}`, string(info.Body))
	})
}

func TestNewRequestDefaultsContentType(t *testing.T) {
	params := paramsFor("http://localhost/x")
	params.Headers = nil
	req, err := NewRequest(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
}

func TestOpenStreamReturnsStatusError(t *testing.T) {
	handler := httphelpers.HandlerWithResponse(500, nil, []byte("internal explosion"))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		c := NewChatClient(nil, nil)
		s, err := c.OpenStream(context.Background(), paramsFor(server.URL))
		require.Error(t, err)
		assert.Nil(t, s)

		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, 500, statusErr.StatusCode)
		assert.Equal(t, "internal explosion", statusErr.Body)
		assert.Equal(t, "unexpected response status 500: internal explosion", statusErr.Error())
	})
}

func TestOpenStreamTreatsOtherSuccessCodesAsErrors(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithStatus(204), func(server *httptest.Server) {
		_, err := NewChatClient(nil, nil).OpenStream(context.Background(), paramsFor(server.URL))
		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, 204, statusErr.StatusCode)
		assert.Equal(t, "unexpected response status 204", statusErr.Error())
	})
}

func TestOpenStreamTransportError(t *testing.T) {
	refused := errors.New("connection refused")
	c := NewChatClient(failingDoer{err: refused}, nil)
	_, err := c.OpenStream(context.Background(), paramsFor("http://localhost:1/x"))
	assert.ErrorIs(t, err, refused)
}

func TestCancellingContextEndsStream(t *testing.T) {
	backend := mockchat.NewBackend(nil)
	httphelpers.WithServer(backend, func(server *httptest.Server) {
		defer backend.Close()

		ctx, cancel := context.WithCancel(context.Background())
		s, err := NewChatClient(nil, nil).OpenStream(ctx, paramsFor(server.URL))
		require.NoError(t, err)
		defer s.Close()

		backend.SendEvent(probedef.EventTypeData, map[string]interface{}{"content": "a"})
		line := requireLine(t, s)
		var obj map[string]interface{}
		payload, _ := DataLinePayload(line.Text)
		require.NoError(t, json.Unmarshal([]byte(payload), &obj))
		assert.Equal(t, "a", obj["content"])

		cancel()
		deadline := time.After(time.Second * 5)
		for {
			select {
			case _, ok := <-s.Lines():
				if !ok {
					return
				}
			case <-deadline:
				require.Fail(t, "stream did not end after cancellation")
			}
		}
	})
}
