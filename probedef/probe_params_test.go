package probedef

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func TestChatRequestAlwaysSerializesAllFields(t *testing.T) {
	data, err := json.Marshal(ChatRequest{Message: "Hello", AppType: AppTypeWeb})
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"Hello","app_type":1,"nonce":"","conversation_id":""}`, string(data))
}

func TestDefaultProbes(t *testing.T) {
	probes := DefaultProbes("http://wiki.example:8080/", "kb-1", "")
	require.Len(t, probes, 2)

	message, widget := probes[0], probes[1]

	assert.Equal(t, "http://wiki.example:8080/share/v1/chat/message", message.URL)
	assert.Equal(t, AppTypeWeb, message.Request.AppType)
	assert.Equal(t, "kb-1", message.Headers[HeaderKBID])
	assert.Equal(t, "text/event-stream", message.Headers["Accept"])
	assert.Equal(t, "no-cache", message.Headers["Cache-Control"])
	assert.NotContains(t, message.Headers, HeaderAuthPassword)
	assert.Equal(t, ldvalue.NewOptionalInt(100), message.MaxEvents)
	assert.Equal(t, time.Minute, message.Timeout())

	assert.Equal(t, "http://wiki.example:8080/share/v1/chat/widget", widget.URL)
	assert.Equal(t, AppTypeWidget, widget.Request.AppType)
	assert.NotContains(t, widget.Headers, "Cache-Control")
	assert.Equal(t, ldvalue.NewOptionalInt(5), widget.MaxEvents)
	assert.Equal(t, 30*time.Second, widget.Timeout())
	assert.False(t, widget.MaxDecodeFailures.IsDefined())
}

func TestDefaultProbesWithPassword(t *testing.T) {
	probes := DefaultProbes(DefaultBaseURL, DefaultKBID, "secret")
	assert.Equal(t, "secret", probes[0].Headers[HeaderAuthPassword])
	assert.NotContains(t, probes[1].Headers, HeaderAuthPassword)
}

func TestUndefinedTimeout(t *testing.T) {
	assert.Equal(t, time.Duration(0), ProbeParams{}.Timeout())
}
