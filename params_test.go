package main

import (
	"bytes"
	"testing"

	"github.com/scott-nodejs/pandawiki-sse-smoke-tests/framework"
	"github.com/scott-nodejs/pandawiki-sse-smoke-tests/probedef"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadParamsDefaults(t *testing.T) {
	var params commandParams
	require.True(t, params.Read([]string{"smoke"}, &bytes.Buffer{}))

	assert.Equal(t, probedef.DefaultBaseURL, params.baseURL)
	assert.Equal(t, probedef.DefaultKBID, params.kbID)
	assert.Empty(t, params.password)
	assert.False(t, params.debug)
	assert.Empty(t, params.explicitlySet)
}

func TestReadParamsRecordsExplicitFlags(t *testing.T) {
	var params commandParams
	require.True(t, params.Read([]string{"smoke", "-url", "http://wiki:8000", "-run", "widget", "-debug"}, &bytes.Buffer{}))

	assert.Equal(t, "http://wiki:8000", params.baseURL)
	assert.True(t, params.debug)
	assert.True(t, params.explicitlySet["url"])
	assert.False(t, params.explicitlySet["kb-id"])
	assert.True(t, params.filters.AsFilter(framework.ProbeID{Path: []string{"widget chat"}}))
	assert.False(t, params.filters.AsFilter(framework.ProbeID{Path: []string{"chat message"}}))
}

func TestReadParamsRejectsBadInput(t *testing.T) {
	for _, args := range [][]string{
		{"smoke", "-nonsense"},
		{"smoke", "-run", "("},
		{"smoke", "extra"},
	} {
		var params commandParams
		var errOut bytes.Buffer
		assert.False(t, params.Read(args, &errOut), "args: %v", args)
		assert.NotEmpty(t, errOut.String())
	}
}

func TestCurlCommand(t *testing.T) {
	params := probedef.ProbeParams{
		URL:     "http://localhost:8080/share/v1/chat/widget",
		Headers: map[string]string{"X-KB-ID": "kb 1", "Accept": "text/event-stream"},
	}
	cmd := curlCommand(params, []byte(`{"message":"it's"}`))

	assert.Equal(t,
		`curl -N -X POST -H 'Accept: text/event-stream' -H 'X-KB-ID: kb 1' `+
			`--data '{"message":"it'"'"'s"}' http://localhost:8080/share/v1/chat/widget`,
		cmd)
}
