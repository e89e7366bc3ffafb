package framework

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegexFilters(t *testing.T) {
	id := func(path ...string) ProbeID { return ProbeID{Path: path} }

	var none RegexFilters
	assert.True(t, none.AsFilter(id("chat", "message")))

	var run RegexFilters
	require.NoError(t, run.MustMatch.Set("^chat/"))
	assert.True(t, run.AsFilter(id("chat", "message")))
	assert.False(t, run.AsFilter(id("widget", "message")))

	var skip RegexFilters
	require.NoError(t, skip.MustMatch.Set("message"))
	require.NoError(t, skip.MustNotMatch.Set("widget"))
	assert.True(t, skip.AsFilter(id("chat", "message")))
	assert.False(t, skip.AsFilter(id("widget", "message")))
}

func TestRegexListRejectsBadPattern(t *testing.T) {
	var r RegexList
	assert.Error(t, r.Set("("))
	assert.False(t, r.IsDefined())
}

func TestPrintFilterDescription(t *testing.T) {
	var buf bytes.Buffer
	PrintFilterDescription(&buf, RegexFilters{})
	assert.Empty(t, buf.String())

	var filters RegexFilters
	require.NoError(t, filters.MustMatch.Set("a"))
	require.NoError(t, filters.MustMatch.Set("b"))
	PrintFilterDescription(&buf, filters)
	assert.Contains(t, buf.String(), `skip any not matching "a" or "b"`)
}

func TestPrintResults(t *testing.T) {
	var buf bytes.Buffer
	PrintResults(&buf, Results{Probes: []ProbeResult{{ProbeID: ProbeID{Path: []string{"a"}}}}})
	assert.Equal(t, "All probes passed (1 run, 0 skipped)\n", buf.String())

	buf.Reset()
	failure := ProbeResult{ProbeID: ProbeID{Path: []string{"chat message"}}, Errors: []error{errors.New("timed out\nafter 60s")}}
	PrintResults(&buf, Results{Probes: []ProbeResult{failure}, Failures: []ProbeResult{failure}})
	assert.Equal(t, "FAILED PROBES (1):\n* chat message\n    timed out\n    after 60s\n", buf.String())
}
