package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/scott-nodejs/pandawiki-sse-smoke-tests/probedef"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// ErrNotAnObject is returned by DecodeEvent for event data that is valid JSON but not an object.
var ErrNotAnObject = errors.New("event data is not a JSON object")

// Event is one decoded chat event.
type Event struct {
	// Type is the value of the "type" property, or "unknown" if it is missing or not a string.
	Type string

	// Content is the "content" property, if it is a string.
	Content string

	// Payload is the whole decoded object, including Type and Content.
	Payload ldvalue.Value

	raw string
}

func (e Event) String() string { return e.raw }

// ChunkResult is a document chunk referenced by a "chunk_result" event.
type ChunkResult struct {
	NodeID  string `json:"node_id"`
	Name    string `json:"name"`
	Summary string `json:"summary"`
}

// DataLinePayload reports whether line is a "data:" line and returns what follows the prefix,
// with surrounding whitespace removed.
func DataLinePayload(line string) (string, bool) {
	if !strings.HasPrefix(line, probedef.DataPrefix) {
		return "", false
	}
	return strings.TrimSpace(line[len(probedef.DataPrefix):]), true
}

// DecodeEvent parses the payload of a data line.
func DecodeEvent(data string) (Event, error) {
	var v ldvalue.Value
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return Event{}, fmt.Errorf("malformed JSON in event %q: %w", data, err)
	}
	if v.Type() != ldvalue.ObjectType {
		return Event{}, fmt.Errorf("%w: %s", ErrNotAnObject, data)
	}
	e := Event{Type: probedef.EventTypeUnknown, Payload: v, raw: data}
	if t := v.GetByKey("type"); t.IsString() {
		e.Type = t.StringValue()
	}
	if c := v.GetByKey("content"); c.IsString() {
		e.Content = c.StringValue()
	}
	return e, nil
}

// ChunkResult returns the document chunk carried by a chunk_result event. The backend has used
// both snake_case and camelCase property names for it.
func (e Event) ChunkResult() (ChunkResult, bool) {
	v := e.Payload.GetByKey("chunk_result")
	if v.IsNull() {
		v = e.Payload.GetByKey("chunkResult")
	}
	if v.Type() != ldvalue.ObjectType {
		return ChunkResult{}, false
	}
	pick := func(keys ...string) string {
		for _, k := range keys {
			if s := v.GetByKey(k); s.IsString() {
				return s.StringValue()
			}
		}
		return ""
	}
	return ChunkResult{
		NodeID:  pick("node_id", "nodeId"),
		Name:    pick("name"),
		Summary: pick("summary"),
	}, true
}
