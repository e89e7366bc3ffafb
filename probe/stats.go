package probe

import (
	"sort"

	"github.com/scott-nodejs/pandawiki-sse-smoke-tests/client"
	"github.com/scott-nodejs/pandawiki-sse-smoke-tests/probedef"
)

// Stats are the counters of a single probe run.
type Stats struct {
	// LineCount is the number of non-empty lines received.
	LineCount int

	// EventCount is the number of data lines that were decoded successfully.
	EventCount int

	// DataChunks is the number of decoded events of type "data".
	DataChunks int

	// DecodeFailures is the number of data lines that could not be decoded.
	DecodeFailures int

	// TypeCounts is the number of decoded events per type.
	TypeCounts map[string]int

	ConversationID string
	Nonce          string
	Answer         string
	Errors         []string
	Chunks         []client.ChunkResult
}

func newStats() *Stats {
	return &Stats{TypeCounts: make(map[string]int)}
}

func (s *Stats) recordEvent(e client.Event) {
	s.EventCount++
	s.TypeCounts[e.Type]++
	switch e.Type {
	case probedef.EventTypeData:
		s.DataChunks++
		s.Answer += e.Content
	case probedef.EventTypeConversationID:
		s.ConversationID += e.Content
	case probedef.EventTypeNonce:
		s.Nonce += e.Content
	case probedef.EventTypeError:
		s.Errors = append(s.Errors, e.Content)
	case probedef.EventTypeChunkResult:
		if cr, ok := e.ChunkResult(); ok {
			s.Chunks = append(s.Chunks, cr)
		}
	}
}

// Types returns the event types that were seen, sorted.
func (s *Stats) Types() []string {
	ret := make([]string, 0, len(s.TypeCounts))
	for t := range s.TypeCounts {
		ret = append(ret, t)
	}
	sort.Strings(ret)
	return ret
}
