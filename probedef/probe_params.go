// Package probedef defines the parameters of the PandaWiki chat probes and the wire-level
// constants of the chat SSE protocol.
package probedef

import (
	"strings"
	"time"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const (
	MessagePath = "/share/v1/chat/message"
	WidgetPath  = "/share/v1/chat/widget"

	HeaderKBID         = "X-KB-ID"
	HeaderAuthPassword = "x-simple-auth-password"
	HeaderRequestID    = "X-Request-Id"

	DefaultBaseURL = "http://localhost:8080"
	DefaultKBID    = "test-kb-001"

	// DataPrefix is the framing marker of every meaningful line of the response stream.
	DataPrefix = "data:"
)

// App types understood by the backend's routing.
const (
	AppTypeWeb    = 1
	AppTypeWidget = 2
)

// Event types sent by the chat backend.
const (
	EventTypeConversationID = "conversation_id"
	EventTypeNonce          = "nonce"
	EventTypeError          = "error"
	EventTypeData           = "data"
	EventTypeDone           = "done"
	EventTypeChunkResult    = "chunk_result"
	EventTypeUnknown        = "unknown"
)

// ChatRequest is the JSON body posted to the chat endpoints.
type ChatRequest struct {
	Message        string `json:"message"`
	AppType        int    `json:"app_type"`
	Nonce          string `json:"nonce"`
	ConversationID string `json:"conversation_id"`
}

// ProbeParams describes one probe: where to send the request and when to stop reading.
type ProbeParams struct {
	Name    string            `json:"name"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
	Request ChatRequest       `json:"request"`

	// MaxEvents is the number of decoded events after which the probe stops reading. If
	// undefined, the probe reads until a terminal event or the end of the stream.
	MaxEvents ldvalue.OptionalInt `json:"maxEvents,omitempty"`

	// TimeoutMS bounds the whole request, including the streaming read.
	TimeoutMS ldvalue.OptionalInt `json:"timeoutMs,omitempty"`

	// MaxDecodeFailures, if defined and positive, makes the probe fail once that many event
	// lines could not be decoded. Otherwise decode failures are only reported as warnings.
	MaxDecodeFailures ldvalue.OptionalInt `json:"maxDecodeFailures,omitempty"`
}

// Timeout returns the request timeout, or zero if there is none.
func (p ProbeParams) Timeout() time.Duration {
	return time.Duration(p.TimeoutMS.OrElse(0)) * time.Millisecond
}

// StreamHeaders returns the headers that every chat probe sends.
func StreamHeaders(kbID string) map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"Accept":       "text/event-stream",
		HeaderKBID:     kbID,
	}
}

// DefaultProbes returns the two standard probes against a PandaWiki deployment: the web chat
// message endpoint and the widget endpoint. If password is not empty it is sent to the message
// endpoint, which is the one behind the simple-auth check.
func DefaultProbes(baseURL, kbID, password string) []ProbeParams {
	baseURL = strings.TrimSuffix(baseURL, "/")

	messageHeaders := StreamHeaders(kbID)
	messageHeaders["Cache-Control"] = "no-cache"
	if password != "" {
		messageHeaders[HeaderAuthPassword] = password
	}

	return []ProbeParams{
		{
			Name:    "chat message",
			URL:     baseURL + MessagePath,
			Headers: messageHeaders,
			Request: ChatRequest{
				Message: "Hello, this is a test message for SSE chat",
				AppType: AppTypeWeb,
			},
			MaxEvents: ldvalue.NewOptionalInt(100),
			TimeoutMS: ldvalue.NewOptionalInt(60 * 1000),
		},
		{
			Name:    "widget chat",
			URL:     baseURL + WidgetPath,
			Headers: StreamHeaders(kbID),
			Request: ChatRequest{
				Message: "Test widget chat message",
				AppType: AppTypeWidget,
			},
			MaxEvents: ldvalue.NewOptionalInt(5),
			TimeoutMS: ldvalue.NewOptionalInt(30 * 1000),
		},
	}
}
