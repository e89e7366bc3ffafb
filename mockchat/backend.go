// Package mockchat provides a scripted stand-in for the PandaWiki chat backend, for testing the
// probes without a live deployment.
package mockchat

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/scott-nodejs/pandawiki-sse-smoke-tests/framework"
)

// Backend is an http.Handler that answers every request with an SSE stream whose content is
// pushed by the test. It does not format events itself beyond the EventLine helper; tests send
// raw chunks of text, which lets them produce malformed or oddly split data.
type Backend struct {
	// Requests receives a copy of every incoming request. If nobody reads it, requests beyond
	// its capacity are dropped.
	Requests chan RequestInfo

	dataCh chan streamChunk
	logger framework.Logger
}

// RequestInfo contains information about a request received by the Backend.
type RequestInfo struct {
	Method  string
	Path    string
	Headers http.Header
	Body    []byte
}

type streamChunk struct {
	data       []byte
	delayAfter time.Duration
}

// NewBackend creates a Backend. The logger may be nil.
func NewBackend(logger framework.Logger) *Backend {
	if logger == nil {
		logger = framework.NullLogger()
	}
	return &Backend{
		Requests: make(chan RequestInfo, 10),
		dataCh:   make(chan streamChunk, 1000),
		logger:   framework.LoggerWithPrefix(logger, "[mock backend] "),
	}
}

// EventLine formats one data line of the kind the chat backend sends.
func EventLine(eventType string, fields map[string]interface{}) string {
	obj := map[string]interface{}{"type": eventType}
	for k, v := range fields {
		obj[k] = v
	}
	data, _ := json.Marshal(obj)
	return "data: " + string(data) + "\n"
}

// Send queues a chunk of data to be written and flushed on the stream.
func (b *Backend) Send(data string) {
	b.SendThenWait(data, 0)
}

// SendThenWait queues a chunk of data; after writing it, the stream pauses for the given delay.
func (b *Backend) SendThenWait(data string, delay time.Duration) {
	b.dataCh <- streamChunk{data: []byte(data), delayAfter: delay}
}

// SendEvent queues one data line built with EventLine.
func (b *Backend) SendEvent(eventType string, fields map[string]interface{}) {
	b.Send(EventLine(eventType, fields))
}

// SendInChunks breaks data into chunks of the specified byte length, with an optional delay
// in between.
func (b *Backend) SendInChunks(data string, chunkSize int, delayBetween time.Duration) {
	bytes := []byte(data)
	for pos := 0; pos < len(bytes); pos += chunkSize {
		max := pos + chunkSize
		if max > len(bytes) {
			max = len(bytes)
		}
		chunk := streamChunk{data: bytes[pos:max]}
		if max < len(bytes) {
			chunk.delayAfter = delayBetween
		}
		b.dataCh <- chunk
	}
}

// EndStream makes the current response end after everything queued before it has been written.
func (b *Backend) EndStream() {
	b.logger.Printf("Ending stream")
	b.dataCh <- streamChunk{data: nil}
}

// Close ends the current response and makes every later response end immediately.
func (b *Backend) Close() {
	close(b.dataCh)
}

func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body []byte
	if r.Body != nil {
		body, _ = io.ReadAll(r.Body)
		_ = r.Body.Close()
	}
	b.logger.Printf("Got %s %s; headers follow", r.Method, r.URL.Path)
	for k, v := range r.Header {
		b.logger.Printf("  %s: %s", k, strings.Join(v, ", "))
	}
	select { // non-blocking push
	case b.Requests <- RequestInfo{Method: r.Method, Path: r.URL.Path, Headers: r.Header.Clone(), Body: body}:
	default:
		b.logger.Printf("Request channel was full for %s", r.URL)
	}

	closeNotifyCh := r.Context().Done()

	flusher := w.(http.Flusher)
	w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

Loop:
	for {
		select {
		case chunk, ok := <-b.dataCh:
			if !ok {
				break Loop
			}
			if chunk.data == nil {
				break Loop
			}
			jsonStr, _ := json.Marshal(string(chunk.data))
			b.logger.Printf("<< sending: %s", jsonStr)
			if _, err := w.Write(chunk.data); err != nil {
				break Loop
			}
			flusher.Flush()
			if chunk.delayAfter > 0 {
				time.Sleep(chunk.delayAfter)
			}
		case <-closeNotifyCh:
			break Loop
		}
	}
}
