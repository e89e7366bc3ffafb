package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/scott-nodejs/pandawiki-sse-smoke-tests/framework"
)

const readChunkSize = 1000

// EventStream is an open chat response. A background goroutine splits the body into lines and
// delivers them on Lines, in arrival order; the channel is closed when the body ends, fails, or
// the stream is closed.
type EventStream struct {
	StatusCode int
	Header     http.Header

	body      io.ReadCloser
	logger    framework.Logger
	canceller context.CancelFunc
	lines     chan StreamLine
	closed    chan struct{}
	finished  chan struct{}
	closeOnce sync.Once
}

// StreamLine is one line of the response body without its line terminator, or a read error.
type StreamLine struct {
	Text string
	Err  error
}

func newEventStream(resp *http.Response, logger framework.Logger, canceller context.CancelFunc) *EventStream {
	s := &EventStream{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		body:       resp.Body,
		logger:     logger,
		canceller:  canceller,
		lines:      make(chan StreamLine, 100),
		closed:     make(chan struct{}),
		finished:   make(chan struct{}),
	}
	go s.readStream()
	return s
}

// Lines returns the channel on which lines are delivered.
func (s *EventStream) Lines() <-chan StreamLine {
	return s.lines
}

// Close cancels the request, releases the connection and waits for the reader goroutine to exit.
// It is safe to call more than once.
func (s *EventStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closed)
		s.canceller()
		if s.body != nil {
			err = s.body.Close()
		}
		<-s.finished
	})
	return err
}

func (s *EventStream) emit(line StreamLine) bool {
	select {
	case s.lines <- line:
		return true
	case <-s.closed:
		return false
	}
}

// readStream splits the body into lines. CR, LF and CRLF all end a line; a CR at the end of one
// read followed by LF at the start of the next is still a single line break.
func (s *EventStream) readStream() {
	defer close(s.finished)
	defer close(s.lines)
	if s.body == nil {
		return
	}
	var pending []byte
	skipLF := false
	var chunk [readChunkSize]byte
	for {
		n, err := s.body.Read(chunk[:])
		data := chunk[0:n]
		if skipLF && len(data) > 0 {
			if data[0] == '\n' {
				data = data[1:]
			}
			skipLF = false
		}
		for len(data) > 0 {
			i := bytes.IndexAny(data, "\r\n")
			if i < 0 {
				pending = append(pending, data...)
				break
			}
			line := string(append(pending, data[:i]...))
			pending = pending[:0]
			if data[i] == '\r' {
				if i+1 == len(data) {
					skipLF = true
				} else if data[i+1] == '\n' {
					i++
				}
			}
			data = data[i+1:]
			if !s.emit(StreamLine{Text: line}) {
				return
			}
		}
		if err != nil {
			if len(pending) > 0 {
				if !s.emit(StreamLine{Text: string(pending)}) {
					return
				}
			}
			if err == io.EOF {
				s.logger.Printf("End of stream")
				return
			}
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Printf("Error: %s", err)
			s.emit(StreamLine{Err: fmt.Errorf("I/O error reading chat stream: %w", err)})
			return
		}
	}
}
