package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/Rmalnoult/doodlegram/internal/domain"
)

// dataPrefix is the fixed marker each stream record starts with. Records
// are terminated by a blank line.
var dataPrefix = []byte("data: ")

// SSEEncoder frames stream events as server-sent events and flushes each
// one immediately. It implements domain.EventSink.
type SSEEncoder struct {
	mu      sync.Mutex
	w       io.Writer
	flusher http.Flusher
}

// NewSSEEncoder prepares w for event streaming: sets the SSE response
// headers and returns an encoder. Returns an error when the writer
// cannot flush incrementally.
func NewSSEEncoder(w http.ResponseWriter) (*SSEEncoder, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support flushing")
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")

	return &SSEEncoder{w: w, flusher: flusher}, nil
}

// Send implements domain.EventSink.
func (e *SSEEncoder) Send(event domain.StreamEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := fmt.Fprintf(e.w, "data: %s\n\n", payload); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	e.flusher.Flush()
	return nil
}

// RawEvent is a decoded stream record with its payload still undecoded,
// so callers can unmarshal into the payload type matching Type.
type RawEvent struct {
	Type domain.StreamEventType `json:"type"`
	Data json.RawMessage        `json:"data"`
}

// SSEDecoder incrementally parses the event stream from arbitrary read
// chunks. Partial records are buffered across Feed calls and only parsed
// once the terminating blank line arrives; malformed records are skipped
// silently without aborting the stream.
type SSEDecoder struct {
	buf []byte
}

// Feed appends chunk to the carry-over buffer and returns every event
// completed by it, in order.
func (d *SSEDecoder) Feed(chunk []byte) []RawEvent {
	d.buf = append(d.buf, chunk...)

	var events []RawEvent
	for {
		// A record ends at the first blank line.
		end := bytes.Index(d.buf, []byte("\n\n"))
		if end < 0 {
			return events
		}
		record := d.buf[:end]
		d.buf = d.buf[end+2:]

		if !bytes.HasPrefix(record, dataPrefix) {
			continue
		}
		data := bytes.TrimPrefix(record, dataPrefix)

		var evt RawEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			continue
		}
		events = append(events, evt)
	}
}
