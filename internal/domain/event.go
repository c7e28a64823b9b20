package domain

// StreamEventType identifies the kind of event sent on the generation stream.
type StreamEventType string

const (
	EventProgress StreamEventType = "progress"
	EventElements StreamEventType = "elements"
	EventDone     StreamEventType = "done"
	EventError    StreamEventType = "error"
)

// StreamEvent is the envelope written to the client stream. Every event
// carries a type tag and a type-specific data payload.
type StreamEvent struct {
	Type StreamEventType `json:"type"`
	Data any             `json:"data"`
}

// ProgressData is the payload for EventProgress: one human-readable
// status line, appended to an ordered log on the client.
type ProgressData struct {
	Message string `json:"message"`
}

// ElementsData is the payload for EventElements. It carries only the
// elements and assets produced by a single tool call, never the
// accumulated set.
type ElementsData struct {
	Elements []CanvasElement `json:"elements"`
	Files    AssetMap        `json:"files,omitempty"`
}

// DoneData is the payload for EventDone, sent exactly once as the last
// event of a successful session.
type DoneData struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ElementCount int    `json:"elementCount"`
	Iterations   int    `json:"iterations"`
}

// ErrorData is the payload for EventError, terminal in place of EventDone.
type ErrorData struct {
	Message string `json:"message"`
}

// EventSink receives stream events in order. Send returns an error when
// the client has gone away; the producer should stop.
type EventSink interface {
	Send(event StreamEvent) error
}
