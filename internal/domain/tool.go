package domain

import (
	"context"
	"encoding/json"
)

// ToolSchema describes a tool for the LLM function-calling protocol.
type ToolSchema struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// ToolCall represents the model's request to invoke a tool. ID is the
// correlation id used to match the result back into the conversation.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolResult is the outcome of executing a tool call: the canvas elements
// it produced, any binary assets they reference, and a human-readable
// description used both for progress text and for the model's next turn.
type ToolResult struct {
	Elements    []CanvasElement `json:"elements"`
	Files       AssetMap        `json:"files,omitempty"`
	Description string          `json:"description"`
	IsError     bool            `json:"is_error,omitempty"`
}

// Tool is the interface every canvas capability implements.
type Tool interface {
	Name() string
	Description() string
	Schema() ToolSchema
	Execute(ctx context.Context, params json.RawMessage) (*ToolResult, error)
}

// ToolExecutor abstracts tool dispatch for the agent loop.
type ToolExecutor interface {
	// Dispatch routes a tool call to the matching handler. An unrecognized
	// name yields an empty-element result, not an error; a returned error
	// means the matched tool itself failed.
	Dispatch(ctx context.Context, call ToolCall) (*ToolResult, error)
	Schemas() []ToolSchema
}
