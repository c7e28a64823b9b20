package domain

import "time"

// Role constants for message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Stop reasons reported by the model.
const (
	StopEndTurn = "end_turn"
	StopToolUse = "tool_use"
)

// Message represents a single turn in a conversation.
// Tool-result turns use RoleTool with ToolCalls[0].ID carrying the
// correlation id of the call being answered.
type Message struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	IsError   bool       `json:"is_error,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// ToolChoice forces the model to call a specific tool.
type ToolChoice struct {
	Name string `json:"name"`
}

// ChatRequest is sent to an LLM provider.
type ChatRequest struct {
	Model      string       `json:"model"`
	Messages   []Message    `json:"messages"`
	System     string       `json:"system,omitempty"`
	Tools      []ToolSchema `json:"tools,omitempty"`
	ToolChoice *ToolChoice  `json:"tool_choice,omitempty"`
	MaxTokens  int          `json:"max_tokens,omitempty"`
}

// ChatResponse is returned from an LLM provider.
type ChatResponse struct {
	ID         string    `json:"id"`
	Model      string    `json:"model"`
	Message    Message   `json:"message"`
	StopReason string    `json:"stop_reason"`
	Usage      Usage     `json:"usage"`
	CreatedAt  time.Time `json:"created_at"`
}

// Usage tracks token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
