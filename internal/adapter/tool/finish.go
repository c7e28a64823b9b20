package tool

import (
	"context"
	"encoding/json"

	"github.com/Rmalnoult/doodlegram/internal/domain"
)

// FinishTool signals completion of the diagram. It produces no elements;
// the agent loop intercepts the call and captures title/description
// before this handler runs, so Execute is only reached as a fallback.
type FinishTool struct{}

// NewFinishTool creates the finish_diagram capability.
func NewFinishTool() *FinishTool {
	return &FinishTool{}
}

// FinishParams is the input shape of finish_diagram, exported so the
// agent loop can decode the captured call.
type FinishParams struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (t *FinishTool) Name() string { return "finish_diagram" }

func (t *FinishTool) Description() string {
	return "Call this when you are done building the diagram. Provide a title and short description."
}

func (t *FinishTool) Schema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"title": {"type": "string", "description": "A short title for the diagram"},
				"description": {"type": "string", "description": "A one-sentence description of what the diagram shows"}
			},
			"required": ["title", "description"]
		}`),
	}
}

func (t *FinishTool) Execute(_ context.Context, _ json.RawMessage) (*domain.ToolResult, error) {
	return &domain.ToolResult{Description: "Diagram complete"}, nil
}
