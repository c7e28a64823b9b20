package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Rmalnoult/doodlegram/internal/domain"
	"github.com/Rmalnoult/doodlegram/internal/element"
)

const defaultTextFontSize = 20

// TextTool places a standalone text element on the canvas.
type TextTool struct {
	builder *element.Builder
}

// NewTextTool creates the create_text capability.
func NewTextTool(b *element.Builder) *TextTool {
	return &TextTool{builder: b}
}

type textParams struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Text     string  `json:"text"`
	FontSize float64 `json:"font_size,omitempty"`
	Color    string  `json:"color,omitempty"`
}

func (t *TextTool) Name() string { return "create_text" }

func (t *TextTool) Description() string {
	return "Create a standalone text element on the canvas. Use for titles, labels, annotations."
}

func (t *TextTool) Schema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"x": {"type": "number", "description": "X position (center)"},
				"y": {"type": "number", "description": "Y position (center)"},
				"text": {"type": "string", "description": "The text content"},
				"font_size": {"type": "number", "description": "Font size in pixels (default 20, use 28-36 for titles)"},
				"color": {"type": "string", "description": "Text color (hex). Default: #1e1e1e"}
			},
			"required": ["x", "y", "text"]
		}`),
	}
}

func (t *TextTool) Execute(_ context.Context, params json.RawMessage) (*domain.ToolResult, error) {
	var p textParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, domain.WrapOp("TextTool.Execute", err)
	}

	fontSize := p.FontSize
	if fontSize <= 0 {
		fontSize = defaultTextFontSize
	}
	color := p.Color
	if color == "" {
		color = element.DefaultStrokeColor
	}

	el := t.builder.Text(p.X, p.Y, p.Text, fontSize, color, "center")

	return &domain.ToolResult{
		Elements:    []domain.CanvasElement{el},
		Description: fmt.Sprintf("Created text %q at (%g, %g)", p.Text, p.X, p.Y),
	}, nil
}
