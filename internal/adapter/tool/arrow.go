package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Rmalnoult/doodlegram/internal/domain"
	"github.com/Rmalnoult/doodlegram/internal/element"
)

const (
	arrowLabelFontSize = 14
	arrowLabelColor    = "#666666"
	arrowLabelLift     = 15 // label sits this many pixels above the midpoint
)

// ArrowTool draws an arrow between two points, optionally labeled.
type ArrowTool struct {
	builder *element.Builder
}

// NewArrowTool creates the create_arrow capability.
func NewArrowTool(b *element.Builder) *ArrowTool {
	return &ArrowTool{builder: b}
}

type arrowParams struct {
	StartX      float64 `json:"start_x"`
	StartY      float64 `json:"start_y"`
	EndX        float64 `json:"end_x"`
	EndY        float64 `json:"end_y"`
	Label       string  `json:"label,omitempty"`
	StrokeColor string  `json:"stroke_color,omitempty"`
}

func (t *ArrowTool) Name() string { return "create_arrow" }

func (t *ArrowTool) Description() string {
	return "Create an arrow connecting two points or shapes. Use for relationships, flows, processes."
}

func (t *ArrowTool) Schema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"start_x": {"type": "number", "description": "Start X position"},
				"start_y": {"type": "number", "description": "Start Y position"},
				"end_x": {"type": "number", "description": "End X position"},
				"end_y": {"type": "number", "description": "End Y position"},
				"label": {"type": "string", "description": "Optional label on the arrow"},
				"stroke_color": {"type": "string", "description": "Arrow color (hex). Default: #1e1e1e"}
			},
			"required": ["start_x", "start_y", "end_x", "end_y"]
		}`),
	}
}

// Execute builds the arrow. The element's width/height equal the vector
// from start to end, and the point list starts at the origin.
func (t *ArrowTool) Execute(_ context.Context, params json.RawMessage) (*domain.ToolResult, error) {
	var p arrowParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, domain.WrapOp("ArrowTool.Execute", err)
	}

	stroke := p.StrokeColor
	if stroke == "" {
		stroke = element.DefaultStrokeColor
	}

	dx := p.EndX - p.StartX
	dy := p.EndY - p.StartY

	arrow := t.builder.Base(
		element.WithType(domain.ElementArrow),
		element.WithBounds(p.StartX, p.StartY, dx, dy),
		element.WithStroke(stroke),
		element.WithRoundness(&domain.Roundness{Type: 2}),
	)
	arrow.Points = []domain.Point{{0, 0}, {dx, dy}}
	arrow.EndArrowhead = "arrow"

	elements := []domain.CanvasElement{arrow}

	if p.Label != "" {
		midX := (p.StartX + p.EndX) / 2
		midY := (p.StartY + p.EndY) / 2
		label := t.builder.Text(midX, midY-arrowLabelLift, p.Label, arrowLabelFontSize, arrowLabelColor, "center")
		elements = append(elements, label)
	}

	desc := fmt.Sprintf("Created arrow from (%g, %g) to (%g, %g)", p.StartX, p.StartY, p.EndX, p.EndY)
	if p.Label != "" {
		desc += fmt.Sprintf(" labeled %q", p.Label)
	}

	return &domain.ToolResult{
		Elements:    elements,
		Description: desc,
	}, nil
}
