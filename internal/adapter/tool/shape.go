package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Rmalnoult/doodlegram/internal/domain"
	"github.com/Rmalnoult/doodlegram/internal/element"
)

const labelFontSize = 16

// ShapeTool places a labeled rectangle, ellipse, or diamond on the canvas.
type ShapeTool struct {
	builder *element.Builder
}

// NewShapeTool creates the create_shape capability.
func NewShapeTool(b *element.Builder) *ShapeTool {
	return &ShapeTool{builder: b}
}

type shapeParams struct {
	ShapeType   string  `json:"shape_type"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Label       string  `json:"label"`
	FillColor   string  `json:"fill_color,omitempty"`
	StrokeColor string  `json:"stroke_color,omitempty"`
}

func (t *ShapeTool) Name() string { return "create_shape" }

func (t *ShapeTool) Description() string {
	return "Create a shape on the canvas. Use for boxes, circles, diamonds in diagrams."
}

func (t *ShapeTool) Schema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"shape_type": {"type": "string", "enum": ["rectangle", "ellipse", "diamond"], "description": "The shape type"},
				"x": {"type": "number", "description": "X position (pixels from left)"},
				"y": {"type": "number", "description": "Y position (pixels from top)"},
				"width": {"type": "number", "description": "Width in pixels"},
				"height": {"type": "number", "description": "Height in pixels"},
				"label": {"type": "string", "description": "Text label inside the shape"},
				"fill_color": {"type": "string", "description": "Background color (hex, e.g. #a8d8ea for light blue, #ffd6a5 for light orange, #caffbf for light green, #fdffb6 for light yellow, #bdb2ff for light purple, #ffc6ff for light pink)"},
				"stroke_color": {"type": "string", "description": "Border color (hex). Default: #1e1e1e"}
			},
			"required": ["shape_type", "x", "y", "width", "height", "label"]
		}`),
	}
}

// Execute builds the shape element plus, when a label is given, a text
// element bound to the shape via containerId/boundElements.
func (t *ShapeTool) Execute(_ context.Context, params json.RawMessage) (*domain.ToolResult, error) {
	var p shapeParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, domain.WrapOp("ShapeTool.Execute", err)
	}

	stroke := p.StrokeColor
	if stroke == "" {
		stroke = element.DefaultStrokeColor
	}
	background := p.FillColor
	fillStyle := domain.FillHachure
	if background == "" {
		background = element.DefaultBackground
	} else {
		fillStyle = domain.FillSolid
	}

	shape := t.builder.Base(
		element.WithType(domain.ElementType(p.ShapeType)),
		element.WithBounds(p.X, p.Y, p.Width, p.Height),
		element.WithStroke(stroke),
		element.WithBackground(background, fillStyle),
	)

	elements := []domain.CanvasElement{shape}

	if p.Label != "" {
		label := t.builder.Text(p.X+p.Width/2, p.Y+p.Height/2, p.Label, labelFontSize, stroke, "center")
		label.ContainerID = shape.ID
		elements[0].BoundElements = []domain.BoundElement{{ID: label.ID, Type: "text"}}
		elements = append(elements, label)
	}

	return &domain.ToolResult{
		Elements:    elements,
		Description: fmt.Sprintf("Created %s %q at (%g, %g)", p.ShapeType, p.Label, p.X, p.Y),
	}, nil
}
