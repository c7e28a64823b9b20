package tool

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/Rmalnoult/doodlegram/internal/domain"
	"github.com/Rmalnoult/doodlegram/internal/element"
)

func TestShapeWithLabel(t *testing.T) {
	tool := NewShapeTool(element.NewBuilder())

	result, err := tool.Execute(context.Background(), json.RawMessage(
		`{"shape_type": "rectangle", "x": 100, "y": 200, "width": 120, "height": 60, "label": "Start"}`,
	))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(result.Elements) != 2 {
		t.Fatalf("got %d elements, want 2 (shape + label)", len(result.Elements))
	}

	shape, label := result.Elements[0], result.Elements[1]

	if shape.Type != domain.ElementRectangle {
		t.Errorf("shape.Type = %q, want rectangle", shape.Type)
	}
	if shape.X != 100 || shape.Y != 200 || shape.Width != 120 || shape.Height != 60 {
		t.Errorf("shape bounds = (%g, %g, %g, %g)", shape.X, shape.Y, shape.Width, shape.Height)
	}
	// No fill given: transparent background with hachure fill style.
	if shape.BackgroundColor != "transparent" {
		t.Errorf("BackgroundColor = %q, want transparent", shape.BackgroundColor)
	}
	if shape.FillStyle != domain.FillHachure {
		t.Errorf("FillStyle = %q, want hachure", shape.FillStyle)
	}

	if label.Type != domain.ElementText {
		t.Errorf("label.Type = %q, want text", label.Type)
	}
	if label.Text != "Start" {
		t.Errorf("label.Text = %q, want Start", label.Text)
	}
	if label.ContainerID != shape.ID {
		t.Errorf("label.ContainerID = %q, want %q", label.ContainerID, shape.ID)
	}
	if len(shape.BoundElements) != 1 || shape.BoundElements[0].ID != label.ID || shape.BoundElements[0].Type != "text" {
		t.Errorf("shape.BoundElements = %+v, want binding to %q", shape.BoundElements, label.ID)
	}

	// Label is centered on the shape.
	centerX := label.X + label.Width/2
	centerY := label.Y + label.Height/2
	if centerX != 160 || centerY != 230 {
		t.Errorf("label center = (%g, %g), want (160, 230)", centerX, centerY)
	}
}

func TestShapeWithFill(t *testing.T) {
	tool := NewShapeTool(element.NewBuilder())

	result, err := tool.Execute(context.Background(), json.RawMessage(
		`{"shape_type": "ellipse", "x": 0, "y": 0, "width": 80, "height": 80, "label": "", "fill_color": "#a8d8ea"}`,
	))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(result.Elements) != 1 {
		t.Fatalf("got %d elements, want 1 (empty label binds nothing)", len(result.Elements))
	}

	shape := result.Elements[0]
	if shape.BackgroundColor != "#a8d8ea" {
		t.Errorf("BackgroundColor = %q, want #a8d8ea", shape.BackgroundColor)
	}
	if shape.FillStyle != domain.FillSolid {
		t.Errorf("FillStyle = %q, want solid when a fill is given", shape.FillStyle)
	}
	if shape.StrokeColor != element.DefaultStrokeColor {
		t.Errorf("StrokeColor = %q, want default", shape.StrokeColor)
	}
}

func TestShapeCustomStroke(t *testing.T) {
	tool := NewShapeTool(element.NewBuilder())

	result, err := tool.Execute(context.Background(), json.RawMessage(
		`{"shape_type": "diamond", "x": 0, "y": 0, "width": 50, "height": 50, "label": "?", "stroke_color": "#cc0000"}`,
	))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	shape, label := result.Elements[0], result.Elements[1]
	if shape.StrokeColor != "#cc0000" {
		t.Errorf("shape stroke = %q", shape.StrokeColor)
	}
	// The label inherits the shape's stroke color.
	if label.StrokeColor != "#cc0000" {
		t.Errorf("label stroke = %q, want #cc0000", label.StrokeColor)
	}
}

func TestShapeBadJSON(t *testing.T) {
	tool := NewShapeTool(element.NewBuilder())
	if _, err := tool.Execute(context.Background(), json.RawMessage(`{not json`)); err == nil {
		t.Error("expected error for malformed params")
	}
}
