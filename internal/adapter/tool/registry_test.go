package tool

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/Rmalnoult/doodlegram/internal/adapter/image"
	"github.com/Rmalnoult/doodlegram/internal/domain"
	"github.com/Rmalnoult/doodlegram/internal/element"
)

func newTestLogger() *slog.Logger {
	return slog.Default()
}

// fakeImageClient scripts the upstream image provider.
type fakeImageClient struct {
	img   *image.Image
	err   error
	calls int
}

func (f *fakeImageClient) Generate(_ context.Context, _ string) (*image.Image, error) {
	f.calls++
	return f.img, f.err
}

func newTestSession(images image.Client) *Registry {
	return NewSession(element.NewBuilder(), images, newTestLogger())
}

func TestSessionRegistersAllTools(t *testing.T) {
	r := newTestSession(&fakeImageClient{})

	schemas := r.Schemas()
	want := []string{"create_shape", "create_text", "create_arrow", "generate_illustration", "finish_diagram"}

	if len(schemas) != len(want) {
		t.Fatalf("got %d schemas, want %d", len(schemas), len(want))
	}
	for i, name := range want {
		if schemas[i].Name != name {
			t.Errorf("schemas[%d].Name = %q, want %q", i, schemas[i].Name, name)
		}
		if len(schemas[i].Parameters) == 0 {
			t.Errorf("schemas[%d] has empty parameters", i)
		}
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	r := newTestSession(&fakeImageClient{})

	result, err := r.Dispatch(context.Background(), domain.ToolCall{
		ID:        "call_1",
		Name:      "draw_dragon",
		Arguments: json.RawMessage(`{}`),
	})
	if err != nil {
		t.Fatalf("unknown tool must not return an error: %v", err)
	}
	if len(result.Elements) != 0 {
		t.Errorf("unknown tool produced %d elements", len(result.Elements))
	}
	if !strings.Contains(result.Description, "draw_dragon") {
		t.Errorf("description %q should name the unknown tool", result.Description)
	}
}

func TestDispatchRoutesToTool(t *testing.T) {
	r := newTestSession(&fakeImageClient{})

	result, err := r.Dispatch(context.Background(), domain.ToolCall{
		ID:        "call_1",
		Name:      "create_text",
		Arguments: json.RawMessage(`{"x": 100, "y": 50, "text": "Title"}`),
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(result.Elements) != 1 {
		t.Fatalf("got %d elements, want 1", len(result.Elements))
	}
	if result.Elements[0].Text != "Title" {
		t.Errorf("Text = %q, want Title", result.Elements[0].Text)
	}
}

func TestDispatchValidatesParams(t *testing.T) {
	r := newTestSession(&fakeImageClient{})

	// create_shape requires shape_type, x, y, width, height, label.
	result, err := r.Dispatch(context.Background(), domain.ToolCall{
		ID:        "call_1",
		Name:      "create_shape",
		Arguments: json.RawMessage(`{"x": 1}`),
	})
	if err != nil {
		t.Fatalf("validation failure must come back as an error result, not an error: %v", err)
	}
	if !result.IsError {
		t.Error("expected IsError for missing required params")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.Register(NewFinishTool()); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if err := r.Register(NewFinishTool()); err == nil {
		t.Error("expected error on duplicate registration")
	}
}

func TestGetUnknown(t *testing.T) {
	r := NewRegistry(nil)
	if _, err := r.Get("missing"); err == nil {
		t.Error("expected error for unknown tool")
	}
}

func TestSessionIDsAreLocal(t *testing.T) {
	a := newTestSession(&fakeImageClient{})
	b := newTestSession(&fakeImageClient{})

	args := json.RawMessage(`{"x": 0, "y": 0, "text": "hi"}`)
	resA, err := a.Dispatch(context.Background(), domain.ToolCall{Name: "create_text", Arguments: args})
	if err != nil {
		t.Fatal(err)
	}
	resB, err := b.Dispatch(context.Background(), domain.ToolCall{Name: "create_text", Arguments: args})
	if err != nil {
		t.Fatal(err)
	}

	if resA.Elements[0].ID != "el_1" || resB.Elements[0].ID != "el_1" {
		t.Errorf("each session must start at el_1, got %q and %q",
			resA.Elements[0].ID, resB.Elements[0].ID)
	}
}
