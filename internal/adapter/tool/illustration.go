package tool

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Rmalnoult/doodlegram/internal/adapter/image"
	"github.com/Rmalnoult/doodlegram/internal/domain"
	"github.com/Rmalnoult/doodlegram/internal/element"
)

const (
	// stylePrefix is prepended to every illustration prompt so generated
	// images match the hand-drawn look of the rest of the canvas.
	stylePrefix = "simple hand-drawn educational illustration, digital illustration style, "

	defaultIllustrationSize = 150

	placeholderFill      = "#f0f0f0"
	placeholderTextColor = "#999999"
	placeholderFontSize  = 12
)

// IllustrationTool generates an AI illustration and places it on the
// canvas. Upstream failures never propagate: the tool degrades to a
// deterministic placeholder pair instead.
type IllustrationTool struct {
	builder *element.Builder
	images  image.Client
	logger  *slog.Logger
}

// NewIllustrationTool creates the generate_illustration capability.
func NewIllustrationTool(b *element.Builder, images image.Client, logger *slog.Logger) *IllustrationTool {
	return &IllustrationTool{builder: b, images: images, logger: logger}
}

type illustrationParams struct {
	Prompt string  `json:"prompt"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

func (t *IllustrationTool) Name() string { return "generate_illustration" }

func (t *IllustrationTool) Description() string {
	return "Generate an AI illustration and place it on the canvas. Use for visual enrichment of educational diagrams."
}

func (t *IllustrationTool) Schema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"prompt": {"type": "string", "description": "Description of the illustration (e.g. \"simple watercolor cloud with rain drops\")"},
				"x": {"type": "number", "description": "X position on canvas"},
				"y": {"type": "number", "description": "Y position on canvas"},
				"width": {"type": "number", "description": "Display width (default 150)"},
				"height": {"type": "number", "description": "Display height (default 150)"}
			},
			"required": ["prompt", "x", "y"]
		}`),
	}
}

// Execute always returns at least one element and never an error: a real
// image element plus its inline asset on success, or the placeholder
// rectangle/text pair when the upstream call fails in any way.
func (t *IllustrationTool) Execute(ctx context.Context, params json.RawMessage) (*domain.ToolResult, error) {
	var p illustrationParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, domain.WrapOp("IllustrationTool.Execute", err)
	}

	width := p.Width
	if width <= 0 {
		width = defaultIllustrationSize
	}
	height := p.Height
	if height <= 0 {
		height = defaultIllustrationSize
	}

	img, err := t.images.Generate(ctx, stylePrefix+p.Prompt)
	if err != nil {
		t.logger.Warn("illustration generation failed, using placeholder",
			"prompt", p.Prompt, "error", err)
		return t.placeholder(p.Prompt, p.X, p.Y, width, height), nil
	}

	fileID := "img_" + uuid.NewString()
	dataURL := fmt.Sprintf("data:%s;base64,%s", img.MimeType, base64.StdEncoding.EncodeToString(img.Data))

	el := t.builder.Base(
		element.WithType(domain.ElementImage),
		element.WithBounds(p.X, p.Y, width, height),
	)
	el.FileID = fileID
	el.Status = "saved"
	el.Scale = &[2]float64{1, 1}

	return &domain.ToolResult{
		Elements: []domain.CanvasElement{el},
		Files: domain.AssetMap{
			fileID: {MimeType: img.MimeType, ID: fileID, DataURL: dataURL},
		},
		Description: fmt.Sprintf("Generated illustration %q at (%g, %g)", p.Prompt, p.X, p.Y),
	}, nil
}

// placeholder builds the deterministic fallback: a dashed light-gray
// rectangle sized to the requested bounds plus a small centered text
// element echoing the bracketed prompt.
func (t *IllustrationTool) placeholder(prompt string, x, y, width, height float64) *domain.ToolResult {
	rect := t.builder.Base(
		element.WithBounds(x, y, width, height),
		element.WithBackground(placeholderFill, domain.FillSolid),
		element.WithStrokeStyle(domain.StrokeDashed),
	)
	label := t.builder.Text(x+width/2, y+height/2, "["+prompt+"]", placeholderFontSize, placeholderTextColor, "center")

	return &domain.ToolResult{
		Elements:    []domain.CanvasElement{rect, label},
		Description: fmt.Sprintf("Placeholder for illustration %q (generation failed)", prompt),
	}
}
