package domain

import (
	"context"
	"time"
)

// Category is a subject-area hint attached to a generation request.
// Unrecognized values pass through to the model as free text.
type Category string

const (
	CategoryScience   Category = "science"
	CategoryMath      Category = "math"
	CategoryHistory   Category = "history"
	CategoryGeography Category = "geography"
	CategoryLanguage  Category = "language"
	CategoryArts      Category = "arts"
	CategoryOther     Category = "other"
)

// GenerateRequest is the inbound payload for diagram generation.
type GenerateRequest struct {
	Prompt   string   `json:"prompt"`
	Category Category `json:"category,omitempty"`
}

// Diagram is a finished, saveable diagram.
type Diagram struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    Category        `json:"category,omitempty"`
	Prompt      string          `json:"prompt"`
	Elements    []CanvasElement `json:"elements"`
	Files       AssetMap        `json:"files,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// QuickDiagram is the result of the single-shot quick mode: a textual
// graph-syntax description whose structural conversion into canvas
// elements is a downstream concern.
type QuickDiagram struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	DiagramType   string `json:"diagramType"`
	MermaidSyntax string `json:"mermaidSyntax"`
}

// DiagramStore is the narrow persistence contract consumed by the HTTP
// layer. The generation core never touches storage directly.
type DiagramStore interface {
	Save(ctx context.Context, d Diagram) (string, error)
	Get(ctx context.Context, id string) (*Diagram, error)
	Close() error
}
