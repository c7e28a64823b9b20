package usecase

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Rmalnoult/doodlegram/internal/domain"
	"github.com/Rmalnoult/doodlegram/internal/infra/tracer"
)

// quickTool is the single forced capability of quick mode: the model
// answers with Mermaid graph syntax in one shot. Converting that syntax
// into canvas elements is a downstream concern.
var quickTool = domain.ToolSchema{
	Name:        "generate_diagram",
	Description: "Generate a Mermaid diagram for an educational concept",
	Parameters: json.RawMessage(`{
		"type": "object",
		"properties": {
			"title": {"type": "string", "description": "Short title for the diagram"},
			"description": {"type": "string", "description": "One-sentence description"},
			"diagram_type": {"type": "string", "enum": ["flowchart", "mindmap", "sequence", "timeline"], "description": "Type of Mermaid diagram"},
			"mermaid_syntax": {"type": "string", "description": "Valid Mermaid diagram syntax"}
		},
		"required": ["title", "description", "diagram_type", "mermaid_syntax"]
	}`),
}

// QuickTranslator is the single-shot alternative to the agent loop.
type QuickTranslator struct {
	llm       domain.LLMProvider
	logger    *slog.Logger
	maxTokens int
}

// NewQuickTranslator creates a quick-mode translator.
func NewQuickTranslator(llm domain.LLMProvider, maxTokens int, logger *slog.Logger) *QuickTranslator {
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	return &QuickTranslator{llm: llm, logger: logger, maxTokens: maxTokens}
}

// Translate asks the model for a diagram description in Mermaid syntax
// with the tool choice forced, and returns its fields verbatim.
func (q *QuickTranslator) Translate(ctx context.Context, req domain.GenerateRequest) (*domain.QuickDiagram, error) {
	ctx, span := tracer.StartSpan(ctx, "generate.quick")
	defer span.End()

	if err := ValidateRequest(req); err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}

	resp, err := q.llm.Chat(ctx, domain.ChatRequest{
		System:     quickSystemPrompt,
		Messages:   []domain.Message{{Role: domain.RoleUser, Content: userMessage(req)}},
		Tools:      []domain.ToolSchema{quickTool},
		ToolChoice: &domain.ToolChoice{Name: quickTool.Name},
		MaxTokens:  q.maxTokens,
	})
	if err != nil {
		tracer.RecordError(span, err)
		return nil, domain.WrapOp("QuickTranslator.Translate", err)
	}

	var call *domain.ToolCall
	for i := range resp.Message.ToolCalls {
		if resp.Message.ToolCalls[i].Name == quickTool.Name {
			call = &resp.Message.ToolCalls[i]
			break
		}
	}
	if call == nil {
		err := domain.NewDomainError("QuickTranslator.Translate", domain.ErrProviderError, "model returned no diagram")
		tracer.RecordError(span, err)
		return nil, err
	}

	var p struct {
		Title         string `json:"title"`
		Description   string `json:"description"`
		DiagramType   string `json:"diagram_type"`
		MermaidSyntax string `json:"mermaid_syntax"`
	}
	if err := json.Unmarshal(call.Arguments, &p); err != nil {
		tracer.RecordError(span, err)
		return nil, domain.WrapOp("QuickTranslator.Translate", err)
	}

	tracer.SetOK(span)
	q.logger.Debug("quick diagram generated", "title", p.Title, "type", p.DiagramType)

	return &domain.QuickDiagram{
		Title:         p.Title,
		Description:   p.Description,
		DiagramType:   p.DiagramType,
		MermaidSyntax: p.MermaidSyntax,
	}, nil
}
