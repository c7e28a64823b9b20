// Package tool implements the fixed set of canvas capabilities the model
// may invoke, and the registry that dispatches calls to them.
package tool

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Rmalnoult/doodlegram/internal/adapter/image"
	"github.com/Rmalnoult/doodlegram/internal/domain"
	"github.com/Rmalnoult/doodlegram/internal/element"
)

// Registry holds named tools for one generation session.
type Registry struct {
	tools  map[string]domain.Tool
	order  []string
	logger *slog.Logger
}

// NewRegistry creates an empty tool registry.
// If logger is non-nil, tools are wrapped with schema validation on Register;
// compilation errors are logged and the tool is registered unwrapped.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		tools:  make(map[string]domain.Tool),
		logger: logger,
	}
}

// NewSession creates a registry populated with the full capability set,
// bound to a session-scoped element builder. The builder owns the id
// counter, so a fresh registry per session keeps ids session-local.
func NewSession(b *element.Builder, images image.Client, logger *slog.Logger) *Registry {
	r := NewRegistry(logger)
	for _, t := range []domain.Tool{
		NewShapeTool(b),
		NewTextTool(b),
		NewArrowTool(b),
		NewIllustrationTool(b, images, logger),
		NewFinishTool(),
	} {
		if err := r.Register(t); err != nil {
			// Names are fixed at compile time; a duplicate is a programming error.
			panic(err)
		}
	}
	return r
}

// Register adds a tool. Returns error if name already registered.
// If the registry was created with a logger, the tool is wrapped with
// schema validation. If schema compilation fails, the tool is registered
// without validation and a warning is logged.
func (r *Registry) Register(t domain.Tool) error {
	name := t.Name()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}

	if r.logger != nil {
		wrapped, err := WithSchemaValidation(t)
		if err != nil {
			r.logger.Warn("schema validation disabled for tool",
				"tool", name, "error", err)
		} else {
			t = wrapped
		}
	}

	r.tools[name] = t
	r.order = append(r.order, name)
	return nil
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (domain.Tool, error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, domain.NewDomainError("Registry.Get", domain.ErrToolNotFound, name)
	}
	return t, nil
}

// Dispatch routes a tool call to the matching handler. An unrecognized
// name yields an empty-element result annotated with the unknown name; a
// single bad call must never abort the session. A returned error means
// the matched tool itself failed.
func (r *Registry) Dispatch(ctx context.Context, call domain.ToolCall) (*domain.ToolResult, error) {
	t, ok := r.tools[call.Name]
	if !ok {
		return &domain.ToolResult{
			Description: fmt.Sprintf("Unknown tool: %s", call.Name),
		}, nil
	}
	return t.Execute(ctx, call.Arguments)
}

// Schemas returns all tool schemas in registration order, for the LLM
// function-calling protocol.
func (r *Registry) Schemas() []domain.ToolSchema {
	schemas := make([]domain.ToolSchema, 0, len(r.order))
	for _, name := range r.order {
		schemas = append(schemas, r.tools[name].Schema())
	}
	return schemas
}
