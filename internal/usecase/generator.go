// Package usecase drives diagram generation: the iterative agent loop and
// the single-shot quick mode.
package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/trace"

	"github.com/Rmalnoult/doodlegram/internal/domain"
	"github.com/Rmalnoult/doodlegram/internal/infra/tracer"
)

const (
	defaultMaxIterations = 25
	maxPromptLength      = 1000

	untitledDiagram = "Untitled Diagram"
)

// ToolsetFactory builds a fresh tool executor for one session. Each
// session gets its own executor so element ids stay session-local and
// concurrent sessions cannot cross-talk.
type ToolsetFactory func() domain.ToolExecutor

// GeneratorDeps holds injected dependencies for the generator.
type GeneratorDeps struct {
	LLM           domain.LLMProvider
	Toolset       ToolsetFactory
	Logger        *slog.Logger
	MaxIterations int
	MaxTokens     int
}

// Generator orchestrates the bounded multi-round agent loop and streams
// incremental results to an event sink.
type Generator struct {
	deps GeneratorDeps
}

// NewGenerator creates a generator with the given dependencies.
func NewGenerator(deps GeneratorDeps) *Generator {
	if deps.MaxIterations <= 0 {
		deps.MaxIterations = defaultMaxIterations
	}
	return &Generator{deps: deps}
}

// ValidateRequest checks the inbound request before any stream is opened.
func ValidateRequest(req domain.GenerateRequest) error {
	if strings.TrimSpace(req.Prompt) == "" {
		return domain.NewDomainError("ValidateRequest", domain.ErrInvalidInput, "Prompt is required")
	}
	if utf8.RuneCountInString(req.Prompt) > maxPromptLength {
		return domain.NewDomainError("ValidateRequest", domain.ErrInvalidInput, "Prompt must be under 1000 characters")
	}
	return nil
}

// userMessage builds the opening conversation turn.
func userMessage(req domain.GenerateRequest) string {
	if req.Category != "" {
		return fmt.Sprintf("Subject: %s. Create a diagram for: %s", req.Category, req.Prompt)
	}
	return "Create a diagram for: " + req.Prompt
}

// Run executes one generation session, writing incremental events to
// sink. The stream always terminates with exactly one done or error
// event. The returned session reflects the final accumulated state.
func (g *Generator) Run(ctx context.Context, req domain.GenerateRequest, sink domain.EventSink) *Session {
	ctx, span := tracer.StartSpan(ctx, "generate.run")
	defer span.End()

	sess := NewSession(req)
	tools := g.deps.Toolset()

	g.emitProgress(sess, sink, "Starting diagram generation...")
	sess.apply(eventBegin)

	conversation := []domain.Message{{
		Role:      domain.RoleUser,
		Content:   userMessage(req),
		Timestamp: time.Now(),
	}}

	if err := g.loop(ctx, sess, tools, conversation, sink); err != nil {
		sess.apply(eventFailure)
		tracer.RecordError(span, err)
		g.deps.Logger.Error("generation failed",
			"session", sess.ID,
			"iterations", sess.Iterations,
			"error", err,
		)
		g.send(sink, domain.StreamEvent{
			Type: domain.EventError,
			Data: domain.ErrorData{Message: err.Error()},
		})
		return sess
	}

	g.send(sink, domain.StreamEvent{
		Type: domain.EventDone,
		Data: domain.DoneData{
			Title:        sess.Title,
			Description:  sess.Description,
			ElementCount: len(sess.Elements),
			Iterations:   sess.Iterations,
		},
	})
	sess.apply(eventCompleted)
	tracer.SetOK(span)

	g.deps.Logger.Info("generation complete",
		"session", sess.ID,
		"title", sess.Title,
		"elements", len(sess.Elements),
		"iterations", sess.Iterations,
	)
	return sess
}

// loop drives the model rounds. A returned error is an upstream failure
// and fails the whole session; per-tool failures are folded into the
// conversation and never propagate.
func (g *Generator) loop(ctx context.Context, sess *Session, tools domain.ToolExecutor, conversation []domain.Message, sink domain.EventSink) error {
	for sess.Iterations < g.deps.MaxIterations {
		if err := ctx.Err(); err != nil {
			// Caller went away: stop issuing model calls. Elements
			// already sent are not retracted.
			return err
		}
		sess.Iterations++

		resp, err := g.deps.LLM.Chat(ctx, domain.ChatRequest{
			System:    agentSystemPrompt,
			Messages:  conversation,
			Tools:     tools.Schemas(),
			MaxTokens: g.deps.MaxTokens,
		})
		if err != nil {
			return domain.WrapOp("Generator.loop", err)
		}

		if len(resp.Message.ToolCalls) == 0 {
			// Natural completion without a finish_diagram call.
			g.emitProgress(sess, sink, "Finishing up...")
			sess.apply(eventFinishRequested)
			return nil
		}

		results := g.runToolCalls(ctx, sess, tools, resp.Message.ToolCalls, sink)

		// Both turns must enter the conversation for the next round to
		// have tool-use context.
		conversation = append(conversation, resp.Message)
		conversation = append(conversation, results...)

		// A finish_diagram call arrives with stop_reason tool_use, so it
		// surfaces here as the session having entered the finishing phase.
		if sess.State() == StateFinishing {
			return nil
		}

		// The model can signal end-of-turn even while requesting tools;
		// honor it alongside the no-tools check above.
		if resp.StopReason == domain.StopEndTurn {
			sess.apply(eventFinishRequested)
			return nil
		}
	}

	// Iteration budget exhausted: a soft cutoff, not an error.
	sess.apply(eventBudgetExhausted)
	return nil
}

// runToolCalls executes one round's tool calls in the order the model
// emitted them and returns the tool-result turns.
func (g *Generator) runToolCalls(ctx context.Context, sess *Session, tools domain.ToolExecutor, calls []domain.ToolCall, sink domain.EventSink) []domain.Message {
	results := make([]domain.Message, 0, len(calls))

	for _, call := range calls {
		if call.Name == "finish_diagram" {
			g.captureFinish(sess, sink, call)
			results = append(results, toolResultMessage(call, "Diagram finished successfully.", false))
			continue
		}

		g.emitProgress(sess, sink, strings.ReplaceAll(call.Name, "_", " ")+"...")

		result, err := g.dispatch(ctx, tools, call)
		switch {
		case err != nil:
			// Recoverable: surface to the model on its next turn.
			g.deps.Logger.Warn("tool execution failed",
				"session", sess.ID, "tool", call.Name, "error", err)
			results = append(results, toolResultMessage(call, "Error: "+err.Error(), true))
		case result.IsError:
			results = append(results, toolResultMessage(call, "Error: "+result.Description, true))
		default:
			if len(result.Elements) > 0 {
				sess.addResult(result)
				g.send(sink, domain.StreamEvent{
					Type: domain.EventElements,
					Data: domain.ElementsData{Elements: result.Elements, Files: result.Files},
				})
			}
			results = append(results, toolResultMessage(call, successContent(result), false))
		}
	}

	return results
}

// dispatch routes one call through the executor with a span around it.
func (g *Generator) dispatch(ctx context.Context, tools domain.ToolExecutor, call domain.ToolCall) (*domain.ToolResult, error) {
	ctx, span := tracer.StartSpan(ctx, "generate.tool_call",
		trace.WithAttributes(tracer.StringAttr("tool.name", call.Name)),
	)
	defer span.End()

	result, err := tools.Dispatch(ctx, call)
	if err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}
	tracer.SetOK(span)
	return result, nil
}

// captureFinish records title and description from a finish_diagram call.
// The call itself is not executed; it only signals termination intent.
func (g *Generator) captureFinish(sess *Session, sink domain.EventSink, call domain.ToolCall) {
	var p struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	_ = json.Unmarshal(call.Arguments, &p)

	sess.Title = p.Title
	if sess.Title == "" {
		sess.Title = untitledDiagram
	}
	sess.Description = p.Description
	sess.apply(eventFinishRequested)

	g.emitProgress(sess, sink, "Diagram complete: "+sess.Title)
}

// successContent formats a tool result for the model's next turn.
func successContent(result *domain.ToolResult) string {
	ids := make([]string, 0, len(result.Elements))
	for _, el := range result.Elements {
		ids = append(ids, el.ID)
	}
	return fmt.Sprintf("Success: %s. Element IDs: %s", result.Description, strings.Join(ids, ", "))
}

// toolResultMessage builds the tool-result turn for one call.
func toolResultMessage(call domain.ToolCall, content string, isError bool) domain.Message {
	return domain.Message{
		Role:      domain.RoleTool,
		Content:   content,
		IsError:   isError,
		ToolCalls: []domain.ToolCall{{ID: call.ID, Name: call.Name}},
		Timestamp: time.Now(),
	}
}

// emitProgress appends to the session's ordered progress log and sends a
// progress event.
func (g *Generator) emitProgress(sess *Session, sink domain.EventSink, message string) {
	sess.Progress = append(sess.Progress, message)
	g.send(sink, domain.StreamEvent{
		Type: domain.EventProgress,
		Data: domain.ProgressData{Message: message},
	})
}

// send writes one event, logging (but not propagating) sink failures:
// a vanished client is handled by the context check in the loop.
func (g *Generator) send(sink domain.EventSink, event domain.StreamEvent) {
	if err := sink.Send(event); err != nil {
		g.deps.Logger.Debug("event sink send failed", "type", event.Type, "error", err)
	}
}
