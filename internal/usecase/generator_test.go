package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rmalnoult/doodlegram/internal/domain"
)

// scriptedLLM replays canned responses in order and records every request.
type scriptedLLM struct {
	responses []*domain.ChatResponse
	errs      []error
	requests  []domain.ChatRequest
}

func (s *scriptedLLM) Chat(_ context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	s.requests = append(s.requests, req)
	i := len(s.requests) - 1
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i >= len(s.responses) {
		return nil, errors.New("scriptedLLM ran out of responses")
	}
	return s.responses[i], nil
}

func (s *scriptedLLM) Name() string { return "scripted" }

// fakeToolset scripts Dispatch results by tool name.
type fakeToolset struct {
	results map[string]*domain.ToolResult
	errs    map[string]error
	calls   []string
}

func (f *fakeToolset) Dispatch(_ context.Context, call domain.ToolCall) (*domain.ToolResult, error) {
	f.calls = append(f.calls, call.Name)
	if err, ok := f.errs[call.Name]; ok {
		return nil, err
	}
	if result, ok := f.results[call.Name]; ok {
		return result, nil
	}
	return &domain.ToolResult{Description: "Unknown tool: " + call.Name}, nil
}

func (f *fakeToolset) Schemas() []domain.ToolSchema {
	return []domain.ToolSchema{{Name: "create_shape", Parameters: json.RawMessage(`{}`)}}
}

// captureSink collects every event sent on the stream.
type captureSink struct {
	events []domain.StreamEvent
}

func (c *captureSink) Send(event domain.StreamEvent) error {
	c.events = append(c.events, event)
	return nil
}

func (c *captureSink) types() []domain.StreamEventType {
	out := make([]domain.StreamEventType, len(c.events))
	for i, e := range c.events {
		out[i] = e.Type
	}
	return out
}

func newTestGenerator(llm domain.LLMProvider, tools domain.ToolExecutor, maxIterations int) *Generator {
	return NewGenerator(GeneratorDeps{
		LLM:           llm,
		Toolset:       func() domain.ToolExecutor { return tools },
		Logger:        slog.Default(),
		MaxIterations: maxIterations,
	})
}

func assistantWithCalls(stopReason string, calls ...domain.ToolCall) *domain.ChatResponse {
	return &domain.ChatResponse{
		Message:    domain.Message{Role: domain.RoleAssistant, ToolCalls: calls},
		StopReason: stopReason,
	}
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(domain.GenerateRequest{Prompt: "the water cycle"}))

	err := ValidateRequest(domain.GenerateRequest{Prompt: "   "})
	require.Error(t, err)
	var derr *domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "Prompt is required", derr.Detail)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = ValidateRequest(domain.GenerateRequest{Prompt: strings.Repeat("a", 1001)})
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "Prompt must be under 1000 characters", derr.Detail)

	assert.NoError(t, ValidateRequest(domain.GenerateRequest{Prompt: strings.Repeat("a", 1000)}))

	// The limit counts characters, not bytes: 1000 CJK characters are
	// 3000 bytes but still within bounds.
	assert.NoError(t, ValidateRequest(domain.GenerateRequest{Prompt: strings.Repeat("水", 1000)}))
	err = ValidateRequest(domain.GenerateRequest{Prompt: strings.Repeat("水", 1001)})
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "Prompt must be under 1000 characters", derr.Detail)
}

func TestRunImmediateCompletion(t *testing.T) {
	// The model answers with plain text and no tool calls on round one.
	llm := &scriptedLLM{responses: []*domain.ChatResponse{
		{Message: domain.Message{Role: domain.RoleAssistant, Content: "Nothing to draw."}, StopReason: domain.StopEndTurn},
	}}
	sink := &captureSink{}

	gen := newTestGenerator(llm, &fakeToolset{}, 25)
	sess := gen.Run(context.Background(), domain.GenerateRequest{Prompt: "nothing"}, sink)

	require.Equal(t, []domain.StreamEventType{
		domain.EventProgress, // Starting...
		domain.EventProgress, // Finishing up...
		domain.EventDone,
	}, sink.types())

	done := sink.events[2].Data.(domain.DoneData)
	assert.Equal(t, 0, done.ElementCount)
	assert.Equal(t, 1, done.Iterations)
	assert.Equal(t, StateDone, sess.State())
}

func TestRunShapeThenFinish(t *testing.T) {
	shapeResult := &domain.ToolResult{
		Elements:    []domain.CanvasElement{{ID: "el_1"}, {ID: "el_2"}},
		Description: "Created rectangle",
	}
	llm := &scriptedLLM{responses: []*domain.ChatResponse{
		assistantWithCalls(domain.StopToolUse,
			domain.ToolCall{ID: "toolu_1", Name: "create_shape", Arguments: json.RawMessage(`{}`)},
			domain.ToolCall{ID: "toolu_2", Name: "finish_diagram", Arguments: json.RawMessage(`{"title":"Water Cycle","description":"How water moves"}`)},
		),
	}}
	tools := &fakeToolset{results: map[string]*domain.ToolResult{"create_shape": shapeResult}}
	sink := &captureSink{}

	gen := newTestGenerator(llm, tools, 25)
	sess := gen.Run(context.Background(), domain.GenerateRequest{Prompt: "water cycle", Category: domain.CategoryScience}, sink)

	require.Equal(t, []domain.StreamEventType{
		domain.EventProgress, // Starting...
		domain.EventProgress, // create shape...
		domain.EventElements,
		domain.EventProgress, // Diagram complete: ...
		domain.EventDone,
	}, sink.types())

	elements := sink.events[2].Data.(domain.ElementsData)
	require.Len(t, elements.Elements, 2)
	assert.Equal(t, "el_1", elements.Elements[0].ID)

	done := sink.events[4].Data.(domain.DoneData)
	assert.Equal(t, "Water Cycle", done.Title)
	assert.Equal(t, "How water moves", done.Description)
	assert.Equal(t, 2, done.ElementCount)
	assert.Equal(t, 1, done.Iterations)

	assert.Equal(t, StateDone, sess.State())
	assert.Equal(t, "Water Cycle", sess.Title)
	// finish_diagram is intercepted, never dispatched.
	assert.Equal(t, []string{"create_shape"}, tools.calls)
	// One LLM round only: the finish signal ends the loop even though
	// the stop reason was tool_use.
	assert.Len(t, llm.requests, 1)

	// The opening turn carries the category.
	first := llm.requests[0].Messages[0]
	assert.Contains(t, first.Content, "Subject: science")
	assert.Contains(t, first.Content, "water cycle")
}

func TestRunFinishWithoutTitle(t *testing.T) {
	llm := &scriptedLLM{responses: []*domain.ChatResponse{
		assistantWithCalls(domain.StopToolUse,
			domain.ToolCall{ID: "toolu_1", Name: "finish_diagram", Arguments: json.RawMessage(`{}`)},
		),
	}}
	sink := &captureSink{}

	gen := newTestGenerator(llm, &fakeToolset{}, 25)
	gen.Run(context.Background(), domain.GenerateRequest{Prompt: "x"}, sink)

	done := sink.events[len(sink.events)-1].Data.(domain.DoneData)
	assert.Equal(t, "Untitled Diagram", done.Title)
}

func TestRunBudgetExhausted(t *testing.T) {
	// The model keeps asking for shapes and never finishes.
	mkRound := func() *domain.ChatResponse {
		return assistantWithCalls(domain.StopToolUse,
			domain.ToolCall{ID: "toolu", Name: "create_shape", Arguments: json.RawMessage(`{}`)})
	}
	llm := &scriptedLLM{responses: []*domain.ChatResponse{mkRound(), mkRound(), mkRound()}}
	tools := &fakeToolset{results: map[string]*domain.ToolResult{
		"create_shape": {Elements: []domain.CanvasElement{{ID: "el"}}, Description: "Created"},
	}}
	sink := &captureSink{}

	gen := newTestGenerator(llm, tools, 2)
	sess := gen.Run(context.Background(), domain.GenerateRequest{Prompt: "x"}, sink)

	// Soft cutoff: partial work is still a success.
	last := sink.events[len(sink.events)-1]
	require.Equal(t, domain.EventDone, last.Type)
	done := last.Data.(domain.DoneData)
	assert.Equal(t, 2, done.Iterations)
	assert.Equal(t, 2, done.ElementCount)
	assert.Equal(t, StateDone, sess.State())
	assert.Len(t, llm.requests, 2)
}

func TestRunModelError(t *testing.T) {
	llm := &scriptedLLM{errs: []error{errors.New("api down")}}
	sink := &captureSink{}

	gen := newTestGenerator(llm, &fakeToolset{}, 25)
	sess := gen.Run(context.Background(), domain.GenerateRequest{Prompt: "x"}, sink)

	require.Equal(t, []domain.StreamEventType{
		domain.EventProgress,
		domain.EventError,
	}, sink.types())

	errData := sink.events[1].Data.(domain.ErrorData)
	assert.Contains(t, errData.Message, "api down")
	assert.Equal(t, StateFailed, sess.State())

	// Never both terminal events.
	for _, e := range sink.events {
		assert.NotEqual(t, domain.EventDone, e.Type)
	}
}

func TestRunToolErrorIsRecoverable(t *testing.T) {
	llm := &scriptedLLM{responses: []*domain.ChatResponse{
		assistantWithCalls(domain.StopToolUse,
			domain.ToolCall{ID: "toolu_1", Name: "create_shape", Arguments: json.RawMessage(`{}`)}),
		{Message: domain.Message{Role: domain.RoleAssistant, Content: "Giving up."}, StopReason: domain.StopEndTurn},
	}}
	tools := &fakeToolset{errs: map[string]error{"create_shape": errors.New("boom")}}
	sink := &captureSink{}

	gen := newTestGenerator(llm, tools, 25)
	sess := gen.Run(context.Background(), domain.GenerateRequest{Prompt: "x"}, sink)

	// The tool failure is folded into the conversation, not the stream.
	last := sink.events[len(sink.events)-1]
	assert.Equal(t, domain.EventDone, last.Type)
	assert.Equal(t, StateDone, sess.State())

	// Round two saw the error as a tool-result turn.
	require.Len(t, llm.requests, 2)
	msgs := llm.requests[1].Messages
	var found bool
	for _, m := range msgs {
		if m.Role == domain.RoleTool && m.IsError {
			found = true
			assert.Contains(t, m.Content, "boom")
		}
	}
	assert.True(t, found, "tool error turn missing from round-two conversation")
}

func TestRunErrorResultIsRecoverable(t *testing.T) {
	llm := &scriptedLLM{responses: []*domain.ChatResponse{
		assistantWithCalls(domain.StopToolUse,
			domain.ToolCall{ID: "toolu_1", Name: "create_shape", Arguments: json.RawMessage(`{}`)}),
		{Message: domain.Message{Role: domain.RoleAssistant}, StopReason: domain.StopEndTurn},
	}}
	tools := &fakeToolset{results: map[string]*domain.ToolResult{
		"create_shape": {IsError: true, Description: "schema validation failed"},
	}}
	sink := &captureSink{}

	gen := newTestGenerator(llm, tools, 25)
	gen.Run(context.Background(), domain.GenerateRequest{Prompt: "x"}, sink)

	// No elements event for an error result.
	for _, e := range sink.events {
		assert.NotEqual(t, domain.EventElements, e.Type)
	}
	require.Len(t, llm.requests, 2)
	msgs := llm.requests[1].Messages
	var found bool
	for _, m := range msgs {
		if m.Role == domain.RoleTool && m.IsError {
			found = true
			assert.Contains(t, m.Content, "schema validation failed")
		}
	}
	assert.True(t, found)
}

func TestRunCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	llm := &scriptedLLM{}
	sink := &captureSink{}

	gen := newTestGenerator(llm, &fakeToolset{}, 25)
	sess := gen.Run(ctx, domain.GenerateRequest{Prompt: "x"}, sink)

	assert.Equal(t, StateFailed, sess.State())
	assert.Empty(t, llm.requests, "no model call after cancellation")
	last := sink.events[len(sink.events)-1]
	assert.Equal(t, domain.EventError, last.Type)
}

// queueToolset pops one scripted result per dispatch, across rounds.
type queueToolset struct {
	queue []*domain.ToolResult
}

func (q *queueToolset) Dispatch(_ context.Context, _ domain.ToolCall) (*domain.ToolResult, error) {
	if len(q.queue) == 0 {
		return &domain.ToolResult{Description: "empty"}, nil
	}
	result := q.queue[0]
	q.queue = q.queue[1:]
	return result, nil
}

func (q *queueToolset) Schemas() []domain.ToolSchema { return nil }

func TestRunElementsEventsReconstructSession(t *testing.T) {
	// Three rounds of tool calls, then a finish. Concatenating the
	// elements events in arrival order must reproduce the accumulated
	// element sequence exactly.
	llm := &scriptedLLM{responses: []*domain.ChatResponse{
		assistantWithCalls(domain.StopToolUse,
			domain.ToolCall{ID: "t1", Name: "create_shape", Arguments: json.RawMessage(`{}`)},
			domain.ToolCall{ID: "t2", Name: "create_arrow", Arguments: json.RawMessage(`{}`)},
		),
		assistantWithCalls(domain.StopToolUse,
			domain.ToolCall{ID: "t3", Name: "create_text", Arguments: json.RawMessage(`{}`)},
		),
		assistantWithCalls(domain.StopToolUse,
			domain.ToolCall{ID: "t4", Name: "finish_diagram", Arguments: json.RawMessage(`{"title":"T"}`)},
		),
	}}
	tools := &queueToolset{queue: []*domain.ToolResult{
		{Elements: []domain.CanvasElement{{ID: "el_1"}, {ID: "el_2"}}, Description: "shape"},
		{Elements: []domain.CanvasElement{{ID: "el_3"}}, Description: "arrow",
			Files: domain.AssetMap{"img_a": {ID: "img_a"}}},
		{Elements: []domain.CanvasElement{{ID: "el_4"}}, Description: "text"},
	}}
	sink := &captureSink{}

	gen := newTestGenerator(llm, tools, 25)
	sess := gen.Run(context.Background(), domain.GenerateRequest{Prompt: "x"}, sink)

	var streamed []domain.CanvasElement
	files := make(domain.AssetMap)
	for _, e := range sink.events {
		if e.Type != domain.EventElements {
			continue
		}
		data := e.Data.(domain.ElementsData)
		streamed = append(streamed, data.Elements...)
		files.Merge(data.Files)
	}

	require.Equal(t, sess.Elements, streamed)
	require.Len(t, streamed, 4)
	for i, want := range []string{"el_1", "el_2", "el_3", "el_4"} {
		assert.Equal(t, want, streamed[i].ID)
	}
	assert.Equal(t, sess.Files, files)

	done := sink.events[len(sink.events)-1].Data.(domain.DoneData)
	assert.Equal(t, 4, done.ElementCount)
	assert.Equal(t, 3, done.Iterations)
}

func TestRunEmptyElementResultSendsNoEvent(t *testing.T) {
	llm := &scriptedLLM{responses: []*domain.ChatResponse{
		assistantWithCalls(domain.StopToolUse,
			domain.ToolCall{ID: "toolu_1", Name: "create_shape", Arguments: json.RawMessage(`{}`)}),
		{Message: domain.Message{Role: domain.RoleAssistant}, StopReason: domain.StopEndTurn},
	}}
	tools := &fakeToolset{results: map[string]*domain.ToolResult{
		"create_shape": {Description: "nothing produced"},
	}}
	sink := &captureSink{}

	gen := newTestGenerator(llm, tools, 25)
	gen.Run(context.Background(), domain.GenerateRequest{Prompt: "x"}, sink)

	for _, e := range sink.events {
		assert.NotEqual(t, domain.EventElements, e.Type)
	}
}
