package usecase

import (
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/Rmalnoult/doodlegram/internal/domain"
)

// State is the generation session's lifecycle phase.
type State int

const (
	// StateStarting is the initial phase before the first model round.
	StateStarting State = iota
	// StateGenerating covers the iterative tool-call rounds.
	StateGenerating
	// StateFinishing is entered once the model signals completion,
	// either via finish_diagram or by returning no tool calls.
	StateFinishing
	// StateDone is terminal success.
	StateDone
	// StateFailed is terminal failure (model round-trip failed).
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateGenerating:
		return "generating"
	case StateFinishing:
		return "finishing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// stateEvent drives session state transitions.
type stateEvent int

const (
	eventBegin stateEvent = iota // first round dispatched
	eventFinishRequested         // finish_diagram seen, or model returned no tools
	eventBudgetExhausted         // iteration cap hit without a finish signal
	eventCompleted               // terminal event emitted
	eventFailure                 // model round-trip failed
)

// nextState is the pure transition function of the session state machine.
// Invalid events leave the state unchanged, so a finish signal after
// failure (or vice versa) cannot resurrect a terminal session.
func nextState(s State, ev stateEvent) State {
	switch ev {
	case eventBegin:
		if s == StateStarting {
			return StateGenerating
		}
	case eventFinishRequested:
		if s == StateGenerating {
			return StateFinishing
		}
	case eventBudgetExhausted:
		// Running out of iterations is a soft cutoff, not an error.
		if s == StateGenerating {
			return StateFinishing
		}
	case eventCompleted:
		if s == StateFinishing || s == StateGenerating {
			return StateDone
		}
	case eventFailure:
		if s != StateDone {
			return StateFailed
		}
	}
	return s
}

// Session is one generation run: the accumulated elements, assets and
// progress log, the final title/description, and the iteration counter.
// It is mutated only by the Generator and discarded when the response
// stream ends.
type Session struct {
	ID          string
	Prompt      string
	Category    domain.Category
	Elements    []domain.CanvasElement
	Files       domain.AssetMap
	Progress    []string
	Title       string
	Description string
	Iterations  int

	state State
}

// NewSession creates a session for the given request.
func NewSession(req domain.GenerateRequest) *Session {
	return &Session{
		ID:       newSessionID(),
		Prompt:   req.Prompt,
		Category: req.Category,
		Files:    make(domain.AssetMap),
		state:    StateStarting,
	}
}

// State returns the current lifecycle phase.
func (s *Session) State() State { return s.state }

// apply advances the state machine.
func (s *Session) apply(ev stateEvent) {
	s.state = nextState(s.state, ev)
}

// addResult folds one tool call's output into the accumulated sequence.
func (s *Session) addResult(result *domain.ToolResult) {
	s.Elements = append(s.Elements, result.Elements...)
	s.Files.Merge(result.Files)
}

// newSessionID returns a ULID string.
func newSessionID() string {
	t := time.Now()
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
