// Package element constructs canvas elements with consistent defaults and
// session-local id allocation.
package element

import (
	"fmt"
	"math/rand"
	"time"
	"unicode/utf8"

	"github.com/Rmalnoult/doodlegram/internal/domain"
)

// Default visual attributes applied to every element.
const (
	DefaultStrokeColor = "#1e1e1e"
	DefaultBackground  = "transparent"
	defaultWidth       = 100
	defaultHeight      = 50
)

// Builder allocates element ids and fills in default attributes. Each
// generation session owns its own Builder, so ids are small and
// session-local: el_1, el_2, ... Callers must not assume ids are unique
// across sessions.
type Builder struct {
	counter int
	rng     *rand.Rand
	now     func() time.Time
}

// NewBuilder creates a Builder with its counter at zero.
func NewBuilder() *Builder {
	return &Builder{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
}

// NextID allocates the next element id.
func (b *Builder) NextID() string {
	b.counter++
	return fmt.Sprintf("el_%d", b.counter)
}

// seed returns a random value in the range the renderer expects for
// hand-drawn jitter variance.
func (b *Builder) seed() int64 {
	return b.rng.Int63n(2147483647)
}

// Option overrides a default attribute on a base element.
type Option func(*domain.CanvasElement)

// WithID sets an explicit id instead of allocating one.
func WithID(id string) Option {
	return func(e *domain.CanvasElement) { e.ID = id }
}

// WithType sets the element type.
func WithType(t domain.ElementType) Option {
	return func(e *domain.CanvasElement) { e.Type = t }
}

// WithBounds sets position and size.
func WithBounds(x, y, width, height float64) Option {
	return func(e *domain.CanvasElement) {
		e.X, e.Y, e.Width, e.Height = x, y, width, height
	}
}

// WithStroke sets the stroke color.
func WithStroke(color string) Option {
	return func(e *domain.CanvasElement) { e.StrokeColor = color }
}

// WithBackground sets the fill color and style.
func WithBackground(color, fillStyle string) Option {
	return func(e *domain.CanvasElement) {
		e.BackgroundColor = color
		e.FillStyle = fillStyle
	}
}

// WithStrokeStyle sets the stroke style (solid, dashed, dotted).
func WithStrokeStyle(style string) Option {
	return func(e *domain.CanvasElement) { e.StrokeStyle = style }
}

// WithRoundness replaces the corner rounding descriptor.
func WithRoundness(r *domain.Roundness) Option {
	return func(e *domain.CanvasElement) { e.Roundness = r }
}

// Base returns a fully-populated element: every attribute not overridden
// gets its default, and a fresh id is allocated unless WithID was given.
// Pure computation apart from the id counter and seed draw.
func (b *Builder) Base(opts ...Option) domain.CanvasElement {
	el := domain.CanvasElement{
		Type:            domain.ElementRectangle,
		Width:           defaultWidth,
		Height:          defaultHeight,
		StrokeColor:     DefaultStrokeColor,
		BackgroundColor: DefaultBackground,
		FillStyle:       domain.FillSolid,
		StrokeWidth:     2,
		StrokeStyle:     domain.StrokeSolid,
		Roughness:       1,
		Opacity:         100,
		Roundness:       &domain.Roundness{Type: 3},
		Seed:            b.seed(),
		Version:         1,
		VersionNonce:    b.seed(),
		GroupIDs:        []string{},
		Updated:         b.now().UnixMilli(),
	}
	for _, opt := range opts {
		opt(&el)
	}
	if el.ID == "" {
		el.ID = b.NextID()
	}
	return el
}

// Text builds a text element centered on (x, y). The bounding box is a
// deterministic heuristic: width = character count * 0.6 * fontSize,
// height = 1.4 * fontSize. Characters are counted as runes, so multi-byte
// text is not over-sized.
func (b *Builder) Text(x, y float64, text string, fontSize float64, color, align string) domain.CanvasElement {
	charWidth := fontSize * 0.6
	width := float64(utf8.RuneCountInString(text)) * charWidth
	height := fontSize * 1.4

	el := b.Base(
		WithType(domain.ElementText),
		WithBounds(x-width/2, y-height/2, width, height),
		WithStroke(color),
		WithRoundness(nil),
	)
	el.Text = text
	el.OriginalText = text
	el.FontSize = fontSize
	el.FontFamily = 1
	el.TextAlign = align
	el.VerticalAlign = "middle"
	el.AutoResize = true
	el.LineHeight = 1.25
	return el
}
