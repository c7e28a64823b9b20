package image

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Default circuit breaker settings.
const (
	defaultCBMaxFailures uint32        = 5
	defaultCBTimeout     time.Duration = 30 * time.Second
	defaultCBInterval    time.Duration = 60 * time.Second
)

// BreakerConfig configures the circuit breaker behavior.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures before the circuit opens.
	MaxFailures uint32 `yaml:"max_failures"`
	// Timeout is how long the circuit stays open before transitioning to half-open.
	Timeout time.Duration `yaml:"timeout"`
	// Interval is the cyclic period of the closed state for clearing failure counts.
	Interval time.Duration `yaml:"interval"`
}

// BreakerClient wraps an image Client with circuit breaker protection.
// When the upstream fails repeatedly, the circuit opens and subsequent
// calls fail fast without reaching it. Failing fast still lands in the
// illustration placeholder path, so an open circuit never surfaces to
// the model or the caller.
type BreakerClient struct {
	inner   Client
	breaker *gobreaker.CircuitBreaker[*Image]
}

// NewBreakerClient wraps inner with a circuit breaker.
// If cfg is zero-valued, sensible defaults are used.
func NewBreakerClient(inner Client, cfg BreakerConfig, logger *slog.Logger) *BreakerClient {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultCBMaxFailures
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultCBTimeout
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultCBInterval
	}

	cb := gobreaker.NewCircuitBreaker[*Image](gobreaker.Settings{
		Name:        "image:fal",
		MaxRequests: 1, // allow 1 probe in half-open state
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &BreakerClient{inner: inner, breaker: cb}
}

// Generate implements Client. Calls are routed through the circuit breaker.
func (c *BreakerClient) Generate(ctx context.Context, prompt string) (*Image, error) {
	return c.breaker.Execute(func() (*Image, error) {
		return c.inner.Generate(ctx, prompt)
	})
}
