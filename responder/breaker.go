package responder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// BreakerConfig configures the circuit breaker around a Generator
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures before the circuit opens
	MaxFailures uint32
	// Timeout is how long the circuit stays open before a trial request is let through
	Timeout time.Duration
	// Interval clears failure counts while closed; 0 keeps them until the circuit opens
	Interval time.Duration
}

// BreakerGenerator fails fast once the wrapped model keeps failing, so a dead
// provider does not hold every request for the full responder timeout
type BreakerGenerator struct {
	inner   Generator
	breaker *gobreaker.CircuitBreaker[string]
}

// NewBreakerGenerator wraps inner with a circuit breaker. MaxFailures 0 selects 5.
func NewBreakerGenerator(inner Generator, cfg BreakerConfig, logger *zerolog.Logger) *BreakerGenerator {
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	log := zerolog.Nop()
	if logger != nil {
		log = logger.With().Str("component", "breaker").Logger()
	}

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "llm:" + inner.Name(),
		MaxRequests: 1,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state change")
		},
		// the caller giving up says nothing about the provider's health
		IsExcluded: func(err error) bool {
			return errors.Is(err, context.Canceled)
		},
	})
	return &BreakerGenerator{inner: inner, breaker: cb}
}

func (b *BreakerGenerator) Name() string { return b.inner.Name() }

// Generate routes the call through the breaker
func (b *BreakerGenerator) Generate(ctx context.Context, req Request) (string, error) {
	text, err := b.breaker.Execute(func() (string, error) {
		return b.inner.Generate(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("provider %q circuit open: %w", b.inner.Name(), err)
	}
	return text, err
}

// State reports the breaker state for health checks
func (b *BreakerGenerator) State() gobreaker.State {
	return b.breaker.State()
}
