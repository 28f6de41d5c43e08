package responder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"searchbot/config"

	"github.com/rs/zerolog"
)

// ErrNoProvider is returned by the fallback generator when no model is configured
var ErrNoProvider = errors.New("responder: no language model configured")

// Request is one call to the remote model
type Request struct {
	Operation string
	Prompt    string
}

// Generator abstracts the remote language model that turns a prompt into a reply
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	Name() string
}

// NewGeneratorFromConfig picks a generator from the configured credentials.
// Cohere wins when COHERE_API_KEY is set, then any OpenAI-compatible endpoint;
// with neither, every call fails with ErrNoProvider. Real providers are
// wrapped in a circuit breaker.
func NewGeneratorFromConfig(cfg config.Config, logger *zerolog.Logger) Generator {
	log := zerolog.Nop()
	if logger != nil {
		log = logger.With().Str("component", "responder").Logger()
	}

	timeout := cfg.ResponderTimeout
	if timeout <= 0 {
		timeout = config.DefaultResponderTimeout
	}

	var g Generator
	switch {
	case cfg.CohereAPIKey != "":
		g = NewCohereGenerator(cfg.CohereAPIKey, cfg.CohereModel, timeout)
	case cfg.OpenAIAPIKey != "" || cfg.LLMBaseURL != "":
		g = NewOpenAIGenerator(OpenAIConfig{
			BaseURL: cfg.LLMBaseURL,
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.LLMModel,
			Timeout: timeout,
		})
	default:
		log.Warn().Msg("No language model configured; replies will fall back to an apology")
		return Unconfigured{}
	}

	log.Info().Str("provider", g.Name()).Msg("Using language model provider")
	return NewBreakerGenerator(g, BreakerConfig{
		MaxFailures: uint32(cfg.BreakerFailures),
		Timeout:     cfg.BreakerCooldown,
	}, logger)
}

// ComposePrompt builds the single prompt string sent to the model
func ComposePrompt(query, content, history string) string {
	return fmt.Sprintf("User query: %s\nWeb content: %s\nMemory: %s", query, content, history)
}

// CleanReply strips markdown emphasis characters and surrounding whitespace
func CleanReply(reply string) string {
	return strings.TrimSpace(strings.ReplaceAll(reply, "*", ""))
}

// Unconfigured is the generator used when no provider credentials exist
type Unconfigured struct{}

func (Unconfigured) Name() string { return "none" }

func (Unconfigured) Generate(context.Context, Request) (string, error) {
	return "", ErrNoProvider
}

// Func adapts a function to the Generator interface
type Func func(ctx context.Context, req Request) (string, error)

func (f Func) Name() string { return "func" }

func (f Func) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
