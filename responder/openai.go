package responder

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"searchbot/config"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig configures an OpenAI-compatible chat completions endpoint
type OpenAIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
	Client  *http.Client
}

// OpenAIGenerator implements Generator against any OpenAI-compatible
// chat completions API (OpenAI, Ollama, LM Studio, vLLM, ...)
type OpenAIGenerator struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIGenerator creates a generator for an OpenAI-compatible endpoint
func NewOpenAIGenerator(cfg OpenAIConfig) *OpenAIGenerator {
	if cfg.BaseURL == "" {
		cfg.BaseURL = config.DefaultOpenAIBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = config.DefaultOpenAIModel
	}

	transportCfg := openai.DefaultConfig(cfg.APIKey)
	transportCfg.BaseURL = cfg.BaseURL
	if cfg.Client != nil {
		transportCfg.HTTPClient = cfg.Client
	} else {
		transportCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &OpenAIGenerator{
		client:  openai.NewClientWithConfig(transportCfg),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
}

func (o *OpenAIGenerator) Name() string { return "openai:" + o.model }

// Generate posts the prompt as a single user message. The operation name is
// passed through as the request's user tag.
func (o *OpenAIGenerator) Generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := withTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		User: req.Operation,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	return CleanReply(resp.Choices[0].Message.Content), nil
}
