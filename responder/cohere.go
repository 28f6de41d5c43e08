package responder

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"time"

	"searchbot/config"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
)

// CohereGenerator implements Generator using the Cohere Chat API
// SDK: github.com/cohere-ai/cohere-go/v2
type CohereGenerator struct {
	client  *cohereclient.Client
	model   string
	timeout time.Duration
}

// NewCohereGenerator creates a Cohere-backed generator
func NewCohereGenerator(apiKey, model string, timeout time.Duration) *CohereGenerator {
	if model == "" {
		model = config.DefaultCohereModel
	}
	// Force HTTP/1.1; the API has returned HTTP/2 stream errors on long replies
	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSNextProto:      make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),
			ForceAttemptHTTP2: false,
		},
	}
	client := cohereclient.NewClient(
		cohereclient.WithToken(apiKey),
		cohereclient.WithHTTPClient(httpClient),
	)
	return &CohereGenerator{client: client, model: model, timeout: timeout}
}

func (c *CohereGenerator) Name() string { return "cohere:" + c.model }

// Generate sends the prompt as a single chat message. The operation name has no
// Cohere equivalent; history is already folded into the prompt.
func (c *CohereGenerator) Generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	model := c.model
	resp, err := c.client.Chat(ctx, &cohere.ChatRequest{
		Message: req.Prompt,
		Model:   &model,
	})
	if err != nil {
		return "", fmt.Errorf("cohere chat error: %w", err)
	}
	if resp == nil {
		return "", errors.New("cohere chat returned empty response")
	}
	return CleanReply(resp.Text), nil
}
