package responder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"searchbot/config"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type timeoutError struct{ timeout bool }

func (e timeoutError) Error() string   { return "net failure" }
func (e timeoutError) Timeout() bool   { return e.timeout }
func (e timeoutError) Temporary() bool { return false }

var _ net.Error = timeoutError{}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Outcome
	}{
		{name: "nil", err: nil, want: OutcomeOK},
		{name: "canceled", err: context.Canceled, want: OutcomeCancelled},
		{name: "wrapped deadline", err: fmt.Errorf("call: %w", context.DeadlineExceeded), want: OutcomeCancelled},
		{name: "network timeout", err: fmt.Errorf("send: %w", timeoutError{timeout: true}), want: OutcomeCancelled},
		{name: "connection failure", err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, want: OutcomeTransport},
		{name: "api error", err: errors.New("API error (status 500): boom"), want: OutcomeFailed},
		{name: "no provider", err: ErrNoProvider, want: OutcomeFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want != OutcomeOK, got.Failed())
		})
	}
}

func TestComposePrompt(t *testing.T) {
	got := ComposePrompt("weather today", "sunny and warm", "Human: hi\nAI: hello")
	assert.Equal(t, "User query: weather today\nWeb content: sunny and warm\nMemory: Human: hi\nAI: hello", got)

	empty := ComposePrompt("q", "", "")
	assert.Equal(t, "User query: q\nWeb content: \nMemory: ", empty)
}

func TestCleanReply(t *testing.T) {
	assert.Equal(t, "Bold and italic", CleanReply("  **Bold** and *italic*\n"))
	assert.Equal(t, "", CleanReply("***"))
}

func TestUnconfigured(t *testing.T) {
	_, err := Unconfigured{}.Generate(context.Background(), Request{Prompt: "x"})
	assert.ErrorIs(t, err, ErrNoProvider)
}

func TestNewGeneratorFromConfig(t *testing.T) {
	assert.IsType(t, Unconfigured{}, NewGeneratorFromConfig(config.Config{}, nil))

	g := NewGeneratorFromConfig(config.Config{LLMBaseURL: "http://localhost:1234/v1", LLMModel: "local"}, nil)
	require.IsType(t, &BreakerGenerator{}, g)
	assert.IsType(t, &OpenAIGenerator{}, g.(*BreakerGenerator).inner)
	assert.Equal(t, "openai:local", g.Name())

	g = NewGeneratorFromConfig(config.Config{CohereAPIKey: "k", OpenAIAPIKey: "o"}, nil)
	require.IsType(t, &BreakerGenerator{}, g)
	assert.IsType(t, &CohereGenerator{}, g.(*BreakerGenerator).inner)
	assert.Equal(t, "cohere:"+config.DefaultCohereModel, g.Name())
}

type completionRequest struct {
	Model    string `json:"model"`
	User     string `json:"user"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func TestOpenAIGenerate(t *testing.T) {
	var got completionRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":" **Sunny** today. "}}]}`))
	}))
	defer srv.Close()

	g := NewOpenAIGenerator(OpenAIConfig{BaseURL: srv.URL + "/v1", APIKey: "secret", Model: "m", Timeout: time.Second})
	reply, err := g.Generate(context.Background(), Request{Operation: config.ChatOperation, Prompt: "p"})

	require.NoError(t, err)
	assert.Equal(t, "Sunny today.", reply)
	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "m", got.Model)
	assert.Equal(t, config.ChatOperation, got.User)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "p", got.Messages[0].Content)
}

func TestOpenAIGenerateErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{name: "status", status: http.StatusInternalServerError, body: "boom", want: "500"},
		{name: "api error", status: http.StatusUnauthorized, body: `{"error":{"message":"bad key","type":"invalid_request_error"}}`, want: "bad key"},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, want: "no choices in response"},
		{name: "bad json", status: http.StatusOK, body: `{`, want: "chat completion failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			g := NewOpenAIGenerator(OpenAIConfig{BaseURL: srv.URL, Timeout: time.Second})
			_, err := g.Generate(context.Background(), Request{Prompt: "p"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, OutcomeFailed, Classify(err))
		})
	}
}

func TestOpenAIGenerateTimeoutIsCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	g := NewOpenAIGenerator(OpenAIConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := g.Generate(context.Background(), Request{Prompt: "p"})
	require.Error(t, err)
	assert.Equal(t, OutcomeCancelled, Classify(err))
}

func TestOpenAIGenerateUnreachableIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	g := NewOpenAIGenerator(OpenAIConfig{BaseURL: url, Timeout: time.Second})
	_, err := g.Generate(context.Background(), Request{Prompt: "p"})
	require.Error(t, err)
	assert.Equal(t, OutcomeTransport, Classify(err))
}

func TestFuncAdapter(t *testing.T) {
	g := Func(func(_ context.Context, req Request) (string, error) {
		return "echo " + req.Prompt, nil
	})
	out, err := g.Generate(context.Background(), Request{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "echo x", out)
	assert.Equal(t, "func", g.Name())
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	calls := 0
	inner := Func(func(context.Context, Request) (string, error) {
		calls++
		return "", errors.New("API error (status 503)")
	})
	g := NewBreakerGenerator(inner, BreakerConfig{MaxFailures: 2, Timeout: time.Minute}, nil)

	for i := 0; i < 2; i++ {
		_, err := g.Generate(context.Background(), Request{Prompt: "p"})
		require.Error(t, err)
	}
	_, err := g.Generate(context.Background(), Request{Prompt: "p"})

	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, calls)
	assert.Equal(t, gobreaker.StateOpen, g.State())
	assert.Equal(t, OutcomeFailed, Classify(err))
}

func TestBreakerIgnoresCallerCancellation(t *testing.T) {
	inner := Func(func(ctx context.Context, _ Request) (string, error) {
		return "", context.Canceled
	})
	g := NewBreakerGenerator(inner, BreakerConfig{MaxFailures: 1, Timeout: time.Minute}, nil)

	for i := 0; i < 3; i++ {
		_, err := g.Generate(context.Background(), Request{Prompt: "p"})
		require.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, gobreaker.StateClosed, g.State())
}

func TestBreakerPassesReplies(t *testing.T) {
	g := NewBreakerGenerator(Func(func(context.Context, Request) (string, error) {
		return "fine", nil
	}), BreakerConfig{}, nil)

	out, err := g.Generate(context.Background(), Request{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "fine", out)
	assert.Equal(t, "func", g.Name())
}
