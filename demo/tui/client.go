package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"searchbot/config"
	"searchbot/types"
)

// ChatClient is a thin HTTP client for the chat API bound to one session
type ChatClient struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

// ChatResponse mirrors the server's POST /api/chat reply
type ChatResponse struct {
	Query   string       `json:"query"`
	Reply   string       `json:"reply"`
	Outcome string       `json:"outcome"`
	Cached  bool         `json:"cached"`
	History []types.Turn `json:"history"`
}

type historyResponse struct {
	SessionID string       `json:"session_id"`
	History   []types.Turn `json:"history"`
}

// NewChatClient creates a new chat client. Replies can take as long as the
// slowest source plus the model call, hence the generous timeout.
func NewChatClient(baseURL, sessionID string) *ChatClient {
	return &ChatClient{
		baseURL:   baseURL,
		sessionID: sessionID,
		client: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

// SessionID returns the session this client speaks for
func (c *ChatClient) SessionID() string { return c.sessionID }

// Send posts one query and returns the server's reply
func (c *ChatClient) Send(query string) (*ChatResponse, error) {
	body, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, err
	}

	var out ChatResponse
	if err := c.do(http.MethodPost, "/api/chat", body, &out); err != nil {
		return nil, fmt.Errorf("failed to send query: %w", err)
	}
	return &out, nil
}

// History fetches the session's turns
func (c *ChatClient) History() ([]types.Turn, error) {
	var out historyResponse
	if err := c.do(http.MethodGet, "/api/history", nil, &out); err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	return out.History, nil
}

// Reset clears the session on the server
func (c *ChatClient) Reset() error {
	if err := c.do(http.MethodDelete, "/api/history", nil, nil); err != nil {
		return fmt.Errorf("failed to reset: %w", err)
	}
	return nil
}

func (c *ChatClient) do(method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set(config.SessionHeader, c.sessionID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(data))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
