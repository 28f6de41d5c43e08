package tui

import (
	"fmt"

	"searchbot/types"

	tea "github.com/charmbracelet/bubbletea"
)

// State represents the client state machine
type State string

const (
	StateIdle    State = "idle"
	StateWaiting State = "waiting"
	StateError   State = "error"
)

// Model represents the TUI client state (thin client)
type Model struct {
	Client *ChatClient

	State State
	Input string
	Turns []types.Turn

	// Outcome of the last exchange as reported by the server
	LastOutcome string
	LastCached  bool
	Err         error

	Connected bool
}

// NewModel creates a new TUI model bound to one session
func NewModel(serverURL, sessionID string) Model {
	return Model{
		Client: NewChatClient(serverURL, sessionID),
		State:  StateIdle,
		Turns:  make([]types.Turn, 0),
	}
}

// Init implements tea.Model interface
func (m Model) Init() tea.Cmd {
	return loadHistory(m.Client)
}

// getStateText returns the appropriate state message
func (m Model) getStateText() string {
	if !m.Connected && m.State == StateError {
		return ErrorStyle.Render(TextNotConnected)
	}

	switch m.State {
	case StateWaiting:
		return StatusStyle.Render(TextWaiting)
	case StateError:
		errMsg := "Unknown error"
		if m.Err != nil {
			errMsg = m.Err.Error()
		}
		return ErrorStyle.Render(fmt.Sprintf("❌ Error: %v", errMsg))
	default:
		if m.LastOutcome != "" && m.LastOutcome != "ok" {
			return ErrorStyle.Render(fmt.Sprintf("Last request: %s", m.LastOutcome))
		}
		if m.LastCached {
			return InfoStyle.Render("Last reply used cached web content")
		}
		return ""
	}
}
