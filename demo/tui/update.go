package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model interface
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case ReplyMsg:
		return m.handleReply(msg)
	case HistoryMsg:
		return m.handleHistory(msg)
	case ResetMsg:
		return m.handleReset(msg)
	}
	return m, nil
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	}

	if m.State == StateWaiting {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEnter:
		query := strings.TrimSpace(m.Input)
		if query == "" {
			return m, nil
		}
		m.Input = ""
		m.State = StateWaiting
		m.Err = nil
		return m, sendQuery(m.Client, query)
	case tea.KeyCtrlR:
		m.State = StateWaiting
		return m, resetSession(m.Client)
	case tea.KeyBackspace:
		if r := []rune(m.Input); len(r) > 0 {
			m.Input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.Input += " "
	case tea.KeyRunes:
		m.Input += string(msg.Runes)
	}
	return m, nil
}

// handleReply processes the server's answer to a query
func (m Model) handleReply(msg ReplyMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.State = StateError
		m.Err = msg.Err
		return m, nil
	}
	m.Connected = true
	m.State = StateIdle
	m.LastOutcome = msg.Response.Outcome
	m.LastCached = msg.Response.Cached
	if msg.Response.History != nil {
		m.Turns = msg.Response.History
	}
	return m, nil
}

// handleHistory processes the initial history load
func (m Model) handleHistory(msg HistoryMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.State = StateError
		m.Err = msg.Err
		return m, nil
	}
	m.Connected = true
	m.Turns = msg.Turns
	return m, nil
}

// handleReset processes a cleared session
func (m Model) handleReset(msg ResetMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.State = StateError
		m.Err = msg.Err
		return m, nil
	}
	m.State = StateIdle
	m.Turns = m.Turns[:0]
	m.LastOutcome = ""
	m.LastCached = false
	return m, nil
}
