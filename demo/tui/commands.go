package tui

import tea "github.com/charmbracelet/bubbletea"

// sendQuery creates a command that posts a query to the server
func sendQuery(client *ChatClient, query string) tea.Cmd {
	return func() tea.Msg {
		resp, err := client.Send(query)
		return ReplyMsg{Response: resp, Err: err}
	}
}

// loadHistory creates a command that fetches the session history
func loadHistory(client *ChatClient) tea.Cmd {
	return func() tea.Msg {
		turns, err := client.History()
		return HistoryMsg{Turns: turns, Err: err}
	}
}

// resetSession creates a command that clears the session on the server
func resetSession(client *ChatClient) tea.Cmd {
	return func() tea.Msg {
		return ResetMsg{Err: client.Reset()}
	}
}
