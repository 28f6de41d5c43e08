package tui

import (
	"strings"
)

// View implements tea.Model interface
func (m Model) View() string {
	var b strings.Builder

	// Title
	b.WriteString(TitleStyle.Render(TextTitle))
	b.WriteString("\n")
	b.WriteString(InfoStyle.Render("session " + m.Client.SessionID()))
	b.WriteString("\n\n")

	// Conversation
	if len(m.Turns) == 0 {
		b.WriteString(InfoStyle.Render(TextEmpty))
	} else {
		b.WriteString(BoxStyle.Render(m.renderTurns()))
	}
	b.WriteString("\n\n")

	if status := m.getStateText(); status != "" {
		b.WriteString(status)
		b.WriteString("\n\n")
	}

	// Input line
	b.WriteString(HighlightStyle.Render(TextPrompt + m.Input))
	b.WriteString("\n\n")

	if m.State == StateWaiting {
		b.WriteString(InfoStyle.Render(TextFooterBusy))
	} else {
		b.WriteString(InfoStyle.Render(TextFooterIdle))
	}

	return b.String()
}

func (m Model) renderTurns() string {
	lines := make([]string, 0, len(m.Turns))
	for _, turn := range m.Turns {
		if turn.IsUser() {
			lines = append(lines, UserStyle.Render("You: ")+turn.Text)
		} else {
			lines = append(lines, AssistantStyle.Render("Bot: ")+turn.Text)
		}
	}
	return strings.Join(lines, "\n")
}
