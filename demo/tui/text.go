package tui

// UI Text Constants
const (
	TextTitle        = "🔎 searchbot"
	TextPrompt       = "› "
	TextEmpty        = "No messages yet. Type a question and press Enter."
	TextWaiting      = "⏳ Searching the web and asking the model..."
	TextFooterIdle   = "Enter: send | Ctrl+R: new conversation | Esc/Ctrl+C: quit"
	TextFooterBusy   = "Waiting for reply | Esc/Ctrl+C: quit"
	TextNotConnected = "❌ Not connected to server"
)
