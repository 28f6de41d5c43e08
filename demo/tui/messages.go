package tui

import "searchbot/types"

// Messages for the tea program

// ReplyMsg is sent when the server answers a query
type ReplyMsg struct {
	Response *ChatResponse
	Err      error
}

// HistoryMsg is sent when the session history has been loaded
type HistoryMsg struct {
	Turns []types.Turn
	Err   error
}

// ResetMsg is sent after the session was cleared
type ResetMsg struct {
	Err error
}
