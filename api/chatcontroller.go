package api

import (
	"net/http"
	"strings"

	"searchbot/chat"
	"searchbot/responder"
	"searchbot/types"

	"github.com/gin-gonic/gin"
)

// User-facing replies for failed generations
const (
	MessageCancelled = "Sorry, your request was cancelled due to a timeout or conflict. Please try again."
	MessageError     = "Sorry, an error occurred. Please try again later."
)

// RegisterChatRoutes registers the chat page and the JSON chat API.
// limit guards the routes that start a request cycle.
func RegisterChatRoutes(r *gin.Engine, svc *chat.Service, limit gin.HandlerFunc) {
	h := &chatHandler{svc: svc}
	r.GET("/", h.page)
	r.POST("/", limit, h.submit)

	g := r.Group("/api")
	g.POST("/chat", limit, h.chatJSON)
	g.GET("/history", h.history)
	g.DELETE("/history", h.reset)
}

type chatHandler struct {
	svc *chat.Service
}

// ChatRequest is the JSON body of POST /api/chat
type ChatRequest struct {
	Query string `json:"query" binding:"required"`
}

// ChatResponse is the JSON reply of POST /api/chat
type ChatResponse struct {
	Query   string            `json:"query"`
	Reply   string            `json:"reply"`
	Outcome responder.Outcome `json:"outcome"`
	Cached  bool              `json:"cached"`
	History []types.Turn      `json:"history"`
}

// MessageFor returns the text shown to the user for a reply
func MessageFor(r chat.Reply) string {
	switch r.Outcome {
	case responder.OutcomeOK:
		return r.Text
	case responder.OutcomeCancelled:
		return MessageCancelled
	default:
		return MessageError
	}
}

// page renders the chat interface with this session's history
func (h *chatHandler) page(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"query":        "",
		"response":     "",
		"chat_history": h.svc.History(sessionID(c)),
	})
}

// submit handles the form post: one full request cycle, then re-render
func (h *chatHandler) submit(c *gin.Context) {
	query := strings.TrimSpace(c.PostForm("query"))
	if query == "" {
		h.page(c)
		return
	}

	reply := h.svc.Ask(c.Request.Context(), sessionID(c), query)
	c.HTML(http.StatusOK, "index.html", gin.H{
		"query":        query,
		"response":     MessageFor(reply),
		"chat_history": reply.History,
	})
}

// chatJSON runs one request cycle for API clients
func (h *chatHandler) chatJSON(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query must not be blank"})
		return
	}

	reply := h.svc.Ask(c.Request.Context(), sessionID(c), query)
	c.JSON(http.StatusOK, ChatResponse{
		Query:   query,
		Reply:   MessageFor(reply),
		Outcome: reply.Outcome,
		Cached:  reply.Cached,
		History: nonNil(reply.History),
	})
}

// history returns this session's turns
func (h *chatHandler) history(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID(c),
		"history":    nonNil(h.svc.History(sessionID(c))),
	})
}

// reset discards this session's conversation
func (h *chatHandler) reset(c *gin.Context) {
	h.svc.Reset(sessionID(c))
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

func nonNil(turns []types.Turn) []types.Turn {
	if turns == nil {
		return []types.Turn{}
	}
	return turns
}
