package api

import (
	"embed"
	"html/template"
	"time"

	"searchbot/chat"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var templateFS embed.FS

// Dependencies are the services the HTTP layer needs
type Dependencies struct {
	Chat      *chat.Service
	Logger    *zerolog.Logger
	RateLimit RateLimit
}

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(deps Dependencies) *gin.Engine {
	log := zerolog.Nop()
	if deps.Logger != nil {
		log = deps.Logger.With().Str("component", "http").Logger()
	}

	r := gin.New()
	r.Use(gin.Recovery(), accessLog(log), sessionMiddleware())
	r.SetHTMLTemplate(template.Must(template.New("").ParseFS(templateFS, "templates/*.html")))

	// Register resource routers
	RegisterChatRoutes(r, deps.Chat, rateLimitMiddleware(deps.RateLimit))
	RegisterHealthRoutes(r, deps.Chat)
	return r
}

func accessLog(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("Request handled")
	}
}
