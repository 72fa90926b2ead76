package ws

import (
	"net/http"

	"todo_api/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// HandleWS upgrades the request and subscribes it to todo changes.
// allowedOrigins follows the CORS allowlist; "*" accepts any origin.
func HandleWS(hub *Hub, allowedOrigins []string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(r.Header.Get("Origin"), allowedOrigins)
		},
	}

	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already replied to the client
			logger.WithContext(c.Request.Context()).Warn("ws upgrade failed", "error", err)
			return
		}

		client := NewClient(hub, conn)
		go client.Run()
	}
}

func originAllowed(origin string, allowed []string) bool {
	// same-origin and non-browser clients send no Origin
	if origin == "" {
		return true
	}
	for _, o := range allowed {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}
