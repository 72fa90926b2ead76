package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

const serviceName = "todo-api"

// Status returns service metadata and todo statistics
func (h *Handler) Status(c *gin.Context) {
	stats, err := h.Todos.Stats(c.Request.Context())
	if err != nil {
		h.respondError(c, "status", err)
		return
	}

	clients := 0
	if h.cfg.ClientCount != nil {
		clients = h.cfg.ClientCount()
	}

	c.JSON(http.StatusOK, gin.H{
		"service":     serviceName,
		"version":     h.cfg.Version,
		"environment": h.cfg.Environment,
		"goVersion":   runtime.Version(),
		"startedAt":   h.startTime.UTC().Format(time.RFC3339),
		"uptime":      uptimeSeconds(h.startTime),
		"wsClients":   clients,
		"todos":       stats,
	})
}
