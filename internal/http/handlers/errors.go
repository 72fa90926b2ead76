package handlers

import (
	"errors"
	"net/http"

	"todo_api/internal/domain"
	"todo_api/internal/logger"

	"github.com/gin-gonic/gin"
)

const (
	msgTodoNotFound   = "Todo not found"
	msgInvalidJSON    = "Invalid JSON body"
	msgInternalServer = "Internal server error"
)

// respondError maps service errors to status codes and the {"error": ...} body
func (h *Handler) respondError(c *gin.Context, op string, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	case errors.Is(err, domain.ErrTodoNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msgTodoNotFound})
	default:
		logger.WithContext(c.Request.Context()).Error("todo request failed", "op", op, "error", err)
		body := gin.H{"error": msgInternalServer}
		if h.cfg.ExposeErrors {
			body["details"] = err.Error()
		}
		c.JSON(http.StatusInternalServerError, body)
	}
}
