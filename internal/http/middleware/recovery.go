package middleware

import (
	"fmt"
	"net/http"

	"todo_api/internal/logger"

	"github.com/gin-gonic/gin"
)

// Recovery turns panics into a 500 with the API error shape.
// The panic value is only exposed when exposeDetails is set.
func Recovery(exposeDetails bool) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		logger.WithContext(c.Request.Context()).Error("panic recovered",
			"panic", recovered,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)

		body := gin.H{"error": "Internal server error"}
		if exposeDetails {
			body["details"] = fmt.Sprint(recovered)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, body)
	})
}
