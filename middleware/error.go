package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/seo-optimizer/seoforge/logging"
)

// ErrorHandler middleware recovers from any panics and handles errors
func ErrorHandler(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error("Panic recovered",
					logging.Any("error", err),
					logging.String("path", c.Request.URL.Path),
					logging.String("method", c.Request.Method),
					logging.String("request_id", c.GetString(RequestIDKey)),
					logging.String("stack", string(debug.Stack())),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error":   "An unexpected error occurred",
				})
			}
		}()

		c.Next()
	}
}
