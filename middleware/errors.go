package middleware

import (
	"lablinc/response"
	"lablinc/services/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler logs errors attached by handlers and replies with a 500 when
// the handler did not write a response itself.
func ErrorHandler(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		for _, e := range c.Errors {
			log.Error("%s %s: %v", c.Request.Method, c.FullPath(), e.Err)
		}
		if !c.Writer.Written() {
			response.FromError(c, c.Errors.Last().Err)
		}
	}
}
