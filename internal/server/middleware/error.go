package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/okairos/llm-bridge-api/pkg/api"
	"go.uber.org/zap"
)

// ErrorHandler converts errors attached by handlers into RFC 9457 problem
// documents. Classified provider errors map to their HTTP status; anything
// else becomes a 500.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		problem := api.AsProblem(err)

		if problem.Log != nil {
			logger.Error("Request failed",
				zap.String("path", c.Request.URL.Path),
				zap.Error(problem.Log),
			)
		}

		// RFC 9457 dictates the document is the response root
		c.JSON(problem.Status, problem)
		c.Abort()
	}
}
