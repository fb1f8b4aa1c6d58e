package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/fairwheel/fairwheel/internal/infrastructure/monitoring/logging"
	apperrors "github.com/fairwheel/fairwheel/pkg/errors"
)

// Recovery returns middleware that converts a handler panic into a 500
// response with the standard error envelope instead of tearing down the
// connection. The panic value and stack are logged for diagnosis.
func Recovery(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("http handler panic",
					logging.Any("panic", r),
					logging.String("path", c.Request.URL.Path),
					logging.String("request_id", GetRequestID(c)),
					logging.String("stack", string(debug.Stack())),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"code":    string(apperrors.CodeInternal),
					"message": apperrors.DefaultMessageForCode(apperrors.CodeInternal),
				})
			}
		}()
		c.Next()
	}
}
