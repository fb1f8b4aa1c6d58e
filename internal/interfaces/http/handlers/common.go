// Package handlers contains the gin HTTP handlers for the public API.
package handlers

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/fairwheel/fairwheel/pkg/errors"
)

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// respondError writes the standard error envelope for err, mapping the
// application error code to an HTTP status. Server-side errors are masked
// so internals never leak to clients.
func respondError(c *gin.Context, err error) {
	code := apperrors.GetCode(err)
	status := apperrors.HTTPStatusForCode(code)

	resp := ErrorResponse{Code: string(code)}
	if apperrors.IsServerError(code) {
		resp.Message = apperrors.DefaultMessageForCode(code)
	} else {
		resp.Message = err.Error()
		if appErr, ok := apperrors.As(err); ok {
			resp.Message = appErr.Message
			resp.Detail = appErr.Detail
		}
	}

	c.AbortWithStatusJSON(status, resp)
}
