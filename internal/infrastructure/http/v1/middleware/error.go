package middleware

import (
	"context"
	"errors"
	"maps"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yemzchef-ui/superchefs/internal/core/apperror"
	"github.com/yemzchef-ui/superchefs/pkg/logger"
)

// ErrorHandler renders the last error registered by a handler as
// {code, message, details}. Causes are logged, never sent; 5xx bodies carry
// the request id so clients can quote it.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		ctx := c.Request.Context()

		appErr, ok := apperror.AsAppError(err)
		switch {
		case ok:
		case errors.Is(err, context.DeadlineExceeded):
			appErr = apperror.NewTimeout(c.FullPath(), err)
		default:
			appErr = apperror.NewInternal(err)
		}

		if appErr.Err != nil {
			logger.Error(ctx, "request error",
				"code", appErr.Code,
				"message", appErr.Message,
				"cause", appErr.Err,
			)
		}

		details := appErr.Details
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			details = make(map[string]any, len(appErr.Details)+1)
			maps.Copy(details, appErr.Details)
			details["request_id"] = c.GetString("request_id")
		}

		c.JSON(appErr.HTTPStatus, gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
			"details": details,
		})
	}
}
