// Package middleware 提供 HTTP 中间件
package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"storybook-api/internal/interfaces/http/dto"
	apperrors "storybook-api/pkg/errors"
	"storybook-api/pkg/logger"
)

// Recovery Panic 恢复中间件，返回 500 internal_error
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error(c.Request.Context(), "panic recovered",
					fmt.Errorf("%v", rec),
					"stack", string(debug.Stack()),
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				)
				dto.Abort(c, apperrors.New(apperrors.CodeInternalError, "internal server error"))
			}
		}()

		c.Next()
	}
}
