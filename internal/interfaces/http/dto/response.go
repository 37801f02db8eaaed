// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"github.com/gin-gonic/gin"

	apperrors "storybook-api/pkg/errors"
)

// ErrorResponse 错误响应结构
type ErrorResponse struct {
	Error   string `json:"error"`
	Detail  string `json:"detail,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse 由应用错误构建响应体，detail 已截断
func NewErrorResponse(err *apperrors.AppError, traceID string) ErrorResponse {
	return ErrorResponse{
		Error:   string(err.Code),
		Detail:  err.PublicDetail(),
		TraceID: traceID,
	}
}

// Fail 按错误分类返回状态码与错误体
func Fail(c *gin.Context, err error) {
	appErr := apperrors.AsAppError(err)
	c.JSON(appErr.HTTPStatus, NewErrorResponse(appErr, c.GetString("trace_id")))
}

// Abort 同 Fail，并中止后续处理器
func Abort(c *gin.Context, err error) {
	appErr := apperrors.AsAppError(err)
	c.AbortWithStatusJSON(appErr.HTTPStatus, NewErrorResponse(appErr, c.GetString("trace_id")))
}

// BadRequest 返回 400 invalid_request
func BadRequest(c *gin.Context, detail string) {
	Fail(c, apperrors.New(apperrors.CodeInvalidRequest, detail))
}
