// Package errors 提供统一的错误定义
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"unicode/utf8"
)

// ErrorCode 错误码类型，取值即对外暴露的错误分类
type ErrorCode string

// 预定义错误码
const (
	// 请求错误
	CodeInvalidRequest ErrorCode = "invalid_request"

	// 配置错误：在发起调用前即可判定
	CodeUnknownProvider ErrorCode = "unknown_provider"

	// 生成错误
	CodeTimeout         ErrorCode = "timeout"
	CodeEmptyStory      ErrorCode = "empty_story"
	CodeTransportFailed ErrorCode = "transport_failed"
	CodePromptFailed    ErrorCode = "prompt_failed"

	// 透传代理错误
	CodeProxyFailed ErrorCode = "proxy_failed"

	// 限流
	CodeRateLimited ErrorCode = "rate_limited"

	// 兜底
	CodeInternalError ErrorCode = "internal_error"
)

// DetailLimit 对外 detail 字段的最大字符数
const DetailLimit = 300

// ProviderFailed 返回 "<provider>_failed" 错误码
func ProviderFailed(provider string) ErrorCode {
	return ErrorCode(provider + "_failed")
}

// AppError 应用错误
type AppError struct {
	Code       ErrorCode `json:"error"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Detail, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Detail)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// PublicDetail 返回可以发送给客户端的截断 detail
func (e *AppError) PublicDetail() string {
	return Truncate(e.Detail, DetailLimit)
}

// New 创建新的应用错误
func New(code ErrorCode, detail string) *AppError {
	return &AppError{
		Code:       code,
		Detail:     detail,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, detail string) *AppError {
	return &AppError{
		Code:       code,
		Detail:     detail,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// codeToHTTPStatus 错误码转 HTTP 状态码
// 生成链路上只有超时返回 504，其余分类一律视为上游失败 502
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeInvalidRequest:
		return http.StatusBadRequest
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeInternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, CodeInternalError, "internal error")
}

// Truncate 按字符（rune）截断字符串
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i]
		}
		n++
	}
	return s
}
