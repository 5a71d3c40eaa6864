package shiftapi

import (
	"context"
	"errors"
	"net/http"
)

// APIError 是 API 返回的业务错误或者非 200 的响应
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return http.StatusText(e.StatusCode)
	}
	return e.Message
}

// IsUnauthenticated 判断错误是否是因为登录失效
func IsUnauthenticated(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized || apiErr.Message == "Not logged in" || apiErr.Message == "Invalid token"
	}
	return false
}

// ErrorMessage 把任意错误转换成可以直接展示给用户的文本
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out, please try again"
	case errors.Is(err, context.Canceled):
		return "The request was cancelled"
	default:
		if msg := err.Error(); msg != "" {
			return msg
		}
		return "Something went wrong"
	}
}
