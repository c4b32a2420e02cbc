package provider

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoResults 表示上游成功返回但结果为空。
	ErrNoResults = errors.New("no results")
	// ErrMissingCredential 表示未配置上游 API key。
	ErrMissingCredential = errors.New("api key is not defined")
)

// HTTPStatusError 表示上游返回了非 2xx 的 HTTP 状态码。
// Message 取自响应体中的错误描述（TMDB 的 status_message / OMDB 的 Error），可能为空。
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Message    string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, msg)
}

// APIError 表示上游以 2xx 返回，但负载本身声明失败或无法解析（例如 OMDB 的 "Response":"False"）。
type APIError struct {
	Provider string
	Message  string
	Err      error
}

func (e *APIError) Error() string {
	if e == nil {
		return "api error"
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = "malformed response"
	}
	return fmt.Sprintf("%s: %s", e.Provider, msg)
}

func (e *APIError) Unwrap() error { return e.Err }

// Error 是 provider 调用阶段的可追溯错误。
type Error struct {
	Provider string // provider name（小写）
	Op       Op
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider=%s op=%s: %v", e.Provider, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsUpstream 判断 err 是否为“上游已应答但判定失败”（状态码/负载/空结果）。
// 返回 false 表示网络层失败（连接、DNS、ctx 取消等）。
func IsUpstream(err error) bool {
	if err == nil {
		return false
	}
	var se *HTTPStatusError
	var ae *APIError
	return errors.As(err, &se) || errors.As(err, &ae) || errors.Is(err, ErrNoResults) || errors.Is(err, ErrMissingCredential)
}

// Message 提取上游给出的错误描述（可能为空）。
func Message(err error) string {
	var se *HTTPStatusError
	if errors.As(err, &se) {
		return strings.TrimSpace(se.Message)
	}
	var ae *APIError
	if errors.As(err, &ae) {
		return strings.TrimSpace(ae.Message)
	}
	return ""
}
