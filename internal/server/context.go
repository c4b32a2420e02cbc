package server

import (
	"context"
	"log/slog"
	"net/http"
)

type contextKey string

const loggerContextKey = contextKey("logger")

// contextSetLogger 把带 request_id 的 logger 放进 request context。
func (s *Server) contextSetLogger(r *http.Request, l *slog.Logger) *http.Request {
	ctx := context.WithValue(r.Context(), loggerContextKey, l)
	return r.WithContext(ctx)
}

// contextGetLogger 取出请求级 logger；没有时回退到服务级 logger。
func (s *Server) contextGetLogger(r *http.Request) *slog.Logger {
	l, ok := r.Context().Value(loggerContextKey).(*slog.Logger)
	if !ok || l == nil {
		return s.logger
	}
	return l
}
