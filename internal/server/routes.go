package server

import (
	"expvar"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// Handler 返回带完整中间件链的路由。未匹配的路径交给静态目录（存在时），否则 JSON 404。
func (s *Server) Handler() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(s.notFoundResponse)
	if static, ok := s.staticHandler(); ok {
		router.NotFound = static
	}
	router.MethodNotAllowed = http.HandlerFunc(s.methodNotAllowedResponse)

	router.HandlerFunc(http.MethodGet, "/healthz", s.healthcheckHandler)
	router.HandlerFunc(http.MethodGet, "/api/trending", s.trendingHandler)
	router.HandlerFunc(http.MethodGet, "/api/search", s.searchHandler)
	router.Handler(http.MethodGet, "/debug/vars", expvar.Handler())

	return s.recoverPanic(s.requestLog(s.metrics(s.rateLimit(s.enableCORS(router)))))
}
