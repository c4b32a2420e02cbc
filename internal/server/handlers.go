package server

import (
	"errors"
	"net/http"

	"github.com/John-Robertt/moviereview/internal/provider"
)

func (s *Server) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.writeJSON(w, http.StatusOK, envelope{"status": "available"}, nil); err != nil {
		s.serverErrorResponse(w, r, err)
	}
}

// trendingHandler 转发上游“本周热门”。失败一律返回通用 500，原因只写日志。
func (s *Server) trendingHandler(w http.ResponseWriter, r *http.Request) {
	logger := s.contextGetLogger(r)

	logger.Info("fetching trending movies")
	body, err := s.upstream.RawTrending(r.Context())
	if err != nil {
		logUpstreamFailure(logger, "error fetching trending movies", err)
		upstreamFailures.Add("trending", 1)
		s.errorResponse(w, r, http.StatusInternalServerError, "Failed to fetch trending movies")
		return
	}
	logger.Info("trending movies fetched", "bytes", len(body))
	s.writeRaw(w, r, body)
}

// searchHandler 只做存在性检查：query 缺失或为空直接 400，不访问上游。
func (s *Server) searchHandler(w http.ResponseWriter, r *http.Request) {
	logger := s.contextGetLogger(r)

	query := r.URL.Query().Get("query")
	if query == "" {
		s.errorResponse(w, r, http.StatusBadRequest, "Query parameter is required")
		return
	}

	logger.Info("searching movies", "query", query)
	body, err := s.upstream.RawSearch(r.Context(), query)
	if err != nil {
		logUpstreamFailure(logger, "error searching movies", err)
		upstreamFailures.Add("search", 1)
		s.errorResponse(w, r, http.StatusInternalServerError, "Failed to search movies")
		return
	}
	logger.Info("movies searched", "query", query, "bytes", len(body))
	s.writeRaw(w, r, body)
}

func logUpstreamFailure(logger interface {
	Error(msg string, args ...any)
}, msg string, err error) {
	args := []any{"error", err}
	if errors.Is(err, provider.ErrMissingCredential) {
		args = append(args, "cause", "TMDB_API_KEY is not defined")
	}
	var se *provider.HTTPStatusError
	if errors.As(err, &se) {
		args = append(args, "status", se.StatusCode, "upstream_message", se.Message)
	}
	logger.Error(msg, args...)
}
