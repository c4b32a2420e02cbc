// Package server 实现电影元数据代理服务：把 trending / search 请求带上固定凭据转发给上游，
// 原样返回上游 JSON，失败时返回通用错误并在服务端记录原因。
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"
)

// Upstream 是代理转发的上游能力（由 tmdb.Provider 实现）。
type Upstream interface {
	RawTrending(ctx context.Context) ([]byte, error)
	RawSearch(ctx context.Context, query string) ([]byte, error)
}

// Config 是代理服务自身的配置（由 config.EffectiveConfig 映射而来）。
type Config struct {
	Addr      string
	StaticDir string

	// TrustedOrigins 为空时 CORS 放行任意来源（Access-Control-Allow-Origin: *）。
	TrustedOrigins []string

	Limiter struct {
		Enabled bool
		RPS     float64
		Burst   int
	}

	// ShutdownTimeout 为 0 时使用 5s。
	ShutdownTimeout time.Duration
}

type Server struct {
	cfg      Config
	upstream Upstream
	logger   *slog.Logger
}

func New(cfg Config, upstream Upstream, logger *slog.Logger) (*Server, error) {
	if upstream == nil {
		return nil, errors.New("upstream 不能为空")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	return &Server{cfg: cfg, upstream: upstream, logger: logger}, nil
}

// Serve 监听 cfg.Addr 直到 ctx 结束，然后在 ShutdownTimeout 内优雅关闭。
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		IdleTimeout:       time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}

	shutdownError := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info("shutting down server", "addr", s.cfg.Addr)

		sctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		shutdownError <- srv.Shutdown(sctx)
	}()

	s.logger.Info("starting server", "addr", s.cfg.Addr, "static_dir", s.cfg.StaticDir)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if err := <-shutdownError; err != nil {
		return err
	}

	s.logger.Info("stopped server", "addr", s.cfg.Addr)
	return nil
}

func (s *Server) staticHandler() (http.Handler, bool) {
	if s.cfg.StaticDir == "" {
		return nil, false
	}
	fi, err := os.Stat(s.cfg.StaticDir)
	if err != nil || !fi.IsDir() {
		return nil, false
	}
	return http.FileServer(http.Dir(s.cfg.StaticDir)), true
}
