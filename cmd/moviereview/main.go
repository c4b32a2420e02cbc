package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/John-Robertt/moviereview/internal/config"
	"github.com/John-Robertt/moviereview/internal/review"
	"github.com/John-Robertt/moviereview/internal/server"
	"github.com/John-Robertt/moviereview/internal/ui"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 || isHelp(args[0]) {
		printUsage()
		return
	}

	var code int
	switch args[0] {
	case "serve":
		code = serveCmd(args[1:])
	case "browse":
		code = browseCmd(args[1:])
	case "review":
		code = reviewCmd(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "未知命令：%q\n\n", args[0])
		printUsage()
		code = 2
	}
	if code != 0 {
		os.Exit(code)
	}
}

func serveCmd(args []string) int {
	if hasHelp(args) {
		printServeUsage()
		return 0
	}
	ca, err := parseCommonArgs(args, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "参数错误：%v\n\n", err)
		printServeUsage()
		return 2
	}
	if len(ca.Positional) > 0 {
		fmt.Fprintf(os.Stderr, "参数错误：serve 不接受位置参数 %q\n\n", ca.Positional)
		printServeUsage()
		return 2
	}

	eff, ok := loadConfig(ca)
	if !ok {
		return 1
	}
	logger := newLogger(os.Stderr, eff.LogLevel, eff.LogFormat)

	deps, err := wire(eff, logger)
	if err != nil {
		logger.Error("初始化失败", "error", err)
		return 1
	}
	if strings.TrimSpace(eff.TMDBAPIKey) == "" {
		logger.Warn("TMDB_API_KEY is not defined; /api/* will respond 500")
	}

	scfg := server.Config{
		Addr:           eff.Addr,
		StaticDir:      eff.StaticDir,
		TrustedOrigins: eff.TrustedOrigins,
	}
	scfg.Limiter.Enabled = eff.LimiterEnabled
	scfg.Limiter.RPS = eff.LimiterRPS
	scfg.Limiter.Burst = eff.LimiterBurst

	srv, err := server.New(scfg, deps.TMDB, logger)
	if err != nil {
		logger.Error("初始化服务失败", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Serve(ctx); err != nil {
		logger.Error("服务异常退出", "error", err)
		return 1
	}
	return 0
}

func browseCmd(args []string) int {
	if hasHelp(args) {
		printBrowseUsage()
		return 0
	}
	ca, err := parseCommonArgs(args, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "参数错误：%v\n\n", err)
		printBrowseUsage()
		return 2
	}
	if len(ca.Positional) > 1 {
		fmt.Fprintf(os.Stderr, "参数错误：重复的 query：%q\n\n", ca.Positional)
		printBrowseUsage()
		return 2
	}
	query := ""
	if len(ca.Positional) == 1 {
		query = ca.Positional[0]
	}

	eff, ok := loadConfig(ca)
	if !ok {
		return 1
	}
	logger := newLogger(os.Stderr, eff.LogLevel, eff.LogFormat)

	deps, err := wire(eff, logger)
	if err != nil {
		logger.Error("初始化失败", "error", err)
		return 1
	}

	progressW, _ := pickProgressWriter()
	view := newTextView(progressW)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := deps.Browse(ctx, view, query)

	if ca.HTML {
		var buf bytes.Buffer
		if err := view.Render(&buf); err != nil {
			logger.Error("渲染失败", "error", err)
			return 1
		}
		_, _ = os.Stdout.Write(buf.Bytes())
		n, err := ui.CountCards(bytes.NewReader(buf.Bytes()))
		if err == nil {
			fmt.Fprintf(os.Stderr, "完成：cards=%d\n", n)
		}
	} else {
		printState(os.Stdout, view.State())
	}

	if runErr != nil {
		return 1
	}
	return 0
}

func reviewCmd(args []string) int {
	if hasHelp(args) {
		printReviewUsage()
		return 0
	}
	ca, err := parseCommonArgs(args, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "参数错误：%v\n\n", err)
		printReviewUsage()
		return 2
	}
	if len(ca.Positional) < 2 {
		fmt.Fprintf(os.Stderr, "参数错误：需要 <movie-id> 与评论内容\n\n")
		printReviewUsage()
		return 2
	}
	movieID := ca.Positional[0]
	text := strings.Join(ca.Positional[1:], " ")

	eff, ok := loadConfig(ca)
	if !ok {
		return 1
	}
	logger := newLogger(os.Stderr, eff.LogLevel, eff.LogFormat)

	deps, err := wire(eff, logger)
	if err != nil {
		logger.Error("初始化失败", "error", err)
		return 1
	}

	progressW, _ := pickProgressWriter()
	view := newTextView(progressW)

	list, err := deps.Review(view, movieID, text)
	switch {
	case errors.Is(err, review.ErrEmptyReview):
		fmt.Fprintln(os.Stderr, "评论内容为空，未保存")
		return 1
	case err != nil:
		logger.Error("保存评论失败", "movie_id", movieID, "error", err)
		return 1
	}

	for _, r := range list {
		fmt.Fprintf(os.Stdout, "• %s\n", r)
	}
	return 0
}

func loadConfig(ca commonArgs) (config.EffectiveConfig, bool) {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取当前目录失败：%v\n", err)
		return config.EffectiveConfig{}, false
	}
	eff, err := config.LoadEffective(cwd, config.CLIArgs{
		ConfigPath: ca.ConfigPath,
		Addr:       ca.Addr,
		AddrSet:    ca.AddrSet,
		Variant:    ca.Variant,
		VariantSet: ca.VariantSet,
	}, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", config.Code(err), err)
		return config.EffectiveConfig{}, false
	}
	return eff, true
}

func isHelp(s string) bool {
	return s == "-h" || s == "--help" || s == "help"
}

func hasHelp(args []string) bool {
	for _, a := range args {
		if isHelp(a) {
			return true
		}
	}
	return false
}

func printUsage() {
	fmt.Fprint(os.Stdout, `用法：
  moviereview serve  [--config file] [--addr :3000]
  moviereview browse [--config file] [--variant proxy|dual] [--html] [query]
  moviereview review [--config file] [--variant proxy|dual] <movie-id> <text...>

命令：
  serve   运行电影元数据代理服务
  browse  加载热门或按标题搜索，并输出电影卡片
  review  为某部电影追加一条评论并输出该电影的全部评论

使用 "moviereview <命令> --help" 查看详细说明。
`)
}

func printServeUsage() {
	fmt.Fprint(os.Stdout, `用法：
  moviereview serve [--config file] [--addr :3000]

参数：
  --config    配置文件（默认 ./moviereview.yaml，可选）
  --addr      监听地址（覆盖环境变量 MOVIEREVIEW_ADDR 与配置文件）
  -h, --help  显示帮助

环境变量：
  TMDB_API_KEY  上游凭据（必需；缺失时 /api/* 返回 500）
`)
}

func printBrowseUsage() {
	fmt.Fprint(os.Stdout, `用法：
  moviereview browse [--config file] [--variant proxy|dual] [--html] [query]

参数：
  --variant   页面版本：proxy（经由代理服务）|dual（直连 TMDB + OMDB，默认）
  --html      输出渲染后的 HTML 页面（默认输出文本卡片）
  query       搜索标题；省略时加载本周热门
  -h, --help  显示帮助
`)
}

func printReviewUsage() {
	fmt.Fprint(os.Stdout, `用法：
  moviereview review [--config file] [--variant proxy|dual] <movie-id> <text...>

参数：
  --variant   评论记录布局：proxy（reviews-<id>）|dual（reviews_<id>，默认）
  -h, --help  显示帮助

评论保存在 store.dir（默认 .moviereview/storage）下，跨次运行保留。
`)
}
