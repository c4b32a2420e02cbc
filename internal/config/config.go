package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/John-Robertt/moviereview/internal/provider/omdb"
	"github.com/John-Robertt/moviereview/internal/provider/proxyapi"
	"github.com/John-Robertt/moviereview/internal/provider/tmdb"
)

const (
	// ErrCodeNotFound 表示 --config 指定的文件不存在。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
)

// FileName 是默认在 cwd 下查找的配置文件名（YAML；JSON 也可被解析）。
const FileName = "moviereview.yaml"

const (
	VariantProxy = "proxy"
	VariantDual  = "dual"
)

const (
	DefaultAddr            = ":3000"
	DefaultStaticDir       = "public"
	DefaultStoreDir        = ".moviereview/storage"
	DefaultVariant         = VariantDual
	DefaultSearchProvider  = "tmdb"
	DefaultDebounce        = 300 * time.Millisecond
	DefaultToast           = 3 * time.Second
	DefaultSuggestionLimit = 5
	DefaultLimiterRPS      = 2
	DefaultLimiterBurst    = 4
)

// 环境变量：凭据只从环境/配置文件读取，不暴露 CLI 参数。
const (
	EnvTMDBKey = "TMDB_API_KEY"
	EnvOMDBKey = "OMDB_API_KEY"
	EnvAddr    = "MOVIEREVIEW_ADDR"
)

// CLIArgs 只包含 CLI 暴露的入口，并保留“是否显式指定”的信息。
type CLIArgs struct {
	ConfigPath string

	Addr    string
	AddrSet bool

	Variant    string
	VariantSet bool
}

// FileConfig 对应 moviereview.yaml 的解析结构。
type FileConfig struct {
	Addr      string        `yaml:"addr"`
	StaticDir string        `yaml:"static_dir"`
	Proxy     *ProxyConfig  `yaml:"proxy"`
	TMDB      TMDBConfig    `yaml:"tmdb"`
	OMDB      OMDBConfig    `yaml:"omdb"`
	CORS      CORSConfig    `yaml:"cors"`
	Limiter   LimiterConfig `yaml:"limiter"`
	Store     StoreConfig   `yaml:"store"`
	Log       LogConfig     `yaml:"log"`
	UI        UIConfig      `yaml:"ui"`
}

type ProxyConfig struct {
	URL string `yaml:"url"`
}

type TMDBConfig struct {
	BaseURL      string `yaml:"base_url"`
	ImageBaseURL string `yaml:"image_base_url"`
	APIKey       string `yaml:"api_key"`
}

type OMDBConfig struct {
	BaseURL      string `yaml:"base_url"`
	APIKey       string `yaml:"api_key"`
	ListingQuery string `yaml:"listing_query"`
}

type CORSConfig struct {
	TrustedOrigins []string `yaml:"trusted_origins"`
}

type LimiterConfig struct {
	Enabled bool    `yaml:"enabled"`
	RPS     float64 `yaml:"rps"`
	Burst   int     `yaml:"burst"`
}

type StoreConfig struct {
	Dir string `yaml:"dir"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type UIConfig struct {
	APIBaseURL      string `yaml:"api_base_url"`
	Variant         string `yaml:"variant"`
	SearchProvider  string `yaml:"search_provider"`
	DebounceMS      int    `yaml:"debounce_ms"`
	ToastMS         int    `yaml:"toast_ms"`
	SuggestionLimit int    `yaml:"suggestion_limit"`
	LatestWins      *bool  `yaml:"latest_wins"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	// ConfigFile 是实际读取的配置文件；未读取任何文件时为空。
	ConfigFile string

	Addr      string
	StaticDir string
	ProxyURL  string

	TMDBBaseURL      string
	TMDBImageBaseURL string
	TMDBAPIKey       string

	OMDBBaseURL      string
	OMDBAPIKey       string
	OMDBListingQuery string

	TrustedOrigins []string

	LimiterEnabled bool
	LimiterRPS     float64
	LimiterBurst   int

	StoreDir string

	LogLevel  string
	LogFormat string

	APIBaseURL      string
	Variant         string
	SearchProvider  string
	Debounce        time.Duration
	Toast           time.Duration
	SuggestionLimit int
	LatestWins      bool
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 发现并读取配置文件，然后与环境变量、CLI 参数合并为最终配置。
//
// 发现规则：
// 1) CLI 提供 --config：必须存在
// 2) 否则尝试 <cwd>/moviereview.yaml（可选，不存在按默认值运行）
//
// 覆盖优先级：CLI > 环境变量 > 配置文件 > 默认值。
// getenv 为 nil 时使用 os.Getenv。
func LoadEffective(cwd string, cli CLIArgs, getenv func(string) string) (EffectiveConfig, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	var (
		cfgPath string
		fc      FileConfig
		exists  bool
	)
	if strings.TrimSpace(cli.ConfigPath) != "" {
		cfgPath = absCleanFrom(cwdAbs, cli.ConfigPath)
		fc, exists, err = readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
		if !exists {
			return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
		}
	} else {
		cfgPath = filepath.Join(cwdAbs, FileName)
		fc, exists, err = readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
	}

	eff, err := merge(cwdAbs, cli, fc, getenv)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	if exists {
		eff.ConfigFile = cfgPath
	}
	return eff, nil
}

func merge(cwdAbs string, cli CLIArgs, fc FileConfig, getenv func(string) string) (EffectiveConfig, error) {
	// addr：CLI > env > config > 默认
	addr := firstNonEmpty(fc.Addr, DefaultAddr)
	if v := strings.TrimSpace(getenv(EnvAddr)); v != "" {
		addr = v
	}
	if cli.AddrSet {
		addr = strings.TrimSpace(cli.Addr)
	}
	if addr == "" {
		return EffectiveConfig{}, fmt.Errorf("addr 不能为空")
	}

	variant := firstNonEmpty(fc.UI.Variant, DefaultVariant)
	if cli.VariantSet {
		variant = strings.TrimSpace(cli.Variant)
	}
	if err := ValidateVariant(variant); err != nil {
		return EffectiveConfig{}, err
	}

	searchProvider := strings.ToLower(firstNonEmpty(fc.UI.SearchProvider, DefaultSearchProvider))
	if searchProvider != "tmdb" && searchProvider != "omdb" {
		return EffectiveConfig{}, fmt.Errorf("ui.search_provider 只能是 tmdb 或 omdb，实际是 %q", searchProvider)
	}

	proxyURL := ""
	if fc.Proxy != nil {
		proxyURL = strings.TrimSpace(fc.Proxy.URL)
	}
	if proxyURL != "" {
		if err := validateHTTPURL("proxy.url", proxyURL); err != nil {
			return EffectiveConfig{}, err
		}
	}

	eff := EffectiveConfig{
		Addr:      addr,
		StaticDir: absCleanFrom(cwdAbs, firstNonEmpty(fc.StaticDir, DefaultStaticDir)),
		ProxyURL:  proxyURL,

		TMDBBaseURL:      firstNonEmpty(fc.TMDB.BaseURL, tmdb.DefaultBaseURL),
		TMDBImageBaseURL: firstNonEmpty(fc.TMDB.ImageBaseURL, tmdb.DefaultImageBaseURL),
		TMDBAPIKey:       firstNonEmpty(getenv(EnvTMDBKey), fc.TMDB.APIKey),

		OMDBBaseURL:      firstNonEmpty(fc.OMDB.BaseURL, omdb.DefaultBaseURL),
		OMDBAPIKey:       firstNonEmpty(getenv(EnvOMDBKey), fc.OMDB.APIKey),
		OMDBListingQuery: firstNonEmpty(fc.OMDB.ListingQuery, omdb.DefaultListingQuery),

		TrustedOrigins: normOrigins(fc.CORS.TrustedOrigins),

		LimiterEnabled: fc.Limiter.Enabled,
		LimiterRPS:     fc.Limiter.RPS,
		LimiterBurst:   fc.Limiter.Burst,

		StoreDir: absCleanFrom(cwdAbs, firstNonEmpty(fc.Store.Dir, DefaultStoreDir)),

		LogLevel:  strings.ToLower(firstNonEmpty(fc.Log.Level, "info")),
		LogFormat: strings.ToLower(firstNonEmpty(fc.Log.Format, "text")),

		APIBaseURL:      firstNonEmpty(fc.UI.APIBaseURL, proxyapi.DefaultBaseURL),
		Variant:         variant,
		SearchProvider:  searchProvider,
		Debounce:        DefaultDebounce,
		Toast:           DefaultToast,
		SuggestionLimit: DefaultSuggestionLimit,
		LatestWins:      true,
	}

	for name, u := range map[string]string{
		"tmdb.base_url":       eff.TMDBBaseURL,
		"tmdb.image_base_url": eff.TMDBImageBaseURL,
		"omdb.base_url":       eff.OMDBBaseURL,
		"ui.api_base_url":     eff.APIBaseURL,
	} {
		if err := validateHTTPURL(name, u); err != nil {
			return EffectiveConfig{}, err
		}
	}

	if eff.LimiterRPS <= 0 {
		eff.LimiterRPS = DefaultLimiterRPS
	}
	if eff.LimiterBurst <= 0 {
		eff.LimiterBurst = DefaultLimiterBurst
	}

	switch eff.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return EffectiveConfig{}, fmt.Errorf("log.level 只能是 debug/info/warn/error，实际是 %q", eff.LogLevel)
	}
	switch eff.LogFormat {
	case "text", "json":
	default:
		return EffectiveConfig{}, fmt.Errorf("log.format 只能是 text 或 json，实际是 %q", eff.LogFormat)
	}

	if fc.UI.DebounceMS < 0 || fc.UI.ToastMS < 0 || fc.UI.SuggestionLimit < 0 {
		return EffectiveConfig{}, fmt.Errorf("ui.debounce_ms/toast_ms/suggestion_limit 不能为负数")
	}
	if fc.UI.DebounceMS > 0 {
		eff.Debounce = time.Duration(fc.UI.DebounceMS) * time.Millisecond
	}
	if fc.UI.ToastMS > 0 {
		eff.Toast = time.Duration(fc.UI.ToastMS) * time.Millisecond
	}
	if fc.UI.SuggestionLimit > 0 {
		eff.SuggestionLimit = fc.UI.SuggestionLimit
	}
	if fc.UI.LatestWins != nil {
		eff.LatestWins = *fc.UI.LatestWins
	}

	return eff, nil
}

// ValidateVariant 校验展示层版本名。
func ValidateVariant(v string) error {
	switch v {
	case VariantProxy, VariantDual:
		return nil
	case "":
		return fmt.Errorf("variant 不能为空")
	default:
		return fmt.Errorf("variant 只能是 proxy 或 dual，实际是 %q", v)
	}
}

func validateHTTPURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s 无效：%q", name, raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s 必须是 http/https：%q", name, raw)
	}
	return nil
}

func normOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, o := range in {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
func absCleanFrom(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = filepath.Clean(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析配置文件（YAML 是 JSON 的超集，两种写法都接受）。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
