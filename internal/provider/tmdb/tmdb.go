package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/John-Robertt/moviereview/internal/domain"
	providerx "github.com/John-Robertt/moviereview/internal/provider"
)

const (
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p/w500"
)

// Provider 实现 TMDB 的本周热门与标题搜索。
//
// 约束：
// - API key 以 query 参数 api_key 传递
// - Raw* 方法返回上游原始 JSON（代理服务原样转发）；Listing/Search 在其上做解析
// - IDPrefix 用于区分 ID 命名空间（双 provider 页面使用 "tmdb_"，代理版页面为空）
type Provider struct {
	BaseURL      string
	ImageBaseURL string
	APIKey       string
	IDPrefix     string

	HTTP *http.Client
}

var _ providerx.Provider = Provider{}

func (Provider) Name() string { return "tmdb" }

func (p Provider) baseURL() string {
	u := strings.TrimSpace(p.BaseURL)
	if u == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(u, "/")
}

func (p Provider) client() *http.Client {
	if p.HTTP == nil {
		return http.DefaultClient
	}
	return p.HTTP
}

// TrendingURL 返回本周热门接口地址（含 api_key）。
func (p Provider) TrendingURL() string {
	return p.baseURL() + "/trending/movie/week?api_key=" + url.QueryEscape(p.APIKey)
}

// SearchURL 返回标题搜索接口地址（含 api_key 与 query）。
func (p Provider) SearchURL(query string) string {
	return p.baseURL() + "/search/movie?api_key=" + url.QueryEscape(p.APIKey) + "&query=" + url.QueryEscape(query)
}

// RawTrending 拉取本周热门的原始负载。
func (p Provider) RawTrending(ctx context.Context) ([]byte, error) {
	if strings.TrimSpace(p.APIKey) == "" {
		return nil, providerx.ErrMissingCredential
	}
	return fetch(ctx, p.client(), p.TrendingURL())
}

// RawSearch 拉取标题搜索的原始负载。
func (p Provider) RawSearch(ctx context.Context, query string) ([]byte, error) {
	if strings.TrimSpace(p.APIKey) == "" {
		return nil, providerx.ErrMissingCredential
	}
	return fetch(ctx, p.client(), p.SearchURL(query))
}

func (p Provider) Listing(ctx context.Context) ([]domain.Movie, error) {
	b, err := p.RawTrending(ctx)
	if err != nil {
		return nil, err
	}
	return ParseResults(b, p.Name(), p.ImageBaseURL, p.IDPrefix)
}

func (p Provider) Search(ctx context.Context, query string) ([]domain.Movie, error) {
	b, err := p.RawSearch(ctx, query)
	if err != nil {
		return nil, err
	}
	return ParseResults(b, p.Name(), p.ImageBaseURL, p.IDPrefix)
}

type payload struct {
	Results       *[]result `json:"results"`
	StatusMessage string    `json:"status_message"`
}

type result struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
}

// ParseResults 把 TMDB 列表负载（trending / search 同构）解析为 domain.Movie。
//
// results 字段缺失视为失败（APIError，带 status_message）；results 为空数组返回空切片。
// 代理版页面拿到的是代理转发的同一份负载，因此也复用该函数。
func ParseResults(b []byte, providerName, imageBaseURL, idPrefix string) ([]domain.Movie, error) {
	var pl payload
	if err := json.Unmarshal(b, &pl); err != nil {
		return nil, &providerx.APIError{Provider: providerName, Err: err}
	}
	if pl.Results == nil {
		return nil, &providerx.APIError{Provider: providerName, Message: pl.StatusMessage}
	}

	imageBaseURL = strings.TrimRight(strings.TrimSpace(imageBaseURL), "/")
	if imageBaseURL == "" {
		imageBaseURL = DefaultImageBaseURL
	}

	movies := make([]domain.Movie, 0, len(*pl.Results))
	for _, r := range *pl.Results {
		poster := ""
		if strings.TrimSpace(r.PosterPath) != "" {
			poster = imageBaseURL + r.PosterPath
		}
		movies = append(movies, domain.Movie{
			ID:          idPrefix + strconv.FormatInt(r.ID, 10),
			Title:       r.Title,
			ReleaseDate: r.ReleaseDate,
			Year:        domain.YearOf(r.ReleaseDate),
			PosterURL:   poster,
			Rating:      r.VoteAverage,
			HasRating:   true,
			Provider:    providerName,
		})
	}
	return movies, nil
}

func fetch(ctx context.Context, c *http.Client, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Do(req)
	if err != nil {
		var ue *url.Error
		if errors.As(err, &ue) {
			ue.URL = redact(ue.URL)
		}
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &providerx.HTTPStatusError{URL: redact(u), StatusCode: resp.StatusCode, Message: statusMessage(b)}
	}
	return b, nil
}

func statusMessage(b []byte) string {
	var pl payload
	if err := json.Unmarshal(b, &pl); err != nil {
		return ""
	}
	return pl.StatusMessage
}

// redact 去掉 URL 中的 api_key，避免凭据出现在日志里。
func redact(u string) string {
	parsed, err := url.Parse(u)
	if err != nil {
		return u
	}
	q := parsed.Query()
	if q.Has("api_key") {
		q.Set("api_key", "REDACTED")
		parsed.RawQuery = q.Encode()
	}
	return parsed.String()
}

