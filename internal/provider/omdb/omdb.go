package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/John-Robertt/moviereview/internal/domain"
	providerx "github.com/John-Robertt/moviereview/internal/provider"
)

const (
	DefaultBaseURL = "http://www.omdbapi.com/"
	// DefaultListingQuery 是“通用列表”使用的关键字（OMDB 没有热门榜）。
	DefaultListingQuery = "movie"
)

// Provider 实现 OMDB 的关键字搜索、通用列表与单片详情。
//
// OMDB 无论成功失败几乎都返回 200，成败看负载里的 "Response" 字段。
type Provider struct {
	BaseURL      string
	APIKey       string
	ListingQuery string

	HTTP *http.Client
}

var (
	_ providerx.Provider = Provider{}
	_ providerx.Detailer = Provider{}
)

func (Provider) Name() string { return "omdb" }

func (p Provider) baseURL() string {
	u := strings.TrimSpace(p.BaseURL)
	if u == "" {
		return DefaultBaseURL
	}
	return u
}

func (p Provider) client() *http.Client {
	if p.HTTP == nil {
		return http.DefaultClient
	}
	return p.HTTP
}

func (p Provider) Listing(ctx context.Context) ([]domain.Movie, error) {
	q := strings.TrimSpace(p.ListingQuery)
	if q == "" {
		q = DefaultListingQuery
	}
	return p.Search(ctx, q)
}

type searchPayload struct {
	Search   []searchItem `json:"Search"`
	Response string       `json:"Response"`
	Error    string       `json:"Error"`
}

type searchItem struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	IMDbID string `json:"imdbID"`
	Poster string `json:"Poster"`
}

func (p Provider) Search(ctx context.Context, query string) ([]domain.Movie, error) {
	b, err := p.get(ctx, url.Values{"s": {query}})
	if err != nil {
		return nil, err
	}

	var pl searchPayload
	if err := json.Unmarshal(b, &pl); err != nil {
		return nil, &providerx.APIError{Provider: p.Name(), Err: err}
	}
	if pl.Response != "True" {
		return nil, &providerx.APIError{Provider: p.Name(), Message: pl.Error}
	}

	movies := make([]domain.Movie, 0, len(pl.Search))
	for _, it := range pl.Search {
		poster := strings.TrimSpace(it.Poster)
		if poster == domain.NotAvailable {
			poster = ""
		}
		movies = append(movies, domain.Movie{
			ID:        it.IMDbID,
			Title:     it.Title,
			Year:      it.Year,
			PosterURL: poster,
			Provider:  p.Name(),
		})
	}
	return movies, nil
}

type detailPayload struct {
	Plot       string `json:"Plot"`
	IMDbRating string `json:"imdbRating"`
	Response   string `json:"Response"`
	Error      string `json:"Error"`
}

// Detail 按 IMDb ID 查询剧情与评分；缺失字段填 N/A。
func (p Provider) Detail(ctx context.Context, id string) (domain.Detail, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Detail{}, errors.New("id 不能为空")
	}
	b, err := p.get(ctx, url.Values{"i": {id}})
	if err != nil {
		return domain.Detail{}, err
	}

	var pl detailPayload
	if err := json.Unmarshal(b, &pl); err != nil {
		return domain.Detail{}, &providerx.APIError{Provider: p.Name(), Err: err}
	}
	if pl.Response != "True" {
		return domain.Detail{}, &providerx.APIError{Provider: p.Name(), Message: pl.Error}
	}
	return domain.Detail{
		Plot:       orNA(pl.Plot),
		IMDbRating: orNA(pl.IMDbRating),
	}, nil
}

func (p Provider) get(ctx context.Context, params url.Values) ([]byte, error) {
	if strings.TrimSpace(p.APIKey) == "" {
		return nil, providerx.ErrMissingCredential
	}
	params.Set("apikey", p.APIKey)

	u := p.baseURL()
	if strings.Contains(u, "?") {
		u += "&" + params.Encode()
	} else {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client().Do(req)
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
		var pl searchPayload
		_ = json.Unmarshal(b, &pl)
		return nil, &providerx.HTTPStatusError{URL: redact(u), StatusCode: resp.StatusCode, Message: pl.Error}
	}
	return b, nil
}

func orNA(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.NotAvailable
	}
	return s
}

func redact(u string) string {
	parsed, err := url.Parse(u)
	if err != nil {
		return u
	}
	q := parsed.Query()
	if q.Has("apikey") {
		q.Set("apikey", "REDACTED")
		parsed.RawQuery = q.Encode()
	}
	return parsed.String()
}
