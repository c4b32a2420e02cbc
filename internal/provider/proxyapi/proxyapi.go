// Package proxyapi 是代理服务（/api/trending、/api/search）的客户端，供代理版页面使用。
package proxyapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/John-Robertt/moviereview/internal/domain"
	providerx "github.com/John-Robertt/moviereview/internal/provider"
	"github.com/John-Robertt/moviereview/internal/provider/tmdb"
)

const DefaultBaseURL = "http://localhost:3000"

var _ providerx.Provider = Client{}

// Client 通过代理服务访问 TMDB；负载与 TMDB 同构，解析复用 tmdb.ParseResults。
type Client struct {
	BaseURL      string
	ImageBaseURL string

	HTTP *http.Client
}

func (Client) Name() string { return "proxy" }

func (c Client) baseURL() string {
	u := strings.TrimSpace(c.BaseURL)
	if u == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(u, "/")
}

func (c Client) Listing(ctx context.Context) ([]domain.Movie, error) {
	return c.get(ctx, c.baseURL()+"/api/trending")
}

// Search 不做 trim：代理服务只检查参数是否存在，空白串会原样转发。
func (c Client) Search(ctx context.Context, query string) ([]domain.Movie, error) {
	return c.get(ctx, c.baseURL()+"/api/search?query="+url.QueryEscape(query))
}

func (c Client) get(ctx context.Context, u string) ([]domain.Movie, error) {
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(b, &body)
		return nil, &providerx.HTTPStatusError{URL: u, StatusCode: resp.StatusCode, Message: body.Error}
	}
	return tmdb.ParseResults(b, c.Name(), c.ImageBaseURL, "")
}
