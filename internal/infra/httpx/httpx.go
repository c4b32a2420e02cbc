package httpx

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
)

const defaultUserAgent = "moviereview/1.0 (+https://github.com/John-Robertt/moviereview)"

// Transport 把“请求头策略 + 可选出口代理”固化为统一策略。
//
// 约束：不重试、不限速、不额外设置超时（只沿用底层 transport 的默认值）。
// provider 只负责拼 URL 与解析 JSON，不关心网络细节。
type Transport struct {
	Base http.RoundTripper

	// UserAgent 为空时使用 defaultUserAgent。
	UserAgent string
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if t.Base == nil {
		return nil, errors.New("nil base transport")
	}

	// Clone 避免在 RoundTripper 内部“污染”调用方的 request。
	r := req.Clone(req.Context())
	if r.Header.Get("User-Agent") == "" {
		ua := t.UserAgent
		if ua == "" {
			ua = defaultUserAgent
		}
		r.Header.Set("User-Agent", ua)
	}
	if r.Header.Get("Accept") == "" {
		r.Header.Set("Accept", "application/json")
	}
	return t.Base.RoundTrip(r)
}

// NewUpstreamClient 构造访问上游电影元数据 API 的 HTTP client。
//
// proxyURL 非空时所有上游请求走该代理；为空时沿用环境变量代理设置（http.ProxyFromEnvironment）。
func NewUpstreamClient(proxyURL string) (*http.Client, error) {
	base := http.DefaultTransport.(*http.Transport).Clone()

	proxyURL = strings.TrimSpace(proxyURL)
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, err
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, errors.New("proxy url 缺少 scheme 或 host")
		}
		base.Proxy = http.ProxyURL(u)
	}

	return &http.Client{
		Transport: &Transport{Base: base},
	}, nil
}
