package tmdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	providerx "github.com/John-Robertt/moviereview/internal/provider"
)

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("读取 fixture 失败：%v", err)
	}
	return b
}

func TestParseResults_Fixture(t *testing.T) {
	movies, err := ParseResults(fixture(t, "trending.json"), "tmdb", "", "tmdb_")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(movies) != 2 {
		t.Fatalf("期望 2 条，实际 %d", len(movies))
	}

	m := movies[0]
	if m.ID != "tmdb_603" || m.Title != "The Matrix" || m.Year != "1999" {
		t.Fatalf("movie[0] 不符合预期：%+v", m)
	}
	if m.PosterURL != DefaultImageBaseURL+"/f89U3ADr1oiB1s9GkdPOEpXUk5H.jpg" {
		t.Fatalf("poster 不符合预期：%q", m.PosterURL)
	}
	if !m.HasRating || m.Rating != 8.217 {
		t.Fatalf("rating 不符合预期：%+v", m)
	}

	// poster_path 为空字符串：保持为空，由渲染层替换占位图。
	if movies[1].PosterURL != "" {
		t.Fatalf("空 poster_path 不应拼出 URL：%q", movies[1].PosterURL)
	}
	if movies[1].Year != "N/A" {
		t.Fatalf("空 release_date 期望 N/A，实际 %q", movies[1].Year)
	}
}

func TestParseResults_MissingResults(t *testing.T) {
	_, err := ParseResults([]byte(`{"status_code":7,"status_message":"Invalid API key"}`), "tmdb", "", "")
	var ae *providerx.APIError
	if !errors.As(err, &ae) || ae.Message != "Invalid API key" {
		t.Fatalf("期望 APIError(Invalid API key)，实际：%v", err)
	}

	if _, err := ParseResults([]byte(`not json`), "tmdb", "", ""); !errors.As(err, &ae) {
		t.Fatalf("非法 JSON 期望 APIError，实际：%v", err)
	}
}

func TestParseResults_EmptyResults(t *testing.T) {
	movies, err := ParseResults([]byte(`{"page":1,"results":[]}`), "tmdb", "", "")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(movies) != 0 {
		t.Fatalf("期望空切片，实际 %d 条", len(movies))
	}
}

func TestListing_RequestShape(t *testing.T) {
	body := fixture(t, "trending.json")
	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("api_key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	p := Provider{BaseURL: srv.URL, APIKey: "k123", HTTP: srv.Client()}
	movies, err := p.Listing(context.Background())
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if gotPath != "/trending/movie/week" || gotKey != "k123" {
		t.Fatalf("请求不符合预期：path=%q key=%q", gotPath, gotKey)
	}
	if len(movies) != 2 || movies[0].ID != "603" {
		t.Fatalf("结果不符合预期：%+v", movies)
	}
}

func TestSearch_EscapesQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			t.Errorf("path 不符合预期：%q", r.URL.Path)
		}
		gotQuery = r.URL.Query().Get("query")
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	p := Provider{BaseURL: srv.URL + "/", APIKey: "k", HTTP: srv.Client()}
	movies, err := p.Search(context.Background(), "batman & robin")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if gotQuery != "batman & robin" {
		t.Fatalf("query 未正确转义：%q", gotQuery)
	}
	if len(movies) != 0 {
		t.Fatalf("期望 0 条，实际 %d", len(movies))
	}
}

func TestRawTrending_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status_code":7,"status_message":"Invalid API key: You must be granted a valid key.","success":false}`))
	}))
	defer srv.Close()

	p := Provider{BaseURL: srv.URL, APIKey: "secret", HTTP: srv.Client()}
	_, err := p.RawTrending(context.Background())
	var se *providerx.HTTPStatusError
	if !errors.As(err, &se) {
		t.Fatalf("期望 HTTPStatusError，实际：%v", err)
	}
	if se.StatusCode != http.StatusUnauthorized || !strings.HasPrefix(se.Message, "Invalid API key") {
		t.Fatalf("错误内容不符合预期：%+v", se)
	}
	if strings.Contains(se.URL, "secret") {
		t.Fatalf("错误中不应包含 api_key：%q", se.URL)
	}
}

func TestRaw_MissingCredential(t *testing.T) {
	p := Provider{BaseURL: "http://127.0.0.1:1"}
	if _, err := p.RawTrending(context.Background()); !errors.Is(err, providerx.ErrMissingCredential) {
		t.Fatalf("期望 ErrMissingCredential，实际：%v", err)
	}
	if _, err := p.RawSearch(context.Background(), "x"); !errors.Is(err, providerx.ErrMissingCredential) {
		t.Fatalf("期望 ErrMissingCredential，实际：%v", err)
	}
}

func TestRawTrending_NetworkErrorRedactsKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	p := Provider{BaseURL: base, APIKey: "secret"}
	_, err := p.RawTrending(context.Background())
	if err == nil {
		t.Fatalf("期望网络错误，但得到 nil")
	}
	if providerx.IsUpstream(err) {
		t.Fatalf("连接失败不应归为 upstream：%v", err)
	}
	if strings.Contains(err.Error(), "secret") {
		t.Fatalf("错误信息不应包含 api_key：%v", err)
	}
}
