package provider

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/John-Robertt/moviereview/internal/domain"
)

type stubProvider struct {
	name string

	listErr   error
	searchErr error
	movies    []domain.Movie

	listCalls   int
	searchCalls int
	lastQuery   string
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Listing(ctx context.Context) ([]domain.Movie, error) {
	p.listCalls++
	if p.listErr != nil {
		return nil, p.listErr
	}
	return p.movies, nil
}

func (p *stubProvider) Search(ctx context.Context, query string) ([]domain.Movie, error) {
	p.searchCalls++
	p.lastQuery = query
	if p.searchErr != nil {
		return nil, p.searchErr
	}
	return p.movies, nil
}

func TestRunChain_FallbackOnNetworkError(t *testing.T) {
	tmdb := &stubProvider{name: "tmdb", listErr: errors.New("dial tcp: connection refused")}
	omdb := &stubProvider{name: "omdb", movies: []domain.Movie{{ID: "tt1", Title: "Movie"}}}

	reg, err := NewRegistry(tmdb, omdb)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	var failed []Attempt
	res, err := RunChain(context.Background(), reg, []Step{{"tmdb", OpListing}, {"omdb", OpListing}}, "", func(a Attempt) {
		failed = append(failed, a)
	})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if res.Provider != "omdb" || len(res.Movies) != 1 {
		t.Fatalf("结果不符合预期：%+v", res)
	}
	if len(res.Attempts) != 2 || res.Attempts[0].Err == nil || res.Attempts[1].Err != nil {
		t.Fatalf("attempts 不符合预期：%+v", res.Attempts)
	}
	if len(failed) != 1 || failed[0].Provider != "tmdb" {
		t.Fatalf("onFail 回调不符合预期：%+v", failed)
	}
}

func TestRunChain_EmptyResultIsFailure(t *testing.T) {
	tmdb := &stubProvider{name: "tmdb"}
	omdb := &stubProvider{name: "omdb", movies: []domain.Movie{{ID: "tt1"}}}
	reg, _ := NewRegistry(tmdb, omdb)

	res, err := RunChain(context.Background(), reg, []Step{{"tmdb", OpListing}, {"omdb", OpListing}}, "", nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if res.Provider != "omdb" {
		t.Fatalf("空结果应触发回退，实际 provider=%q", res.Provider)
	}
	if !errors.Is(res.Attempts[0].Err, ErrNoResults) {
		t.Fatalf("期望 ErrNoResults，实际：%v", res.Attempts[0].Err)
	}
}

func TestRunChain_ShortCircuitOnFirstSuccess(t *testing.T) {
	tmdb := &stubProvider{name: "tmdb", movies: []domain.Movie{{ID: "1"}}}
	omdb := &stubProvider{name: "omdb", movies: []domain.Movie{{ID: "tt1"}}}
	reg, _ := NewRegistry(tmdb, omdb)

	res, err := RunChain(context.Background(), reg, []Step{{"tmdb", OpListing}, {"omdb", OpListing}}, "", nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if res.Provider != "tmdb" {
		t.Fatalf("期望 tmdb，实际 %q", res.Provider)
	}
	if omdb.listCalls != 0 {
		t.Fatalf("首步成功后不应调用后续 provider，实际调用 %d 次", omdb.listCalls)
	}
}

func TestRunChain_SearchPassesQuery(t *testing.T) {
	tmdb := &stubProvider{name: "tmdb", movies: []domain.Movie{{ID: "1"}}}
	reg, _ := NewRegistry(tmdb)

	if _, err := RunChain(context.Background(), reg, []Step{{"tmdb", OpSearch}}, "batman", nil); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if tmdb.searchCalls != 1 || tmdb.lastQuery != "batman" {
		t.Fatalf("search 调用不符合预期：calls=%d query=%q", tmdb.searchCalls, tmdb.lastQuery)
	}
}

func TestRunChain_AllFail(t *testing.T) {
	tmdb := &stubProvider{name: "tmdb", searchErr: &HTTPStatusError{StatusCode: 401, Message: "Invalid API key"}}
	reg, _ := NewRegistry(tmdb)

	_, err := RunChain(context.Background(), reg, []Step{{"tmdb", OpSearch}}, "x", nil)
	if err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
	var pe *Error
	if !errors.As(err, &pe) || pe.Provider != "tmdb" || pe.Op != OpSearch {
		t.Fatalf("期望 *Error{tmdb, search}，实际：%v", err)
	}
	if !IsUpstream(err) {
		t.Fatalf("HTTP 状态错误应归为 upstream")
	}
	if Message(err) != "Invalid API key" {
		t.Fatalf("Message 不符合预期：%q", Message(err))
	}
}

func TestRunChain_UnknownProvider(t *testing.T) {
	reg, _ := NewRegistry(&stubProvider{name: "tmdb"})
	if _, err := RunChain(context.Background(), reg, []Step{{"nope", OpListing}}, "", nil); err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
}

func TestRunChain_CanceledContext(t *testing.T) {
	tmdb := &stubProvider{name: "tmdb", movies: []domain.Movie{{ID: "1"}}}
	reg, _ := NewRegistry(tmdb)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := RunChain(ctx, reg, []Step{{"tmdb", OpListing}}, "", nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("期望 context.Canceled，实际：%v", err)
	}
	if tmdb.listCalls != 0 {
		t.Fatalf("ctx 已取消时不应发起调用")
	}
}

func TestIsUpstream_NetworkError(t *testing.T) {
	err := &Error{Provider: "tmdb", Op: OpListing, Err: fmt.Errorf("dial: %w", errors.New("refused"))}
	if IsUpstream(err) {
		t.Fatalf("网络错误不应归为 upstream")
	}
	if Message(err) != "" {
		t.Fatalf("网络错误不应有上游描述")
	}
	if !IsUpstream(&APIError{Provider: "omdb", Message: "Movie not found!"}) {
		t.Fatalf("APIError 应归为 upstream")
	}
}

func TestNewRegistry_Validation(t *testing.T) {
	if _, err := NewRegistry(&stubProvider{name: "tmdb"}, &stubProvider{name: "TMDB"}); err == nil {
		t.Fatalf("重复 provider 期望错误")
	}
	if _, err := NewRegistry(&stubProvider{name: " "}); err == nil {
		t.Fatalf("空 name 期望错误")
	}
	reg, _ := NewRegistry(&stubProvider{name: "omdb"})
	if _, ok := reg.Get(" OMDB "); !ok {
		t.Fatalf("Get 应忽略大小写与空白")
	}
}

func TestRegistry_DetailerAndNames(t *testing.T) {
	reg, err := NewRegistry(&stubProvider{name: "TMDB"}, detailStub{&stubProvider{name: "omdb"}})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if got := reg.Names(); len(got) != 2 || got[0] != "omdb" || got[1] != "tmdb" {
		t.Fatalf("期望 [omdb tmdb]，实际 %v", got)
	}
	if _, ok := reg.Detailer("tmdb"); ok {
		t.Fatalf("tmdb 不支持详情")
	}
	if _, ok := reg.Detailer(" OMDB "); !ok {
		t.Fatalf("omdb 应支持详情")
	}
	if _, ok := reg.Detailer("nope"); ok {
		t.Fatalf("未注册的 provider 不应返回详情能力")
	}
}

type detailStub struct{ *stubProvider }

func (detailStub) Detail(ctx context.Context, id string) (domain.Detail, error) {
	return domain.Detail{Plot: "p", IMDbRating: "1"}, nil
}
