package proxied

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/John-Robertt/moviereview/internal/infra/kv"
	"github.com/John-Robertt/moviereview/internal/provider/proxyapi"
	"github.com/John-Robertt/moviereview/internal/review"
	"github.com/John-Robertt/moviereview/internal/server"
	"github.com/John-Robertt/moviereview/internal/ui"
)

// fakeTMDB 充当代理服务背后的上游。
type fakeTMDB struct {
	mu       sync.Mutex
	trending string
	search   string
	err      error
	queries  []string
	trendN   int
}

func (f *fakeTMDB) RawTrending(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trendN++
	return []byte(f.trending), f.err
}

func (f *fakeTMDB) RawSearch(ctx context.Context, q string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	return []byte(f.search), f.err
}

func (f *fakeTMDB) set(fn func(u *fakeTMDB)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeTMDB) snapshot() (queries []string, trendN int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...), f.trendN
}

func results(n int) string {
	var b strings.Builder
	b.WriteString(`{"page":1,"results":[`)
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `{"id":%d,"title":"Movie %d","release_date":"2024-01-0%d","poster_path":"/p%d.jpg","vote_average":7.5}`, i+1, i+1, i%9+1, i)
	}
	b.WriteString(`]}`)
	return b.String()
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type fixture struct {
	up   *fakeTMDB
	view *ui.HTMLView
	page *Page
	base string
}

func newFixture(t *testing.T, store kv.Store) *fixture {
	t.Helper()
	up := &fakeTMDB{trending: results(3), search: results(1)}
	srv, err := server.New(server.Config{}, up, quietLogger())
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	f := &fixture{up: up, base: ts.URL}
	f.view, f.page = newPage(t, ts.URL, store)
	return f
}

func newPage(t *testing.T, base string, store kv.Store) (*ui.HTMLView, *Page) {
	t.Helper()
	book, err := review.NewBook(store, review.LayoutList)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	view := ui.NewHTMLView()
	page, err := New(proxyapi.Client{BaseURL: base}, book, view, quietLogger())
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	return view, page
}

func TestNew_Validates(t *testing.T) {
	if _, err := New(nil, nil, nil, nil); err == nil {
		t.Fatalf("期望错误")
	}
}

func TestLoad_OneCardPerMovie(t *testing.T) {
	for _, n := range []int{0, 1, 5, 20} {
		f := newFixture(t, kv.NewMemory())
		f.up.set(func(u *fakeTMDB) { u.trending = results(n) })

		if err := f.page.Load(context.Background()); err != nil {
			t.Fatalf("不期望错误：%v", err)
		}
		st := f.view.State()
		if st.Loading {
			t.Fatalf("加载结束后 loading 应关闭")
		}
		html, _ := f.view.HTML()
		got, err := ui.CountCards(strings.NewReader(html))
		if err != nil {
			t.Fatalf("不期望错误：%v", err)
		}
		if got != n {
			t.Fatalf("n=%d：期望 %d 张卡片，实际 %d", n, n, got)
		}
		if n == 0 && st.Message != NoMoviesMessage {
			t.Fatalf("期望提示 %q，实际 %q", NoMoviesMessage, st.Message)
		}
		if n > 0 && st.Message != "" {
			t.Fatalf("有结果时不应有提示文案：%q", st.Message)
		}
	}
}

func TestLoad_CardContents(t *testing.T) {
	f := newFixture(t, kv.NewMemory())
	f.up.set(func(u *fakeTMDB) {
		u.trending = `{"results":[{"id":7,"title":"Seven","release_date":"","poster_path":null,"vote_average":8}]}`
	})

	if err := f.page.Load(context.Background()); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	c := f.view.State().Cards[0]
	if c.ID != "7" || c.PosterURL != ui.PlaceholderProxy || c.Release != "Release: N/A" || c.Rating != "8.0 / 10" {
		t.Fatalf("卡片内容不符：%+v", c)
	}
}

func TestLoad_FailureIsSilent(t *testing.T) {
	f := newFixture(t, kv.NewMemory())
	if err := f.page.Load(context.Background()); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	f.up.set(func(u *fakeTMDB) { u.err = errors.New("upstream down") })
	if err := f.page.Load(context.Background()); err == nil {
		t.Fatalf("期望返回错误")
	}
	st := f.view.State()
	if st.Loading {
		t.Fatalf("失败后 loading 应关闭")
	}
	if st.Message != "" || st.Toast != "" {
		t.Fatalf("失败不应展示任何文案：%+v", st)
	}
	if len(st.Cards) != 3 {
		t.Fatalf("失败时卡片区应保持不变，实际 %d", len(st.Cards))
	}
}

func TestSearch(t *testing.T) {
	f := newFixture(t, kv.NewMemory())

	if err := f.page.Search(context.Background(), "Dune"); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if got := len(f.view.State().Cards); got != 1 {
		t.Fatalf("期望 1 张卡片，实际 %d", got)
	}

	// 空 query 等价于初始加载
	if err := f.page.Search(context.Background(), ""); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if got := len(f.view.State().Cards); got != 3 {
		t.Fatalf("期望回到热门 3 张卡片，实际 %d", got)
	}

	// 空白 query 不 trim，原样发往代理
	if err := f.page.Search(context.Background(), "  "); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	queries, trendN := f.up.snapshot()
	if want := []string{"Dune", "  "}; fmt.Sprint(queries) != fmt.Sprint(want) {
		t.Fatalf("期望 query %q，实际 %q", want, queries)
	}
	if trendN != 1 {
		t.Fatalf("期望热门接口被调用 1 次，实际 %d", trendN)
	}
}

func TestSearch_FailureIsSilent(t *testing.T) {
	f := newFixture(t, kv.NewMemory())
	f.up.set(func(u *fakeTMDB) { u.err = errors.New("boom") })

	if err := f.page.Search(context.Background(), "x"); err == nil {
		t.Fatalf("期望返回错误")
	}
	if st := f.view.State(); st.Loading || st.Message != "" {
		t.Fatalf("失败不应展示文案：%+v", st)
	}
}

func TestSubmitReview(t *testing.T) {
	store := kv.NewMemory()
	f := newFixture(t, store)
	if err := f.page.Load(context.Background()); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	f.view.TypeReview("1", "   ")
	if err := f.page.SubmitReview("1", "   "); err != nil {
		t.Fatalf("空评论应被静默忽略：%v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("空评论不应写入存储")
	}
	if f.view.State().Drafts["1"] != "   " {
		t.Fatalf("空评论不应清空输入框")
	}

	f.view.TypeReview("1", "  Loved it  ")
	if err := f.page.SubmitReview("1", "  Loved it  "); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	st := f.view.State()
	if _, ok := st.Drafts["1"]; ok {
		t.Fatalf("提交后输入框应清空")
	}
	if got := st.Cards[0].Reviews; len(got) != 1 || got[0] != "Loved it" {
		t.Fatalf("期望评论 [Loved it]，实际 %v", got)
	}
	if len(st.Cards[1].Reviews) != 0 {
		t.Fatalf("其它卡片不应受影响")
	}
	raw, ok, _ := store.Get("reviews-1")
	if !ok || raw != `["Loved it"]` {
		t.Fatalf("存储内容不符：%q", raw)
	}
}

func TestSubmitReview_SurvivesReload(t *testing.T) {
	dir := t.TempDir()
	f := newFixture(t, kv.NewFile(dir))
	if err := f.page.Load(context.Background()); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	for _, r := range []string{"one", "two"} {
		if err := f.page.SubmitReview("2", r); err != nil {
			t.Fatalf("不期望错误：%v", err)
		}
	}

	// 模拟刷新页面：新的视图、新的 store 实例，同一目录
	view, page := newPage(t, f.base, kv.NewFile(dir))
	if err := page.Load(context.Background()); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	html, _ := view.HTML()
	if !strings.Contains(html, "• one") || !strings.Contains(html, "• two") {
		t.Fatalf("刷新后应展示已保存评论")
	}
	if got := view.State().Cards[1].Reviews; len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Fatalf("评论顺序不符：%v", got)
	}
}
