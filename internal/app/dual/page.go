// Package dual 实现双 provider 电影评论页面：primary（TMDB）失败时回退到 secondary（OMDB），
// 并提供搜索建议、secondary 详情补全、toast 提示与评论记录。
package dual

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/John-Robertt/moviereview/internal/domain"
	"github.com/John-Robertt/moviereview/internal/provider"
	"github.com/John-Robertt/moviereview/internal/review"
	"github.com/John-Robertt/moviereview/internal/ui"
)

// ErrSuperseded 表示结果到达时已有更新的触发，结果被丢弃（仅 LatestWins 时出现）。
var ErrSuperseded = errors.New("dual: 结果已被更新的请求取代")

// Toast 文案。
const (
	ToastEmptyReview       = "Please enter a review."
	ToastReviewAdded       = "Review added!"
	ToastSuggestionFailure = "Error loading search suggestions."
)

// Target 是一次点击落点（用于判断是否收起建议列表）。
type Target int

const (
	TargetOther Target = iota
	TargetInput
	TargetSuggestions
)

// Options 控制页面行为；零值字段使用默认值（LatestWins 除外，零值即关闭）。
type Options struct {
	Primary        string // 默认 "tmdb"
	Secondary      string // 默认 "omdb"
	SearchProvider string // 默认同 Primary

	SuggestionLimit int           // 默认 5
	Debounce        time.Duration // 默认 300ms
	Toast           time.Duration // 默认 3s

	// LatestWins=true 时，被更新触发取代的请求结果直接丢弃。
	LatestWins bool
}

func (o Options) withDefaults() Options {
	if strings.TrimSpace(o.Primary) == "" {
		o.Primary = "tmdb"
	}
	if strings.TrimSpace(o.Secondary) == "" {
		o.Secondary = "omdb"
	}
	if strings.TrimSpace(o.SearchProvider) == "" {
		o.SearchProvider = o.Primary
	}
	if o.SuggestionLimit <= 0 {
		o.SuggestionLimit = 5
	}
	if o.Debounce <= 0 {
		o.Debounce = 300 * time.Millisecond
	}
	if o.Toast <= 0 {
		o.Toast = 3 * time.Second
	}
	return o
}

// failureText 是某一步失败时的页面文案。
type failureText struct {
	apiFallback string // 内联 "Error: <上游描述 | apiFallback>"
	apiToast    string
	netInline   string
	netToast    string
}

var (
	trendingText = failureText{
		apiFallback: "Unable to fetch trending movies.",
		apiToast:    "Failed to load trending movies. Using default movies.",
		netInline:   "Error fetching trending movies. Using default movies.",
		netToast:    "Network error while fetching trending movies.",
	}
	defaultText = failureText{
		apiFallback: "Unable to fetch default movies.",
		apiToast:    "Failed to load default movies.",
		netInline:   "Error fetching default movies. Please try again.",
		netToast:    "Network error while fetching default movies.",
	}
	searchText = failureText{
		apiFallback: "No movies found.",
		apiToast:    "No movies found for your search.",
		netInline:   "Error fetching movies. Please try again.",
		netToast:    "Network error while searching movies.",
	}
)

// Page 是双 provider 页面的事件处理逻辑。
//
// 约束：
// - 每次触发（加载/搜索/建议）取一个递增的代号；LatestWins 时只有最新代号的结果会落到视图上
// - secondary 结果逐条补全详情，卡片顺序与结果顺序一致
// - 评论提交后只刷新该卡片，不重新搜索
type Page struct {
	reg     provider.Registry
	reviews *review.Book
	view    ui.View
	logger  *slog.Logger
	opts    Options

	toast    *ui.Toaster
	debounce *ui.Debouncer

	mu     sync.Mutex
	query  string
	gen    uint64
	sugGen uint64
}

func New(reg provider.Registry, reviews *review.Book, view ui.View, logger *slog.Logger, opts Options) (*Page, error) {
	if reviews == nil || view == nil {
		return nil, errors.New("dual: reviews/view 不能为空")
	}
	opts = opts.withDefaults()
	for _, name := range []string{opts.Primary, opts.Secondary, opts.SearchProvider} {
		if _, ok := reg.Get(name); !ok {
			return nil, fmt.Errorf("dual: provider %q 未注册（已注册：%s）", name, strings.Join(reg.Names(), ", "))
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Page{
		reg:      reg,
		reviews:  reviews,
		view:     view,
		logger:   logger,
		opts:     opts,
		toast:    ui.NewToaster(view, opts.Toast),
		debounce: ui.NewDebouncer(opts.Debounce),
	}, nil
}

// Close 取消待执行的建议请求与 toast 定时器。
func (p *Page) Close() {
	p.debounce.Stop()
	p.toast.Stop()
}

// Query 返回搜索框当前内容。
func (p *Page) Query() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query
}

// Load 是页面打开时的初始加载：primary 本周热门，失败则回退到 secondary 通用列表。
func (p *Page) Load(ctx context.Context) error {
	gen := p.nextGen()
	steps := []provider.Step{
		{Provider: p.opts.Primary, Op: provider.OpListing},
		{Provider: p.opts.Secondary, Op: provider.OpListing},
	}
	return p.run(ctx, gen, steps, "", func(i int) failureText {
		if i == 0 {
			return trendingText
		}
		return defaultText
	})
}

// Search 按搜索框内容（trim 后）搜索；为空时回到初始加载。无论结果如何都收起建议列表。
func (p *Page) Search(ctx context.Context) error {
	q := strings.TrimSpace(p.Query())
	defer p.view.HideSuggestions()
	if q == "" {
		return p.Load(ctx)
	}

	gen := p.nextGen()
	steps := []provider.Step{{Provider: p.opts.SearchProvider, Op: provider.OpSearch}}
	return p.run(ctx, gen, steps, q, func(int) failureText { return searchText })
}

// Input 处理搜索框输入：更新内容并重置建议请求的 debounce。
func (p *Page) Input(ctx context.Context, text string) {
	p.setQuery(text)
	q := strings.TrimSpace(text)
	p.debounce.Trigger(func() { p.suggest(ctx, q) })
}

// Submit 对应在搜索框回车：立即搜索并收起建议。
func (p *Page) Submit(ctx context.Context) error {
	return p.Search(ctx)
}

// ChooseSuggestion 把建议标题填入搜索框并立即搜索。
func (p *Page) ChooseSuggestion(ctx context.Context, s ui.Suggestion) error {
	p.setQuery(s.Title)
	return p.Search(ctx)
}

// Click 处理页面任意位置的点击：落点不在搜索框或建议列表内时收起建议。
func (p *Page) Click(target Target) {
	if target == TargetInput || target == TargetSuggestions {
		return
	}
	p.view.HideSuggestions()
}

// AddReview 为 movieID 追加一条评论；内容为空时只提示。
func (p *Page) AddReview(movieID, text string) error {
	list, err := p.reviews.Add(movieID, text)
	if errors.Is(err, review.ErrEmptyReview) {
		p.toast.Show(ToastEmptyReview)
		return err
	}
	if err != nil {
		p.logger.Error("save review failed", "movie_id", movieID, "error", err)
		return err
	}
	p.toast.Show(ToastReviewAdded)
	p.view.ShowReviews(movieID, list)
	p.view.ClearReviewInput(movieID)
	return nil
}

func (p *Page) run(ctx context.Context, gen uint64, steps []provider.Step, query string, textFor func(int) failureText) error {
	p.view.SetLoading(true)

	step := 0
	onFail := func(a provider.Attempt) {
		text := textFor(step)
		step++
		if !p.current(gen) {
			return
		}
		p.showFailure(a, text)
	}
	res, err := provider.RunChain(ctx, p.reg, steps, query, onFail)
	if !p.current(gen) {
		return ErrSuperseded
	}
	if err != nil {
		p.view.SetLoading(false)
		if len(res.Attempts) < len(steps) {
			p.logger.Warn("provider chain aborted", "error", err)
		}
		return err
	}

	cards := p.cards(ctx, res)
	if !p.current(gen) {
		return ErrSuperseded
	}
	p.view.ShowMovies(cards)
	p.view.SetLoading(false)
	return nil
}

func (p *Page) showFailure(a provider.Attempt, text failureText) {
	if provider.IsUpstream(a.Err) {
		p.logger.Warn("provider returned failure", "provider", a.Provider, "op", a.Op, "error", a.Err)
		msg := provider.Message(a.Err)
		if msg == "" {
			msg = text.apiFallback
		}
		p.view.ShowMessage("Error: " + msg)
		p.toast.Show(text.apiToast)
		return
	}
	p.logger.Error("provider request failed", "provider", a.Provider, "op", a.Op, "error", a.Err)
	p.view.ShowMessage(text.netInline)
	p.toast.Show(text.netToast)
}

// cards 为结果构造卡片；来自 secondary 的结果并发补全详情，顺序不变。
func (p *Page) cards(ctx context.Context, res provider.Result) []ui.Card {
	details := make([]*domain.Detail, len(res.Movies))
	if res.Provider == strings.ToLower(p.opts.Secondary) {
		if d, ok := p.reg.Detailer(p.opts.Secondary); ok {
			p.enrich(ctx, d, res.Movies, details)
		}
	}

	cards := make([]ui.Card, 0, len(res.Movies))
	for i, m := range res.Movies {
		cards = append(cards, ui.DualCard(m, details[i], p.loadReviews(m.ID)))
	}
	return cards
}

func (p *Page) enrich(ctx context.Context, d provider.Detailer, movies []domain.Movie, out []*domain.Detail) {
	var wg sync.WaitGroup
	for i, m := range movies {
		if strings.TrimSpace(m.ID) == "" {
			continue
		}
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			det, err := d.Detail(ctx, id)
			if err != nil {
				p.logger.Warn("Error fetching movie details", "id", id, "error", err)
				det = domain.Detail{Plot: domain.NotAvailable, IMDbRating: domain.NotAvailable}
			}
			out[i] = &det
		}(i, m.ID)
	}
	wg.Wait()
}

func (p *Page) suggest(ctx context.Context, q string) {
	p.mu.Lock()
	p.sugGen++
	gen := p.sugGen
	p.mu.Unlock()

	if q == "" {
		p.view.HideSuggestions()
		return
	}
	src, ok := p.reg.Get(p.opts.Secondary)
	if !ok {
		return
	}

	movies, err := src.Search(ctx, q)
	if !p.currentSuggestion(gen) {
		return
	}
	if err != nil {
		p.view.HideSuggestions()
		if !provider.IsUpstream(err) {
			p.logger.Error("Error fetching suggestions", "query", q, "error", err)
			p.toast.Show(ToastSuggestionFailure)
		}
		return
	}
	if len(movies) == 0 {
		p.view.HideSuggestions()
		return
	}
	if len(movies) > p.opts.SuggestionLimit {
		movies = movies[:p.opts.SuggestionLimit]
	}
	items := make([]ui.Suggestion, 0, len(movies))
	for _, m := range movies {
		items = append(items, ui.Suggestion{Title: m.Title, Year: m.Year})
	}
	p.view.ShowSuggestions(items)
}

func (p *Page) loadReviews(movieID string) []string {
	list, err := p.reviews.List(movieID)
	if err != nil {
		p.logger.Warn("load reviews failed", "movie_id", movieID, "error", err)
		return nil
	}
	return list
}

func (p *Page) setQuery(q string) {
	p.mu.Lock()
	p.query = q
	p.mu.Unlock()
	p.view.SetQuery(q)
}

func (p *Page) nextGen() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	return p.gen
}

func (p *Page) current(gen uint64) bool {
	if !p.opts.LatestWins {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gen == gen
}

func (p *Page) currentSuggestion(gen uint64) bool {
	if !p.opts.LatestWins {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sugGen == gen
}
