// Package proxied 实现代理版电影评论页面：所有数据经由本地代理服务获取，评论存在注入的 kv.Store 中。
package proxied

import (
	"context"
	"errors"
	"log/slog"

	"github.com/John-Robertt/moviereview/internal/domain"
	"github.com/John-Robertt/moviereview/internal/provider"
	"github.com/John-Robertt/moviereview/internal/review"
	"github.com/John-Robertt/moviereview/internal/ui"
)

// NoMoviesMessage 是结果为空时卡片区的提示文案。
const NoMoviesMessage = "No movies found."

// Page 是代理版页面的事件处理逻辑。
//
// 约束：
// - 请求失败只写诊断日志，页面不展示任何错误文案（只收起 loading）
// - 评论只追加；提交后只刷新该卡片的评论列表
type Page struct {
	source  provider.Provider
	reviews *review.Book
	view    ui.View
	logger  *slog.Logger
}

func New(source provider.Provider, reviews *review.Book, view ui.View, logger *slog.Logger) (*Page, error) {
	if source == nil || reviews == nil || view == nil {
		return nil, errors.New("proxied: source/reviews/view 不能为空")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Page{source: source, reviews: reviews, view: view, logger: logger}, nil
}

// Load 是页面打开时的初始加载：拉取本周热门并渲染。
func (p *Page) Load(ctx context.Context) error {
	p.view.SetLoading(true)
	movies, err := p.source.Listing(ctx)
	p.view.SetLoading(false)
	if err != nil {
		p.logger.Error("Error fetching trending movies", "error", err)
		return err
	}
	p.render(movies)
	return nil
}

// Search 按标题搜索；query 为空时等价于 Load。query 不做 trim。
func (p *Page) Search(ctx context.Context, query string) error {
	p.view.SetQuery(query)
	if query == "" {
		return p.Load(ctx)
	}

	p.view.SetLoading(true)
	movies, err := p.source.Search(ctx, query)
	p.view.SetLoading(false)
	if err != nil {
		p.logger.Error("Error searching movies", "query", query, "error", err)
		return err
	}
	p.render(movies)
	return nil
}

// SubmitReview 追加一条评论；trim 后为空时静默忽略。
func (p *Page) SubmitReview(movieID, text string) error {
	list, err := p.reviews.Add(movieID, text)
	if errors.Is(err, review.ErrEmptyReview) {
		return nil
	}
	if err != nil {
		p.logger.Error("save review failed", "movie_id", movieID, "error", err)
		return err
	}
	p.view.ClearReviewInput(movieID)
	p.view.ShowReviews(movieID, list)
	return nil
}

func (p *Page) render(movies []domain.Movie) {
	if len(movies) == 0 {
		p.view.ShowMessage(NoMoviesMessage)
		return
	}
	cards := make([]ui.Card, 0, len(movies))
	for _, m := range movies {
		cards = append(cards, ui.ProxyCard(m, p.loadReviews(m.ID)))
	}
	p.view.ShowMovies(cards)
}

func (p *Page) loadReviews(movieID string) []string {
	list, err := p.reviews.List(movieID)
	if err != nil {
		p.logger.Warn("load reviews failed", "movie_id", movieID, "error", err)
		return nil
	}
	return list
}
