package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/John-Robertt/moviereview/internal/app/dual"
	"github.com/John-Robertt/moviereview/internal/app/proxied"
	"github.com/John-Robertt/moviereview/internal/config"
	"github.com/John-Robertt/moviereview/internal/infra/httpx"
	"github.com/John-Robertt/moviereview/internal/infra/kv"
	"github.com/John-Robertt/moviereview/internal/provider"
	"github.com/John-Robertt/moviereview/internal/provider/omdb"
	"github.com/John-Robertt/moviereview/internal/provider/proxyapi"
	"github.com/John-Robertt/moviereview/internal/provider/tmdb"
	"github.com/John-Robertt/moviereview/internal/review"
	"github.com/John-Robertt/moviereview/internal/ui"
)

// deps 汇总 CLI 用到的全部组件（由 EffectiveConfig 一次性构造）。
type deps struct {
	eff    config.EffectiveConfig
	logger *slog.Logger

	TMDB  tmdb.Provider
	OMDB  omdb.Provider
	Proxy proxyapi.Client
	Store kv.Store
}

func wire(eff config.EffectiveConfig, logger *slog.Logger) (deps, error) {
	hc, err := httpx.NewUpstreamClient(eff.ProxyURL)
	if err != nil {
		return deps{}, fmt.Errorf("proxy.url：%w", err)
	}
	return deps{
		eff:    eff,
		logger: logger,
		TMDB: tmdb.Provider{
			BaseURL:      eff.TMDBBaseURL,
			ImageBaseURL: eff.TMDBImageBaseURL,
			APIKey:       eff.TMDBAPIKey,
			HTTP:         hc,
		},
		OMDB: omdb.Provider{
			BaseURL:      eff.OMDBBaseURL,
			APIKey:       eff.OMDBAPIKey,
			ListingQuery: eff.OMDBListingQuery,
			HTTP:         hc,
		},
		Proxy: proxyapi.Client{
			BaseURL:      eff.APIBaseURL,
			ImageBaseURL: eff.TMDBImageBaseURL,
			HTTP:         hc,
		},
		Store: kv.NewFile(eff.StoreDir),
	}, nil
}

func (d deps) book() (*review.Book, error) {
	layout := review.LayoutRecord
	if d.eff.Variant == config.VariantProxy {
		layout = review.LayoutList
	}
	return review.NewBook(d.Store, layout)
}

func (d deps) proxiedPage(view ui.View) (*proxied.Page, error) {
	book, err := d.book()
	if err != nil {
		return nil, err
	}
	return proxied.New(d.Proxy, book, view, d.logger)
}

func (d deps) dualPage(view ui.View) (*dual.Page, error) {
	book, err := d.book()
	if err != nil {
		return nil, err
	}
	primary := d.TMDB
	primary.IDPrefix = "tmdb_"
	reg, err := provider.NewRegistry(primary, d.OMDB)
	if err != nil {
		return nil, err
	}
	return dual.New(reg, book, view, d.logger, dual.Options{
		Primary:         primary.Name(),
		Secondary:       d.OMDB.Name(),
		SearchProvider:  d.eff.SearchProvider,
		SuggestionLimit: d.eff.SuggestionLimit,
		Debounce:        d.eff.Debounce,
		Toast:           d.eff.Toast,
		LatestWins:      d.eff.LatestWins,
	})
}

// Browse 执行一次加载（query 为空）或搜索。
func (d deps) Browse(ctx context.Context, view ui.View, query string) error {
	if d.eff.Variant == config.VariantProxy {
		page, err := d.proxiedPage(view)
		if err != nil {
			return err
		}
		if query == "" {
			return page.Load(ctx)
		}
		return page.Search(ctx, query)
	}

	page, err := d.dualPage(view)
	if err != nil {
		return err
	}
	defer page.Close()
	if query == "" {
		return page.Load(ctx)
	}
	page.Input(ctx, query)
	return page.Submit(ctx)
}

// Review 通过页面逻辑提交评论，返回该电影的全部评论。
func (d deps) Review(view ui.View, movieID, text string) ([]string, error) {
	book, err := d.book()
	if err != nil {
		return nil, err
	}

	if d.eff.Variant == config.VariantProxy {
		page, err := d.proxiedPage(view)
		if err != nil {
			return nil, err
		}
		// 代理版页面对空评论静默忽略；CLI 仍需要告知调用方
		if strings.TrimSpace(text) == "" {
			return nil, review.ErrEmptyReview
		}
		if err := page.SubmitReview(movieID, text); err != nil {
			return nil, err
		}
		return book.List(movieID)
	}

	page, err := d.dualPage(view)
	if err != nil {
		return nil, err
	}
	defer page.Close()
	if err := page.AddReview(movieID, text); err != nil {
		return nil, err
	}
	return book.List(movieID)
}
