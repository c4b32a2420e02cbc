package ui

import (
	"fmt"
	"strings"

	"github.com/John-Robertt/moviereview/internal/domain"
)

// 海报缺失时的占位图（两种页面沿用各自原有的尺寸）。
const (
	PlaceholderProxy = "https://via.placeholder.com/200x300?text=No+Image"
	PlaceholderDual  = "https://via.placeholder.com/150"
)

// Card 是一张电影卡片的展示数据（已格式化）。
type Card struct {
	ID        string
	Title     string
	PosterURL string
	Heading   string

	Release string // 空表示不展示
	Rating  string // 空表示不展示

	// Detail 非 nil 时展示剧情与 IMDb 评分。
	Detail *domain.Detail

	Reviews      []string
	ReviewPrefix string
}

// ProxyCard 构造代理版页面的卡片：标题、上映日期、TMDB 评分。
func ProxyCard(m domain.Movie, reviews []string) Card {
	release := strings.TrimSpace(m.ReleaseDate)
	if release == "" {
		release = domain.NotAvailable
	}
	rating := domain.NotAvailable
	if m.HasRating {
		rating = fmt.Sprintf("%.1f", m.Rating)
	}
	return Card{
		ID:           m.ID,
		Title:        m.Title,
		PosterURL:    posterOr(m.PosterURL, PlaceholderProxy),
		Heading:      m.Title,
		Release:      "Release: " + release,
		Rating:       rating + " / 10",
		Reviews:      cloneStrings(reviews),
		ReviewPrefix: "• ",
	}
}

// DualCard 构造双 provider 页面的卡片：“标题 (年份)”，secondary 结果附带详情。
func DualCard(m domain.Movie, detail *domain.Detail, reviews []string) Card {
	year := strings.TrimSpace(m.Year)
	if year == "" {
		year = domain.NotAvailable
	}
	c := Card{
		ID:        m.ID,
		Title:     m.Title,
		PosterURL: posterOr(m.PosterURL, PlaceholderDual),
		Heading:   m.Title + " (" + year + ")",
		Reviews:   cloneStrings(reviews),
	}
	if detail != nil {
		d := domain.Detail{Plot: orNA(detail.Plot), IMDbRating: orNA(detail.IMDbRating)}
		c.Detail = &d
	}
	return c
}

func posterOr(u, placeholder string) string {
	u = strings.TrimSpace(u)
	if u == "" || u == domain.NotAvailable {
		return placeholder
	}
	return u
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return domain.NotAvailable
	}
	return s
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
