// Package ui 提供页面展示层的基础件：View 事件接口、卡片构造、HTML 渲染、debounce 与 toast。
package ui

// View 把“页面状态变化”从页面逻辑中解耦出来。
//
// 约束：
// - 页面逻辑只发事件，不做任何输出；View 决定如何展示（HTML、终端、测试记录）
// - 实现必须并发安全：事件可能来自 debounce / toast 定时器的 goroutine
type View interface {
	SetLoading(on bool)
	SetQuery(q string)
	// ShowMovies 整体替换卡片区（同时清掉之前的提示文案）。
	ShowMovies(cards []Card)
	// ShowMessage 整体替换卡片区为一行提示文案。
	ShowMessage(msg string)
	// ShowReviews 只替换指定卡片的评论列表。
	ShowReviews(movieID string, reviews []string)
	ClearReviewInput(movieID string)
	ShowSuggestions(items []Suggestion)
	HideSuggestions()
	ShowToast(msg string)
	HideToast()
}

// Suggestion 是搜索框下拉建议中的一项。
type Suggestion struct {
	Title string
	Year  string
}

func (s Suggestion) Label() string { return s.Title + " (" + s.Year + ")" }
