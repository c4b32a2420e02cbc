package ui

import (
	"bytes"
	"html/template"
	"io"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

var _ View = (*HTMLView)(nil)

// State 是页面在某一时刻的完整展示状态。
type State struct {
	Loading            bool
	Query              string
	Message            string
	Cards              []Card
	Suggestions        []Suggestion
	SuggestionsVisible bool
	Toast              string
	// Drafts 是各卡片评论输入框中尚未提交的内容（key 为 movie ID）。
	Drafts map[string]string
}

// HTMLView 在内存中维护页面状态，并可随时渲染为 HTML 文档。
type HTMLView struct {
	mu sync.Mutex
	st State
}

func NewHTMLView() *HTMLView {
	return &HTMLView{st: State{Drafts: map[string]string{}}}
}

func (v *HTMLView) SetLoading(on bool) {
	v.mu.Lock()
	v.st.Loading = on
	v.mu.Unlock()
}

func (v *HTMLView) SetQuery(q string) {
	v.mu.Lock()
	v.st.Query = q
	v.mu.Unlock()
}

func (v *HTMLView) ShowMovies(cards []Card) {
	v.mu.Lock()
	v.st.Message = ""
	v.st.Cards = cloneCards(cards)
	v.mu.Unlock()
}

func (v *HTMLView) ShowMessage(msg string) {
	v.mu.Lock()
	v.st.Message = msg
	v.st.Cards = nil
	v.mu.Unlock()
}

func (v *HTMLView) ShowReviews(movieID string, reviews []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.st.Cards {
		if v.st.Cards[i].ID == movieID {
			v.st.Cards[i].Reviews = cloneStrings(reviews)
		}
	}
}

func (v *HTMLView) ClearReviewInput(movieID string) {
	v.mu.Lock()
	delete(v.st.Drafts, movieID)
	v.mu.Unlock()
}

// TypeReview 模拟用户在卡片的评论框中输入内容。
func (v *HTMLView) TypeReview(movieID, text string) {
	v.mu.Lock()
	v.st.Drafts[movieID] = text
	v.mu.Unlock()
}

func (v *HTMLView) ShowSuggestions(items []Suggestion) {
	v.mu.Lock()
	v.st.Suggestions = append([]Suggestion(nil), items...)
	v.st.SuggestionsVisible = true
	v.mu.Unlock()
}

func (v *HTMLView) HideSuggestions() {
	v.mu.Lock()
	v.st.SuggestionsVisible = false
	v.mu.Unlock()
}

func (v *HTMLView) ShowToast(msg string) {
	v.mu.Lock()
	v.st.Toast = msg
	v.mu.Unlock()
}

func (v *HTMLView) HideToast() {
	v.mu.Lock()
	v.st.Toast = ""
	v.mu.Unlock()
}

// State 返回当前状态的副本。
func (v *HTMLView) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()

	st := v.st
	st.Cards = cloneCards(v.st.Cards)
	st.Suggestions = append([]Suggestion(nil), v.st.Suggestions...)
	st.Drafts = make(map[string]string, len(v.st.Drafts))
	for k, d := range v.st.Drafts {
		st.Drafts[k] = d
	}
	return st
}

type renderCard struct {
	Card
	Draft string
}

type renderState struct {
	State
	Cards []renderCard
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Movie Reviews</title></head>
<body>
<div class="search">
<input type="text" id="searchInput" placeholder="Search movies..." value="{{.Query}}">
<div id="suggestions"{{if not .SuggestionsVisible}} style="display:none"{{end}}>{{range .Suggestions}}
<div class="suggestion">{{.Label}}</div>{{end}}
</div>
</div>
<div id="loading"{{if not .Loading}} style="display:none"{{end}}>Loading...</div>
<div id="movies">{{if .Message}}
<p class="message">{{.Message}}</p>{{end}}{{range .Cards}}
<div class="movie-card" data-id="{{.ID}}">
<img src="{{.PosterURL}}" alt="{{.Title}}">
<h3>{{.Heading}}</h3>{{if .Release}}
<p class="release">{{.Release}}</p>{{end}}{{if .Rating}}
<p class="rating">⭐ {{.Rating}}</p>{{end}}{{with .Detail}}
<p class="plot">{{.Plot}}</p>
<p class="rating">IMDb: {{.IMDbRating}}/10</p>{{end}}
<div class="review-box">
<textarea id="review-{{.ID}}" placeholder="Leave a review...">{{.Draft}}</textarea>
<button>Add Review</button>
</div>
<div class="user-reviews" id="reviews-{{.ID}}">{{$prefix := .ReviewPrefix}}{{range .Reviews}}<p>{{$prefix}}{{.}}</p>{{end}}</div>
</div>{{end}}
</div>
<div id="toast"{{if .Toast}} class="show"{{end}}>{{.Toast}}</div>
</body>
</html>
`))

// Render 把当前状态渲染为完整 HTML 文档。
func (v *HTMLView) Render(w io.Writer) error {
	st := v.State()
	rs := renderState{State: st, Cards: make([]renderCard, 0, len(st.Cards))}
	for _, c := range st.Cards {
		rs.Cards = append(rs.Cards, renderCard{Card: c, Draft: st.Drafts[c.ID]})
	}
	return pageTmpl.Execute(w, rs)
}

func (v *HTMLView) HTML() (string, error) {
	var buf bytes.Buffer
	if err := v.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// CountCards 统计 HTML 文档中的电影卡片数量。
func CountCards(r io.Reader) (int, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return 0, err
	}
	return doc.Find("div.movie-card").Length(), nil
}

func cloneCards(in []Card) []Card {
	if in == nil {
		return nil
	}
	out := make([]Card, len(in))
	for i, c := range in {
		c.Reviews = cloneStrings(c.Reviews)
		if c.Detail != nil {
			d := *c.Detail
			c.Detail = &d
		}
		out[i] = c
	}
	return out
}
