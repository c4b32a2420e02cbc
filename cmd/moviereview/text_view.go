package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/John-Robertt/moviereview/internal/ui"
)

var _ ui.View = (*textView)(nil)

// textView 是终端版页面视图。
//
// 设计目标：
// - 页面状态保存在内嵌的 HTMLView 中（结束时统一输出到 stdout）
// - 过程事件（loading / 提示文案 / toast / 建议）实时写到 w（通常是 stderr）；w 为 nil 时静默
type textView struct {
	*ui.HTMLView

	mu sync.Mutex
	w  io.Writer
}

func newTextView(w io.Writer) *textView {
	return &textView{HTMLView: ui.NewHTMLView(), w: w}
}

func (v *textView) logf(format string, args ...any) {
	if v.w == nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.w, "[%s] %s\n", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
}

func (v *textView) SetLoading(on bool) {
	v.HTMLView.SetLoading(on)
	if on {
		v.logf("Loading...")
	}
}

func (v *textView) ShowMessage(msg string) {
	v.HTMLView.ShowMessage(msg)
	v.logf("%s", msg)
}

func (v *textView) ShowToast(msg string) {
	v.HTMLView.ShowToast(msg)
	v.logf("toast: %s", msg)
}

func (v *textView) ShowSuggestions(items []ui.Suggestion) {
	v.HTMLView.ShowSuggestions(items)
	labels := make([]string, 0, len(items))
	for _, it := range items {
		labels = append(labels, it.Label())
	}
	v.logf("建议：%s", strings.Join(labels, " | "))
}

// printState 把最终页面状态以文本卡片形式写到 w。
func printState(w io.Writer, st ui.State) {
	if st.Message != "" {
		fmt.Fprintln(w, st.Message)
	}
	for i, c := range st.Cards {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s  [%s]\n", c.Heading, c.ID)
		var line []string
		if c.Release != "" {
			line = append(line, c.Release)
		}
		if c.Rating != "" {
			line = append(line, "⭐ "+c.Rating)
		}
		if len(line) > 0 {
			fmt.Fprintf(w, "  %s\n", strings.Join(line, "  "))
		}
		if c.Detail != nil {
			fmt.Fprintf(w, "  %s\n", c.Detail.Plot)
			fmt.Fprintf(w, "  IMDb: %s/10\n", c.Detail.IMDbRating)
		}
		fmt.Fprintf(w, "  poster: %s\n", c.PosterURL)
		for _, r := range c.Reviews {
			fmt.Fprintf(w, "  • %s\n", r)
		}
	}
}

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func pickProgressWriter() (io.Writer, bool) {
	// 过程输出只在交互终端启用；默认走 stderr（不污染 stdout 结果）。
	if isTTY(os.Stderr) {
		return os.Stderr, true
	}
	return nil, false
}
