package ui

import (
	"sync"
	"time"
)

// Toaster 是单槽位的临时提示：新提示直接替换旧提示（不排队），d 后自动隐藏。
type Toaster struct {
	view View
	d    time.Duration

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

func NewToaster(v View, d time.Duration) *Toaster {
	return &Toaster{view: v, d: d}
}

func (t *Toaster) Show(msg string) {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.gen++
	gen := t.gen
	t.view.ShowToast(msg)
	t.timer = time.AfterFunc(t.d, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.gen != gen {
			return
		}
		t.timer = nil
		t.view.HideToast()
	})
	t.mu.Unlock()
}

// Stop 取消待执行的隐藏（不改变当前展示）。
func (t *Toaster) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
