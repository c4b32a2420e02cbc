package ui

import (
	"sync"
	"time"
)

// Debouncer 在静默期 d 结束后才执行最后一次 Trigger 的函数；新的 Trigger 取消尚未执行的旧函数。
type Debouncer struct {
	d time.Duration

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

func NewDebouncer(d time.Duration) *Debouncer {
	return &Debouncer{d: d}
}

func (db *Debouncer) Trigger(fn func()) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.timer != nil {
		db.timer.Stop()
	}
	db.gen++
	gen := db.gen
	db.timer = time.AfterFunc(db.d, func() {
		db.mu.Lock()
		current := db.gen == gen
		if current {
			db.timer = nil
		}
		db.mu.Unlock()
		if current {
			fn()
		}
	})
}

// Stop 取消尚未执行的函数；返回是否确实取消了一个待执行项。
func (db *Debouncer) Stop() bool {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.gen++
	if db.timer == nil {
		return false
	}
	stopped := db.timer.Stop()
	db.timer = nil
	return stopped
}
