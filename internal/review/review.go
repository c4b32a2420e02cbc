// Package review 管理按电影 ID 存放的用户评论（基于注入的 kv.Store）。
package review

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/John-Robertt/moviereview/internal/domain"
	"github.com/John-Robertt/moviereview/internal/infra/kv"
)

// ErrEmptyReview 表示提交内容 trim 后为空；调用方决定静默忽略还是提示用户。
var ErrEmptyReview = errors.New("review: 评论内容为空")

// Layout 描述评论记录在存储中的 key 与序列化格式。
type Layout string

const (
	// LayoutList：key = "reviews-<id>"，value = JSON 字符串数组（代理版页面使用）。
	LayoutList Layout = "list"
	// LayoutRecord：key = "reviews_<id>"，value = {"ratings":[],"comments":[]}（双 provider 页面使用）。
	LayoutRecord Layout = "record"
)

// Key 返回 id 在该布局下的存储 key。
func (l Layout) Key(movieID string) string {
	if l == LayoutRecord {
		return "reviews_" + movieID
	}
	return "reviews-" + movieID
}

// Book 是评论读写入口。
//
// 约束：
// - 只追加，不编辑/删除
// - 记录按需懒创建（首次提交时才写入存储）
// - 读改写在一次调用内完成；Book 不做跨调用加锁（同一页面的事件处理是串行的）
type Book struct {
	store  kv.Store
	layout Layout
}

func NewBook(store kv.Store, layout Layout) (*Book, error) {
	if store == nil {
		return nil, errors.New("review: store 不能为空")
	}
	switch layout {
	case LayoutList, LayoutRecord:
	default:
		return nil, fmt.Errorf("review: 未知布局 %q", layout)
	}
	return &Book{store: store, layout: layout}, nil
}

func (b *Book) Layout() Layout { return b.layout }

// List 返回 movieID 的全部评论（最旧在前）。记录不存在时返回空切片。
func (b *Book) List(movieID string) ([]string, error) {
	rec, err := b.load(movieID)
	if err != nil {
		return nil, err
	}
	return rec.Comments, nil
}

// Add 追加一条评论并返回追加后的完整列表。
// text trim 后为空时返回 ErrEmptyReview，存储不变。
func (b *Book) Add(movieID, text string) ([]string, error) {
	if strings.TrimSpace(movieID) == "" {
		return nil, errors.New("review: movieID 不能为空")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyReview
	}

	rec, err := b.load(movieID)
	if err != nil {
		return nil, err
	}
	rec.Comments = append(rec.Comments, text)
	if err := b.save(movieID, rec); err != nil {
		return nil, err
	}
	return rec.Comments, nil
}

func (b *Book) load(movieID string) (domain.ReviewRecord, error) {
	key := b.layout.Key(movieID)
	raw, ok, err := b.store.Get(key)
	if err != nil {
		return domain.ReviewRecord{}, err
	}
	rec := domain.ReviewRecord{Ratings: []float64{}, Comments: []string{}}
	if !ok || strings.TrimSpace(raw) == "" || raw == "null" {
		return rec, nil
	}

	switch b.layout {
	case LayoutList:
		var list []string
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			return domain.ReviewRecord{}, fmt.Errorf("review: 解析 %q 失败：%w", key, err)
		}
		if list != nil {
			rec.Comments = list
		}
	default:
		var stored domain.ReviewRecord
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			return domain.ReviewRecord{}, fmt.Errorf("review: 解析 %q 失败：%w", key, err)
		}
		if stored.Ratings != nil {
			rec.Ratings = stored.Ratings
		}
		if stored.Comments != nil {
			rec.Comments = stored.Comments
		}
	}
	return rec, nil
}

func (b *Book) save(movieID string, rec domain.ReviewRecord) error {
	var (
		raw []byte
		err error
	)
	if b.layout == LayoutList {
		raw, err = json.Marshal(rec.Comments)
	} else {
		raw, err = json.Marshal(rec)
	}
	if err != nil {
		return err
	}
	return b.store.Set(b.layout.Key(movieID), string(raw))
}
