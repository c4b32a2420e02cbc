package review

import (
	"errors"
	"reflect"
	"testing"

	"github.com/John-Robertt/moviereview/internal/infra/kv"
)

func TestLayout_Key(t *testing.T) {
	if got := LayoutList.Key("603"); got != "reviews-603" {
		t.Fatalf("list key 不符合预期：%q", got)
	}
	if got := LayoutRecord.Key("tmdb_603"); got != "reviews_tmdb_603" {
		t.Fatalf("record key 不符合预期：%q", got)
	}
}

func TestBook_AddAppendsInOrder(t *testing.T) {
	for _, layout := range []Layout{LayoutList, LayoutRecord} {
		store := kv.NewMemory()
		b, err := NewBook(store, layout)
		if err != nil {
			t.Fatalf("不期望错误：%v", err)
		}

		if _, err := b.Add("603", "  first  "); err != nil {
			t.Fatalf("[%s] 不期望错误：%v", layout, err)
		}
		got, err := b.Add("603", "second")
		if err != nil {
			t.Fatalf("[%s] 不期望错误：%v", layout, err)
		}
		want := []string{"first", "second"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("[%s] 期望 %v，实际 %v", layout, want, got)
		}

		listed, err := b.List("603")
		if err != nil {
			t.Fatalf("[%s] 不期望错误：%v", layout, err)
		}
		if !reflect.DeepEqual(listed, want) {
			t.Fatalf("[%s] List 期望 %v，实际 %v", layout, want, listed)
		}
	}
}

func TestBook_EmptyReviewLeavesStoreUntouched(t *testing.T) {
	store := kv.NewMemory()
	b, _ := NewBook(store, LayoutList)

	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := b.Add("603", text); !errors.Is(err, ErrEmptyReview) {
			t.Fatalf("text=%q 期望 ErrEmptyReview，实际：%v", text, err)
		}
	}
	if store.Len() != 0 {
		t.Fatalf("空评论不应懒创建记录，实际 key 数量 %d", store.Len())
	}
}

func TestBook_StorageFormats(t *testing.T) {
	store := kv.NewMemory()

	list, _ := NewBook(store, LayoutList)
	if _, err := list.Add("603", "great"); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	v, _, _ := store.Get("reviews-603")
	if v != `["great"]` {
		t.Fatalf("list 布局序列化不符合预期：%q", v)
	}

	rec, _ := NewBook(store, LayoutRecord)
	if _, err := rec.Add("tt0372784", "dark"); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	v, _, _ = store.Get("reviews_tt0372784")
	if v != `{"ratings":[],"comments":["dark"]}` {
		t.Fatalf("record 布局序列化不符合预期：%q", v)
	}
}

func TestBook_ReadsExistingRecord(t *testing.T) {
	store := kv.NewMemory()
	_ = store.Set("reviews_tt1", `{"ratings":[4],"comments":["old"]}`)

	b, _ := NewBook(store, LayoutRecord)
	got, err := b.Add("tt1", "new")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if !reflect.DeepEqual(got, []string{"old", "new"}) {
		t.Fatalf("期望保留旧评论，实际 %v", got)
	}
	v, _, _ := store.Get("reviews_tt1")
	if v != `{"ratings":[4],"comments":["old","new"]}` {
		t.Fatalf("ratings 不应被丢弃：%q", v)
	}
}

func TestBook_MissingRecordIsEmpty(t *testing.T) {
	b, _ := NewBook(kv.NewMemory(), LayoutRecord)
	got, err := b.List("nope")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got) != 0 {
		t.Fatalf("期望空列表，实际 %v", got)
	}
}

func TestBook_CorruptRecord(t *testing.T) {
	store := kv.NewMemory()
	_ = store.Set("reviews-1", `{`)

	b, _ := NewBook(store, LayoutList)
	if _, err := b.List("1"); err == nil {
		t.Fatalf("期望解析错误，但得到 nil")
	}
}

func TestNewBook_Validation(t *testing.T) {
	if _, err := NewBook(nil, LayoutList); err == nil {
		t.Fatalf("nil store 期望错误")
	}
	if _, err := NewBook(kv.NewMemory(), Layout("nope")); err == nil {
		t.Fatalf("未知布局期望错误")
	}
}
