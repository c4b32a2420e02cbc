package provider

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Registry 按小写 name 索引已配置的 provider（构造后只读，可并发使用）。
type Registry struct {
	byName map[string]Provider
}

func NewRegistry(providers ...Provider) (Registry, error) {
	r := Registry{byName: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		if p == nil {
			return Registry{}, errors.New("registry: provider 为 nil")
		}
		key := normName(p.Name())
		if key == "" {
			return Registry{}, errors.New("registry: provider 名称为空")
		}
		if _, dup := r.byName[key]; dup {
			return Registry{}, fmt.Errorf("registry: provider %q 重复注册", key)
		}
		r.byName[key] = p
	}
	return r, nil
}

func (r Registry) Get(name string) (Provider, bool) {
	p, ok := r.byName[normName(name)]
	return p, ok
}

// Detailer 返回 name 对应的 provider 的详情能力；未注册或不支持详情时 ok=false。
func (r Registry) Detailer(name string) (Detailer, bool) {
	p, ok := r.Get(name)
	if !ok {
		return nil, false
	}
	d, ok := p.(Detailer)
	return d, ok
}

// Names 返回已注册的 provider 名称（升序）。
func (r Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func normName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
