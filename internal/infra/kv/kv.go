package kv

import (
	"errors"
	"sync"
)

// Store 是注入给展示层的本地键值存储能力（对应浏览器 localStorage）。
//
// 约束：
// - key 与 value 都是字符串；value 通常是 JSON 文本
// - Get 未命中返回 ok=false，不算错误
// - Set 覆盖同名 key
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

var ErrEmptyKey = errors.New("kv: key 不能为空")

// Memory 是进程内实现（测试与一次性会话使用）。
type Memory struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemory() *Memory {
	return &Memory{m: make(map[string]string)}
}

func (s *Memory) Get(key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *Memory) Set(key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		s.m = make(map[string]string)
	}
	s.m[key] = value
	return nil
}

// Len 返回当前 key 数量。
func (s *Memory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
