package kv

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/moviereview/internal/infra/fsx"
)

// File 把每个 key 存成 <Dir>/<escaped key> 一个文件，跨进程保留（对应“刷新页面后评论仍在”）。
//
// 约束：
// - key 经过 PathEscape，避免路径穿越；"." / ".." 直接拒绝
// - 写入走 fsx.WriteFileAtomic（整体替换）
type File struct {
	Dir string
}

func NewFile(dir string) File {
	return File{Dir: filepath.Clean(strings.TrimSpace(dir))}
}

// Path 返回 key 对应的文件绝对路径。
func (s File) Path(key string) (string, error) {
	name, err := fileName(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.Dir, name), nil
}

func (s File) Get(key string) (string, bool, error) {
	path, err := s.Path(key)
	if err != nil {
		return "", false, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("kv: 读取 %q 失败：%w", key, err)
	}
	return string(b), true, nil
}

func (s File) Set(key, value string) error {
	name, err := fileName(key)
	if err != nil {
		return err
	}
	if err := fsx.WriteFileAtomic(s.Dir, name, []byte(value)); err != nil {
		return fmt.Errorf("kv: 写入 %q 失败：%w", key, err)
	}
	return nil
}

func fileName(key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	name := url.PathEscape(key)
	if name == "." || name == ".." || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("kv: 非法 key：%q", key)
	}
	return name, nil
}
