package main

import (
	"fmt"
	"strings"

	"github.com/John-Robertt/moviereview/internal/config"
)

type commonArgs struct {
	ConfigPath string

	Addr    string
	AddrSet bool

	Variant    string
	VariantSet bool

	HTML bool

	Positional []string
}

// parseCommonArgs 解析三个子命令共用的参数；allowHTML 控制是否接受 --html。
// "--" 之后的内容一律视为位置参数（评论内容可能以 "-" 开头）。
func parseCommonArgs(args []string, allowHTML bool) (commonArgs, error) {
	ca := commonArgs{}

	value := func(i *int, name string) (string, error) {
		if *i+1 >= len(args) {
			return "", fmt.Errorf("%s 需要一个值", name)
		}
		*i++
		return args[*i], nil
	}

	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--":
			ca.Positional = append(ca.Positional, args[i+1:]...)
			i = len(args)
		case a == "--config":
			v, err := value(&i, a)
			if err != nil {
				return commonArgs{}, err
			}
			ca.ConfigPath = v
		case strings.HasPrefix(a, "--config="):
			ca.ConfigPath = strings.TrimPrefix(a, "--config=")
		case a == "--addr":
			v, err := value(&i, a)
			if err != nil {
				return commonArgs{}, err
			}
			ca.Addr, ca.AddrSet = v, true
		case strings.HasPrefix(a, "--addr="):
			ca.Addr, ca.AddrSet = strings.TrimPrefix(a, "--addr="), true
		case a == "--variant":
			v, err := value(&i, a)
			if err != nil {
				return commonArgs{}, err
			}
			ca.Variant, ca.VariantSet = v, true
		case strings.HasPrefix(a, "--variant="):
			ca.Variant, ca.VariantSet = strings.TrimPrefix(a, "--variant="), true
		case a == "--html" && allowHTML:
			ca.HTML = true
		case strings.HasPrefix(a, "-"):
			return commonArgs{}, fmt.Errorf("未知参数 %q", a)
		default:
			ca.Positional = append(ca.Positional, a)
		}
	}

	if ca.AddrSet && strings.TrimSpace(ca.Addr) == "" {
		return commonArgs{}, fmt.Errorf("--addr 不能为空")
	}
	if ca.VariantSet {
		if err := config.ValidateVariant(ca.Variant); err != nil {
			return commonArgs{}, fmt.Errorf("--variant：%w", err)
		}
	}
	return ca, nil
}
