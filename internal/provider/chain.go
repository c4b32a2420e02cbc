package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/John-Robertt/moviereview/internal/domain"
)

// Op 是一次 provider 调用的类型。
type Op string

const (
	OpListing Op = "listing"
	OpSearch  Op = "search"
)

// Step 是回退链中的一步：用哪个 provider 做哪种调用。
type Step struct {
	Provider string
	Op       Op
}

// Attempt 记录一次 provider 尝试（用于解释回退原因与展示层选择提示文案）。
type Attempt struct {
	Provider string
	Op       Op
	Err      error // nil 表示成功
}

// Result 是回退链的最终结果。
type Result struct {
	Movies   []domain.Movie
	Provider string // 最终成功的 provider name；失败时为空
	Attempts []Attempt
}

// RunChain 按顺序尝试 steps，第一个“成功且非空”的结果立即返回（短路）。
//
// onFail（可为 nil）在每一步失败后、下一步开始前被调用，便于展示层即时提示“正在回退”。
// 所有步骤失败时返回最后一个错误（*Error）。
func RunChain(ctx context.Context, reg Registry, steps []Step, query string, onFail func(Attempt)) (Result, error) {
	if len(steps) == 0 {
		return Result{}, errors.New("回退链不能为空")
	}

	var (
		res     Result
		lastErr error
	)
	for _, st := range steps {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		p, ok := reg.Get(st.Provider)
		if !ok {
			lastErr = &Error{Provider: st.Provider, Op: st.Op, Err: fmt.Errorf("provider 未注册：%q", st.Provider)}
			res.Attempts = append(res.Attempts, Attempt{Provider: st.Provider, Op: st.Op, Err: lastErr})
			continue
		}

		movies, err := call(ctx, p, st.Op, query)
		if err == nil && len(movies) == 0 {
			err = ErrNoResults
		}
		if err != nil {
			lastErr = &Error{Provider: p.Name(), Op: st.Op, Err: err}
			a := Attempt{Provider: p.Name(), Op: st.Op, Err: err}
			res.Attempts = append(res.Attempts, a)
			if onFail != nil {
				onFail(a)
			}
			continue
		}

		res.Attempts = append(res.Attempts, Attempt{Provider: p.Name(), Op: st.Op})
		res.Movies = movies
		res.Provider = p.Name()
		return res, nil
	}
	return res, lastErr
}

func call(ctx context.Context, p Provider, op Op, query string) ([]domain.Movie, error) {
	switch op {
	case OpListing:
		return p.Listing(ctx)
	case OpSearch:
		return p.Search(ctx, query)
	default:
		return nil, fmt.Errorf("未知 op：%q", op)
	}
}
