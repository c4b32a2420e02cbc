package provider

import (
	"context"

	"github.com/John-Robertt/moviereview/internal/domain"
)

// Provider 把“上游 API 差异”限制在 provider 子包内部；展示层只依赖统一接口与 domain.Movie。
//
// 约束：
// - 不做缓存、不做重试、不做限速
// - 上游成功但结果为空时返回空切片、nil error；是否视为失败由调用方决定（RunChain 视为失败）
// - Listing 是该 provider 的默认列表（TMDB：本周热门；OMDB：通用关键字列表）
type Provider interface {
	Name() string
	Listing(ctx context.Context) ([]domain.Movie, error)
	Search(ctx context.Context, query string) ([]domain.Movie, error)
}

// Detailer 由支持单片详情查询的 provider 实现（目前只有 OMDB）。
type Detailer interface {
	Detail(ctx context.Context, id string) (domain.Detail, error)
}
