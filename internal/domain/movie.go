package domain

// NotAvailable 是缺失字段的统一展示值（上游缺失或详情查询失败时使用）。
const NotAvailable = "N/A"

// Movie 是 provider 返回的电影摘要（只在一次渲染周期内存在，不做服务端持久化）。
//
// 约束：
// - ID 是评论记录的键；不同 provider 的 ID 命名空间不同（TMDB 数字 / 带前缀，OMDB 为 tt…），评论不互通
// - PosterURL 为空表示上游没有海报，由渲染层替换为占位图
// - HasRating=false 时 Rating 无意义（OMDB 搜索结果不带评分）
type Movie struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date,omitempty"` // ISO date, e.g. "2024-05-01"
	Year        string  `json:"year,omitempty"`
	PosterURL   string  `json:"poster_url,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
	HasRating   bool    `json:"-"`

	// Provider 是产出该条目的 provider name（小写）。
	Provider string `json:"provider"`
}

// Detail 是单部电影的补充信息（仅 secondary provider 提供）。
type Detail struct {
	Plot       string `json:"plot"`
	IMDbRating string `json:"imdb_rating"`
}

// YearOf 从 "2024-05-01" 这类日期中取年份；空值返回 N/A。
func YearOf(releaseDate string) string {
	if len(releaseDate) < 4 {
		return NotAvailable
	}
	for i := 0; i < 4; i++ {
		if releaseDate[i] < '0' || releaseDate[i] > '9' {
			return NotAvailable
		}
	}
	return releaseDate[:4]
}
