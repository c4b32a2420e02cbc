package domain

// ReviewRecord 是单部电影的评论记录（record 布局）。
//
// Ratings 保留原有结构但从未写入；Comments 按提交顺序追加（最旧在前），不支持编辑/删除。
type ReviewRecord struct {
	Ratings  []float64 `json:"ratings"`
	Comments []string  `json:"comments"`
}
