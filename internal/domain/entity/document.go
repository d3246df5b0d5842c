// Package entity 定义领域实体
package entity

// Document 可检索文档。关系数据在系统初始化时一次性写入授权后端，
// 查询期间只读。
type Document struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Language string `json:"language"`
	Text     string `json:"text"`
	// Folder 父文件夹名（不含命名空间前缀）。有效 viewer 集合完全由
	// 父文件夹的 viewer 决定。
	Folder string `json:"folder"`
}

// Candidate 检索器返回的一条带分的候选
type Candidate struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Language string  `json:"language"`
	Excerpt  string  `json:"excerpt"`
	Score    float64 `json:"score"`
}

// DecisionReason 单文档访问判定结果的原因
type DecisionReason string

const (
	// ReasonGranted 授权后端确认允许
	ReasonGranted DecisionReason = "granted"
	// ReasonDenied 授权后端确认拒绝
	ReasonDenied DecisionReason = "denied"
	// ReasonCheckFailed 检查失败（超时、传输错误等），按拒绝处理
	ReasonCheckFailed DecisionReason = "check_failed"
)

// AccessDecision 单次查询中对 (actor, document) 的访问判定。
// 每次查询新建，响应组装完成后丢弃，从不跨查询缓存。
type AccessDecision struct {
	DocumentID string         `json:"document_id"`
	Allowed    bool           `json:"allowed"`
	Reason     DecisionReason `json:"reason"`
	Score      float64        `json:"score"`
	Excerpt    string         `json:"excerpt"`
}
