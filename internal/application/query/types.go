// Package query 实现授权过滤的问答流水线：
// 检索 -> 逐文档授权判定 -> 过滤 -> 生成
package query

import (
	"secure-agent-api/internal/domain/entity"
)

// Input 一次查询的输入，查询开始后不可变
type Input struct {
	Actor    entity.ActorID
	Question string
}

// Result 一次查询的完整结果。Documents 覆盖全部候选（含被拒绝的），
// 顺序与检索结果一致；答案只由允许的文档生成。
type Result struct {
	Answer       string                  `json:"answer"`
	Documents    []entity.AccessDecision `json:"documents"`
	AllowedCount int                     `json:"allowed_count"`
	TotalCount   int                     `json:"total_count"`
}

// NoAccessAnswer 允许集为空时返回的固定答案，不调用生成服务
const NoAccessAnswer = "No documents you are authorized to read matched this question."
