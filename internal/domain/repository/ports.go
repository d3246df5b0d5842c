// Package repository 定义应用层对外部协作者的最小依赖（ports）
package repository

import (
	"context"

	"secure-agent-api/internal/domain/entity"
)

// Ranker 候选检索接口。对本服务而言是黑盒，只约定输出形状：
// 按相关性降序的带分候选列表。
type Ranker interface {
	Retrieve(ctx context.Context, query string, topK int) ([]entity.Candidate, error)
}

// Generator 答案生成接口。仅以允许的文档子序列作为上下文调用。
type Generator interface {
	Generate(ctx context.Context, question string, contextDocs []entity.Candidate) (string, error)
}

// CheckOutcome 单次关系检查的结果
type CheckOutcome struct {
	Allowed bool
	// Err 非 nil 表示检查本身失败（超时、传输错误）。
	// 仅用于观测，调用方须按拒绝处理，不得作为授权信号暴露。
	Err error
}

// RelationshipChecker 关系检查接口。一次调用恰好回答一个关系问题；
// 并发由调用方（Evaluator）提供，实现内部不做批量或重试。
type RelationshipChecker interface {
	Check(ctx context.Context, user, relation, object string) CheckOutcome
}

// RelationshipWriter 授权后端的初始化写入面。仅在系统初始化时使用，
// 查询期间不发生变更。
type RelationshipWriter interface {
	// WriteAuthorizationModel 写入关系模式（member/viewer/parent 及其组合规则），幂等
	WriteAuthorizationModel(ctx context.Context) (modelID string, err error)
	// WriteTuples 批量写入关系元组，可加且与顺序无关；
	// 重复写入相同元组在检查语义上无副作用
	WriteTuples(ctx context.Context, tuples []entity.RelationTuple) error
}
