package query

import (
	"context"

	"golang.org/x/sync/errgroup"

	"secure-agent-api/internal/domain/entity"
	"secure-agent-api/internal/domain/repository"
	"secure-agent-api/pkg/logger"
	"secure-agent-api/pkg/metrics"
)

// Evaluator 对一批候选并发执行逐文档授权判定。
// 每个候选恰好触发一次检查且全部同时在途（候选数由上游 topK 限定），
// 结果按候选下标写回，整体顺序与输入一致。
type Evaluator struct {
	checker repository.RelationshipChecker
}

// NewEvaluator 创建判定器
func NewEvaluator(checker repository.RelationshipChecker) *Evaluator {
	return &Evaluator{checker: checker}
}

// Evaluate 返回与 candidates 等长、同序的判定列表。
// 检查失败按拒绝处理（fail-closed），不会使整个查询失败。
func (e *Evaluator) Evaluate(ctx context.Context, actor entity.ActorID, candidates []entity.Candidate) []entity.AccessDecision {
	decisions := make([]entity.AccessDecision, len(candidates))
	if len(candidates) == 0 {
		return decisions
	}
	metrics.AuthzBatchSize.Observe(float64(len(candidates)))

	g, gctx := errgroup.WithContext(ctx)

	for i, c := range candidates {
		g.Go(func() error {
			outcome := e.checker.Check(gctx, actor.String(), entity.RelationViewer, entity.DocumentRef(c.ID))

			reason := entity.ReasonDenied
			switch {
			case outcome.Err != nil:
				reason = entity.ReasonCheckFailed
			case outcome.Allowed:
				reason = entity.ReasonGranted
			}

			decisions[i] = entity.AccessDecision{
				DocumentID: c.ID,
				Allowed:    outcome.Err == nil && outcome.Allowed,
				Reason:     reason,
				Score:      c.Score,
				Excerpt:    c.Excerpt,
			}
			return nil
		})
	}
	// 检查失败已折叠进判定结果，goroutine 不返回错误
	_ = g.Wait()

	allowed := 0
	for _, d := range decisions {
		if d.Allowed {
			allowed++
		}
	}
	logger.FromContext(ctx).Info("access evaluation complete",
		"actor", actor.String(),
		"total", len(candidates),
		"allowed", allowed,
	)
	return decisions
}
