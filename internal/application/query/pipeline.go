package query

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"secure-agent-api/internal/domain/entity"
	"secure-agent-api/internal/domain/repository"
	"secure-agent-api/pkg/errors"
	"secure-agent-api/pkg/logger"
	"secure-agent-api/pkg/metrics"
)

var tracer = otel.Tracer("query")

// Pipeline 授权过滤的问答流水线。各阶段严格串行：
// 检索 -> 判定 -> 过滤 -> 生成，生成只会看到允许的文档。
type Pipeline struct {
	ranker    repository.Ranker
	evaluator *Evaluator
	generator repository.Generator
	topK      int
}

// NewPipeline 创建流水线
func NewPipeline(ranker repository.Ranker, evaluator *Evaluator, generator repository.Generator, topK int) *Pipeline {
	if topK <= 0 {
		topK = 5
	}
	return &Pipeline{
		ranker:    ranker,
		evaluator: evaluator,
		generator: generator,
		topK:      topK,
	}
}

// Process 执行一次查询。返回的 Result 覆盖全部候选的判定，
// 其中被拒绝的文档绝不进入生成上下文。
func (p *Pipeline) Process(ctx context.Context, input Input) (*Result, error) {
	ctx, span := tracer.Start(ctx, "query.Process",
		trace.WithAttributes(attribute.String("actor", input.Actor.String())))
	defer span.End()

	log := logger.FromContext(ctx)

	// 检索
	candidates, err := runStage(ctx, "retrieving", func(ctx context.Context) ([]entity.Candidate, error) {
		return p.ranker.Retrieve(ctx, input.Question, p.topK)
	})
	if err != nil {
		span.RecordError(err)
		metrics.QueryTotal.WithLabelValues("retrieval_failed").Inc()
		return nil, errors.Wrap(err, errors.CodeRetrievalFailed, "candidate retrieval failed")
	}

	// 判定
	var decisions []entity.AccessDecision
	_, _ = runStage(ctx, "evaluating", func(ctx context.Context) ([]entity.Candidate, error) {
		decisions = p.evaluator.Evaluate(ctx, input.Actor, candidates)
		return nil, nil
	})

	// 过滤
	allowed, err := Aggregate(candidates, decisions)
	if err != nil {
		span.RecordError(err)
		metrics.QueryTotal.WithLabelValues("decision_mismatch").Inc()
		return nil, err
	}
	metrics.QueryDocumentsAllowed.Observe(float64(len(allowed)))

	result := &Result{
		Documents:    decisions,
		AllowedCount: len(allowed),
		TotalCount:   len(candidates),
	}

	// 允许集为空时跳过生成，返回固定答案
	if len(allowed) == 0 {
		result.Answer = NoAccessAnswer
		metrics.QueryTotal.WithLabelValues("no_access").Inc()
		log.Info("query answered without generation",
			"actor", input.Actor.String(),
			"total", len(candidates),
		)
		return result, nil
	}

	// 生成
	answer, err := runStage(ctx, "generating", func(ctx context.Context) (string, error) {
		return p.generator.Generate(ctx, input.Question, allowed)
	})
	if err != nil {
		span.RecordError(err)
		metrics.QueryTotal.WithLabelValues("generation_failed").Inc()
		return nil, errors.Wrap(err, errors.CodeGenerationFailed, "answer generation failed")
	}

	result.Answer = answer
	metrics.QueryTotal.WithLabelValues("ok").Inc()
	log.Info("query complete",
		"actor", input.Actor.String(),
		"allowed", result.AllowedCount,
		"total", result.TotalCount,
	)
	return result, nil
}

// runStage 执行一个阶段并记录耗时与 span
func runStage[T any](ctx context.Context, name string, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := tracer.Start(ctx, "query."+name)
	defer span.End()

	start := time.Now()
	out, err := fn(ctx)
	metrics.QueryStageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
	}
	return out, err
}
