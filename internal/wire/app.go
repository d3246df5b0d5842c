// Package wire 提供依赖装配
package wire

import (
	"context"
	"fmt"

	"secure-agent-api/internal/application/query"
	"secure-agent-api/internal/config"
	"secure-agent-api/internal/corpus"
	"secure-agent-api/internal/domain/repository"
	"secure-agent-api/internal/infrastructure/authz/openfga"
	"secure-agent-api/internal/infrastructure/embedding"
	"secure-agent-api/internal/infrastructure/llm"
	"secure-agent-api/internal/infrastructure/persistence/redis"
	memoryretrieval "secure-agent-api/internal/infrastructure/retrieval/memory"
	milvusretrieval "secure-agent-api/internal/infrastructure/retrieval/milvus"
	"secure-agent-api/internal/interfaces/http/handler"
	"secure-agent-api/internal/interfaces/http/middleware"
	"secure-agent-api/internal/interfaces/http/router"
	"secure-agent-api/pkg/errors"
	"secure-agent-api/pkg/logger"
)

// App 装配完成的应用
type App struct {
	Config *config.Config
	Router *router.Router
	Authz  *openfga.Client

	cleanups []func()
}

// Close 按装配的逆序释放资源
func (a *App) Close() {
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		a.cleanups[i]()
	}
}

// InitializeApp 装配整个应用
func InitializeApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	// 授权后端
	authzClient, err := newAuthzClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.Authz = authzClient
	app.cleanups = append(app.cleanups, func() { _ = authzClient.Close() })

	// 检索后端
	ranker, err := newRanker(ctx, cfg, app)
	if err != nil {
		app.Close()
		return nil, err
	}

	// 生成客户端
	generator := llm.NewClient(&cfg.LLM)

	// 流水线
	pipeline := query.NewPipeline(
		ranker,
		query.NewEvaluator(authzClient),
		generator,
		cfg.Retrieval.TopK,
	)

	// Redis（可选，仅用于限流与就绪检查）
	var redisClient *redis.Client
	if cfg.Cache.Redis.Enabled {
		redisClient, err = redis.NewClient(&cfg.Cache.Redis)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		app.cleanups = append(app.cleanups, func() { _ = redisClient.Close() })
	}

	handlers := router.Handlers{
		Query:     handler.NewQueryHandler(pipeline),
		Directory: handler.NewDirectoryHandler(),
		Health:    handler.NewHealthHandler(authzClient, redisClient),
	}
	if cfg.Security.RateLimit.Enabled && redisClient != nil {
		handlers.RateLimit = middleware.NewRateLimitMiddleware(middleware.RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: cfg.Security.RateLimit.RequestsPerSecond,
			Burst:             cfg.Security.RateLimit.Burst,
		}, redisClient.Redis())
	}

	app.Router = router.New(cfg, handlers)
	return app, nil
}

// newAuthzClient 创建授权客户端并解析 store。
// 配置未指定 store_id 时按名称查找既有 store；找不到则启动失败，
// 提示先执行 fga-bootstrap。
func newAuthzClient(ctx context.Context, cfg *config.Config) (*openfga.Client, error) {
	client, err := openfga.NewClient(ctx, &cfg.Authz)
	if err != nil {
		return nil, fmt.Errorf("failed to dial authz backend: %w", err)
	}
	if client.StoreID() == "" {
		if _, err := client.EnsureStore(ctx); err != nil {
			_ = client.Close()
			return nil, errors.Wrap(err, errors.CodeSetupFailed, "failed to resolve store (run fga-bootstrap first)")
		}
	}
	logger.Info(ctx, "authz backend ready",
		"addr", cfg.Authz.Addr,
		"store_id", client.StoreID(),
	)
	return client, nil
}

// newRanker 按配置选择检索后端
func newRanker(ctx context.Context, cfg *config.Config, app *App) (repository.Ranker, error) {
	switch cfg.Retrieval.Backend {
	case "", "memory":
		return memoryretrieval.NewRanker(corpus.Documents), nil

	case "milvus":
		client, err := milvusretrieval.NewClient(ctx, &cfg.Retrieval.Milvus)
		if err != nil {
			return nil, fmt.Errorf("failed to init milvus: %w", err)
		}
		app.cleanups = append(app.cleanups, func() { _ = client.Close() })

		embedder := embedding.NewClient(&cfg.Embedding)
		ranker := milvusretrieval.NewRanker(client, embedder, cfg.Embedding.Dimension)
		if err := ranker.EnsureCollection(ctx); err != nil {
			return nil, err
		}
		if err := ranker.IndexDocuments(ctx, corpus.Documents); err != nil {
			return nil, err
		}
		return ranker, nil

	default:
		return nil, fmt.Errorf("unknown retrieval backend: %s", cfg.Retrieval.Backend)
	}
}
