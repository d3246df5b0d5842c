package milvus

import (
	"context"
	"fmt"
	"time"

	milvusentity "github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"secure-agent-api/internal/domain/entity"
	"secure-agent-api/pkg/metrics"
)

const collectionDocuments = "documents"

// Embedder 查询与文档向量化接口
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Ranker 基于 Milvus 的向量检索器
type Ranker struct {
	client    *Client
	embedder  Embedder
	dimension int
}

// NewRanker 创建 Milvus 检索器
func NewRanker(client *Client, embedder Embedder, dimension int) *Ranker {
	return &Ranker{client: client, embedder: embedder, dimension: dimension}
}

func documentsSchema(collName string, dimension int) *milvusentity.Schema {
	return &milvusentity.Schema{
		CollectionName: collName,
		Fields: []*milvusentity.Field{
			{Name: "id", DataType: milvusentity.FieldTypeVarChar, PrimaryKey: true,
				TypeParams: map[string]string{"max_length": "64"}},
			{Name: "title", DataType: milvusentity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "256"}},
			{Name: "category", DataType: milvusentity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "64"}},
			{Name: "language", DataType: milvusentity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "8"}},
			{Name: "text", DataType: milvusentity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "4096"}},
			{Name: "vector", DataType: milvusentity.FieldTypeFloatVector,
				TypeParams: map[string]string{"dim": fmt.Sprintf("%d", dimension)}},
		},
	}
}

// EnsureCollection 确保文档集合与索引可用，不存在则创建并加载
func (r *Ranker) EnsureCollection(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "milvus.EnsureCollection")
	defer span.End()

	collName := r.client.CollectionName(collectionDocuments)
	exists, err := r.client.milvus.HasCollection(ctx, collName)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if !exists {
		if err := r.client.milvus.CreateCollection(ctx,
			documentsSchema(collName, r.dimension), milvusentity.DefaultShardNumber); err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to create collection: %w", err)
		}
		idx, err := milvusentity.NewIndexHNSW(milvusentity.COSINE, 16, 200)
		if err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
		if err := r.client.milvus.CreateIndex(ctx, collName, "vector", idx, false); err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return r.client.milvus.LoadCollection(ctx, collName, false)
}

// IndexDocuments 向量化并写入文档。主键相同则覆盖，重复执行幂等。
func (r *Ranker) IndexDocuments(ctx context.Context, docs []entity.Document) error {
	ctx, span := tracer.Start(ctx, "milvus.IndexDocuments",
		trace.WithAttributes(attribute.Int("count", len(docs))))
	defer span.End()

	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Title + "\n" + d.Text
	}
	vectors, err := r.embedder.Embed(ctx, texts)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to embed documents: %w", err)
	}

	ids := make([]string, len(docs))
	titles := make([]string, len(docs))
	categories := make([]string, len(docs))
	languages := make([]string, len(docs))
	bodies := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
		titles[i] = d.Title
		categories[i] = d.Category
		languages[i] = d.Language
		bodies[i] = d.Text
	}

	collName := r.client.CollectionName(collectionDocuments)
	_, err = r.client.milvus.Upsert(ctx, collName, "",
		milvusentity.NewColumnVarChar("id", ids),
		milvusentity.NewColumnVarChar("title", titles),
		milvusentity.NewColumnVarChar("category", categories),
		milvusentity.NewColumnVarChar("language", languages),
		milvusentity.NewColumnVarChar("text", bodies),
		milvusentity.NewColumnFloatVector("vector", r.dimension, vectors),
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to upsert documents: %w", err)
	}
	return nil
}

// Retrieve 向量化查询并检索至多 topK 个候选，按相似度降序。
// 结果只反映相关性，不包含任何权限判断。
func (r *Ranker) Retrieve(ctx context.Context, query string, topK int) ([]entity.Candidate, error) {
	ctx, span := tracer.Start(ctx, "milvus.Retrieve",
		trace.WithAttributes(attribute.Int("top_k", topK)))
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.RetrievalDuration.WithLabelValues("milvus").Observe(time.Since(start).Seconds())
	}()

	if topK <= 0 {
		return []entity.Candidate{}, nil
	}

	vectors, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	sp, err := milvusentity.NewIndexHNSWSearchParam(128)
	if err != nil {
		return nil, fmt.Errorf("failed to create search param: %w", err)
	}

	collName := r.client.CollectionName(collectionDocuments)
	results, err := r.client.milvus.Search(ctx,
		collName,
		nil,
		"",
		[]string{"id", "title", "category", "language", "text"},
		[]milvusentity.Vector{milvusentity.FloatVector(vectors[0])},
		"vector",
		milvusentity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	var candidates []entity.Candidate
	for _, result := range results {
		for i := 0; i < result.ResultCount; i++ {
			c := entity.Candidate{Score: float64(result.Scores[i])}
			if col, ok := result.Fields.GetColumn("id").(*milvusentity.ColumnVarChar); ok {
				c.ID = col.Data()[i]
			}
			if col, ok := result.Fields.GetColumn("title").(*milvusentity.ColumnVarChar); ok {
				c.Title = col.Data()[i]
			}
			if col, ok := result.Fields.GetColumn("category").(*milvusentity.ColumnVarChar); ok {
				c.Category = col.Data()[i]
			}
			if col, ok := result.Fields.GetColumn("language").(*milvusentity.ColumnVarChar); ok {
				c.Language = col.Data()[i]
			}
			if col, ok := result.Fields.GetColumn("text").(*milvusentity.ColumnVarChar); ok {
				c.Excerpt = col.Data()[i]
			}
			candidates = append(candidates, c)
		}
	}

	span.SetAttributes(attribute.Int("result_count", len(candidates)))
	return candidates, nil
}
