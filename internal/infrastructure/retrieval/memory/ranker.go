package memory

import (
	"context"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"secure-agent-api/internal/domain/entity"
	"secure-agent-api/pkg/metrics"
)

const excerptRunes = 160

// Ranker 进程内检索器。首次检索时构建一次索引，此后只读。
type Ranker struct {
	docs []entity.Document

	buildOnce sync.Once
	buildErr  error
	vec       *vectorizer
	docVecs   [][]float64
}

// NewRanker 创建进程内检索器，索引延迟到首次使用时构建
func NewRanker(docs []entity.Document) *Ranker {
	return &Ranker{docs: docs}
}

// build 构建词表与文档向量。经 buildOnce 保证恰好执行一次，
// 并发的首批请求共享同一次构建结果。
func (r *Ranker) build() error {
	r.buildOnce.Do(func() {
		vec := newVectorizer()
		corpus := make([]string, len(r.docs))
		for i, d := range r.docs {
			corpus[i] = d.Title + "\n" + d.Text
		}
		if err := vec.fit(corpus); err != nil {
			r.buildErr = err
			return
		}
		r.vec = vec
		r.docVecs = make([][]float64, len(r.docs))
		for i, text := range corpus {
			r.docVecs[i] = vec.embed(text)
		}
	})
	return r.buildErr
}

// Retrieve 返回与查询最相关的至多 topK 个候选，按分数降序。
// 结果只反映相关性，不包含任何权限判断。
func (r *Ranker) Retrieve(ctx context.Context, query string, topK int) ([]entity.Candidate, error) {
	start := time.Now()
	defer func() {
		metrics.RetrievalDuration.WithLabelValues("memory").Observe(time.Since(start).Seconds())
	}()

	if err := r.build(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		return []entity.Candidate{}, nil
	}

	qv := r.vec.embed(query)

	type scored struct {
		idx   int
		score float64
	}
	hits := make([]scored, 0, len(r.docs))
	for i, dv := range r.docVecs {
		s := dot(qv, dv)
		if s > 0 {
			hits = append(hits, scored{idx: i, score: s})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return r.docs[hits[i].idx].ID < r.docs[hits[j].idx].ID
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}

	candidates := make([]entity.Candidate, 0, len(hits))
	for _, h := range hits {
		d := r.docs[h.idx]
		candidates = append(candidates, entity.Candidate{
			ID:       d.ID,
			Title:    d.Title,
			Category: d.Category,
			Language: d.Language,
			Excerpt:  excerpt(d.Text),
			Score:    h.score,
		})
	}
	return candidates, nil
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// excerpt 截取正文开头作为摘要
func excerpt(text string) string {
	if utf8.RuneCountInString(text) <= excerptRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:excerptRunes]) + "…"
}
