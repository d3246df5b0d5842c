package query

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secure-agent-api/internal/domain/entity"
	"secure-agent-api/pkg/errors"
)

type stubRanker struct {
	candidates []entity.Candidate
	err        error
}

func (s *stubRanker) Retrieve(_ context.Context, _ string, topK int) ([]entity.Candidate, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.candidates) > topK {
		return s.candidates[:topK], nil
	}
	return s.candidates, nil
}

type stubGenerator struct {
	answer  string
	err     error
	gotDocs []entity.Candidate
	calls   int
}

func (s *stubGenerator) Generate(_ context.Context, _ string, contextDocs []entity.Candidate) (string, error) {
	s.calls++
	s.gotDocs = contextDocs
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

func newTestPipeline(ranker *stubRanker, checker *stubChecker, gen *stubGenerator) *Pipeline {
	return NewPipeline(ranker, NewEvaluator(checker), gen, 5)
}

func TestProcessFiltersGenerationContext(t *testing.T) {
	ranker := &stubRanker{candidates: candidatesFromIDs("1", "7", "3")}
	checker := &stubChecker{allowed: map[string]bool{
		"document:1": true,
		"document:3": true,
	}}
	gen := &stubGenerator{answer: "roadmap answer"}
	p := newTestPipeline(ranker, checker, gen)

	result, err := p.Process(context.Background(), Input{Actor: entity.UserRef("alan"), Question: "roadmap?"})
	require.NoError(t, err)

	assert.Equal(t, "roadmap answer", result.Answer)
	assert.Equal(t, 2, result.AllowedCount)
	assert.Equal(t, 3, result.TotalCount)

	// 判定覆盖全部候选且保持检索顺序
	require.Len(t, result.Documents, 3)
	assert.Equal(t, "1", result.Documents[0].DocumentID)
	assert.Equal(t, "7", result.Documents[1].DocumentID)
	assert.False(t, result.Documents[1].Allowed)
	assert.Equal(t, "3", result.Documents[2].DocumentID)

	// 被拒绝的文档绝不进入生成上下文
	require.Len(t, gen.gotDocs, 2)
	assert.Equal(t, "1", gen.gotDocs[0].ID)
	assert.Equal(t, "3", gen.gotDocs[1].ID)
}

func TestProcessAllDeniedSkipsGeneration(t *testing.T) {
	ranker := &stubRanker{candidates: candidatesFromIDs("7")}
	checker := &stubChecker{allowed: map[string]bool{}}
	gen := &stubGenerator{answer: "should not be used"}
	p := newTestPipeline(ranker, checker, gen)

	result, err := p.Process(context.Background(), Input{Actor: entity.UserRef("tsuki"), Question: "merger?"})
	require.NoError(t, err)

	assert.Equal(t, NoAccessAnswer, result.Answer)
	assert.Equal(t, 0, result.AllowedCount)
	assert.Equal(t, 1, result.TotalCount)
	assert.Zero(t, gen.calls)
}

func TestProcessEmptyRetrieval(t *testing.T) {
	p := newTestPipeline(&stubRanker{}, &stubChecker{}, &stubGenerator{})

	result, err := p.Process(context.Background(), Input{Actor: entity.UserRef("alan"), Question: "nothing"})
	require.NoError(t, err)

	assert.Equal(t, NoAccessAnswer, result.Answer)
	assert.Zero(t, result.TotalCount)
	assert.Empty(t, result.Documents)
}

func TestProcessCheckFailureIsFailClosed(t *testing.T) {
	ranker := &stubRanker{candidates: candidatesFromIDs("1", "2")}
	checker := &stubChecker{
		allowed: map[string]bool{"document:1": true},
		errFor:  map[string]error{"document:2": stderrors.New("backend down")},
	}
	gen := &stubGenerator{answer: "partial answer"}
	p := newTestPipeline(ranker, checker, gen)

	result, err := p.Process(context.Background(), Input{Actor: entity.UserRef("alan"), Question: "q"})
	require.NoError(t, err, "a failed check must not fail the query")

	assert.Equal(t, 1, result.AllowedCount)
	assert.Equal(t, entity.ReasonCheckFailed, result.Documents[1].Reason)
	require.Len(t, gen.gotDocs, 1)
	assert.Equal(t, "1", gen.gotDocs[0].ID)
}

func TestProcessRetrievalError(t *testing.T) {
	p := newTestPipeline(&stubRanker{err: stderrors.New("index corrupt")}, &stubChecker{}, &stubGenerator{})

	_, err := p.Process(context.Background(), Input{Actor: entity.UserRef("alan"), Question: "q"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeRetrievalFailed, errors.AsAppError(err).Code)
}

func TestProcessGenerationError(t *testing.T) {
	ranker := &stubRanker{candidates: candidatesFromIDs("1")}
	checker := &stubChecker{allowed: map[string]bool{"document:1": true}}
	p := newTestPipeline(ranker, checker, &stubGenerator{err: stderrors.New("model not loaded")})

	_, err := p.Process(context.Background(), Input{Actor: entity.UserRef("alan"), Question: "q"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeGenerationFailed, errors.AsAppError(err).Code)
}
