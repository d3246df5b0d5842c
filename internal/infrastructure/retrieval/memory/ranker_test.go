package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secure-agent-api/internal/corpus"
)

func TestRetrieveRanksRelevantDocumentsFirst(t *testing.T) {
	r := NewRanker(corpus.Documents)

	candidates, err := r.Retrieve(context.Background(), "engineering roadmap microservices", 5)
	require.NoError(t, err)
	require.NotEmpty(t, candidates)

	assert.Equal(t, "1", candidates[0].ID, "roadmap document should rank first")
	for i := 1; i < len(candidates); i++ {
		assert.GreaterOrEqual(t, candidates[i-1].Score, candidates[i].Score)
	}
}

func TestRetrieveJapaneseQuery(t *testing.T) {
	r := NewRanker(corpus.Documents)

	candidates, err := r.Retrieve(context.Background(), "リモートワーク規定", 5)
	require.NoError(t, err)
	require.NotEmpty(t, candidates)
	assert.Equal(t, "6", candidates[0].ID)
}

func TestRetrieveHonorsTopK(t *testing.T) {
	r := NewRanker(corpus.Documents)

	candidates, err := r.Retrieve(context.Background(), "2025", 2)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(candidates), 2)

	none, err := r.Retrieve(context.Background(), "2025", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRetrieveNoMatches(t *testing.T) {
	r := NewRanker(corpus.Documents)

	candidates, err := r.Retrieve(context.Background(), "zzzzzz qqqqqq", 5)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestConcurrentFirstRetrieveBuildsIndexOnce(t *testing.T) {
	r := NewRanker(corpus.Documents)

	var wg sync.WaitGroup
	results := make([][]string, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			candidates, err := r.Retrieve(context.Background(), "sales targets", 5)
			require.NoError(t, err)
			ids := make([]string, len(candidates))
			for j, c := range candidates {
				ids[j] = c.ID
			}
			results[i] = ids
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(results); i++ {
		assert.Equal(t, results[0], results[i], "all callers must observe the same index")
	}
}
