package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secure-agent-api/internal/domain/entity"
	"secure-agent-api/pkg/errors"
)

func decisionsFor(candidates []entity.Candidate, allowedIDs ...string) []entity.AccessDecision {
	allowed := make(map[string]bool, len(allowedIDs))
	for _, id := range allowedIDs {
		allowed[id] = true
	}
	out := make([]entity.AccessDecision, len(candidates))
	for i, c := range candidates {
		reason := entity.ReasonDenied
		if allowed[c.ID] {
			reason = entity.ReasonGranted
		}
		out[i] = entity.AccessDecision{DocumentID: c.ID, Allowed: allowed[c.ID], Reason: reason}
	}
	return out
}

func TestAggregateKeepsAllowedSubsequenceInOrder(t *testing.T) {
	candidates := candidatesFromIDs("3", "1", "7", "2")
	decisions := decisionsFor(candidates, "1", "2")

	allowed, err := Aggregate(candidates, decisions)
	require.NoError(t, err)
	require.Len(t, allowed, 2)
	assert.Equal(t, "1", allowed[0].ID)
	assert.Equal(t, "2", allowed[1].ID)
}

func TestAggregateAllDenied(t *testing.T) {
	candidates := candidatesFromIDs("1", "2")
	allowed, err := Aggregate(candidates, decisionsFor(candidates))
	require.NoError(t, err)
	assert.Empty(t, allowed)
}

func TestAggregateLengthMismatch(t *testing.T) {
	candidates := candidatesFromIDs("1", "2")
	_, err := Aggregate(candidates, decisionsFor(candidates[:1], "1"))
	assert.ErrorIs(t, err, errors.ErrDecisionMismatch)
}

func TestAggregateIDMismatch(t *testing.T) {
	candidates := candidatesFromIDs("1", "2")
	decisions := decisionsFor(candidates, "1", "2")
	decisions[1].DocumentID = "9"

	_, err := Aggregate(candidates, decisions)
	assert.ErrorIs(t, err, errors.ErrDecisionMismatch)
}
