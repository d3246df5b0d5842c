package query

import (
	"secure-agent-api/internal/domain/entity"
	"secure-agent-api/pkg/errors"
)

// Aggregate 依据判定列表过滤候选，产出允许的子序列。
// 候选与判定必须等长同序；不满足时返回 ErrDecisionMismatch，
// 宁可失败也不输出未经判定的文档。
func Aggregate(candidates []entity.Candidate, decisions []entity.AccessDecision) ([]entity.Candidate, error) {
	if len(candidates) != len(decisions) {
		return nil, errors.ErrDecisionMismatch
	}

	allowed := make([]entity.Candidate, 0, len(candidates))
	for i, c := range candidates {
		if decisions[i].DocumentID != c.ID {
			return nil, errors.ErrDecisionMismatch
		}
		if decisions[i].Allowed {
			allowed = append(allowed, c)
		}
	}
	return allowed, nil
}
