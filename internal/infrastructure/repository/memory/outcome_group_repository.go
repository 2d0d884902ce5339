package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/football-insights/internal/domain/prediction"
)

type OutcomeGroupRepository struct {
	mu     sync.RWMutex
	groups map[string]prediction.OutcomeGroup
}

func NewOutcomeGroupRepository(groups []prediction.OutcomeGroup) *OutcomeGroupRepository {
	r := &OutcomeGroupRepository{groups: make(map[string]prediction.OutcomeGroup, len(groups))}
	for _, item := range groups {
		r.groups[item.ID] = item
	}
	return r
}

func (r *OutcomeGroupRepository) FindByIDs(_ context.Context, ids []string) ([]prediction.OutcomeGroup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]prediction.OutcomeGroup, 0, len(ids))
	for _, id := range ids {
		if item, ok := r.groups[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *OutcomeGroupRepository) Upsert(_ context.Context, item prediction.OutcomeGroup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[item.ID] = item
	return nil
}
