package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/riskibarqy/football-insights/internal/domain/matchstats"
	"github.com/riskibarqy/football-insights/internal/platform/id"
	"github.com/riskibarqy/football-insights/internal/platform/pagination"
)

type MatchStatsRepository struct {
	mu      sync.RWMutex
	ids     id.Generator
	byID    map[string]matchstats.MatchStats
	byMatch map[int64]string
}

func NewMatchStatsRepository(ids id.Generator) *MatchStatsRepository {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	return &MatchStatsRepository{
		ids:     ids,
		byID:    make(map[string]matchstats.MatchStats),
		byMatch: make(map[int64]string),
	}
}

func (r *MatchStatsRepository) Find(_ context.Context, filter matchstats.Filter) (pagination.Page[matchstats.MatchStats], error) {
	r.mu.RLock()
	items := make([]matchstats.MatchStats, 0, len(r.byID))
	for _, item := range r.byID {
		if len(filter.MatchIDs) > 0 && !slices.Contains(filter.MatchIDs, item.MatchID) {
			continue
		}
		items = append(items, item)
	}
	r.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool { return items[i].MatchID < items[j].MatchID })
	return pagination.Slice(items, pagination.Params{Limit: filter.Limit, Page: filter.Page}), nil
}

func (r *MatchStatsRepository) Create(_ context.Context, item matchstats.MatchStats) (matchstats.MatchStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byMatch[item.MatchID]; exists {
		return matchstats.MatchStats{}, fmt.Errorf("stats for match_id=%d already exist", item.MatchID)
	}
	if item.ID == "" {
		item.ID = r.ids.NewID()
	}
	r.byID[item.ID] = item
	r.byMatch[item.MatchID] = item.ID
	return item, nil
}

func (r *MatchStatsRepository) Update(_ context.Context, id string, item matchstats.MatchStats) (matchstats.MatchStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[id]
	if !ok {
		return matchstats.MatchStats{}, fmt.Errorf("match stats id=%s not found", id)
	}
	item.ID = id
	item.CreatedAt = current.CreatedAt
	r.byID[id] = item
	r.byMatch[item.MatchID] = id
	return item, nil
}

func (r *MatchStatsRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
