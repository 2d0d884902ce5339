package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/riskibarqy/football-insights/internal/domain/settlement"
	"github.com/riskibarqy/football-insights/internal/platform/id"
	"github.com/riskibarqy/football-insights/internal/platform/pagination"
)

type PredictionStatsRepository struct {
	mu     sync.RWMutex
	ids    id.Generator
	byID   map[string]settlement.PredictionStats
	byPost map[string]string
}

func NewPredictionStatsRepository(ids id.Generator) *PredictionStatsRepository {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	return &PredictionStatsRepository{
		ids:    ids,
		byID:   make(map[string]settlement.PredictionStats),
		byPost: make(map[string]string),
	}
}

func (r *PredictionStatsRepository) Find(_ context.Context, filter settlement.Filter) (pagination.Page[settlement.PredictionStats], error) {
	r.mu.RLock()
	items := make([]settlement.PredictionStats, 0, len(r.byID))
	for _, item := range r.byID {
		if len(filter.PostIDs) > 0 && !slices.Contains(filter.PostIDs, item.PostID) {
			continue
		}
		items = append(items, item)
	}
	r.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool { return items[i].PostID < items[j].PostID })
	return pagination.Slice(items, pagination.Params{Limit: filter.Limit, Page: filter.Page}), nil
}

func (r *PredictionStatsRepository) Create(_ context.Context, item settlement.PredictionStats) (settlement.PredictionStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byPost[item.PostID]; exists {
		return settlement.PredictionStats{}, fmt.Errorf("settlement for post=%s already exists", item.PostID)
	}
	if item.ID == "" {
		item.ID = r.ids.NewID()
	}
	r.byID[item.ID] = item
	r.byPost[item.PostID] = item.ID
	return item, nil
}

func (r *PredictionStatsRepository) Update(_ context.Context, id string, item settlement.PredictionStats) (settlement.PredictionStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[id]
	if !ok {
		return settlement.PredictionStats{}, fmt.Errorf("settlement id=%s not found", id)
	}
	item.ID = id
	item.CreatedAt = current.CreatedAt
	r.byID[id] = item
	r.byPost[item.PostID] = id
	return item, nil
}

func (r *PredictionStatsRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
