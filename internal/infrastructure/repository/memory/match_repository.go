package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/riskibarqy/football-insights/internal/domain/match"
	"github.com/riskibarqy/football-insights/internal/platform/id"
	"github.com/riskibarqy/football-insights/internal/platform/pagination"
)

type MatchRepository struct {
	mu      sync.RWMutex
	ids     id.Generator
	byID    map[string]match.Match
	byMatch map[int64]string
}

func NewMatchRepository(ids id.Generator, seed []match.Match) *MatchRepository {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	r := &MatchRepository{
		ids:     ids,
		byID:    make(map[string]match.Match, len(seed)),
		byMatch: make(map[int64]string, len(seed)),
	}
	for _, item := range seed {
		if item.ID == "" {
			item.ID = ids.NewID()
		}
		r.byID[item.ID] = item
		r.byMatch[item.MatchID] = item.ID
	}
	return r
}

func (r *MatchRepository) Find(_ context.Context, filter match.Filter) (pagination.Page[match.Match], error) {
	r.mu.RLock()
	items := make([]match.Match, 0, len(r.byID))
	for _, item := range r.byID {
		if matchFilterAccepts(filter, item) {
			items = append(items, item)
		}
	}
	r.mu.RUnlock()

	desc := strings.TrimSpace(filter.Sort) == match.SortDateDesc
	sort.Slice(items, func(i, j int) bool {
		if !items[i].Date.Equal(items[j].Date) {
			if desc {
				return items[i].Date.After(items[j].Date)
			}
			return items[i].Date.Before(items[j].Date)
		}
		return items[i].MatchID < items[j].MatchID
	})
	return pagination.Slice(items, filter.Params()), nil
}

func (r *MatchRepository) Create(_ context.Context, item match.Match) (match.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byMatch[item.MatchID]; exists {
		return match.Match{}, fmt.Errorf("match_id=%d already exists", item.MatchID)
	}
	if item.ID == "" {
		item.ID = r.ids.NewID()
	}
	r.byID[item.ID] = item
	r.byMatch[item.MatchID] = item.ID
	return item, nil
}

func (r *MatchRepository) Update(_ context.Context, id string, item match.Match) (match.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[id]
	if !ok {
		return match.Match{}, fmt.Errorf("match id=%s not found", id)
	}
	item.ID = id
	item.CreatedAt = current.CreatedAt
	if current.MatchID != item.MatchID {
		delete(r.byMatch, current.MatchID)
	}
	r.byID[id] = item
	r.byMatch[item.MatchID] = id
	return item, nil
}

// Len returns the number of stored matches.
func (r *MatchRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func matchFilterAccepts(filter match.Filter, item match.Match) bool {
	if len(filter.MatchIDs) > 0 && !slices.Contains(filter.MatchIDs, item.MatchID) {
		return false
	}
	if filter.FixtureID != nil && (item.FixtureID == nil || *item.FixtureID != *filter.FixtureID) {
		return false
	}
	if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, item.Status) {
		return false
	}
	if filter.DateFrom != nil && item.Date.Before(*filter.DateFrom) {
		return false
	}
	if filter.DateTo != nil && item.Date.After(*filter.DateTo) {
		return false
	}
	if filter.HasStats != nil && item.Sync.HasStats != *filter.HasStats {
		return false
	}
	return true
}
