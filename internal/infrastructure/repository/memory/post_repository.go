package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/riskibarqy/football-insights/internal/domain/prediction"
	"github.com/riskibarqy/football-insights/internal/platform/id"
	"github.com/riskibarqy/football-insights/internal/platform/pagination"
)

type PostRepository struct {
	mu   sync.RWMutex
	ids  id.Generator
	byID map[string]prediction.Post
}

func NewPostRepository(ids id.Generator, seed []prediction.Post) *PostRepository {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	r := &PostRepository{ids: ids, byID: make(map[string]prediction.Post, len(seed))}
	for _, item := range seed {
		if item.ID == "" {
			item.ID = ids.NewID()
		}
		r.byID[item.ID] = item
	}
	return r
}

func (r *PostRepository) Find(_ context.Context, filter prediction.PostFilter) (pagination.Page[prediction.Post], error) {
	r.mu.RLock()
	items := make([]prediction.Post, 0, len(r.byID))
	for _, item := range r.byID {
		if postFilterAccepts(filter, item) {
			items = append(items, item)
		}
	}
	r.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return pagination.Slice(items, pagination.Params{Limit: filter.Limit, Page: filter.Page}), nil
}

func (r *PostRepository) Create(_ context.Context, item prediction.Post) (prediction.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == "" {
		item.ID = r.ids.NewID()
	}
	if _, exists := r.byID[item.ID]; exists {
		return prediction.Post{}, fmt.Errorf("post id=%s already exists", item.ID)
	}
	r.byID[item.ID] = item
	return item, nil
}

func (r *PostRepository) Update(_ context.Context, id string, item prediction.Post) (prediction.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[id]
	if !ok {
		return prediction.Post{}, fmt.Errorf("post id=%s not found", id)
	}
	item.ID = id
	item.CreatedAt = current.CreatedAt
	r.byID[id] = item
	return item, nil
}

func postFilterAccepts(filter prediction.PostFilter, item prediction.Post) bool {
	if len(filter.IDs) > 0 && !slices.Contains(filter.IDs, item.ID) {
		return false
	}
	if filter.PostType != "" && item.PostType != filter.PostType {
		return false
	}
	if len(filter.MatchIDs) > 0 {
		if item.Prediction == nil || item.Prediction.MatchID == nil || !slices.Contains(filter.MatchIDs, *item.Prediction.MatchID) {
			return false
		}
	}
	if len(filter.FixtureIDs) > 0 {
		if item.Prediction == nil || item.Prediction.FixtureID == nil || !slices.Contains(filter.FixtureIDs, *item.Prediction.FixtureID) {
			return false
		}
	}
	return true
}
