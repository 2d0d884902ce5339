package cache

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/football-insights/internal/domain/match"
	"github.com/riskibarqy/football-insights/internal/domain/matchstats"
	"github.com/riskibarqy/football-insights/internal/domain/settlement"
	basecache "github.com/riskibarqy/football-insights/internal/platform/cache"
	"github.com/riskibarqy/football-insights/internal/platform/pagination"
)

const (
	matchPrefix      = "match:"
	matchStatsPrefix = "match-stats:"
	settlementPrefix = "settlement:"
)

// MatchRepository is a read-through decorator. Any write drops every cached
// match page since one record can sit in many filter results.
type MatchRepository struct {
	next  match.Repository
	cache *basecache.Store
}

func NewMatchRepository(next match.Repository, cache *basecache.Store) *MatchRepository {
	return &MatchRepository{next: next, cache: cache}
}

func (r *MatchRepository) Find(ctx context.Context, filter match.Filter) (pagination.Page[match.Match], error) {
	page, err := basecache.Load(ctx, r.cache, matchFilterKey(filter), func(ctx context.Context) (pagination.Page[match.Match], error) {
		return r.next.Find(ctx, filter)
	})
	if err != nil {
		return pagination.Page[match.Match]{}, err
	}
	return clonePage(page), nil
}

func (r *MatchRepository) Create(ctx context.Context, item match.Match) (match.Match, error) {
	created, err := r.next.Create(ctx, item)
	if err != nil {
		return match.Match{}, err
	}
	r.cache.DeletePrefix(ctx, matchPrefix)
	return created, nil
}

func (r *MatchRepository) Update(ctx context.Context, id string, item match.Match) (match.Match, error) {
	updated, err := r.next.Update(ctx, id, item)
	if err != nil {
		return match.Match{}, err
	}
	r.cache.DeletePrefix(ctx, matchPrefix)
	return updated, nil
}

type MatchStatsRepository struct {
	next  matchstats.Repository
	cache *basecache.Store
}

func NewMatchStatsRepository(next matchstats.Repository, cache *basecache.Store) *MatchStatsRepository {
	return &MatchStatsRepository{next: next, cache: cache}
}

func (r *MatchStatsRepository) Find(ctx context.Context, filter matchstats.Filter) (pagination.Page[matchstats.MatchStats], error) {
	key := matchStatsPrefix + "ids:" + joinInt64(filter.MatchIDs) + pageSuffix(filter.Limit, filter.Page)
	page, err := basecache.Load(ctx, r.cache, key, func(ctx context.Context) (pagination.Page[matchstats.MatchStats], error) {
		return r.next.Find(ctx, filter)
	})
	if err != nil {
		return pagination.Page[matchstats.MatchStats]{}, err
	}
	return clonePage(page), nil
}

func (r *MatchStatsRepository) Create(ctx context.Context, item matchstats.MatchStats) (matchstats.MatchStats, error) {
	created, err := r.next.Create(ctx, item)
	if err != nil {
		return matchstats.MatchStats{}, err
	}
	r.cache.DeletePrefix(ctx, matchStatsPrefix)
	return created, nil
}

func (r *MatchStatsRepository) Update(ctx context.Context, id string, item matchstats.MatchStats) (matchstats.MatchStats, error) {
	updated, err := r.next.Update(ctx, id, item)
	if err != nil {
		return matchstats.MatchStats{}, err
	}
	r.cache.DeletePrefix(ctx, matchStatsPrefix)
	return updated, nil
}

type PredictionStatsRepository struct {
	next  settlement.Repository
	cache *basecache.Store
}

func NewPredictionStatsRepository(next settlement.Repository, cache *basecache.Store) *PredictionStatsRepository {
	return &PredictionStatsRepository{next: next, cache: cache}
}

func (r *PredictionStatsRepository) Find(ctx context.Context, filter settlement.Filter) (pagination.Page[settlement.PredictionStats], error) {
	ids := append([]string(nil), filter.PostIDs...)
	sort.Strings(ids)
	key := settlementPrefix + "posts:" + strings.Join(ids, ",") + pageSuffix(filter.Limit, filter.Page)
	page, err := basecache.Load(ctx, r.cache, key, func(ctx context.Context) (pagination.Page[settlement.PredictionStats], error) {
		return r.next.Find(ctx, filter)
	})
	if err != nil {
		return pagination.Page[settlement.PredictionStats]{}, err
	}
	return clonePage(page), nil
}

func (r *PredictionStatsRepository) Create(ctx context.Context, item settlement.PredictionStats) (settlement.PredictionStats, error) {
	created, err := r.next.Create(ctx, item)
	if err != nil {
		return settlement.PredictionStats{}, err
	}
	r.cache.DeletePrefix(ctx, settlementPrefix)
	return created, nil
}

func (r *PredictionStatsRepository) Update(ctx context.Context, id string, item settlement.PredictionStats) (settlement.PredictionStats, error) {
	updated, err := r.next.Update(ctx, id, item)
	if err != nil {
		return settlement.PredictionStats{}, err
	}
	r.cache.DeletePrefix(ctx, settlementPrefix)
	return updated, nil
}

func matchFilterKey(filter match.Filter) string {
	var b strings.Builder
	b.WriteString(matchPrefix)
	b.WriteString("ids:")
	b.WriteString(joinInt64(filter.MatchIDs))
	if filter.FixtureID != nil {
		b.WriteString(":fixture:")
		b.WriteString(strconv.FormatInt(*filter.FixtureID, 10))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			statuses = append(statuses, string(status))
		}
		sort.Strings(statuses)
		b.WriteString(":status:")
		b.WriteString(strings.Join(statuses, ","))
	}
	if filter.DateFrom != nil {
		b.WriteString(":from:")
		b.WriteString(filter.DateFrom.UTC().Format(time.RFC3339))
	}
	if filter.DateTo != nil {
		b.WriteString(":to:")
		b.WriteString(filter.DateTo.UTC().Format(time.RFC3339))
	}
	if filter.HasStats != nil {
		b.WriteString(":stats:")
		b.WriteString(strconv.FormatBool(*filter.HasStats))
	}
	b.WriteString(":sort:")
	b.WriteString(strings.TrimSpace(filter.Sort))
	b.WriteString(pageSuffix(filter.Limit, filter.Page))
	return b.String()
}

func pageSuffix(limit, page int) string {
	params := pagination.Params{Limit: limit, Page: page}.Normalize()
	return ":limit:" + strconv.Itoa(params.Limit) + ":page:" + strconv.Itoa(params.Page)
}

func joinInt64(values []int64) string {
	sorted := append([]int64(nil), values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	parts := make([]string, 0, len(sorted))
	for _, v := range sorted {
		parts = append(parts, strconv.FormatInt(v, 10))
	}
	return strings.Join(parts, ",")
}

func clonePage[T any](page pagination.Page[T]) pagination.Page[T] {
	page.Docs = append([]T(nil), page.Docs...)
	return page
}
