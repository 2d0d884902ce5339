package cache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/football-insights/internal/domain/match"
	"github.com/riskibarqy/football-insights/internal/domain/matchstats"
	"github.com/riskibarqy/football-insights/internal/infrastructure/repository/memory"
	basecache "github.com/riskibarqy/football-insights/internal/platform/cache"
	"github.com/riskibarqy/football-insights/internal/platform/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingMatchRepository struct {
	match.Repository
	finds atomic.Int32
}

func (r *countingMatchRepository) Find(ctx context.Context, filter match.Filter) (pagination.Page[match.Match], error) {
	r.finds.Add(1)
	return r.Repository.Find(ctx, filter)
}

type countingStatsRepository struct {
	matchstats.Repository
	finds atomic.Int32
}

func (r *countingStatsRepository) Find(ctx context.Context, filter matchstats.Filter) (pagination.Page[matchstats.MatchStats], error) {
	r.finds.Add(1)
	return r.Repository.Find(ctx, filter)
}

func seededMatch(id int64, status match.Status) match.Match {
	return match.Match{
		MatchID: id,
		Date:    time.Date(2024, 1, int(id), 15, 0, 0, 0, time.UTC),
		Status:  status,
	}
}

func TestMatchRepository_FindIsCachedUntilWrite(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := &countingMatchRepository{Repository: memory.NewMatchRepository(nil, []match.Match{
		seededMatch(1, match.StatusFinished),
		seededMatch(2, match.StatusScheduled),
	})}
	repo := NewMatchRepository(next, basecache.NewStore(time.Minute))

	filter := match.Filter{Statuses: []match.Status{match.StatusFinished}}
	first, err := repo.Find(ctx, filter)
	require.NoError(t, err)
	second, err := repo.Find(ctx, filter)
	require.NoError(t, err)

	assert.Equal(t, int32(1), next.finds.Load())
	assert.Equal(t, first.TotalDocs, second.TotalDocs)
	require.Len(t, second.Docs, 1)

	// Callers may mutate returned pages without touching the cached copy.
	second.Docs[0].Status = match.StatusLive
	third, err := repo.Find(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, match.StatusFinished, third.Docs[0].Status)

	_, err = repo.Create(ctx, seededMatch(3, match.StatusFinished))
	require.NoError(t, err)

	after, err := repo.Find(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int32(2), next.finds.Load())
	assert.Equal(t, 2, after.TotalDocs)
}

func TestMatchRepository_UpdateInvalidatesLookups(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := &countingMatchRepository{Repository: memory.NewMatchRepository(nil, []match.Match{
		seededMatch(5, match.StatusLive),
	})}
	repo := NewMatchRepository(next, basecache.NewStore(time.Minute))

	stored, found, err := match.FindByMatchID(ctx, repo, 5)
	require.NoError(t, err)
	require.True(t, found)

	stored.Status = match.StatusFinished
	_, err = repo.Update(ctx, stored.ID, stored)
	require.NoError(t, err)

	reloaded, found, err := match.FindByMatchID(ctx, repo, 5)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, match.StatusFinished, reloaded.Status)
	assert.Equal(t, int32(2), next.finds.Load())
}

func TestMatchFilterKey_IgnoresIDOrder(t *testing.T) {
	t.Parallel()

	a := matchFilterKey(match.Filter{MatchIDs: []int64{3, 1, 2}})
	b := matchFilterKey(match.Filter{MatchIDs: []int64{1, 2, 3}})
	c := matchFilterKey(match.Filter{MatchIDs: []int64{1, 2, 3}, Page: 2})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, matchPrefix)
}

func TestMatchStatsRepository_CreateDropsCachedMiss(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := &countingStatsRepository{Repository: memory.NewMatchStatsRepository(nil)}
	repo := NewMatchStatsRepository(next, basecache.NewStore(time.Minute))

	_, found, err := matchstats.FindByMatchID(ctx, repo, 42)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = repo.Create(ctx, matchstats.MatchStats{MatchID: 42, DataQuality: matchstats.QualityComplete})
	require.NoError(t, err)

	got, found, err := matchstats.FindByMatchID(ctx, repo, 42)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, matchstats.QualityComplete, got.DataQuality)
	assert.Equal(t, int32(2), next.finds.Load())
}
