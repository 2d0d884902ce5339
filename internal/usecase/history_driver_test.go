package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/football-insights/internal/domain/match"
	"github.com/riskibarqy/football-insights/internal/domain/syncprogress"
	"github.com/riskibarqy/football-insights/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/football-insights/internal/platform/id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSyncLock struct {
	acquired bool
	err      error
	keys     []string
	released int
}

func (l *stubSyncLock) Acquire(_ context.Context, key string) (func(), bool, error) {
	l.keys = append(l.keys, key)
	if l.err != nil || !l.acquired {
		return nil, false, l.err
	}
	return func() { l.released++ }, true, nil
}

func day2020(month time.Month, d int) time.Time {
	return time.Date(2020, month, d, 0, 0, 0, 0, time.UTC)
}

func newDriverFixture(t *testing.T, lock SyncLock, seed []match.Match) (*HistoryDriver, historyFixture) {
	t.Helper()

	fx := newHistoryFixture(newFakeSportsSource())
	fx.matches = memory.NewMatchRepository(id.NewSequence("match"), seed)
	fx.service.matchRepo = fx.matches

	driver := NewHistoryDriver(fx.service, fx.matches, lock)
	driver.now = func() time.Time { return historyNow }
	return driver, fx
}

func blockRanges(result HistoryDriveResult) [][2]time.Time {
	out := make([][2]time.Time, 0, len(result.Blocks))
	for _, block := range result.Blocks {
		out = append(out, [2]time.Time{block.From, block.To})
	}
	return out
}

func TestHistoryDriver_RunBackwardStopsAtFloor(t *testing.T) {
	t.Parallel()

	seed := []match.Match{{ID: "m-1", MatchID: 10, Date: day2020(time.January, 10).Add(15 * time.Hour), Status: match.StatusFinished}}
	driver, fx := newDriverFixture(t, nil, seed)

	result, err := driver.RunBackward(context.Background(), HistoryDriveInput{Days: 3, MaxDays: 30})
	require.NoError(t, err)

	assert.Equal(t, DirectionBackward, result.Direction)
	assert.Equal(t, [][2]time.Time{
		{day2020(time.January, 7), day2020(time.January, 9)},
		{day2020(time.January, 4), day2020(time.January, 6)},
		{day2020(time.January, 2), day2020(time.January, 3)},
	}, blockRanges(result))
	assert.Equal(t, 3, result.Requests)
	require.Len(t, fx.source.queries, 3)
	for _, q := range fx.source.queries {
		assert.False(t, q.Upcoming)
	}
}

func TestHistoryDriver_RunBackwardWithoutMatchesStartsYesterday(t *testing.T) {
	t.Parallel()

	driver, _ := newDriverFixture(t, nil, nil)

	result, err := driver.RunBackward(context.Background(), HistoryDriveInput{Days: 7, MaxDays: 7})
	require.NoError(t, err)
	assert.Equal(t, [][2]time.Time{
		{day2020(time.January, 25), day2020(time.January, 31)},
	}, blockRanges(result))
}

func TestHistoryDriver_RunBackwardReplaysPendingBlock(t *testing.T) {
	t.Parallel()

	driver, fx := newDriverFixture(t, nil, nil)
	state := syncprogress.Fresh(syncprogress.JobHistoryBackward, historyNow)
	state.CurrentDate = BlockKey(day2020(time.January, 20), day2020(time.January, 22))
	state.CurrentPage = 2
	require.NoError(t, fx.progress.Save(context.Background(), state))

	result, err := driver.RunBackward(context.Background(), HistoryDriveInput{Days: 3, MaxDays: 14})
	require.NoError(t, err)

	ranges := blockRanges(result)
	require.NotEmpty(t, ranges)
	assert.Equal(t, [2]time.Time{day2020(time.January, 20), day2020(time.January, 22)}, ranges[0])
	assert.Equal(t, [2]time.Time{day2020(time.January, 18), day2020(time.January, 19)}, ranges[1])
	assert.Equal(t, 3, fx.source.queries[0].Page)
}

func TestHistoryDriver_RunForwardMarksUpcoming(t *testing.T) {
	t.Parallel()

	driver, fx := newDriverFixture(t, nil, nil)
	start := day2020(time.January, 28)

	result, err := driver.RunForward(context.Background(), HistoryDriveInput{Days: 3, MaxDays: 3, StartDate: &start})
	require.NoError(t, err)

	assert.Equal(t, DirectionForward, result.Direction)
	assert.Equal(t, [][2]time.Time{
		{day2020(time.January, 28), day2020(time.January, 30)},
		{day2020(time.January, 31), day2020(time.February, 2)},
		{day2020(time.February, 3), day2020(time.February, 4)},
	}, blockRanges(result))
	require.Len(t, fx.source.queries, 3)
	assert.False(t, fx.source.queries[0].Upcoming)
	assert.True(t, fx.source.queries[1].Upcoming)
	assert.True(t, fx.source.queries[2].Upcoming)
}

func TestHistoryDriver_StopsWhenBudgetRunsOut(t *testing.T) {
	t.Parallel()

	driver, fx := newDriverFixture(t, nil, nil)
	fx.service.SetRequestBudget(2)

	result, err := driver.RunBackward(context.Background(), HistoryDriveInput{Days: 1, MaxDays: 10})
	require.NoError(t, err)
	assert.True(t, result.Exhausted)
	assert.Len(t, result.Blocks, 2)
	assert.Equal(t, 2, result.Requests)
	assert.Len(t, fx.source.queries, 2)
}

func TestHistoryDriver_SkipsWhenLockHeld(t *testing.T) {
	t.Parallel()

	lock := &stubSyncLock{}
	driver, fx := newDriverFixture(t, lock, nil)

	result, err := driver.RunForward(context.Background(), HistoryDriveInput{})
	require.NoError(t, err)
	assert.True(t, result.Locked)
	assert.Empty(t, result.Blocks)
	assert.Empty(t, fx.source.queries)
	assert.Equal(t, []string{"sync:" + syncprogress.JobHistoryForward}, lock.keys)
}

func TestHistoryDriver_LockErrorIsDependencyFailure(t *testing.T) {
	t.Parallel()

	lock := &stubSyncLock{err: errors.New("redis down")}
	driver, _ := newDriverFixture(t, lock, nil)

	_, err := driver.RunBackward(context.Background(), HistoryDriveInput{})
	require.ErrorIs(t, err, ErrDependencyUnavailable)
}

func TestHistoryDriver_ReleasesLock(t *testing.T) {
	t.Parallel()

	lock := &stubSyncLock{acquired: true}
	driver, _ := newDriverFixture(t, lock, nil)

	_, err := driver.RunBackward(context.Background(), HistoryDriveInput{Days: 7, MaxDays: 7})
	require.NoError(t, err)
	assert.Equal(t, 1, lock.released)
}
