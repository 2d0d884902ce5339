package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/football-insights/internal/domain/match"
	"github.com/riskibarqy/football-insights/internal/domain/syncprogress"
)

const (
	DirectionBackward = "backward"
	DirectionForward  = "forward"

	defaultBlockDays = 7
	defaultMaxDays   = 365
	day              = 24 * time.Hour
)

// SyncLock guards a sync direction across processes.
type SyncLock interface {
	Acquire(ctx context.Context, key string) (release func(), acquired bool, err error)
}

type noopSyncLock struct{}

func (noopSyncLock) Acquire(context.Context, string) (func(), bool, error) {
	return func() {}, true, nil
}

func NewNoopSyncLock() SyncLock {
	return noopSyncLock{}
}

type HistoryDriveInput struct {
	Days           int
	PageSize       int
	MaxDays        int
	StartDate      *time.Time
	CompetitionIDs []int64
	TeamIDs        []int64
	WithStats      bool
}

type HistoryBlockResult struct {
	From   time.Time           `json:"from"`
	To     time.Time           `json:"to"`
	Result HistoryPeriodResult `json:"result"`
}

type HistoryDriveResult struct {
	Direction string               `json:"direction"`
	Blocks    []HistoryBlockResult `json:"blocks"`
	Processed int                  `json:"processed"`
	Stats     HistoryPeriodStats   `json:"stats"`
	Requests  int                  `json:"requests"`
	Exhausted bool                 `json:"exhausted"`
	Locked    bool                 `json:"locked"`
}

type dateBlock struct {
	from time.Time
	to   time.Time
}

// HistoryDriver walks date blocks over the history engine in either direction.
type HistoryDriver struct {
	engine    *HistorySyncService
	matchRepo match.Repository
	lock      SyncLock
	now       func() time.Time
}

func NewHistoryDriver(engine *HistorySyncService, matchRepo match.Repository, lock SyncLock) *HistoryDriver {
	if lock == nil {
		lock = NewNoopSyncLock()
	}
	return &HistoryDriver{
		engine:    engine,
		matchRepo: matchRepo,
		lock:      lock,
		now:       time.Now,
	}
}

// RunBackward starts the day before the earliest stored match (or at
// StartDate) and walks older blocks down to now-MaxDays.
func (d *HistoryDriver) RunBackward(ctx context.Context, input HistoryDriveInput) (HistoryDriveResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.HistoryDriver.RunBackward")
	defer span.End()

	input = normalizeDriveInput(input)
	today := truncateDay(d.now())
	floor := today.AddDate(0, 0, -input.MaxDays)

	end := today.Add(-day)
	if input.StartDate != nil {
		end = truncateDay(*input.StartDate)
	} else {
		earliest, found, err := match.EarliestDate(ctx, d.matchRepo)
		if err != nil {
			return HistoryDriveResult{}, fmt.Errorf("find earliest match date: %w", err)
		}
		if found {
			end = truncateDay(earliest).Add(-day)
		}
	}

	var blocks []dateBlock
	if from, to, ok := d.engine.PendingBlock(ctx, syncprogress.JobHistoryBackward); ok && input.StartDate == nil && !to.Before(floor) {
		blocks = append(blocks, dateBlock{from: from, to: to})
		end = from.Add(-day)
	}
	for !end.Before(floor) {
		start := end.AddDate(0, 0, -(input.Days - 1))
		if start.Before(floor) {
			start = floor
		}
		blocks = append(blocks, dateBlock{from: start, to: end})
		end = start.Add(-day)
	}

	return d.drive(ctx, DirectionBackward, syncprogress.JobHistoryBackward, match.SyncSourceHistoryBackward, blocks, input, false)
}

// RunForward starts today (or at StartDate) and walks newer blocks up to
// now+MaxDays.
func (d *HistoryDriver) RunForward(ctx context.Context, input HistoryDriveInput) (HistoryDriveResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.HistoryDriver.RunForward")
	defer span.End()

	input = normalizeDriveInput(input)
	today := truncateDay(d.now())
	horizon := today.AddDate(0, 0, input.MaxDays)

	start := today
	if input.StartDate != nil {
		start = truncateDay(*input.StartDate)
	}

	var blocks []dateBlock
	if from, to, ok := d.engine.PendingBlock(ctx, syncprogress.JobHistoryForward); ok && input.StartDate == nil && !from.After(horizon) && !to.Before(today) {
		blocks = append(blocks, dateBlock{from: from, to: to})
		start = to.Add(day)
	}
	for !start.After(horizon) {
		end := start.AddDate(0, 0, input.Days-1)
		if end.After(horizon) {
			end = horizon
		}
		blocks = append(blocks, dateBlock{from: start, to: end})
		start = end.Add(day)
	}

	return d.drive(ctx, DirectionForward, syncprogress.JobHistoryForward, match.SyncSourceHistoryForward, blocks, input, true)
}

func (d *HistoryDriver) drive(
	ctx context.Context,
	direction string,
	job string,
	source match.SyncSource,
	blocks []dateBlock,
	input HistoryDriveInput,
	upcoming bool,
) (HistoryDriveResult, error) {
	result := HistoryDriveResult{Direction: direction, Blocks: make([]HistoryBlockResult, 0, len(blocks))}

	release, acquired, err := d.lock.Acquire(ctx, "sync:"+job)
	if err != nil {
		return result, fmt.Errorf("%w: acquire %s lock: %v", ErrDependencyUnavailable, job, err)
	}
	if !acquired {
		result.Locked = true
		d.engine.logger.WarnContext(ctx, "history sync already running elsewhere", "direction", direction)
		return result, nil
	}
	defer release()

	for _, block := range blocks {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if d.engine.budget.Exhausted() {
			result.Exhausted = true
			break
		}

		d.engine.logger.InfoContext(ctx, "history block started",
			"direction", direction,
			"from", block.from.Format(blockKeyLayout),
			"to", block.to.Format(blockKeyLayout),
		)
		period, err := d.engine.ProcessHistoryPeriod(ctx, HistoryPeriodInput{
			From:           block.from,
			To:             block.to,
			PageSize:       input.PageSize,
			CompetitionIDs: input.CompetitionIDs,
			TeamIDs:        input.TeamIDs,
			WithStats:      input.WithStats,
			Upcoming:       upcoming && !block.to.Before(truncateDay(d.now())),
			Job:            job,
			Source:         source,
		})
		result.Blocks = append(result.Blocks, HistoryBlockResult{From: block.from, To: block.to, Result: period})
		result.Processed += period.Processed
		result.Requests += period.Requests
		result.Stats.add(period.Stats)
		if err != nil {
			return result, err
		}
		if period.Exhausted {
			result.Exhausted = true
			break
		}
	}

	d.engine.logger.InfoContext(ctx, "history sync summary",
		"direction", direction,
		"blocks", len(result.Blocks),
		"processed", result.Processed,
		"created", result.Stats.Created,
		"updated", result.Stats.Updated,
		"skipped", result.Stats.Skipped,
		"errors", result.Stats.Errors,
		"requests", result.Requests,
		"exhausted", result.Exhausted,
	)
	return result, nil
}

func normalizeDriveInput(input HistoryDriveInput) HistoryDriveInput {
	if input.Days <= 0 {
		input.Days = defaultBlockDays
	}
	if input.MaxDays <= 0 {
		input.MaxDays = defaultMaxDays
	}
	return input
}
