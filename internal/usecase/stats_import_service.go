package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/football-insights/internal/domain/match"
	"github.com/riskibarqy/football-insights/internal/domain/syncprogress"
)

const (
	StatsStatusFinished = "finished"
	StatsStatusLive     = "live"
	StatsStatusAny      = "any"

	defaultStatsImportLimit = 50
)

type StatsImportInput struct {
	MatchID int64  `validate:"gte=0"`
	Status  string `validate:"omitempty,oneof=finished live any"`
	Limit   int    `validate:"gte=0,lte=500"`
}

type StatsImportResult struct {
	Candidates int  `json:"candidates"`
	Imported   int  `json:"imported"`
	Errors     int  `json:"errors"`
	Requests   int  `json:"requests"`
	Exhausted  bool `json:"exhausted"`
}

// ImportStats fetches statistics for stored matches that lack them, or for a
// single match when MatchID is set. It shares the request budget and pacing
// of the history sync.
func (s *HistorySyncService) ImportStats(ctx context.Context, input StatsImportInput) (StatsImportResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.HistorySyncService.ImportStats")
	defer span.End()

	if err := s.validate.StructCtx(ctx, input); err != nil {
		return StatsImportResult{}, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	if s.source == nil || s.matchRepo == nil || s.statsRepo == nil || s.progress == nil {
		return StatsImportResult{}, fmt.Errorf("%w: stats import is not fully configured", ErrDependencyUnavailable)
	}

	candidates, err := s.statsCandidates(ctx, input)
	if err != nil {
		return StatsImportResult{}, err
	}

	state := s.loadState(ctx, syncprogress.JobStatsImport)
	result := StatsImportResult{Candidates: len(candidates)}
	for _, item := range candidates {
		if err := ctx.Err(); err != nil {
			s.saveState(ctx, &state)
			return result, err
		}

		ok, err := s.acquire(ctx)
		if err != nil {
			s.saveState(ctx, &state)
			return result, err
		}
		if !ok {
			result.Exhausted = true
			s.logger.WarnContext(ctx, "request budget exhausted", "job", syncprogress.JobStatsImport, "used", s.budget.Used())
			break
		}
		result.Requests++
		state.Processed++

		item := item
		if err := s.importStats(ctx, &item); err != nil {
			result.Errors++
			state.Failed++
			recErr := newRecordError(item.MatchID, "import_stats", err)
			state.Incr("failed_"+recErr.Kind(), 1)
			s.logger.WarnContext(ctx, "stats import failed", "match_id", recErr.MatchID, "kind", recErr.Kind(), "error", recErr.Err)
			s.saveState(ctx, &state)
			continue
		}
		result.Imported++
		state.Updated++
		state.Incr("imported", 1)
		s.saveState(ctx, &state)
	}

	fields := []any{
		"candidates", result.Candidates,
		"imported", result.Imported,
		"errors", result.Errors,
		"requests", result.Requests,
		"exhausted", result.Exhausted,
	}
	s.logger.InfoContext(ctx, "stats import summary", append(fields, progressCounters(state)...)...)
	return result, nil
}

func (s *HistorySyncService) statsCandidates(ctx context.Context, input StatsImportInput) ([]match.Match, error) {
	if input.MatchID > 0 {
		item, found, err := match.FindByMatchID(ctx, s.matchRepo, input.MatchID)
		if err != nil {
			return nil, fmt.Errorf("find match %d: %w", input.MatchID, err)
		}
		if !found {
			return nil, fmt.Errorf("%w: match %d", ErrNotFound, input.MatchID)
		}
		return []match.Match{item}, nil
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultStatsImportLimit
	}
	filter := match.Filter{Sort: match.SortDateDesc, Limit: limit}
	switch strings.ToLower(strings.TrimSpace(input.Status)) {
	case "", StatsStatusFinished:
		missing := false
		filter.Statuses = []match.Status{match.StatusFinished}
		filter.HasStats = &missing
	case StatsStatusLive:
		filter.Statuses = []match.Status{match.StatusLive, match.StatusHalftime}
	case StatsStatusAny:
		missing := false
		filter.Statuses = []match.Status{match.StatusFinished, match.StatusLive, match.StatusHalftime}
		filter.HasStats = &missing
	}

	page, err := s.matchRepo.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find stats candidates: %w", err)
	}
	return page.Docs, nil
}
