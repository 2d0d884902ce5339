package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/football-insights/internal/domain/match"
	"github.com/riskibarqy/football-insights/internal/domain/matchstats"
	"github.com/riskibarqy/football-insights/internal/platform/pagination"
	"go.opentelemetry.io/otel/attribute"
)

type MatchQueryService struct {
	matchRepo match.Repository
	statsRepo matchstats.Repository
}

func NewMatchQueryService(matchRepo match.Repository, statsRepo matchstats.Repository) *MatchQueryService {
	return &MatchQueryService{
		matchRepo: matchRepo,
		statsRepo: statsRepo,
	}
}

func (s *MatchQueryService) List(ctx context.Context, filter match.Filter) (pagination.Page[match.Match], error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchQueryService.List")
	defer span.End()

	for _, status := range filter.Statuses {
		if _, ok := match.AllStatuses[status]; !ok {
			return pagination.Page[match.Match]{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
		}
	}
	switch filter.Sort {
	case "", match.SortDateAsc, match.SortDateDesc:
	default:
		return pagination.Page[match.Match]{}, fmt.Errorf("%w: unknown sort %q", ErrInvalidInput, filter.Sort)
	}

	page, err := s.matchRepo.Find(ctx, filter)
	if err != nil {
		return pagination.Page[match.Match]{}, fmt.Errorf("find matches: %w", err)
	}
	return page, nil
}

func (s *MatchQueryService) Get(ctx context.Context, matchID int64) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchQueryService.Get", attribute.Int64("match.id", matchID))
	defer span.End()

	if matchID <= 0 {
		return match.Match{}, fmt.Errorf("%w: match id must be greater than zero", ErrInvalidInput)
	}
	item, found, err := match.FindByMatchID(ctx, s.matchRepo, matchID)
	if err != nil {
		return match.Match{}, fmt.Errorf("find match: %w", err)
	}
	if !found {
		return match.Match{}, fmt.Errorf("%w: match=%d", ErrNotFound, matchID)
	}
	return item, nil
}

func (s *MatchQueryService) GetStats(ctx context.Context, matchID int64) (matchstats.MatchStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchQueryService.GetStats", attribute.Int64("match.id", matchID))
	defer span.End()

	if matchID <= 0 {
		return matchstats.MatchStats{}, fmt.Errorf("%w: match id must be greater than zero", ErrInvalidInput)
	}
	item, found, err := matchstats.FindByMatchID(ctx, s.statsRepo, matchID)
	if err != nil {
		return matchstats.MatchStats{}, fmt.Errorf("find match stats: %w", err)
	}
	if !found {
		return matchstats.MatchStats{}, fmt.Errorf("%w: stats of match=%d", ErrNotFound, matchID)
	}
	return item, nil
}
