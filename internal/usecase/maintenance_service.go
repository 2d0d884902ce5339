package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/riskibarqy/football-insights/internal/domain/match"
	"github.com/riskibarqy/football-insights/internal/domain/matchstats"
	"github.com/riskibarqy/football-insights/internal/domain/token"
	"github.com/riskibarqy/football-insights/internal/platform/logging"
)

const (
	defaultMaintenancePageSize = 200
	defaultMaintenanceMaxPages = 10
)

type MaintenanceConfig struct {
	PageSize int
	MaxPages int
}

type MaintenanceResult struct {
	MatchesChecked int   `json:"matches_checked"`
	FlagsFixed     int   `json:"flags_fixed"`
	TokensPurged   int64 `json:"tokens_purged"`
	Interrupted    bool  `json:"interrupted"`
}

// MaintenanceService keeps derived match flags in line with stored stats and
// purges expired auth tokens.
type MaintenanceService struct {
	matchRepo match.Repository
	statsRepo matchstats.Repository
	tokenRepo token.Repository
	cfg       MaintenanceConfig
	logger    *logging.Logger
	now       func() time.Time
	stopping  atomic.Bool
}

func NewMaintenanceService(
	matchRepo match.Repository,
	statsRepo matchstats.Repository,
	tokenRepo token.Repository,
	cfg MaintenanceConfig,
	logger *logging.Logger,
) *MaintenanceService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultMaintenancePageSize
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = defaultMaintenanceMaxPages
	}
	return &MaintenanceService{
		matchRepo: matchRepo,
		statsRepo: statsRepo,
		tokenRepo: tokenRepo,
		cfg:       cfg,
		logger:    logger.Named("maintenance"),
		now:       time.Now,
	}
}

// Stop asks a running tick to finish at the next unit boundary.
func (s *MaintenanceService) Stop() {
	s.stopping.Store(true)
}

func (s *MaintenanceService) halted(ctx context.Context) bool {
	return s.stopping.Load() || ctx.Err() != nil
}

// RunOnce performs one maintenance tick.
func (s *MaintenanceService) RunOnce(ctx context.Context) (MaintenanceResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MaintenanceService.RunOnce")
	defer span.End()

	var result MaintenanceResult
	if err := s.reconcileStatsFlags(ctx, &result); err != nil {
		return result, err
	}
	if s.halted(ctx) {
		result.Interrupted = true
		return result, nil
	}

	if s.tokenRepo != nil {
		purged, err := s.tokenRepo.DeleteExpired(ctx, s.now().UTC())
		if err != nil {
			return result, fmt.Errorf("purge expired tokens: %w", err)
		}
		result.TokensPurged = purged
	}

	s.logger.InfoContext(ctx, "maintenance tick completed",
		"matches_checked", result.MatchesChecked,
		"flags_fixed", result.FlagsFixed,
		"tokens_purged", result.TokensPurged,
	)
	return result, nil
}

func (s *MaintenanceService) reconcileStatsFlags(ctx context.Context, result *MaintenanceResult) error {
	for page := 1; page <= s.cfg.MaxPages; page++ {
		if s.halted(ctx) {
			result.Interrupted = true
			return nil
		}

		matches, err := s.matchRepo.Find(ctx, match.Filter{
			Statuses: []match.Status{match.StatusFinished},
			Sort:     match.SortDateDesc,
			Limit:    s.cfg.PageSize,
			Page:     page,
		})
		if err != nil {
			return fmt.Errorf("find matches page %d: %w", page, err)
		}
		if len(matches.Docs) == 0 {
			return nil
		}

		present, err := s.statsPresence(ctx, matches.Docs)
		if err != nil {
			return err
		}

		for _, item := range matches.Docs {
			if s.halted(ctx) {
				result.Interrupted = true
				return nil
			}
			result.MatchesChecked++

			_, want := present[item.MatchID]
			if item.Sync.HasStats == want {
				continue
			}
			item.Sync.HasStats = want
			item.UpdatedAt = s.now().UTC()
			if _, err := s.matchRepo.Update(ctx, item.ID, item); err != nil {
				s.logger.WarnContext(ctx, "reconcile stats flag failed", "match_id", item.MatchID, "error", err)
				continue
			}
			result.FlagsFixed++
		}

		if !matches.HasNextPage {
			return nil
		}
	}
	return nil
}

func (s *MaintenanceService) statsPresence(ctx context.Context, matches []match.Match) (map[int64]struct{}, error) {
	ids := make([]int64, 0, len(matches))
	for _, item := range matches {
		ids = append(ids, item.MatchID)
	}
	stats, err := s.statsRepo.Find(ctx, matchstats.Filter{MatchIDs: ids, Limit: len(ids)})
	if err != nil {
		return nil, fmt.Errorf("find match stats: %w", err)
	}
	present := make(map[int64]struct{}, len(stats.Docs))
	for _, item := range stats.Docs {
		present[item.MatchID] = struct{}{}
	}
	return present, nil
}
