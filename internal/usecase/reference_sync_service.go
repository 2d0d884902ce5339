package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/football-insights/external/sportsdata"
	"github.com/riskibarqy/football-insights/internal/domain/syncprogress"
)

const defaultReferenceTeamPages = 20

// ReferenceSource lists provider reference data.
type ReferenceSource interface {
	FetchCompetitions(ctx context.Context) ([]sportsdata.ReferenceItem, error)
	FetchCountries(ctx context.Context) ([]sportsdata.ReferenceItem, error)
	FetchTeams(ctx context.Context, page int) (sportsdata.ReferencePage, error)
}

type ReferenceSyncInput struct {
	MaxTeamPages int `validate:"gte=0,lte=1000"`
}

type ReferenceSyncResult struct {
	Competitions int  `json:"competitions"`
	Countries    int  `json:"countries"`
	NewTeams     int  `json:"new_teams"`
	TotalTeams   int  `json:"total_teams"`
	TeamPages    int  `json:"team_pages"`
	Completed    bool `json:"completed"`
	Requests     int  `json:"requests"`
	Exhausted    bool `json:"exhausted"`
}

// SyncReference walks competitions, countries and the paged team list. The
// team cursor and the seen team ids survive restarts so an interrupted walk
// resumes at the next page.
func (s *HistorySyncService) SyncReference(ctx context.Context, input ReferenceSyncInput) (ReferenceSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.HistorySyncService.SyncReference")
	defer span.End()

	if err := s.validate.StructCtx(ctx, input); err != nil {
		return ReferenceSyncResult{}, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	source, ok := s.source.(ReferenceSource)
	if !ok || s.progress == nil {
		return ReferenceSyncResult{}, fmt.Errorf("%w: reference sync is not configured", ErrDependencyUnavailable)
	}
	maxPages := input.MaxTeamPages
	if maxPages <= 0 {
		maxPages = defaultReferenceTeamPages
	}

	state := s.loadState(ctx, syncprogress.JobReference)
	if state.TotalPages > 0 && state.CurrentPage >= state.TotalPages {
		state = syncprogress.Fresh(syncprogress.JobReference, s.now())
	}

	var result ReferenceSyncResult
	// A resumed walk stored competitions and countries on its first run.
	if state.CurrentPage == 0 {
		stop, err := s.syncReferenceLists(ctx, source, &state, &result)
		if err != nil || stop {
			s.saveState(ctx, &state)
			return s.finishReference(ctx, result, state), err
		}
	} else {
		s.logger.InfoContext(ctx, "resuming reference walk", "page", state.CurrentPage+1)
	}

	for pages := 0; pages < maxPages; pages++ {
		page := state.CurrentPage + 1
		var hasNext bool
		stop, err := s.referenceCall(ctx, &result, func() error {
			teams, err := source.FetchTeams(ctx, page)
			if err != nil {
				return err
			}
			for _, team := range teams.Items {
				if state.ProcessedIDs.Add(team.ID) {
					result.NewTeams++
				}
			}
			hasNext = teams.HasNextPage
			return nil
		})
		if err != nil || stop {
			s.saveState(ctx, &state)
			return s.finishReference(ctx, result, state), err
		}

		result.TeamPages++
		state.CurrentPage = page
		state.Processed = state.ProcessedIDs.Len()
		if !hasNext {
			state.TotalPages = page
			result.Completed = true
			s.saveState(ctx, &state)
			break
		}
		s.saveState(ctx, &state)
	}

	return s.finishReference(ctx, result, state), nil
}

// syncReferenceLists fetches the competition and country lists. stop reports
// an exhausted budget.
func (s *HistorySyncService) syncReferenceLists(
	ctx context.Context,
	source ReferenceSource,
	state *syncprogress.State,
	result *ReferenceSyncResult,
) (bool, error) {
	stop, err := s.referenceCall(ctx, result, func() error {
		items, err := source.FetchCompetitions(ctx)
		if err != nil {
			return err
		}
		result.Competitions = len(items)
		state.Extra = setExtra(state.Extra, "competitions", int64(len(items)))
		return nil
	})
	if err != nil || stop {
		return stop, err
	}

	return s.referenceCall(ctx, result, func() error {
		items, err := source.FetchCountries(ctx)
		if err != nil {
			return err
		}
		result.Countries = len(items)
		state.Extra = setExtra(state.Extra, "countries", int64(len(items)))
		return nil
	})
}

// referenceCall spends one budget unit on call. stop reports an exhausted budget.
func (s *HistorySyncService) referenceCall(ctx context.Context, result *ReferenceSyncResult, call func() error) (bool, error) {
	ok, err := s.acquire(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		result.Exhausted = true
		s.logger.WarnContext(ctx, "request budget exhausted", "job", syncprogress.JobReference, "used", s.budget.Used())
		return true, nil
	}
	result.Requests++
	if err := call(); err != nil {
		return false, providerError("reference sync", err)
	}
	return false, nil
}

func (s *HistorySyncService) finishReference(ctx context.Context, result ReferenceSyncResult, state syncprogress.State) ReferenceSyncResult {
	result.TotalTeams = state.ProcessedIDs.Len()
	fields := []any{
		"new_teams", result.NewTeams,
		"total_teams", result.TotalTeams,
		"team_pages", result.TeamPages,
		"completed", result.Completed,
		"requests", result.Requests,
		"exhausted", result.Exhausted,
	}
	s.logger.InfoContext(ctx, "reference sync summary", append(fields, progressCounters(state)...)...)
	return result
}

func setExtra(extra map[string]int64, key string, value int64) map[string]int64 {
	if extra == nil {
		extra = make(map[string]int64)
	}
	extra[key] = value
	return extra
}
