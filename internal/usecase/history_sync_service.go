package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/football-insights/external/sportsdata"
	"github.com/riskibarqy/football-insights/internal/domain/match"
	"github.com/riskibarqy/football-insights/internal/domain/matchstats"
	"github.com/riskibarqy/football-insights/internal/domain/syncprogress"
	"github.com/riskibarqy/football-insights/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
)

const (
	defaultHistoryPageSize = 30
	blockKeyLayout         = "2006-01-02"
)

// SportsDataSource is the slice of the sports data client the sync jobs use.
type SportsDataSource interface {
	FetchMatchesPage(ctx context.Context, q sportsdata.MatchPageQuery) (sportsdata.MatchPage, error)
	FetchMatchStats(ctx context.Context, matchID int64) (sportsdata.StatsPayload, error)
}

type HistorySyncConfig struct {
	DelayBetweenRequests time.Duration
	DefaultPageSize      int
	RequestBudget        int
}

type HistoryPeriodInput struct {
	From           time.Time `validate:"required"`
	To             time.Time `validate:"required,gtefield=From"`
	PageSize       int       `validate:"gte=0,lte=500"`
	CompetitionIDs []int64   `validate:"dive,gt=0"`
	TeamIDs        []int64   `validate:"dive,gt=0"`
	WithStats      bool
	Upcoming       bool
	Job            string           `validate:"required"`
	Source         match.SyncSource `validate:"required"`
}

type HistoryPeriodStats struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

func (s *HistoryPeriodStats) add(other HistoryPeriodStats) {
	s.Created += other.Created
	s.Updated += other.Updated
	s.Skipped += other.Skipped
	s.Errors += other.Errors
}

type HistoryPeriodResult struct {
	Processed    int                `json:"processed"`
	Stats        HistoryPeriodStats `json:"stats"`
	StatsFetched int                `json:"stats_fetched"`
	Pages        int                `json:"pages"`
	Requests     int                `json:"requests"`
	Exhausted    bool               `json:"exhausted"`
}

// HistorySyncService pages the provider over a date window and upserts
// matches and statistics keyed by the provider match id. At most one run per
// job may be active at a time; the progress cursor and dedup set assume it.
type HistorySyncService struct {
	source    SportsDataSource
	matchRepo match.Repository
	statsRepo matchstats.Repository
	progress  syncprogress.Store
	budget    *RequestBudget
	limiter   *rate.Limiter
	validate  *validator.Validate
	cfg       HistorySyncConfig
	logger    *logging.Logger
	now       func() time.Time
}

func NewHistorySyncService(
	source SportsDataSource,
	matchRepo match.Repository,
	statsRepo matchstats.Repository,
	progress syncprogress.Store,
	cfg HistorySyncConfig,
	logger *logging.Logger,
) *HistorySyncService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = defaultHistoryPageSize
	}

	limit := rate.Inf
	if cfg.DelayBetweenRequests > 0 {
		limit = rate.Every(cfg.DelayBetweenRequests)
	}

	return &HistorySyncService{
		source:    source,
		matchRepo: matchRepo,
		statsRepo: statsRepo,
		progress:  progress,
		budget:    NewRequestBudget(cfg.RequestBudget),
		limiter:   rate.NewLimiter(limit, 1),
		validate:  validator.New(),
		cfg:       cfg,
		logger:    logger.Named("history_sync"),
		now:       time.Now,
	}
}

// SetRequestBudget caps the provider calls of the next runs. n <= 0 lifts the cap.
func (s *HistorySyncService) SetRequestBudget(n int) {
	s.budget.Set(n)
}

// ProcessHistoryPeriod syncs every match the provider lists for [From, To].
// A spent request budget stops the run with Exhausted set; a failed page
// aborts the run with an error; a failed record is counted in Stats.Errors.
func (s *HistorySyncService) ProcessHistoryPeriod(ctx context.Context, input HistoryPeriodInput) (HistoryPeriodResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.HistorySyncService.ProcessHistoryPeriod")
	defer span.End()

	if err := s.validate.StructCtx(ctx, input); err != nil {
		return HistoryPeriodResult{}, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	if s.source == nil || s.matchRepo == nil || s.statsRepo == nil || s.progress == nil {
		return HistoryPeriodResult{}, fmt.Errorf("%w: history sync is not fully configured", ErrDependencyUnavailable)
	}
	if input.PageSize == 0 {
		input.PageSize = s.cfg.DefaultPageSize
	}

	from := truncateDay(input.From)
	to := truncateDay(input.To)
	key := BlockKey(from, to)
	span.SetAttributes(attribute.String("sync.block", key), attribute.String("sync.job", input.Job))

	state := s.loadState(ctx, input.Job)
	page := 1
	if state.CurrentDate == key && state.CurrentPage > 0 {
		page = state.CurrentPage + 1
		s.logger.InfoContext(ctx, "resuming history block", "job", input.Job, "block", key, "page", page)
	} else {
		state.CurrentDate = key
		state.CurrentPage = 0
		state.TotalPages = 0
	}

	var result HistoryPeriodResult
	for {
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
			s.logger.WarnContext(ctx, "request budget exhausted", "job", input.Job, "block", key, "page", page, "used", s.budget.Used())
			break
		}
		result.Requests++

		listing, err := s.source.FetchMatchesPage(ctx, sportsdata.MatchPageQuery{
			From:           from,
			To:             to,
			Page:           page,
			Size:           input.PageSize,
			CompetitionIDs: input.CompetitionIDs,
			TeamIDs:        input.TeamIDs,
			Upcoming:       input.Upcoming,
		})
		if err != nil {
			s.saveState(ctx, &state)
			return result, providerError(fmt.Sprintf("history block %s page %d", key, page), err)
		}
		result.Pages++
		state.TotalPages = listing.TotalPages

		for _, raw := range listing.Matches {
			if s.syncMatch(ctx, raw, input, &state, &result) {
				result.Exhausted = true
				break
			}
			s.saveState(ctx, &state)
		}
		if result.Exhausted {
			s.logger.WarnContext(ctx, "request budget exhausted", "job", input.Job, "block", key, "page", page, "used", s.budget.Used())
			break
		}

		state.CurrentPage = page
		s.saveState(ctx, &state)
		s.logger.InfoContext(ctx, "history page synced",
			"job", input.Job,
			"block", key,
			"page", page,
			"total_pages", listing.TotalPages,
			"matches", len(listing.Matches),
			"created", result.Stats.Created,
			"skipped", result.Stats.Skipped,
			"errors", result.Stats.Errors,
		)

		if !listing.HasNextPage || len(listing.Matches) == 0 {
			state.CurrentPage = 0
			break
		}
		page++
	}

	s.saveState(ctx, &state)
	return result, nil
}

// syncMatch upserts one raw match and, when asked, its statistics. It
// reports true when the request budget ran out before the stats call.
func (s *HistorySyncService) syncMatch(
	ctx context.Context,
	raw map[string]any,
	input HistoryPeriodInput,
	state *syncprogress.State,
	result *HistoryPeriodResult,
) bool {
	incoming := sportsdata.NormalizeMatch(raw, input.Source, s.now())
	if incoming.MatchID <= 0 {
		s.recordFailure(ctx, state, result, newRecordError(0, "normalize", fmt.Errorf("%w: match id is missing", ErrInvalidInput)))
		return false
	}

	result.Processed++
	state.Processed++

	if state.ProcessedIDs.Has(incoming.MatchID) {
		result.Stats.Skipped++
		state.Skipped++
		return false
	}

	stored, err := s.upsertMatch(ctx, incoming, state, result)
	if err != nil {
		s.recordFailure(ctx, state, result, newRecordError(incoming.MatchID, "upsert_match", err))
		return false
	}

	needsStats := input.WithStats && stored.Status == match.StatusFinished && !stored.Sync.HasStats
	if needsStats {
		ok, err := s.acquire(ctx)
		if err != nil {
			s.recordFailure(ctx, state, result, newRecordError(stored.MatchID, "fetch_stats", err))
			return false
		}
		if !ok {
			return true
		}
		result.Requests++

		if err := s.importStats(ctx, &stored); err != nil {
			s.recordFailure(ctx, state, result, newRecordError(stored.MatchID, "import_stats", err))
			return false
		}
		result.StatsFetched++
	}

	// Finished matches stay out of the set until their stats are stored.
	if stored.Status.Terminal() && (stored.Status != match.StatusFinished || stored.Sync.HasStats) {
		state.ProcessedIDs.Add(stored.MatchID)
	}
	return false
}

func (s *HistorySyncService) upsertMatch(
	ctx context.Context,
	incoming match.Match,
	state *syncprogress.State,
	result *HistoryPeriodResult,
) (match.Match, error) {
	existing, found, err := match.FindByMatchID(ctx, s.matchRepo, incoming.MatchID)
	if err != nil {
		return match.Match{}, fmt.Errorf("find match: %w", err)
	}

	if !found {
		now := s.now().UTC()
		incoming.CreatedAt = now
		incoming.UpdatedAt = now
		created, err := s.matchRepo.Create(ctx, incoming)
		if err != nil {
			return match.Match{}, fmt.Errorf("create match: %w", err)
		}
		result.Stats.Created++
		state.Created++
		return created, nil
	}

	result.Stats.Skipped++
	state.Skipped++
	if !existing.ApplySync(incoming) {
		return existing, nil
	}

	existing.UpdatedAt = s.now().UTC()
	updated, err := s.matchRepo.Update(ctx, existing.ID, existing)
	if err != nil {
		return match.Match{}, fmt.Errorf("update match: %w", err)
	}
	result.Stats.Updated++
	state.Updated++
	return updated, nil
}

// importStats fetches, normalizes and upserts the statistics of stored, then
// flags the match as having stats.
func (s *HistorySyncService) importStats(ctx context.Context, stored *match.Match) error {
	payload, err := s.source.FetchMatchStats(ctx, stored.MatchID)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	normalized := sportsdata.NormalizeStats(stored.MatchID, payload, now)
	normalized.MatchRef = stored.ID

	existing, found, err := matchstats.FindByMatchID(ctx, s.statsRepo, stored.MatchID)
	if err != nil {
		return fmt.Errorf("find match stats: %w", err)
	}
	if found {
		normalized.ID = existing.ID
		normalized.CreatedAt = existing.CreatedAt
		if _, err := s.statsRepo.Update(ctx, existing.ID, normalized); err != nil {
			return fmt.Errorf("update match stats: %w", err)
		}
	} else {
		normalized.CreatedAt = now
		if _, err := s.statsRepo.Create(ctx, normalized); err != nil {
			return fmt.Errorf("create match stats: %w", err)
		}
	}

	if stored.Sync.HasStats {
		return nil
	}
	stored.Sync.HasStats = true
	stored.Sync.LastSyncAt = now
	stored.UpdatedAt = now
	updated, err := s.matchRepo.Update(ctx, stored.ID, *stored)
	if err != nil {
		return fmt.Errorf("flag match stats: %w", err)
	}
	*stored = updated
	return nil
}

func (s *HistorySyncService) recordFailure(
	ctx context.Context,
	state *syncprogress.State,
	result *HistoryPeriodResult,
	err *RecordError,
) {
	result.Stats.Errors++
	state.Failed++
	state.Incr("failed_"+err.Kind(), 1)
	s.logger.WarnContext(ctx, "history record failed", "match_id", err.MatchID, "stage", err.Stage, "kind", err.Kind(), "error", err.Err)
}

// acquire takes one budget unit and waits out the pacing delay.
func (s *HistorySyncService) acquire(ctx context.Context) (bool, error) {
	if !s.budget.Take() {
		return false, nil
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (s *HistorySyncService) loadState(ctx context.Context, job string) syncprogress.State {
	state, err := s.progress.Load(ctx, job)
	if err != nil {
		s.logger.WarnContext(ctx, "progress unreadable, starting fresh", "job", job, "error", err)
	}
	state.Normalize(job)
	if state.StartTime.IsZero() {
		state.StartTime = s.now().UTC()
	}
	return state
}

func (s *HistorySyncService) saveState(ctx context.Context, state *syncprogress.State) {
	state.UpdatedAt = s.now().UTC()
	if err := s.progress.Save(context.WithoutCancel(ctx), *state); err != nil {
		s.logger.WarnContext(ctx, "save progress failed", "job", state.Job, "error", err)
	}
}

// progressCounters flattens the job-specific counters of state into log fields.
func progressCounters(state syncprogress.State) []any {
	keys := state.ExtraKeys()
	fields := make([]any, 0, 2*len(keys))
	for _, key := range keys {
		fields = append(fields, "progress."+key, state.Extra[key])
	}
	return fields
}

// PendingBlock returns the block a previous run of job left unfinished.
func (s *HistorySyncService) PendingBlock(ctx context.Context, job string) (time.Time, time.Time, bool) {
	state := s.loadState(ctx, job)
	if state.CurrentPage <= 0 {
		return time.Time{}, time.Time{}, false
	}
	return ParseBlockKey(state.CurrentDate)
}

// BlockKey identifies a date block in the progress cursor.
func BlockKey(from, to time.Time) string {
	return from.UTC().Format(blockKeyLayout) + ".." + to.UTC().Format(blockKeyLayout)
}

func ParseBlockKey(key string) (time.Time, time.Time, bool) {
	if len(key) != 2*len(blockKeyLayout)+2 {
		return time.Time{}, time.Time{}, false
	}
	from, err := time.Parse(blockKeyLayout, key[:len(blockKeyLayout)])
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	to, err := time.Parse(blockKeyLayout, key[len(blockKeyLayout)+2:])
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
