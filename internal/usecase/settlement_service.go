package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/football-insights/internal/domain/match"
	"github.com/riskibarqy/football-insights/internal/domain/matchstats"
	"github.com/riskibarqy/football-insights/internal/domain/prediction"
	"github.com/riskibarqy/football-insights/internal/domain/settlement"
	"github.com/riskibarqy/football-insights/internal/platform/logging"
	"github.com/riskibarqy/football-insights/internal/platform/pagination"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultSettlementWorkers = 4
	maxSettlementWorkers     = 32
	defaultSettleMatchLimit  = 100

	settleStatusSettled = "settled"
	settleStatusFailed  = "failed"
	settleStatusSkipped = "skipped"
)

type SettlementConfig struct {
	MaxWorkers int
}

type SettleFinishedInput struct {
	Limit      int
	MaxWorkers int
	MatchIDs   []int64
}

type SettlePostResult struct {
	PostID    string `json:"post_id"`
	MatchID   int64  `json:"match_id"`
	Status    string `json:"status"`
	Won       int    `json:"won"`
	Lost      int    `json:"lost"`
	Undecided int    `json:"undecided"`
	Points    int    `json:"points"`
	Message   string `json:"message,omitempty"`
}

type SettleFinishedResult struct {
	MatchCount   int                `json:"match_count"`
	PostCount    int                `json:"post_count"`
	SettledCount int                `json:"settled_count"`
	FailedCount  int                `json:"failed_count"`
	SkippedCount int                `json:"skipped_count"`
	WorkerCount  int                `json:"worker_count"`
	Posts        []SettlePostResult `json:"posts"`
}

// SettlementService evaluates prediction posts against finished matches and
// keeps exactly one PredictionStats record per post.
type SettlementService struct {
	postRepo   prediction.PostRepository
	groupRepo  prediction.GroupRepository
	matchRepo  match.Repository
	statsRepo  matchstats.Repository
	resultRepo settlement.Repository
	cfg        SettlementConfig
	logger     *logging.Logger
	now        func() time.Time

	// settleLocks serializes settlement of the same post inside one process.
	settleLocks keyedLocks
}

func NewSettlementService(
	postRepo prediction.PostRepository,
	groupRepo prediction.GroupRepository,
	matchRepo match.Repository,
	statsRepo matchstats.Repository,
	resultRepo settlement.Repository,
	cfg SettlementConfig,
	logger *logging.Logger,
) *SettlementService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = defaultSettlementWorkers
	}
	return &SettlementService{
		postRepo:   postRepo,
		groupRepo:  groupRepo,
		matchRepo:  matchRepo,
		statsRepo:  statsRepo,
		resultRepo: resultRepo,
		cfg:        cfg,
		logger:     logger.Named("settlement"),
		now:        time.Now,
	}
}

// SettlePost settles one post on behalf of actor.
func (s *SettlementService) SettlePost(ctx context.Context, actor prediction.Actor, postID string) (settlement.PredictionStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.SettlePost", attribute.String("post.id", postID))
	defer span.End()

	postID = strings.TrimSpace(postID)
	if postID == "" {
		return settlement.PredictionStats{}, fmt.Errorf("%w: post id is required", ErrInvalidInput)
	}

	post, found, err := prediction.FindPostByID(ctx, s.postRepo, postID)
	if err != nil {
		return settlement.PredictionStats{}, fmt.Errorf("find post %s: %w", postID, err)
	}
	if !found {
		return settlement.PredictionStats{}, fmt.Errorf("%w: post %s", ErrNotFound, postID)
	}
	if !prediction.CanSettle(actor, post) {
		return settlement.PredictionStats{}, fmt.Errorf("%w: actor cannot settle post %s", ErrUnauthorized, postID)
	}

	return s.settle(ctx, post)
}

// GetSettlement returns the stored settlement record of a post.
func (s *SettlementService) GetSettlement(ctx context.Context, postID string) (settlement.PredictionStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.GetSettlement", attribute.String("post.id", postID))
	defer span.End()

	item, found, err := settlement.FindByPost(ctx, s.resultRepo, strings.TrimSpace(postID))
	if err != nil {
		return settlement.PredictionStats{}, fmt.Errorf("find settlement of post %s: %w", postID, err)
	}
	if !found {
		return settlement.PredictionStats{}, fmt.Errorf("%w: settlement of post %s", ErrNotFound, postID)
	}
	return item, nil
}

// SettleFinished settles every prediction post targeting recently finished
// matches using a bounded worker pool.
func (s *SettlementService) SettleFinished(ctx context.Context, input SettleFinishedInput) (SettleFinishedResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.SettleFinished")
	defer span.End()

	matches, err := s.finishedMatches(ctx, input)
	if err != nil {
		return SettleFinishedResult{}, err
	}
	posts, err := s.postsForMatches(ctx, matches)
	if err != nil {
		return SettleFinishedResult{}, err
	}

	workerCount := normalizeSettlementWorkers(input.MaxWorkers, s.cfg.MaxWorkers, len(posts))
	result := SettleFinishedResult{
		MatchCount:  len(matches),
		PostCount:   len(posts),
		WorkerCount: workerCount,
		Posts:       make([]SettlePostResult, 0, len(posts)),
	}
	if len(posts) == 0 {
		return result, nil
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return SettleFinishedResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	rows := make(chan SettlePostResult, len(posts))
	var settledCount atomic.Int32
	var failedCount atomic.Int32
	var skippedCount atomic.Int32

	var workers sync.WaitGroup
	for _, post := range posts {
		post := post
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			row := SettlePostResult{PostID: post.ID, Status: settleStatusSettled}
			record, err := s.settle(ctx, post)
			switch {
			case err == nil:
				row.MatchID = record.MatchID
				row.Won = record.Summary.Won
				row.Lost = record.Summary.Lost
				row.Undecided = record.Summary.Undecided
				row.Points = record.Scoring.Points
				settledCount.Add(1)
			case errors.Is(err, ErrMatchNotFinished), errors.Is(err, ErrNotFound):
				row.Status = settleStatusSkipped
				row.Message = err.Error()
				skippedCount.Add(1)
			default:
				row.Status = settleStatusFailed
				row.Message = err.Error()
				failedCount.Add(1)
				s.logger.WarnContext(ctx, "settle post failed", "post_id", post.ID, "error", err)
			}
			rows <- row
		}); err != nil {
			workers.Done()
			return SettleFinishedResult{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(rows)

	for row := range rows {
		result.Posts = append(result.Posts, row)
	}
	sort.SliceStable(result.Posts, func(i, j int) bool {
		return result.Posts[i].PostID < result.Posts[j].PostID
	})

	result.SettledCount = int(settledCount.Load())
	result.FailedCount = int(failedCount.Load())
	result.SkippedCount = int(skippedCount.Load())

	s.logger.InfoContext(ctx, "settlement summary",
		"matches", result.MatchCount,
		"posts", result.PostCount,
		"settled", result.SettledCount,
		"failed", result.FailedCount,
		"skipped", result.SkippedCount,
		"workers", result.WorkerCount,
	)
	return result, nil
}

func (s *SettlementService) settle(ctx context.Context, post prediction.Post) (settlement.PredictionStats, error) {
	if !post.IsPrediction() {
		return settlement.PredictionStats{}, fmt.Errorf("%w: post %s is not a prediction", ErrInvalidInput, post.ID)
	}
	if !post.Prediction.HasTarget() {
		return settlement.PredictionStats{}, fmt.Errorf("%w: prediction %s has no match", ErrInvalidInput, post.ID)
	}

	unlock := s.lockPost(post.ID)
	defer unlock()

	target, err := s.resolveMatch(ctx, *post.Prediction)
	if err != nil {
		return settlement.PredictionStats{}, err
	}
	if target.Status != match.StatusFinished {
		return settlement.PredictionStats{}, fmt.Errorf("%w: match %d is %s", ErrMatchNotFinished, target.MatchID, target.Status)
	}

	input := settlement.Input{Match: target}
	stats, found, err := matchstats.FindByMatchID(ctx, s.statsRepo, target.MatchID)
	if err != nil {
		return settlement.PredictionStats{}, fmt.Errorf("find stats of match %d: %w", target.MatchID, err)
	}
	if found {
		input.Stats = &stats
	}

	groups, err := s.loadGroups(ctx, *post.Prediction)
	if err != nil {
		return settlement.PredictionStats{}, err
	}

	picks := settlement.Picks(*post.Prediction, groups)
	details, summary := settlement.EvaluateMany(picks, input)
	now := s.now().UTC()
	record := settlement.PredictionStats{
		PostID:    post.ID,
		MatchID:   target.MatchID,
		Details:   details,
		Summary:   summary,
		Scoring:   settlement.Score(details, *post.Prediction, target),
		SettledAt: now,
		UpdatedAt: now,
	}

	existing, found, err := settlement.FindByPost(ctx, s.resultRepo, post.ID)
	if err != nil {
		return settlement.PredictionStats{}, fmt.Errorf("find settlement of post %s: %w", post.ID, err)
	}
	if found {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
		updated, err := s.resultRepo.Update(ctx, existing.ID, record)
		if err != nil {
			return settlement.PredictionStats{}, fmt.Errorf("update settlement of post %s: %w", post.ID, err)
		}
		return updated, nil
	}

	record.CreatedAt = now
	created, err := s.resultRepo.Create(ctx, record)
	if err != nil {
		return settlement.PredictionStats{}, fmt.Errorf("create settlement of post %s: %w", post.ID, err)
	}
	s.logger.DebugContext(ctx, "post settled", "post_id", post.ID, "match_id", target.MatchID, "won", summary.Won, "lost", summary.Lost, "undecided", summary.Undecided)
	return created, nil
}

func (s *SettlementService) lockPost(postID string) func() {
	return s.settleLocks.lock(postID)
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

// keyedLocks hands out one mutex per key. An entry lives only while some
// caller holds or waits for it.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

func (l *keyedLocks) lock(key string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*keyedLock)
	}
	entry, ok := l.locks[key]
	if !ok {
		entry = &keyedLock{}
		l.locks[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

func (l *keyedLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

func (s *SettlementService) resolveMatch(ctx context.Context, p prediction.Prediction) (match.Match, error) {
	if p.MatchID != nil {
		item, found, err := match.FindByMatchID(ctx, s.matchRepo, *p.MatchID)
		if err != nil {
			return match.Match{}, fmt.Errorf("find match %d: %w", *p.MatchID, err)
		}
		if found {
			return item, nil
		}
	}
	if p.FixtureID != nil {
		page, err := s.matchRepo.Find(ctx, match.Filter{FixtureID: p.FixtureID, Limit: 1})
		if err != nil {
			return match.Match{}, fmt.Errorf("find fixture %d: %w", *p.FixtureID, err)
		}
		if item, ok := page.First(); ok {
			return item, nil
		}
	}
	return match.Match{}, fmt.Errorf("%w: prediction match", ErrNotFound)
}

func (s *SettlementService) loadGroups(ctx context.Context, p prediction.Prediction) (map[string]prediction.OutcomeGroup, error) {
	ids := make([]string, 0, len(p.Outcomes))
	seen := make(map[string]struct{}, len(p.Outcomes))
	for _, outcome := range p.Outcomes {
		id := strings.TrimSpace(outcome.GroupID)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 || s.groupRepo == nil {
		return map[string]prediction.OutcomeGroup{}, nil
	}

	items, err := s.groupRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find outcome groups: %w", err)
	}
	out := make(map[string]prediction.OutcomeGroup, len(items))
	for _, item := range items {
		out[item.ID] = item
	}
	return out, nil
}

func (s *SettlementService) finishedMatches(ctx context.Context, input SettleFinishedInput) ([]match.Match, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultSettleMatchLimit
	}
	filter := match.Filter{
		MatchIDs: input.MatchIDs,
		Statuses: []match.Status{match.StatusFinished},
		Sort:     match.SortDateDesc,
		Limit:    limit,
	}
	page, err := s.matchRepo.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find finished matches: %w", err)
	}
	return page.Docs, nil
}

func (s *SettlementService) postsForMatches(ctx context.Context, matches []match.Match) ([]prediction.Post, error) {
	if len(matches) == 0 {
		return nil, nil
	}
	matchIDs := make([]int64, 0, len(matches))
	fixtureIDs := make([]int64, 0, len(matches))
	for _, item := range matches {
		matchIDs = append(matchIDs, item.MatchID)
		if item.FixtureID != nil {
			fixtureIDs = append(fixtureIDs, *item.FixtureID)
		}
	}

	seen := make(map[string]struct{})
	out := make([]prediction.Post, 0)
	collect := func(filter prediction.PostFilter) error {
		filter.PostType = prediction.PostTypePrediction
		filter.Limit = pagination.MaxLimit
		for page := 1; ; page++ {
			filter.Page = page
			result, err := s.postRepo.Find(ctx, filter)
			if err != nil {
				return fmt.Errorf("find prediction posts: %w", err)
			}
			for _, post := range result.Docs {
				if _, ok := seen[post.ID]; ok {
					continue
				}
				seen[post.ID] = struct{}{}
				out = append(out, post)
			}
			if !result.HasNextPage {
				return nil
			}
		}
	}

	if err := collect(prediction.PostFilter{MatchIDs: matchIDs}); err != nil {
		return nil, err
	}
	if len(fixtureIDs) > 0 {
		if err := collect(prediction.PostFilter{FixtureIDs: fixtureIDs}); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func normalizeSettlementWorkers(requested, configured, tasks int) int {
	workers := requested
	if workers <= 0 {
		workers = configured
	}
	if workers <= 0 {
		workers = defaultSettlementWorkers
	}
	if workers > maxSettlementWorkers {
		workers = maxSettlementWorkers
	}
	if tasks > 0 && workers > tasks {
		workers = tasks
	}
	return workers
}
