package settlement

import (
	"context"
	"time"

	"github.com/riskibarqy/football-insights/internal/platform/pagination"
)

type Result string

const (
	ResultWon       Result = "won"
	ResultLost      Result = "lost"
	ResultUndecided Result = "undecided"
)

// Verdict is the evaluator output. Won is nil when the data is not
// sufficient to decide.
type Verdict struct {
	Won    *bool  `json:"won"`
	Reason string `json:"reason"`
}

func (v Verdict) Result() Result {
	switch {
	case v.Won == nil:
		return ResultUndecided
	case *v.Won:
		return ResultWon
	default:
		return ResultLost
	}
}

func Won(reason string) Verdict {
	ok := true
	return Verdict{Won: &ok, Reason: reason}
}

func Lost(reason string) Verdict {
	ok := false
	return Verdict{Won: &ok, Reason: reason}
}

func Undecided(reason string) Verdict {
	return Verdict{Reason: reason}
}

type Detail struct {
	Event       string  `json:"event"`
	Coefficient float64 `json:"coefficient"`
	Result      Result  `json:"result"`
	Reason      string  `json:"reason"`
}

type Summary struct {
	Total     int     `json:"total"`
	Won       int     `json:"won"`
	Lost      int     `json:"lost"`
	Undecided int     `json:"undecided"`
	HitRate   float64 `json:"hitRate"`
	ROI       float64 `json:"roi"`
}

type Scoring struct {
	Points    int            `json:"points"`
	Breakdown map[string]int `json:"breakdown"`
}

// PredictionStats is the settlement record, one per post.
type PredictionStats struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post"`
	MatchID   int64     `json:"matchId"`
	Details   []Detail  `json:"details"`
	Summary   Summary   `json:"summary"`
	Scoring   Scoring   `json:"scoring"`
	SettledAt time.Time `json:"settledAt"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Filter struct {
	PostIDs []string
	Limit   int
	Page    int
}

// Repository exposes the find/create/update contract for settlement records.
type Repository interface {
	Find(ctx context.Context, filter Filter) (pagination.Page[PredictionStats], error)
	Create(ctx context.Context, item PredictionStats) (PredictionStats, error)
	Update(ctx context.Context, id string, item PredictionStats) (PredictionStats, error)
}

func FindByPost(ctx context.Context, repo Repository, postID string) (PredictionStats, bool, error) {
	page, err := repo.Find(ctx, Filter{PostIDs: []string{postID}, Limit: 1})
	if err != nil {
		return PredictionStats{}, false, err
	}
	item, ok := page.First()
	return item, ok, nil
}
