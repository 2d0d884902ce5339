package match

import (
	"context"
	"time"

	"github.com/riskibarqy/football-insights/internal/platform/pagination"
)

const (
	SortDateAsc  = "date"
	SortDateDesc = "-date"
)

// Filter narrows Find. Zero values mean "no constraint".
type Filter struct {
	MatchIDs  []int64
	FixtureID *int64
	Statuses  []Status
	DateFrom  *time.Time
	DateTo    *time.Time
	HasStats  *bool
	Sort      string
	Limit     int
	Page      int
}

func (f Filter) Params() pagination.Params {
	return pagination.Params{Limit: f.Limit, Page: f.Page}.Normalize()
}

// Repository exposes the find/create/update contract for matches.
type Repository interface {
	Find(ctx context.Context, filter Filter) (pagination.Page[Match], error)
	Create(ctx context.Context, item Match) (Match, error)
	Update(ctx context.Context, id string, item Match) (Match, error)
}

// FindByMatchID returns the stored match keyed by the provider id.
func FindByMatchID(ctx context.Context, repo Repository, matchID int64) (Match, bool, error) {
	page, err := repo.Find(ctx, Filter{MatchIDs: []int64{matchID}, Limit: 1})
	if err != nil {
		return Match{}, false, err
	}
	item, ok := page.First()
	return item, ok, nil
}

// EarliestDate returns the date of the oldest stored match.
func EarliestDate(ctx context.Context, repo Repository) (time.Time, bool, error) {
	page, err := repo.Find(ctx, Filter{Sort: SortDateAsc, Limit: 1})
	if err != nil {
		return time.Time{}, false, err
	}
	item, ok := page.First()
	if !ok {
		return time.Time{}, false, nil
	}
	return item.Date, true, nil
}
