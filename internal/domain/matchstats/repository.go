package matchstats

import (
	"context"

	"github.com/riskibarqy/football-insights/internal/platform/pagination"
)

type Filter struct {
	MatchIDs []int64
	Limit    int
	Page     int
}

// Repository exposes the find/create/update contract for match statistics.
type Repository interface {
	Find(ctx context.Context, filter Filter) (pagination.Page[MatchStats], error)
	Create(ctx context.Context, item MatchStats) (MatchStats, error)
	Update(ctx context.Context, id string, item MatchStats) (MatchStats, error)
}

// FindByMatchID returns the statistics stored for one match.
func FindByMatchID(ctx context.Context, repo Repository, matchID int64) (MatchStats, bool, error) {
	page, err := repo.Find(ctx, Filter{MatchIDs: []int64{matchID}, Limit: 1})
	if err != nil {
		return MatchStats{}, false, err
	}
	item, ok := page.First()
	return item, ok, nil
}
