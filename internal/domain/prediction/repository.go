package prediction

import (
	"context"

	"github.com/riskibarqy/football-insights/internal/platform/pagination"
)

type PostFilter struct {
	IDs        []string
	PostType   string
	MatchIDs   []int64
	FixtureIDs []int64
	Limit      int
	Page       int
}

// PostRepository exposes the find/create/update contract for posts.
type PostRepository interface {
	Find(ctx context.Context, filter PostFilter) (pagination.Page[Post], error)
	Create(ctx context.Context, item Post) (Post, error)
	Update(ctx context.Context, id string, item Post) (Post, error)
}

// GroupRepository reads outcome group definitions.
type GroupRepository interface {
	FindByIDs(ctx context.Context, ids []string) ([]OutcomeGroup, error)
}

func FindPostByID(ctx context.Context, repo PostRepository, id string) (Post, bool, error) {
	page, err := repo.Find(ctx, PostFilter{IDs: []string{id}, Limit: 1})
	if err != nil {
		return Post{}, false, err
	}
	item, ok := page.First()
	return item, ok, nil
}
