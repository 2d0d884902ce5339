package memory

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/football-insights/internal/domain/token"
	"github.com/riskibarqy/football-insights/internal/platform/id"
)

type TokenRepository struct {
	mu     sync.Mutex
	ids    id.Generator
	tokens map[string]token.AuthToken
}

func NewTokenRepository(ids id.Generator) *TokenRepository {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	return &TokenRepository{ids: ids, tokens: make(map[string]token.AuthToken)}
}

func (r *TokenRepository) Create(_ context.Context, item token.AuthToken) (token.AuthToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == "" {
		item.ID = r.ids.NewID()
	}
	r.tokens[item.ID] = item
	return item, nil
}

func (r *TokenRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for key, item := range r.tokens {
		if item.Expired(now) {
			delete(r.tokens, key)
			deleted++
		}
	}
	return deleted, nil
}

func (r *TokenRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}
