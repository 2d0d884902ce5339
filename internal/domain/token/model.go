package token

import (
	"context"
	"time"
)

// AuthToken is a short-lived credential issued to a user, such as a
// password reset or email verification token.
type AuthToken struct {
	ID        string
	UserID    string
	Kind      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (t AuthToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// Repository exposes token housekeeping.
type Repository interface {
	Create(ctx context.Context, item AuthToken) (AuthToken, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
