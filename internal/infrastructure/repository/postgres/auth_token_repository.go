package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/football-insights/internal/domain/token"
	"github.com/riskibarqy/football-insights/internal/platform/id"
	qb "github.com/riskibarqy/football-insights/internal/platform/querybuilder"
)

const authTokensTable = "auth_tokens"

type AuthTokenRepository struct {
	db  *sqlx.DB
	ids id.Generator
}

func NewAuthTokenRepository(db *sqlx.DB, ids id.Generator) *AuthTokenRepository {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	return &AuthTokenRepository{db: db, ids: ids}
}

func (r *AuthTokenRepository) Create(ctx context.Context, item token.AuthToken) (token.AuthToken, error) {
	if strings.TrimSpace(item.ID) == "" {
		item.ID = r.ids.NewID()
	}
	createdAt := item.CreatedAt.UTC()
	if item.CreatedAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query, args, err := qb.InsertModel(authTokensTable, authTokenWriteModel{
		PublicID:  item.ID,
		UserID:    strings.TrimSpace(item.UserID),
		Kind:      strings.TrimSpace(item.Kind),
		ExpiresAt: item.ExpiresAt.UTC(),
		CreatedAt: createdAt,
	}, "RETURNING *")
	if err != nil {
		return token.AuthToken{}, fmt.Errorf("build insert auth token query: %w", err)
	}
	row, err := execReturning[authTokenTableModel](ctx, r.db, query, args)
	if err != nil {
		return token.AuthToken{}, fmt.Errorf("insert auth token user=%s: %w", item.UserID, err)
	}
	return token.AuthToken{
		ID:        row.PublicID,
		UserID:    row.UserID,
		Kind:      row.Kind,
		ExpiresAt: row.ExpiresAt.UTC(),
		CreatedAt: row.CreatedAt.UTC(),
	}, nil
}

func (r *AuthTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query, args, err := qb.DeleteFrom(authTokensTable).
		Where(qb.Lte("expires_at", now.UTC())).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build delete expired auth tokens query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete expired auth tokens: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted auth tokens: %w", err)
	}
	return deleted, nil
}
