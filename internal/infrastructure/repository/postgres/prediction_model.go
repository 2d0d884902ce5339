package postgres

import (
	"database/sql"
	"time"
)

type postTableModel struct {
	ID         int64          `db:"id"`
	PublicID   string         `db:"public_id"`
	AuthorID   string         `db:"author_id"`
	PostType   string         `db:"post_type"`
	Title      string         `db:"title"`
	MatchID    sql.NullInt64  `db:"match_id"`
	FixtureID  sql.NullInt64  `db:"fixture_id"`
	Prediction sql.NullString `db:"prediction"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
	DeletedAt  *time.Time     `db:"deleted_at"`
}

type postWriteModel struct {
	PublicID   string    `db:"public_id"`
	AuthorID   string    `db:"author_id"`
	PostType   string    `db:"post_type"`
	Title      string    `db:"title"`
	MatchID    *int64    `db:"match_id"`
	FixtureID  *int64    `db:"fixture_id"`
	Prediction *string   `db:"prediction"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type outcomeGroupTableModel struct {
	ID        int64     `db:"id"`
	PublicID  string    `db:"public_id"`
	Name      string    `db:"name"`
	Outcomes  string    `db:"outcomes"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type outcomeGroupWriteModel struct {
	PublicID string `db:"public_id"`
	Name     string `db:"name"`
	Outcomes string `db:"outcomes"`
}

type predictionStatsTableModel struct {
	ID           int64     `db:"id"`
	PublicID     string    `db:"public_id"`
	PostPublicID string    `db:"post_public_id"`
	MatchID      int64     `db:"match_id"`
	Details      string    `db:"details"`
	Summary      string    `db:"summary"`
	Scoring      string    `db:"scoring"`
	Points       int       `db:"points"`
	SettledAt    time.Time `db:"settled_at"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type predictionStatsWriteModel struct {
	PublicID     string    `db:"public_id"`
	PostPublicID string    `db:"post_public_id"`
	MatchID      int64     `db:"match_id"`
	Details      string    `db:"details"`
	Summary      string    `db:"summary"`
	Scoring      string    `db:"scoring"`
	Points       int       `db:"points"`
	SettledAt    time.Time `db:"settled_at"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type authTokenTableModel struct {
	ID        int64     `db:"id"`
	PublicID  string    `db:"public_id"`
	UserID    string    `db:"user_id"`
	Kind      string    `db:"kind"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

type authTokenWriteModel struct {
	PublicID  string    `db:"public_id"`
	UserID    string    `db:"user_id"`
	Kind      string    `db:"kind"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

type syncProgressTableModel struct {
	Job       string    `db:"job"`
	State     string    `db:"state"`
	UpdatedAt time.Time `db:"updated_at"`
}
