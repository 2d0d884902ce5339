package postgres

import (
	"database/sql"
	"time"
)

type matchTableModel struct {
	ID            int64          `db:"id"`
	PublicID      string         `db:"public_id"`
	MatchID       int64          `db:"match_id"`
	FixtureID     sql.NullInt64  `db:"fixture_id"`
	MatchDate     time.Time      `db:"match_date"`
	Status        string         `db:"status"`
	HomeTeamID    int64          `db:"home_team_id"`
	AwayTeamID    int64          `db:"away_team_id"`
	CompetitionID int64          `db:"competition_id"`
	HasStats      bool           `db:"has_stats"`
	SyncSource    string         `db:"sync_source"`
	LastSyncAt    sql.NullTime   `db:"last_sync_at"`
	Document      string         `db:"document"`
	Raw           sql.NullString `db:"raw"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

type matchWriteModel struct {
	PublicID      string     `db:"public_id"`
	MatchID       int64      `db:"match_id"`
	FixtureID     *int64     `db:"fixture_id"`
	MatchDate     time.Time  `db:"match_date"`
	Status        string     `db:"status"`
	HomeTeamID    int64      `db:"home_team_id"`
	AwayTeamID    int64      `db:"away_team_id"`
	CompetitionID int64      `db:"competition_id"`
	HasStats      bool       `db:"has_stats"`
	SyncSource    string     `db:"sync_source"`
	LastSyncAt    *time.Time `db:"last_sync_at"`
	Document      string     `db:"document"`
	Raw           *string    `db:"raw"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

type matchStatsTableModel struct {
	ID            int64          `db:"id"`
	PublicID      string         `db:"public_id"`
	MatchID       int64          `db:"match_id"`
	MatchPublicID string         `db:"match_public_id"`
	DataQuality   string         `db:"data_quality"`
	Stats         string         `db:"stats"`
	Events        sql.NullString `db:"events"`
	Lineups       string         `db:"lineups"`
	Raw           sql.NullString `db:"raw"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

type matchStatsWriteModel struct {
	PublicID      string    `db:"public_id"`
	MatchID       int64     `db:"match_id"`
	MatchPublicID string    `db:"match_public_id"`
	DataQuality   string    `db:"data_quality"`
	Stats         string    `db:"stats"`
	Events        *string   `db:"events"`
	Lineups       string    `db:"lineups"`
	Raw           *string   `db:"raw"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}
