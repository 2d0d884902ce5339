package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/football-insights/internal/domain/match"
	"github.com/riskibarqy/football-insights/internal/platform/id"
	"github.com/riskibarqy/football-insights/internal/platform/pagination"
	qb "github.com/riskibarqy/football-insights/internal/platform/querybuilder"
)

const matchesTable = "matches"

// MatchRepository keeps the filterable fields in columns and the full
// canonical record in a JSONB document.
type MatchRepository struct {
	db  *sqlx.DB
	ids id.Generator
}

func NewMatchRepository(db *sqlx.DB, ids id.Generator) *MatchRepository {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	return &MatchRepository{db: db, ids: ids}
}

func (r *MatchRepository) Find(ctx context.Context, filter match.Filter) (pagination.Page[match.Match], error) {
	params := filter.Params()
	rows, total, err := selectPage[matchTableModel](ctx, r.db, matchesTable, matchConditions(filter), matchOrder(filter.Sort), params)
	if err != nil {
		return pagination.Page[match.Match]{}, err
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		item, err := matchFromRow(row)
		if err != nil {
			return pagination.Page[match.Match]{}, err
		}
		out = append(out, item)
	}
	return pagination.New(out, total, params), nil
}

func (r *MatchRepository) Create(ctx context.Context, item match.Match) (match.Match, error) {
	if strings.TrimSpace(item.ID) == "" {
		item.ID = r.ids.NewID()
	}
	model, err := matchToWriteModel(item)
	if err != nil {
		return match.Match{}, err
	}

	query, args, err := qb.InsertModel(matchesTable, model, "RETURNING *")
	if err != nil {
		return match.Match{}, fmt.Errorf("build insert match query: %w", err)
	}
	row, err := execReturning[matchTableModel](ctx, r.db, query, args)
	if err != nil {
		return match.Match{}, fmt.Errorf("insert match match_id=%d: %w", item.MatchID, err)
	}
	return matchFromRow(row)
}

func (r *MatchRepository) Update(ctx context.Context, publicID string, item match.Match) (match.Match, error) {
	item.ID = publicID
	model, err := matchToWriteModel(item)
	if err != nil {
		return match.Match{}, err
	}

	query, args, err := qb.UpdateModel(matchesTable, model, "public_id", publicID, []string{"created_at"})
	if err != nil {
		return match.Match{}, fmt.Errorf("build update match query: %w", err)
	}
	row, err := execReturning[matchTableModel](ctx, r.db, query+" RETURNING *", args)
	if err != nil {
		if isNotFound(err) {
			return match.Match{}, fmt.Errorf("match id=%s not found", publicID)
		}
		return match.Match{}, fmt.Errorf("update match id=%s: %w", publicID, err)
	}
	return matchFromRow(row)
}

func matchConditions(filter match.Filter) []qb.Condition {
	var where []qb.Condition
	if len(filter.MatchIDs) > 0 {
		where = append(where, qb.InInt64("match_id", filter.MatchIDs))
	}
	if filter.FixtureID != nil {
		where = append(where, qb.Eq("fixture_id", *filter.FixtureID))
	}
	if len(filter.Statuses) > 0 {
		where = append(where, qb.InStrings("status", filter.Statuses))
	}
	if filter.DateFrom != nil {
		where = append(where, qb.Gte("match_date", filter.DateFrom.UTC()))
	}
	if filter.DateTo != nil {
		where = append(where, qb.Lte("match_date", filter.DateTo.UTC()))
	}
	if filter.HasStats != nil {
		where = append(where, qb.Eq("has_stats", *filter.HasStats))
	}
	return where
}

func matchOrder(sort string) []string {
	if strings.TrimSpace(sort) == match.SortDateDesc {
		return []string{"match_date DESC", "match_id"}
	}
	return []string{"match_date", "match_id"}
}

func matchToWriteModel(item match.Match) (matchWriteModel, error) {
	raw := item.Raw
	item.Raw = nil
	document, err := encodeDocument(item)
	if err != nil {
		return matchWriteModel{}, fmt.Errorf("encode match document match_id=%d: %w", item.MatchID, err)
	}

	var lastSync *time.Time
	if !item.Sync.LastSyncAt.IsZero() {
		ts := item.Sync.LastSyncAt.UTC()
		lastSync = &ts
	}
	now := time.Now().UTC()
	createdAt, updatedAt := item.CreatedAt.UTC(), item.UpdatedAt.UTC()
	if item.CreatedAt.IsZero() {
		createdAt = now
	}
	if item.UpdatedAt.IsZero() {
		updatedAt = now
	}

	return matchWriteModel{
		PublicID:      item.ID,
		MatchID:       item.MatchID,
		FixtureID:     item.FixtureID,
		MatchDate:     item.Date.UTC(),
		Status:        string(item.Status),
		HomeTeamID:    item.HomeTeam.ID,
		AwayTeamID:    item.AwayTeam.ID,
		CompetitionID: item.Competition.ID,
		HasStats:      item.Sync.HasStats,
		SyncSource:    string(item.Sync.Source),
		LastSyncAt:    lastSync,
		Document:      document,
		Raw:           nullableRaw(raw),
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}

func matchFromRow(row matchTableModel) (match.Match, error) {
	var item match.Match
	if err := decodeDocument(row.Document, &item); err != nil {
		return match.Match{}, fmt.Errorf("decode match document match_id=%d: %w", row.MatchID, err)
	}

	// Columns win over the document for the fields Find filters on.
	item.ID = row.PublicID
	item.MatchID = row.MatchID
	item.FixtureID = nil
	if row.FixtureID.Valid {
		fixtureID := row.FixtureID.Int64
		item.FixtureID = &fixtureID
	}
	item.Date = row.MatchDate.UTC()
	item.Status = match.Status(row.Status)
	item.Sync.HasStats = row.HasStats
	item.Sync.Source = match.SyncSource(row.SyncSource)
	if row.LastSyncAt.Valid {
		item.Sync.LastSyncAt = row.LastSyncAt.Time.UTC()
	}
	if row.Raw.Valid {
		item.Raw = json.RawMessage(row.Raw.String)
	}
	item.CreatedAt = row.CreatedAt.UTC()
	item.UpdatedAt = row.UpdatedAt.UTC()
	return item, nil
}
