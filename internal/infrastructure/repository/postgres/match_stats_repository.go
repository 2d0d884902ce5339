package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/football-insights/internal/domain/matchstats"
	"github.com/riskibarqy/football-insights/internal/platform/id"
	"github.com/riskibarqy/football-insights/internal/platform/pagination"
	qb "github.com/riskibarqy/football-insights/internal/platform/querybuilder"
)

const matchStatsTable = "match_stats"

type MatchStatsRepository struct {
	db  *sqlx.DB
	ids id.Generator
}

func NewMatchStatsRepository(db *sqlx.DB, ids id.Generator) *MatchStatsRepository {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	return &MatchStatsRepository{db: db, ids: ids}
}

func (r *MatchStatsRepository) Find(ctx context.Context, filter matchstats.Filter) (pagination.Page[matchstats.MatchStats], error) {
	params := pagination.Params{Limit: filter.Limit, Page: filter.Page}.Normalize()

	var where []qb.Condition
	if len(filter.MatchIDs) > 0 {
		where = append(where, qb.InInt64("match_id", filter.MatchIDs))
	}
	rows, total, err := selectPage[matchStatsTableModel](ctx, r.db, matchStatsTable, where, []string{"match_id"}, params)
	if err != nil {
		return pagination.Page[matchstats.MatchStats]{}, err
	}

	out := make([]matchstats.MatchStats, 0, len(rows))
	for _, row := range rows {
		item, err := matchStatsFromRow(row)
		if err != nil {
			return pagination.Page[matchstats.MatchStats]{}, err
		}
		out = append(out, item)
	}
	return pagination.New(out, total, params), nil
}

func (r *MatchStatsRepository) Create(ctx context.Context, item matchstats.MatchStats) (matchstats.MatchStats, error) {
	if strings.TrimSpace(item.ID) == "" {
		item.ID = r.ids.NewID()
	}
	model, err := matchStatsToWriteModel(item)
	if err != nil {
		return matchstats.MatchStats{}, err
	}

	query, args, err := qb.InsertModel(matchStatsTable, model, "RETURNING *")
	if err != nil {
		return matchstats.MatchStats{}, fmt.Errorf("build insert match stats query: %w", err)
	}
	row, err := execReturning[matchStatsTableModel](ctx, r.db, query, args)
	if err != nil {
		return matchstats.MatchStats{}, fmt.Errorf("insert match stats match_id=%d: %w", item.MatchID, err)
	}
	return matchStatsFromRow(row)
}

func (r *MatchStatsRepository) Update(ctx context.Context, publicID string, item matchstats.MatchStats) (matchstats.MatchStats, error) {
	item.ID = publicID
	model, err := matchStatsToWriteModel(item)
	if err != nil {
		return matchstats.MatchStats{}, err
	}

	query, args, err := qb.UpdateModel(matchStatsTable, model, "public_id", publicID, []string{"created_at"})
	if err != nil {
		return matchstats.MatchStats{}, fmt.Errorf("build update match stats query: %w", err)
	}
	row, err := execReturning[matchStatsTableModel](ctx, r.db, query+" RETURNING *", args)
	if err != nil {
		if isNotFound(err) {
			return matchstats.MatchStats{}, fmt.Errorf("match stats id=%s not found", publicID)
		}
		return matchstats.MatchStats{}, fmt.Errorf("update match stats id=%s: %w", publicID, err)
	}
	return matchStatsFromRow(row)
}

func matchStatsToWriteModel(item matchstats.MatchStats) (matchStatsWriteModel, error) {
	stats, err := encodeDocument(item.Stats)
	if err != nil {
		return matchStatsWriteModel{}, fmt.Errorf("encode stats match_id=%d: %w", item.MatchID, err)
	}
	lineups, err := encodeDocument(item.Lineups)
	if err != nil {
		return matchStatsWriteModel{}, fmt.Errorf("encode lineups match_id=%d: %w", item.MatchID, err)
	}

	// A nil event log stays NULL so "no log" and "empty log" survive a round trip.
	var events *string
	if item.Events != nil {
		encoded, err := encodeDocument(item.Events)
		if err != nil {
			return matchStatsWriteModel{}, fmt.Errorf("encode events match_id=%d: %w", item.MatchID, err)
		}
		events = &encoded
	}

	now := time.Now().UTC()
	createdAt, updatedAt := item.CreatedAt.UTC(), item.UpdatedAt.UTC()
	if item.CreatedAt.IsZero() {
		createdAt = now
	}
	if item.UpdatedAt.IsZero() {
		updatedAt = now
	}

	quality := item.DataQuality
	if quality == "" {
		quality = matchstats.QualityNone
	}
	return matchStatsWriteModel{
		PublicID:      item.ID,
		MatchID:       item.MatchID,
		MatchPublicID: item.MatchRef,
		DataQuality:   string(quality),
		Stats:         stats,
		Events:        events,
		Lineups:       lineups,
		Raw:           nullableRaw(item.Raw),
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}

func matchStatsFromRow(row matchStatsTableModel) (matchstats.MatchStats, error) {
	item := matchstats.MatchStats{
		ID:          row.PublicID,
		MatchID:     row.MatchID,
		MatchRef:    row.MatchPublicID,
		DataQuality: matchstats.Quality(row.DataQuality),
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
	if err := decodeDocument(row.Stats, &item.Stats); err != nil {
		return matchstats.MatchStats{}, fmt.Errorf("decode stats match_id=%d: %w", row.MatchID, err)
	}
	if err := decodeDocument(row.Lineups, &item.Lineups); err != nil {
		return matchstats.MatchStats{}, fmt.Errorf("decode lineups match_id=%d: %w", row.MatchID, err)
	}
	if row.Events.Valid {
		item.Events = []matchstats.Event{}
		if err := decodeDocument(row.Events.String, &item.Events); err != nil {
			return matchstats.MatchStats{}, fmt.Errorf("decode events match_id=%d: %w", row.MatchID, err)
		}
	}
	if row.Raw.Valid {
		item.Raw = json.RawMessage(row.Raw.String)
	}
	return item, nil
}
