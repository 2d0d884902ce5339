package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/football-insights/internal/domain/settlement"
	"github.com/riskibarqy/football-insights/internal/platform/id"
	"github.com/riskibarqy/football-insights/internal/platform/pagination"
	qb "github.com/riskibarqy/football-insights/internal/platform/querybuilder"
)

const predictionStatsTable = "prediction_stats"

type PredictionStatsRepository struct {
	db  *sqlx.DB
	ids id.Generator
}

func NewPredictionStatsRepository(db *sqlx.DB, ids id.Generator) *PredictionStatsRepository {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	return &PredictionStatsRepository{db: db, ids: ids}
}

func (r *PredictionStatsRepository) Find(ctx context.Context, filter settlement.Filter) (pagination.Page[settlement.PredictionStats], error) {
	params := pagination.Params{Limit: filter.Limit, Page: filter.Page}.Normalize()

	var where []qb.Condition
	if len(filter.PostIDs) > 0 {
		where = append(where, qb.InStrings("post_public_id", filter.PostIDs))
	}
	rows, total, err := selectPage[predictionStatsTableModel](ctx, r.db, predictionStatsTable, where, []string{"post_public_id"}, params)
	if err != nil {
		return pagination.Page[settlement.PredictionStats]{}, err
	}

	out := make([]settlement.PredictionStats, 0, len(rows))
	for _, row := range rows {
		item, err := predictionStatsFromRow(row)
		if err != nil {
			return pagination.Page[settlement.PredictionStats]{}, err
		}
		out = append(out, item)
	}
	return pagination.New(out, total, params), nil
}

// Create relies on the unique post_public_id index: a concurrent second
// settlement of the same post fails instead of adding a duplicate record.
func (r *PredictionStatsRepository) Create(ctx context.Context, item settlement.PredictionStats) (settlement.PredictionStats, error) {
	if strings.TrimSpace(item.ID) == "" {
		item.ID = r.ids.NewID()
	}
	model, err := predictionStatsToWriteModel(item)
	if err != nil {
		return settlement.PredictionStats{}, err
	}

	query, args, err := qb.InsertModel(predictionStatsTable, model, "RETURNING *")
	if err != nil {
		return settlement.PredictionStats{}, fmt.Errorf("build insert prediction stats query: %w", err)
	}
	row, err := execReturning[predictionStatsTableModel](ctx, r.db, query, args)
	if err != nil {
		return settlement.PredictionStats{}, fmt.Errorf("insert prediction stats post=%s: %w", item.PostID, err)
	}
	return predictionStatsFromRow(row)
}

func (r *PredictionStatsRepository) Update(ctx context.Context, publicID string, item settlement.PredictionStats) (settlement.PredictionStats, error) {
	item.ID = publicID
	model, err := predictionStatsToWriteModel(item)
	if err != nil {
		return settlement.PredictionStats{}, err
	}

	query, args, err := qb.UpdateModel(predictionStatsTable, model, "public_id", publicID, []string{"created_at", "post_public_id"})
	if err != nil {
		return settlement.PredictionStats{}, fmt.Errorf("build update prediction stats query: %w", err)
	}
	row, err := execReturning[predictionStatsTableModel](ctx, r.db, query+" RETURNING *", args)
	if err != nil {
		if isNotFound(err) {
			return settlement.PredictionStats{}, fmt.Errorf("prediction stats id=%s not found", publicID)
		}
		return settlement.PredictionStats{}, fmt.Errorf("update prediction stats id=%s: %w", publicID, err)
	}
	return predictionStatsFromRow(row)
}

func predictionStatsToWriteModel(item settlement.PredictionStats) (predictionStatsWriteModel, error) {
	details := item.Details
	if details == nil {
		details = []settlement.Detail{}
	}
	encodedDetails, err := encodeDocument(details)
	if err != nil {
		return predictionStatsWriteModel{}, fmt.Errorf("encode settlement details post=%s: %w", item.PostID, err)
	}
	encodedSummary, err := encodeDocument(item.Summary)
	if err != nil {
		return predictionStatsWriteModel{}, fmt.Errorf("encode settlement summary post=%s: %w", item.PostID, err)
	}
	encodedScoring, err := encodeDocument(item.Scoring)
	if err != nil {
		return predictionStatsWriteModel{}, fmt.Errorf("encode settlement scoring post=%s: %w", item.PostID, err)
	}

	now := time.Now().UTC()
	model := predictionStatsWriteModel{
		PublicID:     item.ID,
		PostPublicID: item.PostID,
		MatchID:      item.MatchID,
		Details:      encodedDetails,
		Summary:      encodedSummary,
		Scoring:      encodedScoring,
		Points:       item.Scoring.Points,
		SettledAt:    item.SettledAt.UTC(),
		CreatedAt:    item.CreatedAt.UTC(),
		UpdatedAt:    item.UpdatedAt.UTC(),
	}
	if item.SettledAt.IsZero() {
		model.SettledAt = now
	}
	if item.CreatedAt.IsZero() {
		model.CreatedAt = now
	}
	if item.UpdatedAt.IsZero() {
		model.UpdatedAt = now
	}
	return model, nil
}

func predictionStatsFromRow(row predictionStatsTableModel) (settlement.PredictionStats, error) {
	item := settlement.PredictionStats{
		ID:        row.PublicID,
		PostID:    row.PostPublicID,
		MatchID:   row.MatchID,
		SettledAt: row.SettledAt.UTC(),
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
	if err := decodeDocument(row.Details, &item.Details); err != nil {
		return settlement.PredictionStats{}, fmt.Errorf("decode settlement details post=%s: %w", row.PostPublicID, err)
	}
	if err := decodeDocument(row.Summary, &item.Summary); err != nil {
		return settlement.PredictionStats{}, fmt.Errorf("decode settlement summary post=%s: %w", row.PostPublicID, err)
	}
	if err := decodeDocument(row.Scoring, &item.Scoring); err != nil {
		return settlement.PredictionStats{}, fmt.Errorf("decode settlement scoring post=%s: %w", row.PostPublicID, err)
	}
	return item, nil
}
