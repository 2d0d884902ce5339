package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/football-insights/internal/domain/prediction"
	"github.com/riskibarqy/football-insights/internal/platform/id"
	"github.com/riskibarqy/football-insights/internal/platform/pagination"
	qb "github.com/riskibarqy/football-insights/internal/platform/querybuilder"
)

const (
	postsTable         = "posts"
	outcomeGroupsTable = "outcome_groups"
)

var predictionJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// PostRepository stores posts with the prediction payload as JSONB. Its
// match and fixture ids are copied into columns so settlement can find
// posts by target without scanning documents.
type PostRepository struct {
	db  *sqlx.DB
	ids id.Generator
}

func NewPostRepository(db *sqlx.DB, ids id.Generator) *PostRepository {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	return &PostRepository{db: db, ids: ids}
}

func (r *PostRepository) Find(ctx context.Context, filter prediction.PostFilter) (pagination.Page[prediction.Post], error) {
	params := pagination.Params{Limit: filter.Limit, Page: filter.Page}.Normalize()

	where := []qb.Condition{qb.IsNull("deleted_at")}
	if len(filter.IDs) > 0 {
		where = append(where, qb.InStrings("public_id", filter.IDs))
	}
	if postType := strings.TrimSpace(filter.PostType); postType != "" {
		where = append(where, qb.Eq("post_type", postType))
	}
	if len(filter.MatchIDs) > 0 {
		where = append(where, qb.InInt64("match_id", filter.MatchIDs))
	}
	if len(filter.FixtureIDs) > 0 {
		where = append(where, qb.InInt64("fixture_id", filter.FixtureIDs))
	}

	rows, total, err := selectPage[postTableModel](ctx, r.db, postsTable, where, []string{"public_id"}, params)
	if err != nil {
		return pagination.Page[prediction.Post]{}, err
	}

	out := make([]prediction.Post, 0, len(rows))
	for _, row := range rows {
		item, err := postFromRow(row)
		if err != nil {
			return pagination.Page[prediction.Post]{}, err
		}
		out = append(out, item)
	}
	return pagination.New(out, total, params), nil
}

func (r *PostRepository) Create(ctx context.Context, item prediction.Post) (prediction.Post, error) {
	if strings.TrimSpace(item.ID) == "" {
		item.ID = r.ids.NewID()
	}
	model, err := postToWriteModel(item)
	if err != nil {
		return prediction.Post{}, err
	}

	query, args, err := qb.InsertModel(postsTable, model, "RETURNING *")
	if err != nil {
		return prediction.Post{}, fmt.Errorf("build insert post query: %w", err)
	}
	row, err := execReturning[postTableModel](ctx, r.db, query, args)
	if err != nil {
		return prediction.Post{}, fmt.Errorf("insert post id=%s: %w", item.ID, err)
	}
	return postFromRow(row)
}

func (r *PostRepository) Update(ctx context.Context, publicID string, item prediction.Post) (prediction.Post, error) {
	item.ID = publicID
	model, err := postToWriteModel(item)
	if err != nil {
		return prediction.Post{}, err
	}

	query, args, err := qb.UpdateModel(postsTable, model, "public_id", publicID, []string{"created_at"})
	if err != nil {
		return prediction.Post{}, fmt.Errorf("build update post query: %w", err)
	}
	row, err := execReturning[postTableModel](ctx, r.db, query+" RETURNING *", args)
	if err != nil {
		if isNotFound(err) {
			return prediction.Post{}, fmt.Errorf("post id=%s not found", publicID)
		}
		return prediction.Post{}, fmt.Errorf("update post id=%s: %w", publicID, err)
	}
	return postFromRow(row)
}

func postToWriteModel(item prediction.Post) (postWriteModel, error) {
	model := postWriteModel{
		PublicID:  item.ID,
		AuthorID:  strings.TrimSpace(item.AuthorID),
		PostType:  strings.TrimSpace(item.PostType),
		Title:     item.Title,
		CreatedAt: item.CreatedAt.UTC(),
		UpdatedAt: item.UpdatedAt.UTC(),
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		model.CreatedAt = now
	}
	if item.UpdatedAt.IsZero() {
		model.UpdatedAt = now
	}

	if item.Prediction != nil {
		encoded, err := predictionJSON.MarshalToString(item.Prediction)
		if err != nil {
			return postWriteModel{}, fmt.Errorf("encode prediction of post id=%s: %w", item.ID, err)
		}
		model.Prediction = &encoded
		model.MatchID = item.Prediction.MatchID
		model.FixtureID = item.Prediction.FixtureID
	}
	return model, nil
}

func postFromRow(row postTableModel) (prediction.Post, error) {
	item := prediction.Post{
		ID:        row.PublicID,
		AuthorID:  row.AuthorID,
		PostType:  row.PostType,
		Title:     row.Title,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
	if row.Prediction.Valid && strings.TrimSpace(row.Prediction.String) != "" {
		var p prediction.Prediction
		if err := predictionJSON.UnmarshalFromString(row.Prediction.String, &p); err != nil {
			return prediction.Post{}, fmt.Errorf("decode prediction of post id=%s: %w", row.PublicID, err)
		}
		item.Prediction = &p
	}
	return item, nil
}

type OutcomeGroupRepository struct {
	db *sqlx.DB
}

func NewOutcomeGroupRepository(db *sqlx.DB) *OutcomeGroupRepository {
	return &OutcomeGroupRepository{db: db}
}

func (r *OutcomeGroupRepository) FindByIDs(ctx context.Context, ids []string) ([]prediction.OutcomeGroup, error) {
	if len(ids) == 0 {
		return []prediction.OutcomeGroup{}, nil
	}
	query, args, err := qb.Select("*").From(outcomeGroupsTable).
		Where(qb.InStrings("public_id", ids)).
		OrderBy("public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select outcome groups query: %w", err)
	}

	var rows []outcomeGroupTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select outcome groups: %w", err)
	}

	out := make([]prediction.OutcomeGroup, 0, len(rows))
	for _, row := range rows {
		group := prediction.OutcomeGroup{ID: row.PublicID, Name: row.Name}
		if err := predictionJSON.UnmarshalFromString(row.Outcomes, &group.Outcomes); err != nil {
			return nil, fmt.Errorf("decode outcomes of group id=%s: %w", row.PublicID, err)
		}
		out = append(out, group)
	}
	return out, nil
}

func (r *OutcomeGroupRepository) Upsert(ctx context.Context, item prediction.OutcomeGroup) error {
	outcomes, err := predictionJSON.MarshalToString(item.Outcomes)
	if err != nil {
		return fmt.Errorf("encode outcomes of group id=%s: %w", item.ID, err)
	}
	query, args, err := qb.UpsertModel(outcomeGroupsTable, outcomeGroupWriteModel{
		PublicID: item.ID,
		Name:     item.Name,
		Outcomes: outcomes,
	}, "public_id", nil, "")
	if err != nil {
		return fmt.Errorf("build upsert outcome group query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert outcome group id=%s: %w", item.ID, err)
	}
	return nil
}
