package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/football-insights/internal/domain/syncprogress"
	qb "github.com/riskibarqy/football-insights/internal/platform/querybuilder"
)

const syncProgressTable = "sync_progress"

// SyncProgressStore keeps one JSONB cursor row per job.
type SyncProgressStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewSyncProgressStore(db *sqlx.DB) *SyncProgressStore {
	return &SyncProgressStore{db: db, now: time.Now}
}

func (s *SyncProgressStore) Load(ctx context.Context, job string) (syncprogress.State, error) {
	fresh := syncprogress.Fresh(job, s.now())

	query, args, err := qb.Select("*").From(syncProgressTable).
		Where(qb.Eq("job", strings.TrimSpace(job))).
		Limit(1).
		ToSQL()
	if err != nil {
		return fresh, fmt.Errorf("build select sync progress query: %w", err)
	}

	var row syncProgressTableModel
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return fresh, nil
		}
		return fresh, fmt.Errorf("select sync progress job=%s: %w", job, err)
	}

	var state syncprogress.State
	if err := decodeDocument(row.State, &state); err != nil {
		return fresh, fmt.Errorf("decode sync progress job=%s: %w", job, err)
	}
	state.Normalize(job)
	return state, nil
}

func (s *SyncProgressStore) Save(ctx context.Context, state syncprogress.State) error {
	state.Normalize(state.Job)
	if state.Job == "" {
		return fmt.Errorf("sync progress job is required")
	}
	encoded, err := encodeDocument(state)
	if err != nil {
		return fmt.Errorf("encode sync progress job=%s: %w", state.Job, err)
	}

	query, args, err := qb.UpsertModel(syncProgressTable, syncProgressTableModel{
		Job:       state.Job,
		State:     encoded,
		UpdatedAt: s.now().UTC(),
	}, "job", nil, "")
	if err != nil {
		return fmt.Errorf("build upsert sync progress query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert sync progress job=%s: %w", state.Job, err)
	}
	return nil
}
