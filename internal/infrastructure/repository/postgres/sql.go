package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/football-insights/internal/platform/pagination"
	qb "github.com/riskibarqy/football-insights/internal/platform/querybuilder"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// selectPage counts the rows matching where and loads one page of them.
func selectPage[R any](
	ctx context.Context,
	db *sqlx.DB,
	table string,
	where []qb.Condition,
	orderBy []string,
	params pagination.Params,
) ([]R, int, error) {
	params = params.Normalize()

	countQuery, countArgs, err := qb.Count().From(table).Where(where...).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build count %s query: %w", table, err)
	}
	var total int
	if err := db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", table, err)
	}
	if total == 0 || params.Offset() >= total {
		return []R{}, total, nil
	}

	query, args, err := qb.Select("*").From(table).
		Where(where...).
		OrderBy(orderBy...).
		Limit(params.Limit).
		Offset(params.Offset()).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build select %s query: %w", table, err)
	}

	var rows []R
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("select %s: %w", table, err)
	}
	return rows, total, nil
}

// execReturning runs an INSERT/UPDATE ... RETURNING * and scans the row.
func execReturning[R any](ctx context.Context, db *sqlx.DB, query string, args []any) (R, error) {
	var row R
	if err := db.GetContext(ctx, &row, query, args...); err != nil {
		return row, err
	}
	return row, nil
}

func encodeDocument(value any) (string, error) {
	encoded, err := sonic.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func decodeDocument(raw string, out any) error {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil
	}
	return sonic.UnmarshalString(raw, out)
}

func nullableText(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func nullableRaw(raw []byte) *string {
	if len(raw) == 0 {
		return nil
	}
	text := string(raw)
	return &text
}
