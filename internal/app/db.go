package app

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/football-insights/internal/config"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const maxTracedQueryLength = 512

var (
	queryWhitespaceRegex = regexp.MustCompile(`\s+`)
	// Settlement and stats lookups bind hundreds of ids into one IN list.
	placeholderListRegex = regexp.MustCompile(`\$\d+(?:\s*,\s*\$\d+){3,}`)
)

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	opts := []otelsql.Option{otelsql.WithQueryFormatter(formatDBQueryForTrace)}
	if name := dbNameFromURL(dsn); name != "" {
		opts = append(opts, otelsql.WithDBName(name))
	}

	db, err := otelsqlx.Open("postgres", dsn, opts...)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.SettlementMaxWorkers + 4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

func normalizeDBURL(raw string, disablePreparedBinaryResult bool) string {
	if !disablePreparedBinaryResult {
		return raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed == nil || parsed.Scheme == "" {
		return raw
	}

	query := parsed.Query()
	if query.Get("disable_prepared_binary_result") != "" {
		return raw
	}
	query.Set("disable_prepared_binary_result", "yes")
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// dbNameFromURL accepts both postgres:// urls and key=value DSNs.
func dbNameFromURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if parsed, err := url.Parse(trimmed); err == nil && parsed.Scheme != "" {
		return strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/"))
	}

	for _, field := range strings.Fields(trimmed) {
		key, value, ok := strings.Cut(field, "=")
		if ok && key == "dbname" {
			return strings.Trim(value, `"'`)
		}
	}
	return ""
}

// formatDBQueryForTrace flattens whitespace, folds long placeholder lists
// into "$first..$last" and caps the result length.
func formatDBQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	normalized := queryWhitespaceRegex.ReplaceAllString(query, " ")
	normalized = placeholderListRegex.ReplaceAllStringFunc(normalized, func(list string) string {
		parts := strings.Split(list, ",")
		first := strings.TrimSpace(parts[0])
		last := strings.TrimSpace(parts[len(parts)-1])
		return first + ".." + last
	})
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}
	return normalized[:maxTracedQueryLength] + "..."
}
