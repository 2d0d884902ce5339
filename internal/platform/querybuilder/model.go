package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

// InsertModel builds an INSERT from the db-tagged fields of model.
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	cols, vals, err := ColumnsAndValues(model)
	if err != nil {
		return "", nil, err
	}
	return InsertInto(table).
		Columns(cols...).
		Values(vals...).
		Suffix(suffix).
		ToSQL()
}

// UpsertModel builds INSERT ... ON CONFLICT (conflict) DO UPDATE for every
// column except the conflict key and the immutable ones.
func UpsertModel(table string, model any, conflict string, immutable []string, returning string) (string, []any, error) {
	cols, vals, err := ColumnsAndValues(model)
	if err != nil {
		return "", nil, err
	}

	skip := map[string]struct{}{conflict: {}}
	for _, col := range immutable {
		skip[col] = struct{}{}
	}

	updates := make([]string, 0, len(cols))
	for _, col := range cols {
		if _, ok := skip[col]; ok {
			continue
		}
		updates = append(updates, col+" = EXCLUDED."+col)
	}
	if len(updates) == 0 {
		return "", nil, fmt.Errorf("upsert on %s has no updatable columns", table)
	}

	suffix := "ON CONFLICT (" + conflict + ") DO UPDATE SET " + strings.Join(updates, ", ")
	if strings.TrimSpace(returning) != "" {
		suffix += " RETURNING " + returning
	}
	return InsertInto(table).Columns(cols...).Values(vals...).Suffix(suffix).ToSQL()
}

// UpdateModel builds UPDATE table SET <db columns> WHERE key = keyValue, skipping
// the key and immutable columns.
func UpdateModel(table string, model any, key string, keyValue any, immutable []string) (string, []any, error) {
	cols, vals, err := ColumnsAndValues(model)
	if err != nil {
		return "", nil, err
	}

	skip := map[string]struct{}{key: {}}
	for _, col := range immutable {
		skip[col] = struct{}{}
	}

	builder := Update(table)
	for i, col := range cols {
		if _, ok := skip[col]; ok {
			continue
		}
		builder.Set(col, vals[i])
	}
	return builder.Where(Eq(key, keyValue)).ToSQL()
}

// ColumnsAndValues reads exported db-tagged fields in declaration order.
func ColumnsAndValues(model any) ([]string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, nil, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be struct")
	}

	typ := value.Type()
	cols := make([]string, 0, typ.NumField())
	vals := make([]any, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if field.PkgPath != "" {
			continue
		}
		tag := strings.TrimSpace(field.Tag.Get("db"))
		if tag == "" || tag == "-" {
			continue
		}
		parts := strings.Split(tag, ",")
		col := strings.TrimSpace(parts[0])
		if col == "" || col == "-" || hasOption(parts[1:], "readonly") {
			continue
		}
		cols = append(cols, col)
		vals = append(vals, value.Field(i).Interface())
	}

	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("model has no db columns")
	}
	return cols, vals, nil
}

func hasOption(options []string, want string) bool {
	for _, opt := range options {
		if strings.TrimSpace(opt) == want {
			return true
		}
	}
	return false
}
