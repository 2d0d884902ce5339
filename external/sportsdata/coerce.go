package sportsdata

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var leadingDigitsRegex = regexp.MustCompile(`^\s*(\d+)`)

// unwrapData returns obj["data"] when present, otherwise obj itself.
func unwrapData(doc any) map[string]any {
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil
	}
	if data, ok := obj["data"].(map[string]any); ok {
		return data
	}
	return obj
}

// listAt finds the first array under any of keys, looking at data.X first
// and then at the top level.
func listAt(doc any, keys ...string) []any {
	if arr, ok := doc.([]any); ok {
		return arr
	}
	candidates := []map[string]any{unwrapData(doc)}
	if top, ok := doc.(map[string]any); ok {
		candidates = append(candidates, top)
	}
	for _, src := range candidates {
		if src == nil {
			continue
		}
		for _, key := range keys {
			switch typed := src[key].(type) {
			case []any:
				return typed
			case map[string]any:
				for _, nested := range keys {
					if arr, ok := typed[nested].([]any); ok {
						return arr
					}
				}
			}
		}
	}
	return nil
}

func objects(items []any) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

func objectAt(src map[string]any, keys ...string) map[string]any {
	if src == nil {
		return nil
	}
	for _, key := range keys {
		if obj, ok := src[key].(map[string]any); ok && len(obj) > 0 {
			if data, ok := obj["data"].(map[string]any); ok {
				return data
			}
			return obj
		}
	}
	return nil
}

func getString(src map[string]any, keys ...string) string {
	if src == nil {
		return ""
	}
	for _, key := range keys {
		switch typed := src[key].(type) {
		case string:
			if v := strings.TrimSpace(typed); v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(typed, 'f', -1, 64)
		case int64:
			return strconv.FormatInt(typed, 10)
		case int:
			return strconv.Itoa(typed)
		}
	}
	return ""
}

// getInt64 coerces the first usable key to an integer.
func getInt64(src map[string]any, keys ...string) (int64, bool) {
	if src == nil {
		return 0, false
	}
	for _, key := range keys {
		if v, ok := asInt64(src[key]); ok {
			return v, true
		}
	}
	return 0, false
}

func asInt64(value any) (int64, bool) {
	f, ok := asFloat64(value)
	if !ok || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int64(f), true
}

// asFloat64 implements "coerce to number, else null".
func asFloat64(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return finite(typed)
	case float32:
		return finite(float64(typed))
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case string:
		text := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(typed), "%"))
		if text == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", "."), 64)
		if err != nil {
			return 0, false
		}
		return finite(parsed)
	default:
		return 0, false
	}
}

func finite(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func floatPtr(value any) *float64 {
	v, ok := asFloat64(value)
	if !ok {
		return nil
	}
	return &v
}

func intPtrFrom(value any) *int {
	v, ok := asInt64(value)
	if !ok {
		return nil
	}
	n := int(v)
	return &n
}

func asBool(value any) bool {
	switch typed := value.(type) {
	case bool:
		return typed
	case float64:
		return typed != 0
	case int:
		return typed != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(typed)) {
		case "1", "true", "yes", "y":
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, item := range values {
		if strings.TrimSpace(item) != "" {
			return strings.TrimSpace(item)
		}
	}
	return ""
}

// leadingInt parses the leading digits of values such as "45+2" or "67'".
func leadingInt(raw string) *int {
	m := leadingDigitsRegex.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &v
}

func parseProviderDateTime(raw string) *time.Time {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}

	layouts := []string{
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02T15:04:05Z07:00",
		time.RFC3339,
		"2006-01-02",
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			v := parsed.UTC()
			return &v
		}
	}
	return nil
}
