package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/football-insights/internal/domain/match"
	"github.com/riskibarqy/football-insights/internal/usecase"
)

const queryDateLayout = "2006-01-02"

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	filter, err := matchFilterFromQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	page, err := h.matchService.List(ctx, filter)
	if err != nil {
		h.logger.WarnContext(ctx, "list matches failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, page)
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	matchID, err := parseInt64PathValue(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.Get(ctx, matchID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, item)
}

func (h *Handler) GetMatchStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatchStats")
	defer span.End()

	matchID, err := parseInt64PathValue(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.GetStats(ctx, matchID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, item)
}

func matchFilterFromQuery(r *http.Request) (match.Filter, error) {
	query := r.URL.Query()
	var filter match.Filter

	for _, raw := range splitQueryList(query.Get("status")) {
		filter.Statuses = append(filter.Statuses, match.Status(strings.ToLower(raw)))
	}
	for _, raw := range splitQueryList(query.Get("match_id")) {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return match.Filter{}, fmt.Errorf("%w: invalid match_id %q", usecase.ErrInvalidInput, raw)
		}
		filter.MatchIDs = append(filter.MatchIDs, id)
	}

	if raw := strings.TrimSpace(query.Get("fixture_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return match.Filter{}, fmt.Errorf("%w: invalid fixture_id %q", usecase.ErrInvalidInput, raw)
		}
		filter.FixtureID = &id
	}

	from, err := parseQueryDate(query.Get("from"), "from")
	if err != nil {
		return match.Filter{}, err
	}
	to, err := parseQueryDate(query.Get("to"), "to")
	if err != nil {
		return match.Filter{}, err
	}
	if to != nil {
		// "to" names a whole day.
		end := to.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	if from != nil && to != nil && from.After(*to) {
		return match.Filter{}, fmt.Errorf("%w: from must not be after to", usecase.ErrInvalidInput)
	}
	filter.DateFrom = from
	filter.DateTo = to

	if raw := strings.TrimSpace(query.Get("has_stats")); raw != "" {
		hasStats, err := strconv.ParseBool(raw)
		if err != nil {
			return match.Filter{}, fmt.Errorf("%w: invalid has_stats %q", usecase.ErrInvalidInput, raw)
		}
		filter.HasStats = &hasStats
	}

	filter.Sort = strings.TrimSpace(query.Get("sort"))
	if filter.Limit, err = parseIntQuery(r, "limit"); err != nil {
		return match.Filter{}, err
	}
	if filter.Page, err = parseIntQuery(r, "page"); err != nil {
		return match.Filter{}, err
	}
	return filter, nil
}

func parseQueryDate(raw, name string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	value, err := time.ParseInLocation(queryDateLayout, raw, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must use YYYY-MM-DD", usecase.ErrInvalidInput, name)
	}
	return &value, nil
}

func splitQueryList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
