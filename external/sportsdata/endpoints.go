package sportsdata

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	pathMatchesHistory = "/scores/history.json"
	pathFixtures       = "/fixtures/matches.json"
	pathMatchStats     = "/matches/stats.json"
	pathCompetitions   = "/competitions/list.json"
	pathTeams          = "/teams/list.json"
	pathCountries      = "/countries/list.json"

	dateLayout = "2006-01-02"
)

// MatchPageQuery selects one page of matches. Upcoming switches from the
// played-match history listing to the fixtures listing.
type MatchPageQuery struct {
	From           time.Time
	To             time.Time
	Page           int
	Size           int
	CompetitionIDs []int64
	TeamIDs        []int64
	Upcoming       bool
}

// MatchPage is one page of raw match objects in API order.
type MatchPage struct {
	Matches     []map[string]any
	Page        int
	TotalPages  int
	HasNextPage bool
}

// StatsPayload holds the raw per-match statistics document. Events is nil
// when the provider sent no event log.
type StatsPayload struct {
	Stats   map[string]any
	Events  []map[string]any
	Lineups map[string]any
	Raw     any
}

type ReferenceItem struct {
	ID   int64
	Name string
	Raw  map[string]any
}

type ReferencePage struct {
	Items       []ReferenceItem
	Page        int
	HasNextPage bool
}

// FetchMatchesPage lists matches between From and To, one page per call.
func (c *Client) FetchMatchesPage(ctx context.Context, q MatchPageQuery) (MatchPage, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	params := map[string]string{
		"from":           q.From.UTC().Format(dateLayout),
		"to":             q.To.UTC().Format(dateLayout),
		"page":           strconv.Itoa(q.Page),
		"competition_id": joinIDs(q.CompetitionIDs),
		"team_id":        joinIDs(q.TeamIDs),
	}
	if q.Size > 0 {
		params["size"] = strconv.Itoa(q.Size)
	}

	path := pathMatchesHistory
	if q.Upcoming {
		path = pathFixtures
	}
	doc, err := c.FetchJSON(ctx, path, params)
	if err != nil {
		return MatchPage{}, fmt.Errorf("fetch matches from=%s to=%s page=%d: %w", params["from"], params["to"], q.Page, err)
	}

	matches := objects(listAt(doc, "match", "matches", "fixtures"))
	page := MatchPage{Matches: matches, Page: q.Page}
	data := unwrapData(doc)
	if total, ok := getInt64(data, "total_pages", "totalPages", "pages"); ok {
		page.TotalPages = int(total)
	}
	switch next := data["next_page"].(type) {
	case string:
		page.HasNextPage = strings.TrimSpace(next) != ""
	case bool:
		page.HasNextPage = next
	default:
		switch {
		case page.TotalPages > 0:
			page.HasNextPage = q.Page < page.TotalPages
		case q.Size > 0:
			page.HasNextPage = len(matches) >= q.Size
		}
	}
	if page.TotalPages == 0 {
		page.TotalPages = q.Page
		if page.HasNextPage {
			page.TotalPages++
		}
	}
	return page, nil
}

// FetchMatchStats loads statistics, events and lineups for one match.
func (c *Client) FetchMatchStats(ctx context.Context, matchID int64) (StatsPayload, error) {
	if matchID <= 0 {
		return StatsPayload{}, fmt.Errorf("match id must be greater than zero")
	}

	doc, err := c.FetchJSON(ctx, pathMatchStats, map[string]string{"match_id": strconv.FormatInt(matchID, 10)})
	if err != nil {
		return StatsPayload{}, fmt.Errorf("fetch stats match_id=%d: %w", matchID, err)
	}

	data := unwrapData(doc)
	out := StatsPayload{Raw: doc, Stats: data}
	if nested := objectAt(data, "statistics", "stats"); nested != nil {
		out.Stats = nested
	}
	if events := listAt(doc, "event", "events"); events != nil {
		out.Events = objects(events)
	}
	out.Lineups = objectAt(data, "lineup", "lineups")
	return out, nil
}

func (c *Client) FetchCompetitions(ctx context.Context) ([]ReferenceItem, error) {
	doc, err := c.FetchJSON(ctx, pathCompetitions, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch competitions: %w", err)
	}
	return referenceItems(listAt(doc, "competition", "competitions")), nil
}

func (c *Client) FetchCountries(ctx context.Context) ([]ReferenceItem, error) {
	doc, err := c.FetchJSON(ctx, pathCountries, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch countries: %w", err)
	}
	return referenceItems(listAt(doc, "country", "countries")), nil
}

// FetchTeams lists one page of teams.
func (c *Client) FetchTeams(ctx context.Context, page int) (ReferencePage, error) {
	if page <= 0 {
		page = 1
	}
	doc, err := c.FetchJSON(ctx, pathTeams, map[string]string{"page": strconv.Itoa(page)})
	if err != nil {
		return ReferencePage{}, fmt.Errorf("fetch teams page=%d: %w", page, err)
	}

	out := ReferencePage{Items: referenceItems(listAt(doc, "teams", "team")), Page: page}
	data := unwrapData(doc)
	switch next := data["next_page"].(type) {
	case string:
		out.HasNextPage = strings.TrimSpace(next) != ""
	case bool:
		out.HasNextPage = next
	}
	return out, nil
}

func referenceItems(items []any) []ReferenceItem {
	out := make([]ReferenceItem, 0, len(items))
	for _, obj := range objects(items) {
		id, ok := getInt64(obj, "id")
		if !ok || id <= 0 {
			continue
		}
		out = append(out, ReferenceItem{ID: id, Name: getString(obj, "name"), Raw: obj})
	}
	return out
}

func joinIDs(ids []int64) string {
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, ",")
}
