package sportsdata

import (
	"regexp"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/football-insights/internal/domain/match"
)

var scorePairRegex = regexp.MustCompile(`^\s*(\d+)\s*[-:]\s*(\d+)\s*$`)

const unknownTeamName = "Unknown"

var statusAliases = map[string]match.Status{
	"not started":       match.StatusScheduled,
	"ns":                match.StatusScheduled,
	"scheduled":         match.StatusScheduled,
	"tbd":               match.StatusScheduled,
	"in play":           match.StatusLive,
	"live":              match.StatusLive,
	"added time":        match.StatusLive,
	"first half":        match.StatusLive,
	"second half":       match.StatusLive,
	"extra time":        match.StatusLive,
	"penalty shootout":  match.StatusLive,
	"half time break":   match.StatusHalftime,
	"half time":         match.StatusHalftime,
	"halftime":          match.StatusHalftime,
	"ht":                match.StatusHalftime,
	"finished":          match.StatusFinished,
	"ft":                match.StatusFinished,
	"aet":               match.StatusFinished,
	"after extra time":  match.StatusFinished,
	"after penalties":   match.StatusFinished,
	"cancelled":         match.StatusCancelled,
	"canceled":          match.StatusCancelled,
	"abandoned":         match.StatusCancelled,
	"postponed":         match.StatusPostponed,
	"delayed":           match.StatusPostponed,
	"suspended":         match.StatusSuspended,
	"interrupted":       match.StatusSuspended,
	"insufficient data": match.StatusSuspended,
}

// NormalizeMatch maps one raw provider match onto the canonical record.
// It never fails: unknown values fall back to defaults and a missing id
// yields MatchID 0, which callers reject.
func NormalizeMatch(raw map[string]any, source match.SyncSource, now time.Time) match.Match {
	m := match.Match{
		Status: match.StatusScheduled,
		Period: match.PeriodNotStarted,
		Sync: match.SyncMeta{
			LastSyncAt: now.UTC(),
			Source:     source,
		},
	}
	if raw == nil {
		return m
	}

	if id, ok := getInt64(raw, "id", "match_id", "matchId"); ok && id > 0 {
		m.MatchID = id
	}
	if id, ok := getInt64(raw, "fixture_id", "fixtureId"); ok && id > 0 {
		m.FixtureID = &id
	}

	if date := matchDate(raw); date != nil {
		m.Date = *date
	}

	timeField := getString(raw, "time", "minute", "elapsed")
	m.Status = normalizeStatus(getString(raw, "status", "state"), timeField)
	if m.Status.InPlay() {
		m.Minute = leadingInt(timeField)
	}
	m.Period = derivePeriod(m.Status, m.Minute, timeField)

	m.HomeTeam = normalizeTeam(raw, "home")
	m.AwayTeam = normalizeTeam(raw, "away")
	m.Scores = normalizeScores(objectAt(raw, "scores", "score"), raw, m.Status)
	m.Competition = normalizeCompetition(raw)
	m.Federation = normalizeRef(raw, "federation")
	m.Country = normalizeRef(raw, "country")
	m.Season = normalizeRef(raw, "season")
	m.Round = normalizeRef(raw, "round")
	m.Referee = normalizeRef(raw, "referee")
	m.Venue = normalizeVenue(raw)
	m.Weather = normalizeWeather(raw)
	m.Odds = normalizeOdds(objectAt(raw, "odds"))
	m.URLs = normalizeURLs(objectAt(raw, "urls"))

	if encoded, err := sonic.Marshal(raw); err == nil {
		m.Raw = encoded
	}
	return m
}

func matchDate(raw map[string]any) *time.Time {
	date := getString(raw, "date", "scheduled_date")
	clock := getString(raw, "scheduled", "kickoff", "kick_off")
	if date != "" && clock != "" && !strings.Contains(date, "T") && !strings.Contains(date, " ") {
		if parsed := parseProviderDateTime(date + " " + clock); parsed != nil {
			return parsed
		}
	}
	for _, key := range []string{"date", "starting_at", "datetime", "kickoff_at", "added"} {
		if parsed := parseProviderDateTime(getString(raw, key)); parsed != nil {
			return parsed
		}
	}
	if ts, ok := getInt64(raw, "timestamp"); ok && ts > 0 {
		v := time.Unix(ts, 0).UTC()
		return &v
	}
	return nil
}

func normalizeStatus(status, timeField string) match.Status {
	key := strings.ToLower(strings.TrimSpace(status))
	if v, ok := statusAliases[key]; ok {
		return v
	}
	if _, ok := match.AllStatuses[match.Status(key)]; ok {
		return match.Status(key)
	}
	switch strings.ToUpper(strings.TrimSpace(timeField)) {
	case "FT", "AET", "AP":
		return match.StatusFinished
	case "HT":
		return match.StatusHalftime
	}
	return match.StatusScheduled
}

func derivePeriod(status match.Status, minute *int, timeField string) match.Period {
	switch status {
	case match.StatusFinished:
		return match.PeriodFullTime
	case match.StatusHalftime:
		return match.PeriodHalftime
	}
	if status != match.StatusLive {
		return match.PeriodNotStarted
	}

	label := strings.ToLower(strings.TrimSpace(timeField))
	switch {
	case strings.Contains(label, "pen"):
		return match.PeriodPenalties
	case strings.Contains(label, "break"):
		return match.PeriodExtraTimeBreak
	}
	if minute == nil {
		return match.PeriodFirstHalf
	}
	switch v := *minute; {
	case v <= 45:
		return match.PeriodFirstHalf
	case v <= 90:
		return match.PeriodSecondHalf
	case v <= 105:
		return match.PeriodExtraTimeFirstHalf
	default:
		return match.PeriodExtraTimeSecondHalf
	}
}

func normalizeTeam(raw map[string]any, side string) match.Team {
	team := match.Team{}
	obj := objectAt(raw, side, side+"_team", side+"Team")
	if obj != nil {
		if id, ok := getInt64(obj, "id"); ok {
			team.ID = id
		}
		team.Name = getString(obj, "name")
		team.Logo = getString(obj, "logo", "image_path", "logo_url")
	}
	if team.ID == 0 {
		if id, ok := getInt64(raw, side+"_id"); ok {
			team.ID = id
		}
	}
	team.Name = firstNonEmpty(team.Name, getString(raw, side+"_name", side), unknownTeamName)
	team.Logo = firstNonEmpty(team.Logo, getString(raw, side+"_logo"))
	return team
}

func normalizeScores(scores map[string]any, raw map[string]any, status match.Status) match.Scores {
	out := match.Scores{
		Raw: match.RawScores{
			FullTime:  firstNonEmpty(getString(scores, "ft_score", "fulltime", "full_time"), getString(scores, "score"), getString(raw, "score")),
			HalfTime:  firstNonEmpty(getString(scores, "ht_score", "halftime", "half_time"), getString(raw, "ht_score")),
			ExtraTime: firstNonEmpty(getString(scores, "et_score", "extratime", "extra_time"), getString(raw, "et_score")),
			Penalties: firstNonEmpty(getString(scores, "ps_score", "penalties", "penalty"), getString(raw, "ps_score")),
		},
	}
	if !status.HasScore() {
		return out
	}

	live := firstNonEmpty(getString(scores, "score"), getString(raw, "score"), out.Raw.FullTime)
	out.Home, out.Away = splitScore(live)
	if out.Home == nil || out.Away == nil {
		out.Home = intPtrFrom(firstValue(scores, "home", "localteam_score", "home_score"))
		out.Away = intPtrFrom(firstValue(scores, "away", "visitorteam_score", "away_score"))
		if out.Home == nil || out.Away == nil {
			out.Home, out.Away = nil, nil
		}
	}
	out.HalfTimeHome, out.HalfTimeAway = splitScore(out.Raw.HalfTime)
	out.ExtraTimeHome, out.ExtraTimeAway = splitScore(out.Raw.ExtraTime)
	out.PenaltiesHome, out.PenaltiesAway = splitScore(out.Raw.Penalties)
	return out
}

func firstValue(src map[string]any, keys ...string) any {
	if src == nil {
		return nil
	}
	for _, key := range keys {
		if v, ok := src[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

// splitScore parses "2 - 1" or "2:1" into typed values.
func splitScore(raw string) (*int, *int) {
	m := scorePairRegex.FindStringSubmatch(raw)
	if m == nil {
		return nil, nil
	}
	home, away := leadingInt(m[1]), leadingInt(m[2])
	if home == nil || away == nil {
		return nil, nil
	}
	return home, away
}

func normalizeCompetition(raw map[string]any) match.Competition {
	out := match.Competition{}
	obj := objectAt(raw, "competition", "league")
	if obj == nil {
		if id, ok := getInt64(raw, "competition_id", "league_id"); ok {
			out.ID = id
		}
		out.Name = getString(raw, "competition_name", "league_name")
		return out
	}
	if id, ok := getInt64(obj, "id"); ok {
		out.ID = id
	}
	out.Name = getString(obj, "name")
	out.IsCup = asBool(obj["is_cup"])
	out.IsLeague = asBool(obj["is_league"])
	out.HasGroups = asBool(obj["has_groups"])
	out.Tier = intPtrFrom(obj["tier"])
	return out
}

func normalizeRef(raw map[string]any, key string) *match.Ref {
	if obj := objectAt(raw, key); obj != nil {
		id, _ := getInt64(obj, "id")
		name := getString(obj, "name")
		if id == 0 && name == "" {
			return nil
		}
		return &match.Ref{ID: id, Name: name}
	}
	id, hasID := getInt64(raw, key+"_id")
	name := getString(raw, key+"_name")
	if scalar := getString(raw, key); scalar != "" && name == "" {
		name = scalar
	}
	if (!hasID || id == 0) && name == "" {
		return nil
	}
	return &match.Ref{ID: id, Name: name}
}

func normalizeVenue(raw map[string]any) *match.Venue {
	if obj := objectAt(raw, "venue"); obj != nil {
		id, _ := getInt64(obj, "id")
		venue := &match.Venue{ID: id, Name: getString(obj, "name"), City: getString(obj, "city", "city_name")}
		if venue.ID == 0 && venue.Name == "" {
			return nil
		}
		return venue
	}
	name := getString(raw, "location", "venue")
	if name == "" {
		return nil
	}
	return &match.Venue{Name: name}
}

func normalizeWeather(raw map[string]any) *match.Weather {
	obj := objectAt(raw, "weather", "weather_report")
	if obj == nil {
		return nil
	}
	w := &match.Weather{
		Summary:      getString(obj, "summary", "description", "type"),
		TemperatureC: floatPtr(firstValue(obj, "temperature_c", "temperature", "temp")),
	}
	if w.Summary == "" && w.TemperatureC == nil {
		return nil
	}
	return w
}

func normalizeOdds(obj map[string]any) match.Odds {
	return match.Odds{
		PreMatch: normalizeOddsLine(objectAt(obj, "pre", "pre_match", "prematch")),
		Live:     normalizeOddsLine(objectAt(obj, "live", "in_play")),
	}
}

func normalizeOddsLine(obj map[string]any) *match.OddsLine {
	if obj == nil {
		return nil
	}
	line := &match.OddsLine{
		Home: floatPtr(firstValue(obj, "1", "home")),
		Draw: floatPtr(firstValue(obj, "X", "x", "draw")),
		Away: floatPtr(firstValue(obj, "2", "away")),
	}
	if line.Home == nil && line.Draw == nil && line.Away == nil {
		return nil
	}
	return line
}

func normalizeURLs(obj map[string]any) match.URLs {
	return match.URLs{
		Events:     getString(obj, "events"),
		Statistics: getString(obj, "statistics", "stats"),
		Lineups:    getString(obj, "lineups", "lineup"),
		HeadToHead: getString(obj, "head2head", "h2h", "head_to_head"),
	}
}
