package sportsdata

import (
	"regexp"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/football-insights/internal/domain/matchstats"
)

var statPairRegex = regexp.MustCompile(`^\s*([0-9]+(?:[.,][0-9]+)?)\s*%?\s*[:\-]\s*([0-9]+(?:[.,][0-9]+)?)\s*%?\s*$`)

// qualityGroupPoints is the weight of each statistic group in the data
// quality score.
const qualityGroupPoints = 2

var eventTypeAliases = map[string]matchstats.EventType{
	"goal":            matchstats.EventGoal,
	"goal_penalty":    matchstats.EventPenalty,
	"penalty":         matchstats.EventPenalty,
	"penalty_goal":    matchstats.EventPenalty,
	"own_goal":        matchstats.EventOwnGoal,
	"owngoal":         matchstats.EventOwnGoal,
	"yellow_card":     matchstats.EventYellowCard,
	"yellowcard":      matchstats.EventYellowCard,
	"red_card":        matchstats.EventRedCard,
	"redcard":         matchstats.EventRedCard,
	"yellow_red_card": matchstats.EventRedCard,
	"yellowred":       matchstats.EventRedCard,
	"substitution":    matchstats.EventSubstitution,
	"subst":           matchstats.EventSubstitution,
	"var":             matchstats.EventVAR,
}

// NormalizeStats maps a raw statistics payload onto the canonical record.
// Missing numbers stay nil; Events stays nil when the payload had no log.
func NormalizeStats(matchID int64, payload StatsPayload, now time.Time) matchstats.MatchStats {
	src := payload.Stats
	if rows := objects(listAt(payload.Raw, "statistics")); len(rows) > 0 && rowsHaveSides(rows) {
		src = statRowsToMap(rows)
	}

	out := matchstats.MatchStats{
		MatchID: matchID,
		Stats: matchstats.Stats{
			Possession: statPair(src, "possession", "possesion", "ball_possession"),
			Shots: matchstats.Shots{
				Total:   statPair(src, "attempts_on_goal", "shots_total", "total_shots", "shots"),
				OnGoal:  statPair(src, "shots_on_target", "shots_on_goal"),
				OffGoal: statPair(src, "shots_off_target", "shots_off_goal"),
				Blocked: statPair(src, "shots_blocked", "blocked_shots"),
			},
			Corners:     statPair(src, "corners", "corner_kicks"),
			Offsides:    statPair(src, "offsides"),
			Fouls:       statPair(src, "fouls", "fauls"),
			YellowCards: statPair(src, "yellow_cards", "yellowcards"),
			RedCards:    statPair(src, "red_cards", "redcards"),
			Saves:       statPair(src, "saves", "goalkeeper_saves"),
			Passes: matchstats.Passes{
				Total:    statPair(src, "passes", "total_passes"),
				Accuracy: statPair(src, "pass_accuracy", "passes_accuracy", "passes_%"),
			},
			Attacks: matchstats.Attacks{
				Total:     statPair(src, "attacks"),
				Dangerous: statPair(src, "dangerous_attacks"),
			},
		},
		Lineups:   normalizeLineups(payload.Lineups),
		UpdatedAt: now.UTC(),
	}

	if payload.Events != nil {
		out.Events = make([]matchstats.Event, 0, len(payload.Events))
		for _, raw := range payload.Events {
			out.Events = append(out.Events, normalizeEvent(raw))
		}
	}

	out.DataQuality = DeriveQuality(out.Stats, out.Events, out.Lineups)
	if payload.Raw != nil {
		if encoded, err := sonic.Marshal(payload.Raw); err == nil {
			out.Raw = encoded
		}
	}
	return out
}

// QualityScore adds qualityGroupPoints for every statistic group present.
func QualityScore(stats matchstats.Stats, events []matchstats.Event, lineups matchstats.Lineups) int {
	score := 0
	groups := []bool{
		stats.Possession.Present(),
		stats.Shots.Total.Present() || stats.Shots.OnGoal.Present() || stats.Shots.OffGoal.Present(),
		stats.Corners.Present() || stats.Offsides.Present() || stats.Fouls.Present(),
		stats.YellowCards.Present() || stats.RedCards.Present(),
		len(events) > 0,
		!lineups.Home.Empty() || !lineups.Away.Empty(),
	}
	for _, present := range groups {
		if present {
			score += qualityGroupPoints
		}
	}
	return score
}

// DeriveQuality buckets QualityScore into the four quality levels.
func DeriveQuality(stats matchstats.Stats, events []matchstats.Event, lineups matchstats.Lineups) matchstats.Quality {
	return matchstats.QualityForScore(QualityScore(stats, events, lineups))
}

func statPair(src map[string]any, keys ...string) matchstats.Pair {
	if src == nil {
		return matchstats.Pair{}
	}
	for _, key := range keys {
		value, ok := src[key]
		if !ok || value == nil {
			continue
		}
		if p, ok := parsePair(value); ok {
			return p
		}
	}
	return matchstats.Pair{}
}

func parsePair(value any) (matchstats.Pair, bool) {
	switch typed := value.(type) {
	case string:
		m := statPairRegex.FindStringSubmatch(typed)
		if m == nil {
			return matchstats.Pair{}, false
		}
		return matchstats.Pair{Home: floatPtr(m[1]), Away: floatPtr(m[2])}, true
	case map[string]any:
		p := matchstats.Pair{
			Home: floatPtr(firstValue(typed, "home", "h", "localteam")),
			Away: floatPtr(firstValue(typed, "away", "a", "visitorteam")),
		}
		return p, p.Home != nil || p.Away != nil
	case []any:
		if len(typed) != 2 {
			return matchstats.Pair{}, false
		}
		p := matchstats.Pair{Home: floatPtr(typed[0]), Away: floatPtr(typed[1])}
		return p, p.Home != nil || p.Away != nil
	default:
		return matchstats.Pair{}, false
	}
}

func rowsHaveSides(rows []map[string]any) bool {
	for _, row := range rows {
		if _, ok := row["home"]; ok {
			return true
		}
	}
	return false
}

// statRowsToMap turns [{type, home, away}] rows into the keyed form.
func statRowsToMap(rows []map[string]any) map[string]any {
	out := make(map[string]any, len(rows))
	for _, row := range rows {
		key := statKey(getString(row, "type", "name"))
		if key == "" {
			continue
		}
		out[key] = map[string]any{"home": row["home"], "away": row["away"]}
	}
	return out
}

func statKey(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, " ", "_")
	return strings.ReplaceAll(key, "-", "_")
}

func normalizeEvent(raw map[string]any) matchstats.Event {
	event := matchstats.Event{
		Minute:      leadingInt(getString(raw, "time", "minute", "elapsed")),
		Type:        normalizeEventType(getString(raw, "event", "type")),
		Team:        normalizeSide(getString(raw, "home_away", "team", "side")),
		Player:      getString(raw, "player", "player_name"),
		Assist:      getString(raw, "assist", "related_player", "info"),
		Description: getString(raw, "description", "detail", "comment"),
	}
	if event.Type == matchstats.EventSubstitution && event.Assist == "" {
		event.Assist = getString(raw, "player_out")
	}
	return event
}

func normalizeEventType(raw string) matchstats.EventType {
	if v, ok := eventTypeAliases[statKey(raw)]; ok {
		return v
	}
	return matchstats.EventOther
}

func normalizeSide(raw string) matchstats.Side {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "h", "home", "localteam", "1":
		return matchstats.SideHome
	case "a", "away", "visitorteam", "2":
		return matchstats.SideAway
	default:
		return matchstats.SideUnknown
	}
}

func normalizeLineups(raw map[string]any) matchstats.Lineups {
	return matchstats.Lineups{
		Home: normalizeLineup(objectAt(raw, "home", "localteam")),
		Away: normalizeLineup(objectAt(raw, "away", "visitorteam")),
	}
}

func normalizeLineup(raw map[string]any) *matchstats.Lineup {
	if raw == nil {
		return nil
	}
	lineup := &matchstats.Lineup{
		Formation:   getString(raw, "formation"),
		StartingXI:  []matchstats.LineupPlayer{},
		Substitutes: []matchstats.LineupPlayer{},
	}

	starters := objects(listFrom(raw, "startingXI", "starting_xi", "starting", "lineup"))
	subs := objects(listFrom(raw, "substitutes", "subs", "bench"))
	if len(starters) == 0 && len(subs) == 0 {
		for _, p := range objects(listFrom(raw, "players")) {
			if asBool(p["substitution"]) || asBool(p["substitute"]) {
				subs = append(subs, p)
			} else {
				starters = append(starters, p)
			}
		}
	}
	for _, p := range starters {
		lineup.StartingXI = append(lineup.StartingXI, normalizeLineupPlayer(p))
	}
	for _, p := range subs {
		lineup.Substitutes = append(lineup.Substitutes, normalizeLineupPlayer(p))
	}
	if lineup.Formation == "" && lineup.Empty() {
		return nil
	}
	return lineup
}

func listFrom(src map[string]any, keys ...string) []any {
	for _, key := range keys {
		if arr, ok := src[key].([]any); ok {
			return arr
		}
	}
	return nil
}

func normalizeLineupPlayer(raw map[string]any) matchstats.LineupPlayer {
	player := raw
	if nested := objectAt(raw, "player"); nested != nil {
		player = nested
	}
	return matchstats.LineupPlayer{
		Number:   intPtrFrom(firstValue(raw, "shirt_number", "number", "jersey_number")),
		Name:     firstNonEmpty(getString(player, "name", "player_name"), getString(raw, "name", "player")),
		Position: firstNonEmpty(getString(raw, "position", "pos"), getString(player, "position", "pos")),
	}
}
