package matchstats

import (
	"encoding/json"
	"strings"
	"time"
)

// Pair is a home/away numeric statistic. A nil side means the provider
// did not report it.
type Pair struct {
	Home *float64 `json:"home"`
	Away *float64 `json:"away"`
}

// Present reports whether both sides are known.
func (p Pair) Present() bool {
	return p.Home != nil && p.Away != nil
}

type Shots struct {
	Total   Pair `json:"total"`
	OnGoal  Pair `json:"onGoal"`
	OffGoal Pair `json:"offGoal"`
	Blocked Pair `json:"blocked"`
}

type Passes struct {
	Total    Pair `json:"total"`
	Accuracy Pair `json:"accuracy"`
}

type Attacks struct {
	Total     Pair `json:"total"`
	Dangerous Pair `json:"dangerous"`
}

type Stats struct {
	Possession  Pair    `json:"possession"`
	Shots       Shots   `json:"shots"`
	Corners     Pair    `json:"corners"`
	Offsides    Pair    `json:"offsides"`
	Fouls       Pair    `json:"fouls"`
	YellowCards Pair    `json:"yellowCards"`
	RedCards    Pair    `json:"redCards"`
	Saves       Pair    `json:"saves"`
	Passes      Passes  `json:"passes"`
	Attacks     Attacks `json:"attacks"`
}

type EventType string

const (
	EventGoal         EventType = "goal"
	EventOwnGoal      EventType = "own_goal"
	EventPenalty      EventType = "penalty"
	EventYellowCard   EventType = "yellow_card"
	EventRedCard      EventType = "red_card"
	EventSubstitution EventType = "substitution"
	EventVAR          EventType = "var"
	EventOther        EventType = "other"
)

type Side string

const (
	SideHome    Side = "home"
	SideAway    Side = "away"
	SideUnknown Side = ""
)

type Event struct {
	Minute      *int      `json:"minute"`
	Type        EventType `json:"type"`
	Team        Side      `json:"team"`
	Player      string    `json:"player"`
	Assist      string    `json:"assist"`
	Description string    `json:"description"`
}

// ScoresFor reports whether the event adds a goal for the given side.
// Own goals count for the opposite team.
func (e Event) ScoresFor() Side {
	switch e.Type {
	case EventGoal, EventPenalty:
		return e.Team
	case EventOwnGoal:
		switch e.Team {
		case SideHome:
			return SideAway
		case SideAway:
			return SideHome
		}
	}
	return SideUnknown
}

type LineupPlayer struct {
	Number   *int   `json:"number"`
	Name     string `json:"name"`
	Position string `json:"position"`
}

type Lineup struct {
	Formation   string         `json:"formation"`
	StartingXI  []LineupPlayer `json:"startingXI"`
	Substitutes []LineupPlayer `json:"substitutes"`
}

func (l *Lineup) Empty() bool {
	return l == nil || (len(l.StartingXI) == 0 && len(l.Substitutes) == 0)
}

type Lineups struct {
	Home *Lineup `json:"home"`
	Away *Lineup `json:"away"`
}

type Quality string

const (
	QualityComplete Quality = "complete"
	QualityPartial  Quality = "partial"
	QualityMinimal  Quality = "minimal"
	QualityNone     Quality = "none"
)

// QualityForScore buckets a signal score into the four quality levels.
func QualityForScore(score int) Quality {
	switch {
	case score >= 7:
		return QualityComplete
	case score >= 4:
		return QualityPartial
	case score >= 2:
		return QualityMinimal
	default:
		return QualityNone
	}
}

// MatchStats is one-to-one with a match, keyed by the provider matchId.
// Events is nil when the provider has no event log for the match.
type MatchStats struct {
	ID          string          `json:"id"`
	MatchID     int64           `json:"matchId"`
	MatchRef    string          `json:"match"`
	Stats       Stats           `json:"stats"`
	Events      []Event         `json:"events"`
	Lineups     Lineups         `json:"lineups"`
	DataQuality Quality         `json:"dataQuality"`
	Raw         json.RawMessage `json:"raw,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Pair resolves a statistic by its rule key, for example "corners" or
// "shots_on_goal". Unknown keys report false.
func (s Stats) Pair(key string) (Pair, bool) {
	switch normalizeKey(key) {
	case "possession", "ball_possession":
		return s.Possession, true
	case "shots", "shots_total", "total_shots":
		return s.Shots.Total, true
	case "shots_on_goal", "shots_on_target", "shots_on":
		return s.Shots.OnGoal, true
	case "shots_off_goal", "shots_off_target", "shots_off":
		return s.Shots.OffGoal, true
	case "shots_blocked", "blocked_shots":
		return s.Shots.Blocked, true
	case "corners", "corner_kicks":
		return s.Corners, true
	case "offsides":
		return s.Offsides, true
	case "fouls":
		return s.Fouls, true
	case "yellow_cards", "yellowcards":
		return s.YellowCards, true
	case "red_cards", "redcards":
		return s.RedCards, true
	case "cards":
		return sumPairs(s.YellowCards, s.RedCards), true
	case "saves", "goalkeeper_saves":
		return s.Saves, true
	case "passes", "total_passes":
		return s.Passes.Total, true
	case "pass_accuracy", "passes_accuracy":
		return s.Passes.Accuracy, true
	case "attacks":
		return s.Attacks.Total, true
	case "dangerous_attacks":
		return s.Attacks.Dangerous, true
	default:
		return Pair{}, false
	}
}

func sumPairs(a, b Pair) Pair {
	if !a.Present() || !b.Present() {
		return Pair{}
	}
	home := *a.Home + *b.Home
	away := *a.Away + *b.Away
	return Pair{Home: &home, Away: &away}
}

func normalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	key = strings.ReplaceAll(key, "-", "_")
	return strings.ReplaceAll(key, " ", "_")
}
