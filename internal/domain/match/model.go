package match

import (
	"encoding/json"
	"strings"
	"time"
)

// Status is the canonical match lifecycle state.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusLive      Status = "live"
	StatusHalftime  Status = "halftime"
	StatusFinished  Status = "finished"
	StatusCancelled Status = "cancelled"
	StatusPostponed Status = "postponed"
	StatusSuspended Status = "suspended"
)

var AllStatuses = map[Status]struct{}{
	StatusScheduled: {},
	StatusLive:      {},
	StatusHalftime:  {},
	StatusFinished:  {},
	StatusCancelled: {},
	StatusPostponed: {},
	StatusSuspended: {},
}

// InPlay reports whether scores are meaningful while the match runs.
func (s Status) InPlay() bool {
	return s == StatusLive || s == StatusHalftime
}

// HasScore reports whether a status carries home/away scores.
func (s Status) HasScore() bool {
	return s == StatusFinished || s.InPlay()
}

// Terminal reports states a match never leaves through normal sync.
func (s Status) Terminal() bool {
	return s == StatusFinished || s == StatusCancelled
}

// Period mirrors FIFA match phases.
type Period string

const (
	PeriodNotStarted          Period = "not_started"
	PeriodFirstHalf           Period = "first_half"
	PeriodHalftime            Period = "halftime"
	PeriodSecondHalf          Period = "second_half"
	PeriodExtraTimeFirstHalf  Period = "extra_time_first_half"
	PeriodExtraTimeBreak      Period = "extra_time_break"
	PeriodExtraTimeSecondHalf Period = "extra_time_second_half"
	PeriodPenalties           Period = "penalties"
	PeriodFullTime            Period = "full_time"
)

// SyncSource records which job last wrote the match.
type SyncSource string

const (
	SyncSourceHistoryBackward SyncSource = "history_backward"
	SyncSourceHistoryForward  SyncSource = "history_forward"
	SyncSourceStatsImport     SyncSource = "stats_import"
	SyncSourceManual          SyncSource = "manual"
)

// Result codes used by match-result markets.
const (
	ResultDraw    = 0
	ResultHomeWin = 1
	ResultAwayWin = 2
	ResultUnknown = -1
)

type Team struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo"`
}

// Scores keeps typed values and the raw provider strings side by side.
// Typed values stay nil until the status carries a score.
type Scores struct {
	Home          *int      `json:"homeScore"`
	Away          *int      `json:"awayScore"`
	HalfTimeHome  *int      `json:"halfTimeHome"`
	HalfTimeAway  *int      `json:"halfTimeAway"`
	ExtraTimeHome *int      `json:"extraTimeHome"`
	ExtraTimeAway *int      `json:"extraTimeAway"`
	PenaltiesHome *int      `json:"penaltiesHome"`
	PenaltiesAway *int      `json:"penaltiesAway"`
	Raw           RawScores `json:"raw"`
}

type RawScores struct {
	FullTime  string `json:"fullTime"`
	HalfTime  string `json:"halfTime"`
	ExtraTime string `json:"extraTime"`
	Penalties string `json:"penalties"`
}

type Competition struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	IsCup     bool   `json:"isCup"`
	IsLeague  bool   `json:"isLeague"`
	HasGroups bool   `json:"hasGroups"`
	Tier      *int   `json:"tier"`
}

// Ref is an optional named entity such as a country, season or round.
type Ref struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Venue struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	City string `json:"city"`
}

type Weather struct {
	Summary      string   `json:"summary"`
	TemperatureC *float64 `json:"temperatureC"`
}

type OddsLine struct {
	Home *float64 `json:"home"`
	Draw *float64 `json:"draw"`
	Away *float64 `json:"away"`
}

type Odds struct {
	PreMatch *OddsLine `json:"pre"`
	Live     *OddsLine `json:"live"`
}

type URLs struct {
	Events     string `json:"events"`
	Statistics string `json:"statistics"`
	Lineups    string `json:"lineups"`
	HeadToHead string `json:"h2h"`
}

type SyncMeta struct {
	LastSyncAt time.Time  `json:"lastSyncAt"`
	Source     SyncSource `json:"syncSource"`
	HasStats   bool       `json:"hasStats"`
	Priority   int        `json:"priority"`
}

// Match is the canonical record keyed by the provider matchId.
type Match struct {
	ID          string          `json:"id"`
	MatchID     int64           `json:"matchId"`
	FixtureID   *int64          `json:"fixtureId"`
	Date        time.Time       `json:"date"`
	Status      Status          `json:"status"`
	Minute      *int            `json:"minute"`
	Period      Period          `json:"period"`
	HomeTeam    Team            `json:"homeTeam"`
	AwayTeam    Team            `json:"awayTeam"`
	Scores      Scores          `json:"scores"`
	Competition Competition     `json:"competition"`
	Federation  *Ref            `json:"federation"`
	Country     *Ref            `json:"country"`
	Season      *Ref            `json:"season"`
	Round       *Ref            `json:"round"`
	Venue       *Venue          `json:"venue"`
	Referee     *Ref            `json:"referee"`
	Weather     *Weather        `json:"weather"`
	Odds        Odds            `json:"odds"`
	URLs        URLs            `json:"urls"`
	Sync        SyncMeta        `json:"sync"`
	Raw         json.RawMessage `json:"raw,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Result returns the match-result code, or ResultUnknown without a final score.
func (m Match) Result() int {
	if m.Scores.Home == nil || m.Scores.Away == nil {
		return ResultUnknown
	}
	switch home, away := *m.Scores.Home, *m.Scores.Away; {
	case home > away:
		return ResultHomeWin
	case home < away:
		return ResultAwayWin
	default:
		return ResultDraw
	}
}

// ApplySync copies the fields a later sync pass may change onto the stored
// record and reports whether anything differed.
func (m *Match) ApplySync(incoming Match) bool {
	changed := m.Status != incoming.Status ||
		!equalIntPtr(m.Minute, incoming.Minute) ||
		m.Period != incoming.Period ||
		!equalScores(m.Scores, incoming.Scores) ||
		!m.Date.Equal(incoming.Date) ||
		(incoming.FixtureID != nil && !equalInt64Ptr(m.FixtureID, incoming.FixtureID))

	m.Status = incoming.Status
	m.Minute = incoming.Minute
	m.Period = incoming.Period
	m.Scores = incoming.Scores
	m.Date = incoming.Date
	if incoming.FixtureID != nil {
		m.FixtureID = incoming.FixtureID
	}
	if incoming.Odds.PreMatch != nil {
		m.Odds.PreMatch = incoming.Odds.PreMatch
	}
	if incoming.Odds.Live != nil {
		m.Odds.Live = incoming.Odds.Live
	}
	if strings.TrimSpace(incoming.URLs.Statistics) != "" {
		m.URLs = incoming.URLs
	}
	if len(incoming.Raw) > 0 {
		m.Raw = incoming.Raw
	}
	m.Sync.LastSyncAt = incoming.Sync.LastSyncAt
	m.Sync.Source = incoming.Sync.Source
	m.Sync.HasStats = m.Sync.HasStats || incoming.Sync.HasStats
	return changed
}

func equalScores(a, b Scores) bool {
	return equalIntPtr(a.Home, b.Home) &&
		equalIntPtr(a.Away, b.Away) &&
		equalIntPtr(a.HalfTimeHome, b.HalfTimeHome) &&
		equalIntPtr(a.HalfTimeAway, b.HalfTimeAway) &&
		equalIntPtr(a.ExtraTimeHome, b.ExtraTimeHome) &&
		equalIntPtr(a.ExtraTimeAway, b.ExtraTimeAway) &&
		equalIntPtr(a.PenaltiesHome, b.PenaltiesHome) &&
		equalIntPtr(a.PenaltiesAway, b.PenaltiesAway)
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func equalInt64Ptr(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
