package sportsdata

import (
	"testing"
	"time"

	"github.com/riskibarqy/football-insights/internal/domain/match"
	"github.com/riskibarqy/football-insights/internal/domain/matchstats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestNormalizeMatch_Finished(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"id":          "1234",
		"fixture_id":  "55",
		"date":        "2020-01-05",
		"scheduled":   "15:00",
		"status":      "FINISHED",
		"time":        "FT",
		"home":        map[string]any{"id": "10", "name": "Arsenal", "logo": "a.png"},
		"away":        map[string]any{"id": float64(20), "name": "Chelsea"},
		"scores":      map[string]any{"score": "2 - 1", "ht_score": "1 - 0", "ft_score": "2 - 1"},
		"competition": map[string]any{"id": float64(2), "name": "Premier League", "is_league": "1"},
		"country":     map[string]any{"id": float64(19), "name": "England"},
		"location":    "Emirates Stadium",
		"odds":        map[string]any{"pre": map[string]any{"1": 1.8, "X": "3.4", "2": 4.5}},
	}

	m := NormalizeMatch(raw, match.SyncSourceHistoryBackward, testNow)

	assert.Equal(t, int64(1234), m.MatchID)
	require.NotNil(t, m.FixtureID)
	assert.Equal(t, int64(55), *m.FixtureID)
	assert.Equal(t, time.Date(2020, 1, 5, 15, 0, 0, 0, time.UTC), m.Date)
	assert.Equal(t, match.StatusFinished, m.Status)
	assert.Equal(t, match.PeriodFullTime, m.Period)
	assert.Nil(t, m.Minute)
	assert.Equal(t, match.Team{ID: 10, Name: "Arsenal", Logo: "a.png"}, m.HomeTeam)
	assert.Equal(t, int64(20), m.AwayTeam.ID)

	require.NotNil(t, m.Scores.Home)
	require.NotNil(t, m.Scores.Away)
	assert.Equal(t, 2, *m.Scores.Home)
	assert.Equal(t, 1, *m.Scores.Away)
	require.NotNil(t, m.Scores.HalfTimeHome)
	assert.Equal(t, 1, *m.Scores.HalfTimeHome)
	assert.Equal(t, "2 - 1", m.Scores.Raw.FullTime)
	assert.Equal(t, match.ResultHomeWin, m.Result())

	assert.Equal(t, "Premier League", m.Competition.Name)
	assert.True(t, m.Competition.IsLeague)
	require.NotNil(t, m.Country)
	assert.Equal(t, "England", m.Country.Name)
	require.NotNil(t, m.Venue)
	assert.Equal(t, "Emirates Stadium", m.Venue.Name)
	require.NotNil(t, m.Odds.PreMatch)
	assert.InDelta(t, 3.4, *m.Odds.PreMatch.Draw, 1e-9)

	assert.Equal(t, match.SyncSourceHistoryBackward, m.Sync.Source)
	assert.Equal(t, testNow, m.Sync.LastSyncAt)
	assert.NotEmpty(t, m.Raw)
}

func TestNormalizeMatch_ScoresOnlyTypedWhenPlayed(t *testing.T) {
	t.Parallel()

	scheduled := NormalizeMatch(map[string]any{
		"id":     float64(5),
		"status": "NOT STARTED",
		"scores": map[string]any{"score": "0 - 0"},
	}, match.SyncSourceHistoryForward, testNow)
	assert.Equal(t, match.StatusScheduled, scheduled.Status)
	assert.Nil(t, scheduled.Scores.Home)
	assert.Nil(t, scheduled.Scores.Away)
	assert.Equal(t, "0 - 0", scheduled.Scores.Raw.FullTime)
	assert.Equal(t, match.ResultUnknown, scheduled.Result())

	live := NormalizeMatch(map[string]any{
		"id":     float64(6),
		"status": "IN PLAY",
		"time":   "67'",
		"scores": map[string]any{"score": "1 - 0"},
	}, match.SyncSourceHistoryForward, testNow)
	assert.Equal(t, match.StatusLive, live.Status)
	require.NotNil(t, live.Minute)
	assert.Equal(t, 67, *live.Minute)
	assert.Equal(t, match.PeriodSecondHalf, live.Period)
	require.NotNil(t, live.Scores.Home)
	assert.Equal(t, 1, *live.Scores.Home)
}

func TestNormalizeMatch_Defaults(t *testing.T) {
	t.Parallel()

	m := NormalizeMatch(map[string]any{"status": "something new"}, match.SyncSourceManual, testNow)
	assert.Zero(t, m.MatchID)
	assert.Equal(t, match.StatusScheduled, m.Status)
	assert.Equal(t, match.PeriodNotStarted, m.Period)
	assert.Equal(t, unknownTeamName, m.HomeTeam.Name)
	assert.Equal(t, unknownTeamName, m.AwayTeam.Name)
	assert.Nil(t, m.Venue)
	assert.Nil(t, m.Weather)
	assert.Nil(t, m.Odds.PreMatch)

	empty := NormalizeMatch(nil, match.SyncSourceManual, testNow)
	assert.Zero(t, empty.MatchID)
	assert.Equal(t, match.StatusScheduled, empty.Status)
}

func TestNormalizeMatch_MalformedInputNeverPanics(t *testing.T) {
	t.Parallel()

	inputs := []map[string]any{
		{"id": []any{1, 2}, "status": float64(3), "home": "Team A", "away": float64(9)},
		{"id": "abc", "scores": []any{"x"}, "competition": "cup", "odds": "none"},
		{"id": 1.5, "date": "not a date", "time": map[string]any{}, "weather": []any{}},
		{"id": float64(7), "scores": map[string]any{"score": "? - ?"}, "status": "FINISHED"},
		{"home": map[string]any{"id": "x", "name": 12}, "venue": map[string]any{"id": "y"}},
	}

	for _, raw := range inputs {
		assert.NotPanics(t, func() {
			m := NormalizeMatch(raw, match.SyncSourceManual, testNow)
			_, known := match.AllStatuses[m.Status]
			assert.True(t, known)
		})
	}

	named := NormalizeMatch(inputs[0], match.SyncSourceManual, testNow)
	assert.Equal(t, "Team A", named.HomeTeam.Name)
	assert.Zero(t, named.MatchID)

	noScore := NormalizeMatch(inputs[3], match.SyncSourceManual, testNow)
	assert.Equal(t, match.StatusFinished, noScore.Status)
	assert.Nil(t, noScore.Scores.Home)
}

func TestNormalizeStats_ParsesPairsAndQuality(t *testing.T) {
	t.Parallel()

	payload := StatsPayload{
		Stats: map[string]any{
			"possesion":         "55:45",
			"attempts_on_goal":  "12:7",
			"shots_on_target":   map[string]any{"home": "5", "away": float64(2)},
			"corners":           []any{float64(6), "3"},
			"yellow_cards":      "2:4",
			"dangerous_attacks": "garbage",
		},
		Events: []map[string]any{
			{"time": "23", "event": "GOAL", "home_away": "h", "player": "Saka"},
			{"time": "45+2", "event": "YELLOW_CARD", "home_away": "a"},
			{"time": "80", "event": "weird", "home_away": "?"},
		},
		Lineups: map[string]any{
			"home": map[string]any{
				"formation": "4-3-3",
				"players": []any{
					map[string]any{"name": "Raya", "shirt_number": "1", "position": "G"},
					map[string]any{"name": "Nwaneri", "shirt_number": "53", "substitution": "1"},
				},
			},
		},
	}

	stats := NormalizeStats(99, payload, testNow)

	assert.Equal(t, int64(99), stats.MatchID)
	require.NotNil(t, stats.Stats.Possession.Home)
	assert.InDelta(t, 55, *stats.Stats.Possession.Home, 1e-9)
	assert.InDelta(t, 7, *stats.Stats.Shots.Total.Away, 1e-9)
	assert.InDelta(t, 2, *stats.Stats.Shots.OnGoal.Away, 1e-9)
	assert.InDelta(t, 3, *stats.Stats.Corners.Away, 1e-9)
	assert.False(t, stats.Stats.Attacks.Dangerous.Present())

	require.Len(t, stats.Events, 3)
	assert.Equal(t, matchstats.EventGoal, stats.Events[0].Type)
	assert.Equal(t, matchstats.SideHome, stats.Events[0].Team)
	require.NotNil(t, stats.Events[1].Minute)
	assert.Equal(t, 45, *stats.Events[1].Minute)
	assert.Equal(t, matchstats.EventYellowCard, stats.Events[1].Type)
	assert.Equal(t, matchstats.EventOther, stats.Events[2].Type)
	assert.Equal(t, matchstats.SideUnknown, stats.Events[2].Team)

	require.NotNil(t, stats.Lineups.Home)
	assert.Nil(t, stats.Lineups.Away)
	assert.Equal(t, "4-3-3", stats.Lineups.Home.Formation)
	require.Len(t, stats.Lineups.Home.StartingXI, 1)
	require.Len(t, stats.Lineups.Home.Substitutes, 1)
	assert.Equal(t, "Nwaneri", stats.Lineups.Home.Substitutes[0].Name)

	assert.Equal(t, 12, QualityScore(stats.Stats, stats.Events, stats.Lineups))
	assert.Equal(t, matchstats.QualityComplete, stats.DataQuality)
}

func TestNormalizeStats_StatisticRows(t *testing.T) {
	t.Parallel()

	payload := StatsPayload{
		Raw: map[string]any{"data": map[string]any{"statistics": []any{
			map[string]any{"type": "Corners", "home": "5", "away": 3},
			map[string]any{"type": "Ball Possession", "home": "61%", "away": "39%"},
		}}},
	}

	stats := NormalizeStats(1, payload, testNow)
	require.True(t, stats.Stats.Corners.Present())
	assert.InDelta(t, 5, *stats.Stats.Corners.Home, 1e-9)
	assert.InDelta(t, 39, *stats.Stats.Possession.Away, 1e-9)
	assert.Equal(t, matchstats.QualityPartial, stats.DataQuality)
}

func TestNormalizeStats_EventsNilWhenAbsent(t *testing.T) {
	t.Parallel()

	absent := NormalizeStats(1, StatsPayload{}, testNow)
	assert.Nil(t, absent.Events)
	assert.Equal(t, matchstats.QualityNone, absent.DataQuality)

	empty := NormalizeStats(1, StatsPayload{Events: []map[string]any{}}, testNow)
	assert.NotNil(t, empty.Events)
	assert.Empty(t, empty.Events)
}

func TestDeriveQuality_Boundaries(t *testing.T) {
	t.Parallel()

	one := 1.0
	possession := matchstats.Stats{Possession: matchstats.Pair{Home: &one}}
	assert.Equal(t, matchstats.QualityMinimal, DeriveQuality(possession, nil, matchstats.Lineups{}))

	withEvents := DeriveQuality(possession, []matchstats.Event{{Type: matchstats.EventGoal}}, matchstats.Lineups{})
	assert.Equal(t, matchstats.QualityPartial, withEvents)

	assert.Equal(t, matchstats.QualityNone, DeriveQuality(matchstats.Stats{}, nil, matchstats.Lineups{}))
}
