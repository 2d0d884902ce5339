package postgres

import (
	"database/sql"
	"testing"
	"time"

	"github.com/riskibarqy/football-insights/internal/domain/match"
	"github.com/riskibarqy/football-insights/internal/domain/matchstats"
	"github.com/riskibarqy/football-insights/internal/domain/prediction"
	"github.com/riskibarqy/football-insights/internal/domain/settlement"
	qb "github.com/riskibarqy/football-insights/internal/platform/querybuilder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	if !isNotFound(sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows to be not found")
	}
	if isNotFound(nil) {
		t.Fatalf("expected nil error to be found")
	}
}

func TestMatchConditions_BuildWhereClause(t *testing.T) {
	t.Parallel()

	fixtureID := int64(9000)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	missing := false
	where := matchConditions(match.Filter{
		MatchIDs:  []int64{1, 2},
		FixtureID: &fixtureID,
		Statuses:  []match.Status{match.StatusFinished},
		DateFrom:  &from,
		HasStats:  &missing,
	})

	query, args, err := qb.Select("*").From(matchesTable).Where(where...).OrderBy(matchOrder(match.SortDateDesc)...).ToSQL()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT * FROM matches WHERE match_id IN ($1, $2) AND fixture_id = $3 AND status IN ($4) AND match_date >= $5 AND has_stats = $6 ORDER BY match_date DESC, match_id",
		query,
	)
	assert.Equal(t, []any{int64(1), int64(2), int64(9000), "finished", from, false}, args)
}

func TestMatchRow_ColumnsWinOverDocument(t *testing.T) {
	t.Parallel()

	home := 2
	item := match.Match{
		ID:       "m-1",
		MatchID:  77,
		Date:     time.Date(2024, 3, 1, 19, 0, 0, 0, time.UTC),
		Status:   match.StatusFinished,
		HomeTeam: match.Team{ID: 10, Name: "Home"},
		Scores:   match.Scores{Home: &home},
		Sync:     match.SyncMeta{HasStats: true, Source: match.SyncSourceHistoryBackward},
		Raw:      []byte(`{"id":77}`),
	}

	model, err := matchToWriteModel(item)
	require.NoError(t, err)
	assert.Equal(t, "m-1", model.PublicID)
	assert.Equal(t, int64(10), model.HomeTeamID)
	require.NotNil(t, model.Raw)

	var document map[string]any
	require.NoError(t, decodeDocument(model.Document, &document))
	assert.NotContains(t, document, "raw")
	assert.Contains(t, document, "scores")

	row := matchTableModel{
		PublicID:  model.PublicID,
		MatchID:   model.MatchID,
		MatchDate: model.MatchDate,
		Status:    string(match.StatusLive),
		HasStats:  false,
		Document:  model.Document,
		Raw:       sql.NullString{String: *model.Raw, Valid: true},
	}
	got, err := matchFromRow(row)
	require.NoError(t, err)
	assert.Equal(t, match.StatusLive, got.Status)
	assert.False(t, got.Sync.HasStats)
	assert.Equal(t, "Home", got.HomeTeam.Name)
	require.NotNil(t, got.Scores.Home)
	assert.Equal(t, 2, *got.Scores.Home)
	assert.JSONEq(t, `{"id":77}`, string(got.Raw))
}

func TestMatchStatsRow_KeepsMissingEventLog(t *testing.T) {
	t.Parallel()

	model, err := matchStatsToWriteModel(matchstats.MatchStats{ID: "s-1", MatchID: 5})
	require.NoError(t, err)
	assert.Nil(t, model.Events)
	assert.Equal(t, string(matchstats.QualityNone), model.DataQuality)

	got, err := matchStatsFromRow(matchStatsTableModel{PublicID: "s-1", MatchID: 5, Stats: model.Stats, Lineups: model.Lineups})
	require.NoError(t, err)
	assert.Nil(t, got.Events)

	got, err = matchStatsFromRow(matchStatsTableModel{PublicID: "s-1", MatchID: 5, Stats: "{}", Lineups: "{}", Events: sql.NullString{String: "[]", Valid: true}})
	require.NoError(t, err)
	assert.NotNil(t, got.Events)
	assert.Empty(t, got.Events)
}

func TestPostWriteModel_CopiesPredictionTarget(t *testing.T) {
	t.Parallel()

	matchID := int64(100)
	model, err := postToWriteModel(prediction.Post{
		ID:       "p-1",
		AuthorID: " u-1 ",
		PostType: prediction.PostTypePrediction,
		Prediction: &prediction.Prediction{
			MatchID: &matchID,
			Events:  []prediction.LegacyEvent{{Event: "Over 2.5", Coefficient: 1.8}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "u-1", model.AuthorID)
	require.NotNil(t, model.MatchID)
	assert.Equal(t, int64(100), *model.MatchID)
	assert.Nil(t, model.FixtureID)
	require.NotNil(t, model.Prediction)

	got, err := postFromRow(postTableModel{PublicID: "p-1", PostType: model.PostType, Prediction: sql.NullString{String: *model.Prediction, Valid: true}})
	require.NoError(t, err)
	require.NotNil(t, got.Prediction)
	assert.Equal(t, "Over 2.5", got.Prediction.Events[0].Event)

	article, err := postToWriteModel(prediction.Post{ID: "p-2", PostType: "article"})
	require.NoError(t, err)
	assert.Nil(t, article.Prediction)
	assert.Nil(t, article.MatchID)
}

func TestPredictionStatsWriteModel_StoresPoints(t *testing.T) {
	t.Parallel()

	model, err := predictionStatsToWriteModel(settlement.PredictionStats{
		ID:      "r-1",
		PostID:  "p-1",
		MatchID: 100,
		Scoring: settlement.Scoring{Points: 9, Breakdown: map[string]int{settlement.CategoryScore: 5}},
	})
	require.NoError(t, err)
	assert.Equal(t, 9, model.Points)
	assert.Equal(t, "[]", model.Details)
	assert.False(t, model.SettledAt.IsZero())
}
