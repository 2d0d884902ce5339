package matchstats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQualityForScore(t *testing.T) {
	t.Parallel()

	cases := map[int]Quality{
		0: QualityNone,
		1: QualityNone,
		2: QualityMinimal,
		3: QualityMinimal,
		4: QualityPartial,
		6: QualityPartial,
		7: QualityComplete,
		8: QualityComplete,
	}
	for score, want := range cases {
		assert.Equal(t, want, QualityForScore(score), "score %d", score)
	}
}

func TestStatsPair(t *testing.T) {
	t.Parallel()

	f := func(v float64) *float64 { return &v }
	stats := Stats{
		Corners:     Pair{Home: f(5), Away: f(3)},
		YellowCards: Pair{Home: f(2), Away: f(1)},
		RedCards:    Pair{Home: f(0), Away: f(1)},
	}

	p, ok := stats.Pair("Corner Kicks")
	assert.True(t, ok)
	assert.Equal(t, 5.0, *p.Home)

	cards, ok := stats.Pair("cards")
	assert.True(t, ok)
	assert.Equal(t, 2.0, *cards.Home)
	assert.Equal(t, 2.0, *cards.Away)

	saves, ok := stats.Pair("saves")
	assert.True(t, ok)
	assert.False(t, saves.Present())

	_, ok = stats.Pair("throw_ins")
	assert.False(t, ok)
}

func TestEventScoresFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, SideHome, Event{Type: EventGoal, Team: SideHome}.ScoresFor())
	assert.Equal(t, SideAway, Event{Type: EventOwnGoal, Team: SideHome}.ScoresFor())
	assert.Equal(t, SideUnknown, Event{Type: EventYellowCard, Team: SideHome}.ScoresFor())
}
