package match

import (
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

func TestMatchResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		home *int
		away *int
		want int
	}{
		{name: "home win", home: intPtr(2), away: intPtr(1), want: ResultHomeWin},
		{name: "draw", home: intPtr(1), away: intPtr(1), want: ResultDraw},
		{name: "away win", home: intPtr(0), away: intPtr(3), want: ResultAwayWin},
		{name: "no score", home: nil, away: intPtr(3), want: ResultUnknown},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			m := Match{Scores: Scores{Home: tc.home, Away: tc.away}}
			if got := m.Result(); got != tc.want {
				t.Fatalf("unexpected result: got=%d want=%d", got, tc.want)
			}
		})
	}
}

func TestApplySync(t *testing.T) {
	t.Parallel()

	date := time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC)
	stored := Match{
		MatchID: 10,
		Date:    date,
		Status:  StatusLive,
		Scores:  Scores{Home: intPtr(1), Away: intPtr(0)},
		Sync:    SyncMeta{HasStats: true},
	}

	same := stored
	same.Sync = SyncMeta{Source: SyncSourceHistoryForward}
	if stored.ApplySync(same) {
		t.Fatalf("identical payload must not report a change")
	}
	if !stored.Sync.HasStats {
		t.Fatalf("hasStats must not be cleared by a later sync")
	}

	finished := stored
	finished.Status = StatusFinished
	finished.Scores = Scores{Home: intPtr(2), Away: intPtr(0)}
	if !stored.ApplySync(finished) {
		t.Fatalf("expected change for new status and score")
	}
	if stored.Status != StatusFinished || *stored.Scores.Home != 2 {
		t.Fatalf("fields not applied: %+v", stored)
	}
}

func TestStatusPredicates(t *testing.T) {
	t.Parallel()

	if !StatusHalftime.HasScore() || StatusScheduled.HasScore() {
		t.Fatalf("unexpected HasScore results")
	}
	if !StatusCancelled.Terminal() || StatusPostponed.Terminal() {
		t.Fatalf("unexpected Terminal results")
	}
}
