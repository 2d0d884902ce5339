package settlement

import (
	"testing"

	"github.com/riskibarqy/football-insights/internal/domain/match"
)

func TestParseLegacyEvent(t *testing.T) {
	t.Parallel()

	in := Input{Match: finishedMatch(2, 1)}
	tests := []struct {
		label string
		want  Result
	}{
		{label: "1", want: ResultWon},
		{label: "X", want: ResultLost},
		{label: "W2", want: ResultLost},
		{label: "1X", want: ResultWon},
		{label: "x2", want: ResultLost},
		{label: "12", want: ResultWon},
		{label: "Over 2.5", want: ResultWon},
		{label: "Total Under (2,5)", want: ResultLost},
		{label: "BTTS Yes", want: ResultWon},
		{label: "btts no", want: ResultLost},
		{label: "H1(-1.5)", want: ResultLost},
		{label: "H2 (+1.5)", want: ResultWon},
		{label: "AH1 -0.5", want: ResultWon},
	}
	for _, tc := range tests {
		t.Run(tc.label, func(t *testing.T) {
			t.Parallel()
			rule, ok := ParseLegacyEvent(tc.label)
			if !ok {
				t.Fatalf("label %q not recognized", tc.label)
			}
			got := Evaluate(rule, nil, in)
			if got.Result() != tc.want {
				t.Fatalf("label %q: got %s (%s) want %s", tc.label, got.Result(), got.Reason, tc.want)
			}
		})
	}

	if _, ok := ParseLegacyEvent("first goalscorer Messi"); ok {
		t.Fatalf("unexpected parse of unsupported label")
	}
}

func TestParseResultGuess(t *testing.T) {
	t.Parallel()

	if got, ok := ParseResultGuess(" Home "); !ok || got != match.ResultHomeWin {
		t.Fatalf("unexpected guess %d ok=%v", got, ok)
	}
	if got, ok := ParseResultGuess("draw"); !ok || got != match.ResultDraw {
		t.Fatalf("unexpected guess %d ok=%v", got, ok)
	}
	if _, ok := ParseResultGuess(""); ok {
		t.Fatalf("empty guess must not parse")
	}
}
