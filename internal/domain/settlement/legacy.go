package settlement

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/riskibarqy/football-insights/internal/domain/match"
	"github.com/riskibarqy/football-insights/internal/domain/prediction"
)

var (
	totalLinePattern    = regexp.MustCompile(`^(over|under|o|u|tb|tm)\s*\(?\s*([0-9]+(?:[.,][0-9]+)?)\s*\)?$`)
	handicapLinePattern = regexp.MustCompile(`^(h1|h2|ah1|ah2|f1|f2)\s*\(?\s*([+-]?[0-9]+(?:[.,][0-9]+)?)\s*\)?$`)
)

// ParseLegacyEvent maps a free-form event label onto a rule. Labels it does
// not recognize report false and settle as undecided.
func ParseLegacyEvent(label string) (prediction.Rule, bool) {
	key := strings.ToLower(strings.Join(strings.Fields(label), " "))
	key = strings.TrimPrefix(key, "total ")

	switch key {
	case "1", "w1", "p1", "home", "home win":
		return resultRule(match.ResultHomeWin), true
	case "x", "draw":
		return resultRule(match.ResultDraw), true
	case "2", "w2", "p2", "away", "away win":
		return resultRule(match.ResultAwayWin), true
	case "1x", "home or draw":
		return resultSetRule(match.ResultHomeWin, match.ResultDraw), true
	case "x2", "draw or away":
		return resultSetRule(match.ResultDraw, match.ResultAwayWin), true
	case "12", "home or away", "no draw":
		return resultSetRule(match.ResultHomeWin, match.ResultAwayWin), true
	case "btts", "btts yes", "both teams to score", "both teams to score yes", "gg":
		return bttsRule(true), true
	case "btts no", "both teams to score no", "ng":
		return bttsRule(false), true
	}

	if m := totalLinePattern.FindStringSubmatch(key); m != nil {
		line, ok := parseLine(m[2])
		if !ok {
			return prediction.Rule{}, false
		}
		op := prediction.OpGT
		if m[1] == "under" || m[1] == "u" || m[1] == "tm" {
			op = prediction.OpLT
		}
		return prediction.Rule{
			Name:               label,
			Stat:               prediction.StatGoals,
			ComparisonOperator: op,
			Scope:              prediction.ScopeBoth,
			Aggregation:        prediction.AggSum,
			Values:             []float64{line},
		}, true
	}

	if m := handicapLinePattern.FindStringSubmatch(key); m != nil {
		handicap, ok := parseLine(m[2])
		if !ok {
			return prediction.Rule{}, false
		}
		// home - away + h > 0 for the home side, away - home + h > 0 for the away side.
		op, want := prediction.OpGT, -handicap
		if strings.HasSuffix(m[1], "2") {
			op, want = prediction.OpLT, handicap
		}
		return prediction.Rule{
			Name:               label,
			Stat:               prediction.StatGoals,
			ComparisonOperator: op,
			Scope:              prediction.ScopeDifference,
			Aggregation:        prediction.AggDifference,
			OutcomeValue:       &want,
		}, true
	}

	return prediction.Rule{}, false
}

func resultRule(code int) prediction.Rule {
	v := float64(code)
	return prediction.Rule{
		Stat:               prediction.StatResult,
		ComparisonOperator: prediction.OpEQ,
		Aggregation:        prediction.AggDirect,
		OutcomeValue:       &v,
	}
}

func resultSetRule(codes ...int) prediction.Rule {
	set := make([]prediction.SetItem, 0, len(codes))
	for _, code := range codes {
		set = append(set, prediction.SetItem{Value: float64(code)})
	}
	return prediction.Rule{
		Stat:               prediction.StatResult,
		ComparisonOperator: prediction.OpIn,
		Aggregation:        prediction.AggDirect,
		Set:                set,
	}
}

func bttsRule(yes bool) prediction.Rule {
	zero := 0.0
	op := prediction.OpGT
	if !yes {
		op = prediction.OpEQ
	}
	return prediction.Rule{
		Stat:               prediction.StatGoals,
		ComparisonOperator: op,
		Scope:              prediction.ScopeBoth,
		Aggregation:        prediction.AggMin,
		OutcomeValue:       &zero,
	}
}

func parseLine(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseResultGuess reads the legacy match-result field.
func ParseResultGuess(raw string) (int, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "home", "w1", "p1":
		return match.ResultHomeWin, true
	case "x", "0", "draw":
		return match.ResultDraw, true
	case "2", "away", "w2", "p2":
		return match.ResultAwayWin, true
	default:
		return match.ResultUnknown, false
	}
}
