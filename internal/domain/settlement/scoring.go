package settlement

import (
	"github.com/riskibarqy/football-insights/internal/domain/match"
	"github.com/riskibarqy/football-insights/internal/domain/prediction"
)

// Scoring categories and their fixed bonuses.
const (
	CategoryOutcomes = "outcomes"
	CategoryOutcome  = "outcome"
	CategoryScore    = "score"

	PointsPerOutcome  = 1
	PointsResultGuess = 2
	PointsExactScore  = 5
)

// Pick is one evaluated prediction line.
type Pick struct {
	Label       string
	Coefficient float64
	Rule        prediction.Rule
	Line        *float64
	// Resolved is false when no rule could be found for the label.
	Resolved bool
}

// EvaluateMany evaluates every pick and summarizes the verdicts.
func EvaluateMany(picks []Pick, in Input) ([]Detail, Summary) {
	details := make([]Detail, 0, len(picks))
	for _, pick := range picks {
		v := Undecided("no rule for " + pick.Label)
		if pick.Resolved {
			v = Evaluate(pick.Rule, pick.Line, in)
		}
		details = append(details, Detail{
			Event:       pick.Label,
			Coefficient: pick.Coefficient,
			Result:      v.Result(),
			Reason:      v.Reason,
		})
	}
	return details, Summarize(details)
}

// Summarize computes counts, hit rate and ROI. Undecided picks add nothing
// to the profit sum but stay in the total used as denominator.
func Summarize(details []Detail) Summary {
	s := Summary{Total: len(details)}
	profit := 0.0
	for _, d := range details {
		switch d.Result {
		case ResultWon:
			s.Won++
			profit += d.Coefficient - 1
		case ResultLost:
			s.Lost++
			profit--
		default:
			s.Undecided++
		}
	}
	if s.Total > 0 {
		s.HitRate = float64(s.Won) / float64(s.Total)
		s.ROI = profit / float64(s.Total)
	}
	return s
}

// Score awards one point per won pick plus the legacy result and exact
// score bonuses.
func Score(details []Detail, p prediction.Prediction, m match.Match) Scoring {
	breakdown := map[string]int{
		CategoryOutcomes: 0,
		CategoryOutcome:  0,
		CategoryScore:    0,
	}
	for _, d := range details {
		if d.Result == ResultWon {
			breakdown[CategoryOutcomes] += PointsPerOutcome
		}
	}

	if m.Status == match.StatusFinished {
		result := m.Result()
		if guess, ok := ParseResultGuess(p.Outcome); ok && result != match.ResultUnknown && guess == result {
			breakdown[CategoryOutcome] = PointsResultGuess
		}
		if p.Score != nil && m.Scores.Home != nil && m.Scores.Away != nil &&
			p.Score.Home == *m.Scores.Home && p.Score.Away == *m.Scores.Away {
			breakdown[CategoryScore] = PointsExactScore
		}
	}

	points := 0
	for _, v := range breakdown {
		points += v
	}
	return Scoring{Points: points, Breakdown: breakdown}
}

// Picks builds evaluable picks from structured outcomes and legacy events.
// groups is keyed by outcome group id.
func Picks(p prediction.Prediction, groups map[string]prediction.OutcomeGroup) []Pick {
	picks := make([]Pick, 0, len(p.Outcomes)+len(p.Events))
	for _, outcome := range p.Outcomes {
		pick := Pick{Label: outcome.Label(), Coefficient: outcome.Coefficient, Line: outcome.Value}
		if group, ok := groups[outcome.GroupID]; ok {
			pick.Rule, pick.Resolved = group.Rule(outcome.OutcomeName)
		}
		picks = append(picks, pick)
	}
	for _, event := range p.Events {
		rule, ok := ParseLegacyEvent(event.Event)
		picks = append(picks, Pick{
			Label:       event.Event,
			Coefficient: event.Coefficient,
			Rule:        rule,
			Resolved:    ok,
		})
	}
	return picks
}
