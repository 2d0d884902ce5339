package settlement

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/riskibarqy/football-insights/internal/domain/match"
	"github.com/riskibarqy/football-insights/internal/domain/matchstats"
	"github.com/riskibarqy/football-insights/internal/domain/prediction"
)

const epsilon = 1e-9

// firstHalfEnd is the last minute counted in the first half.
const firstHalfEnd = 45

// Input is the finished match and its statistics. Stats may be nil.
type Input struct {
	Match match.Match
	Stats *matchstats.MatchStats
}

// Evaluate resolves one rule against a match. line is the predicted
// outcome's value and serves as the threshold when the rule has none.
// Missing data always yields an undecided verdict.
func Evaluate(rule prediction.Rule, line *float64, in Input) Verdict {
	if in.Match.Status != match.StatusFinished {
		return Undecided("match not finished")
	}
	return evaluateRule(rule, line, in)
}

func evaluateRule(rule prediction.Rule, line *float64, in Input) Verdict {
	hasPrimary := strings.TrimSpace(string(rule.ComparisonOperator)) != ""
	if len(rule.Conditions) == 0 {
		if !hasPrimary {
			return Undecided("rule has no comparison operator")
		}
		return evaluatePrimary(rule, line, in)
	}

	verdicts := make([]Verdict, 0, len(rule.Conditions)+1)
	if hasPrimary {
		verdicts = append(verdicts, evaluatePrimary(rule, line, in))
	}
	for _, sub := range rule.Conditions {
		verdicts = append(verdicts, evaluateRule(sub, line, in))
	}
	return combine(rule.ConditionLogic, verdicts)
}

// combine joins verdicts by AND/OR. Any undecided input makes the whole
// verdict undecided so a loss is never inferred from missing data.
func combine(logic prediction.Logic, verdicts []Verdict) Verdict {
	reasons := make([]string, 0, len(verdicts))
	for _, v := range verdicts {
		reasons = append(reasons, v.Reason)
	}
	for _, v := range verdicts {
		if v.Won == nil {
			return Undecided("undecided condition: " + v.Reason)
		}
	}

	joined := strings.Join(reasons, "; ")
	if strings.EqualFold(strings.TrimSpace(string(logic)), string(prediction.LogicOR)) {
		for _, v := range verdicts {
			if *v.Won {
				return Won("OR: " + joined)
			}
		}
		return Lost("OR: " + joined)
	}

	for _, v := range verdicts {
		if !*v.Won {
			return Lost("AND: " + joined)
		}
	}
	return Won("AND: " + joined)
}

func evaluatePrimary(rule prediction.Rule, line *float64, in Input) Verdict {
	op := prediction.Operator(strings.ToLower(strings.TrimSpace(string(rule.ComparisonOperator))))
	if op == prediction.OpExists {
		return evaluateExists(rule.EventFilter, in.Stats)
	}

	actual, label, reason := actualValue(rule, in)
	if actual == nil {
		return Undecided(reason)
	}
	return compare(op, rule, line, *actual, label)
}

// actualValue collapses the rule's statistic into one number following
// scope and aggregation. A nil value comes with the reason it is missing.
func actualValue(rule prediction.Rule, in Input) (*float64, string, string) {
	stat := strings.ToLower(strings.TrimSpace(rule.Stat))
	if stat == "" {
		stat = prediction.StatGoals
	}

	if stat == prediction.StatResult {
		code := in.Match.Result()
		if code == match.ResultUnknown {
			return nil, stat, "final score missing"
		}
		v := float64(code)
		return &v, stat, ""
	}

	pair, ok := statPair(stat, in)
	if !ok {
		return nil, stat, fmt.Sprintf("statistic %s unavailable", stat)
	}

	scope := prediction.Scope(strings.ToLower(strings.TrimSpace(string(rule.Scope))))
	if scope == "" {
		scope = prediction.ScopeBoth
	}
	agg := resolveAggregation(scope, rule.Aggregation)

	var home, away float64
	needHome := !(agg == prediction.AggDirect && scope == prediction.ScopeAway)
	needAway := !(agg == prediction.AggDirect && scope == prediction.ScopeHome)
	if needHome {
		if pair.Home == nil {
			return nil, stat, fmt.Sprintf("statistic %s missing for home", stat)
		}
		home = *pair.Home
	}
	if needAway {
		if pair.Away == nil {
			return nil, stat, fmt.Sprintf("statistic %s missing for away", stat)
		}
		away = *pair.Away
	}

	var v float64
	label := stat + " " + string(agg)
	switch agg {
	case prediction.AggSum:
		v = home + away
	case prediction.AggDifference:
		v = home - away
	case prediction.AggMin:
		v = math.Min(home, away)
	case prediction.AggMax:
		v = math.Max(home, away)
	case prediction.AggParity:
		v = math.Mod(math.Abs(math.Round(scoped(scope, home, away))), 2)
	default:
		v = scoped(scope, home, away)
		label = stat + " " + string(scope)
	}
	return &v, label, ""
}

func resolveAggregation(scope prediction.Scope, agg prediction.Aggregation) prediction.Aggregation {
	agg = prediction.Aggregation(strings.ToLower(strings.TrimSpace(string(agg))))
	if agg != "" && agg != prediction.AggAuto {
		return agg
	}
	switch scope {
	case prediction.ScopeHome, prediction.ScopeAway:
		return prediction.AggDirect
	case prediction.ScopeDifference:
		return prediction.AggDifference
	default:
		return prediction.AggSum
	}
}

func scoped(scope prediction.Scope, home, away float64) float64 {
	switch scope {
	case prediction.ScopeHome:
		return home
	case prediction.ScopeAway:
		return away
	case prediction.ScopeDifference:
		return home - away
	default:
		return home + away
	}
}

// statPair resolves goal keys from the match scores and everything else
// from the stored statistics.
func statPair(stat string, in Input) (matchstats.Pair, bool) {
	s := in.Match.Scores
	switch stat {
	case prediction.StatGoals, "score":
		return intPair(s.Home, s.Away), true
	case "goals_1h", "goals_ht", "halftime_goals":
		return intPair(s.HalfTimeHome, s.HalfTimeAway), true
	case "goals_2h":
		full, half := intPair(s.Home, s.Away), intPair(s.HalfTimeHome, s.HalfTimeAway)
		if !full.Present() || !half.Present() {
			return matchstats.Pair{}, true
		}
		home := *full.Home - *half.Home
		away := *full.Away - *half.Away
		return matchstats.Pair{Home: &home, Away: &away}, true
	}
	if in.Stats == nil {
		return matchstats.Pair{}, false
	}
	return in.Stats.Stats.Pair(stat)
}

func intPair(home, away *int) matchstats.Pair {
	var p matchstats.Pair
	if home != nil {
		v := float64(*home)
		p.Home = &v
	}
	if away != nil {
		v := float64(*away)
		p.Away = &v
	}
	return p
}

func threshold(rule prediction.Rule, line *float64) (float64, bool) {
	switch {
	case rule.OutcomeValue != nil:
		return *rule.OutcomeValue, true
	case len(rule.Values) > 0:
		return rule.Values[0], true
	case line != nil:
		return *line, true
	default:
		return 0, false
	}
}

func compare(op prediction.Operator, rule prediction.Rule, line *float64, actual float64, label string) Verdict {
	desc := label + "=" + formatNumber(actual)
	switch op {
	case prediction.OpGT, prediction.OpGTE, prediction.OpLT, prediction.OpLTE, prediction.OpEQ, prediction.OpNEQ:
		want, ok := threshold(rule, line)
		if !ok {
			return Undecided("rule has no threshold for " + string(op))
		}
		reason := fmt.Sprintf("%s %s %s", desc, op, formatNumber(want))
		return verdict(compareNumbers(op, actual, want), reason)
	case prediction.OpBetween:
		if rule.Range == nil {
			return Undecided("between rule has no range")
		}
		reason := fmt.Sprintf("%s between [%s, %s]", desc, formatNumber(rule.Range.Lower), formatNumber(rule.Range.Upper))
		return verdict(actual >= rule.Range.Lower-epsilon && actual <= rule.Range.Upper+epsilon, reason)
	case prediction.OpIn:
		if len(rule.Set) == 0 {
			return Undecided("in rule has an empty set")
		}
		values := make([]string, 0, len(rule.Set))
		hit := false
		for _, item := range rule.Set {
			values = append(values, formatNumber(item.Value))
			if math.Abs(item.Value-actual) < epsilon {
				hit = true
			}
		}
		return verdict(hit, fmt.Sprintf("%s in {%s}", desc, strings.Join(values, ",")))
	case prediction.OpEven:
		return verdict(parity(actual) == 0, desc+" even")
	case prediction.OpOdd:
		return verdict(parity(actual) != 0, desc+" odd")
	default:
		return Undecided(fmt.Sprintf("unsupported operator %q", op))
	}
}

func compareNumbers(op prediction.Operator, actual, want float64) bool {
	switch op {
	case prediction.OpGT:
		return actual > want+epsilon
	case prediction.OpGTE:
		return actual >= want-epsilon
	case prediction.OpLT:
		return actual < want-epsilon
	case prediction.OpLTE:
		return actual <= want+epsilon
	case prediction.OpEQ:
		return math.Abs(actual-want) < epsilon
	default:
		return math.Abs(actual-want) >= epsilon
	}
}

func parity(v float64) float64 {
	return math.Mod(math.Abs(math.Round(v)), 2)
}

// evaluateExists scans the event log. A nil log means the provider has no
// events and the verdict stays undecided.
func evaluateExists(filter *prediction.EventFilter, stats *matchstats.MatchStats) Verdict {
	if stats == nil || stats.Events == nil {
		return Undecided("event log unavailable")
	}

	var f prediction.EventFilter
	if filter != nil {
		f = *filter
	}
	eventType := strings.ToLower(strings.TrimSpace(f.Type))
	team := strings.ToLower(strings.TrimSpace(f.Team))
	period := strings.ToLower(strings.TrimSpace(f.Period))
	desc := fmt.Sprintf("event type=%s team=%s period=%s", orAny(eventType), orAny(team), orAny(period))

	unknownMinute := false
	for _, event := range stats.Events {
		side := event.Team
		if eventType == prediction.EventScored {
			side = event.ScoresFor()
			if side == matchstats.SideUnknown {
				continue
			}
		} else if eventType != "" && eventType != prediction.EventAny && string(event.Type) != eventType {
			continue
		}
		if team != "" && team != prediction.TeamAny && string(side) != team {
			continue
		}
		if period != "" && period != prediction.PeriodAny {
			if event.Minute == nil {
				unknownMinute = true
				continue
			}
			if !inPeriod(period, *event.Minute) {
				continue
			}
		}
		return Won(desc + " found")
	}
	if unknownMinute {
		return Undecided(desc + " has events without minute")
	}
	return Lost(desc + " not found")
}

func inPeriod(period string, minute int) bool {
	switch period {
	case prediction.PeriodFirstHalf:
		return minute <= firstHalfEnd
	case prediction.PeriodSecondHalf:
		return minute > firstHalfEnd
	default:
		return true
	}
}

func orAny(v string) string {
	if v == "" {
		return prediction.EventAny
	}
	return v
}

func verdict(ok bool, reason string) Verdict {
	if ok {
		return Won(reason)
	}
	return Lost(reason)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
