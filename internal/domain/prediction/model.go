package prediction

import (
	"strings"
	"time"
)

const PostTypePrediction = "prediction"

// Post is the generic content item a prediction is embedded in.
type Post struct {
	ID         string      `json:"id"`
	AuthorID   string      `json:"author"`
	PostType   string      `json:"postType"`
	Title      string      `json:"title"`
	Prediction *Prediction `json:"prediction"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

func (p Post) IsPrediction() bool {
	return p.PostType == PostTypePrediction && p.Prediction != nil
}

// ScoreGuess is the legacy exact-score field.
type ScoreGuess struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Prediction targets exactly one match by matchId or fixtureId.
// It carries either legacy events or structured outcomes.
type Prediction struct {
	MatchID   *int64        `json:"matchId"`
	FixtureID *int64        `json:"fixtureId"`
	Events    []LegacyEvent `json:"events"`
	Outcomes  []Outcome     `json:"outcomes"`
	Outcome   string        `json:"outcome"`
	Score     *ScoreGuess   `json:"score"`
}

// HasTarget reports whether the prediction names a match.
func (p Prediction) HasTarget() bool {
	return p.MatchID != nil || p.FixtureID != nil
}

// LegacyEvent is a free-form pick such as "Over 2.5" at a coefficient.
type LegacyEvent struct {
	Event       string  `json:"event"`
	Coefficient float64 `json:"coefficient"`
}

// Outcome is a structured pick referencing a market and an outcome group rule.
type Outcome struct {
	MarketID    string   `json:"market"`
	GroupID     string   `json:"outcomeGroup"`
	OutcomeName string   `json:"outcomeName"`
	Name        string   `json:"name"`
	Value       *float64 `json:"value"`
	Coefficient float64  `json:"coefficient"`
}

// Label is the display name used in settlement details.
func (o Outcome) Label() string {
	if name := strings.TrimSpace(o.Name); name != "" {
		return name
	}
	return strings.TrimSpace(o.OutcomeName)
}

// OutcomeGroup is a named reusable set of rule definitions.
type OutcomeGroup struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Outcomes []Rule `json:"outcomes"`
}

// Rule finds an outcome definition by name, falling back to the only entry.
func (g OutcomeGroup) Rule(name string) (Rule, bool) {
	name = strings.TrimSpace(name)
	for _, rule := range g.Outcomes {
		if strings.EqualFold(strings.TrimSpace(rule.Name), name) {
			return rule, true
		}
	}
	if len(g.Outcomes) == 1 {
		return g.Outcomes[0], true
	}
	return Rule{}, false
}
