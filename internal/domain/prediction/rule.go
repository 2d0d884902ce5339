package prediction

type Operator string

const (
	OpGT      Operator = "gt"
	OpGTE     Operator = "gte"
	OpLT      Operator = "lt"
	OpLTE     Operator = "lte"
	OpEQ      Operator = "eq"
	OpNEQ     Operator = "neq"
	OpBetween Operator = "between"
	OpIn      Operator = "in"
	OpEven    Operator = "even"
	OpOdd     Operator = "odd"
	OpExists  Operator = "exists"
)

type Scope string

const (
	ScopeBoth       Scope = "both"
	ScopeHome       Scope = "home"
	ScopeAway       Scope = "away"
	ScopeDifference Scope = "difference"
)

type Aggregation string

const (
	AggAuto       Aggregation = "auto"
	AggSum        Aggregation = "sum"
	AggDifference Aggregation = "difference"
	AggMin        Aggregation = "min"
	AggMax        Aggregation = "max"
	AggParity     Aggregation = "parity"
	AggDirect     Aggregation = "direct"
)

type Logic string

const (
	LogicAND Logic = "AND"
	LogicOR  Logic = "OR"
)

// Period windows for event filters.
const (
	PeriodAny        = "any"
	PeriodFirstHalf  = "1h"
	PeriodSecondHalf = "2h"
)

// TeamAny matches events from either side.
const TeamAny = "any"

// Event types with special handling. EventScored matches every event that
// adds a goal and reads the team filter as the side credited with it, so own
// goals count for the opponent.
const (
	EventAny    = "any"
	EventScored = "scored"
)

// Statistic keys with special handling. Any other key is looked up in
// the match statistics.
const (
	StatGoals  = "goals"
	StatResult = "result"
)

type Range struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

type SetItem struct {
	Value float64 `json:"value"`
}

type EventFilter struct {
	Type   string `json:"type"`
	Team   string `json:"team"`
	Period string `json:"period"`
}

// Rule is one outcome definition inside an OutcomeGroup. Conditions are
// evaluated recursively and combined with the primary rule by ConditionLogic.
type Rule struct {
	Name               string       `json:"name"`
	Stat               string       `json:"stat"`
	ComparisonOperator Operator     `json:"comparisonOperator"`
	Scope              Scope        `json:"scope"`
	Aggregation        Aggregation  `json:"aggregation"`
	Values             []float64    `json:"values"`
	OutcomeValue       *float64     `json:"outcomeValue"`
	Range              *Range       `json:"range"`
	Set                []SetItem    `json:"set"`
	EventFilter        *EventFilter `json:"eventFilter"`
	Conditions         []Rule       `json:"conditions"`
	ConditionLogic     Logic        `json:"conditionLogic"`
}
