package usecase

import (
	"errors"
	"fmt"

	"github.com/riskibarqy/football-insights/external/sportsdata"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrMatchNotFinished      = errors.New("match not finished")
)

// RecordError is a failure scoped to one match. Batches count it and move on.
type RecordError struct {
	MatchID int64
	Stage   string
	Err     error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("match_id=%d stage=%s: %v", e.MatchID, e.Stage, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// Kind labels the cause for logs and progress counters.
func (e *RecordError) Kind() string {
	switch {
	case sportsdata.IsNetworkError(e.Err):
		return "network"
	case sportsdata.IsParseError(e.Err):
		return "parse"
	case errors.Is(e.Err, ErrInvalidInput):
		return "invalid"
	default:
		return "internal"
	}
}

func newRecordError(matchID int64, stage string, err error) *RecordError {
	return &RecordError{MatchID: matchID, Stage: stage, Err: err}
}

// providerError prefixes err with op. Provider transport failures also match
// ErrDependencyUnavailable.
func providerError(op string, err error) error {
	if sportsdata.IsNetworkError(err) {
		return fmt.Errorf("%w: %s: %w", ErrDependencyUnavailable, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
