package sportsdata

import (
	"fmt"

	crerr "github.com/cockroachdb/errors"
)

var (
	// ErrNetwork marks transport failures, non-2xx responses and
	// unsuccessful envelopes.
	ErrNetwork = crerr.New("sports data network error")
	// ErrParse marks malformed provider JSON.
	ErrParse = crerr.New("sports data parse error")

	errTransient = crerr.New("sports data transient failure")
)

// NetworkError describes a failed request. URL is always masked.
type NetworkError struct {
	URL        string
	StatusCode int
	Message    string
	Err        error
}

func (e *NetworkError) Error() string {
	msg := "request failed"
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("provider status=%d", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return fmt.Sprintf("%s url=%s", msg, e.URL)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError describes a response body that is not the expected JSON.
type ParseError struct {
	URL  string
	Body string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("decode provider payload url=%s body=%s: %v", e.URL, e.Body, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func newNetworkError(maskedURL string, status int, message string, cause error, transient bool) error {
	err := crerr.Mark(&NetworkError{URL: maskedURL, StatusCode: status, Message: message, Err: cause}, ErrNetwork)
	if transient {
		err = crerr.Mark(err, errTransient)
	}
	return err
}

func newParseError(maskedURL string, body []byte, cause error) error {
	return crerr.Mark(&ParseError{URL: maskedURL, Body: abbreviateBody(body), Err: cause}, ErrParse)
}

// IsNetworkError reports whether err is a NetworkError anywhere in its chain.
func IsNetworkError(err error) bool {
	return crerr.Is(err, ErrNetwork)
}

// IsParseError reports whether err is a ParseError anywhere in its chain.
func IsParseError(err error) bool {
	return crerr.Is(err, ErrParse)
}

func isCircuitFailure(err error) bool {
	return err != nil && crerr.Is(err, errTransient)
}
