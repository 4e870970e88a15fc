package ratio

import (
	"errors"
	"fmt"
)

// Kind classifies a failed query.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindDataUnavailable
	KindRateLookupFailed
)

var (
	ErrNotFound         = errors.New("ticker not found")
	ErrDataUnavailable  = errors.New("data unavailable")
	ErrRateLookupFailed = errors.New("exchange rate lookup failed")
)

func (k Kind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindDataUnavailable:
		return ErrDataUnavailable
	case KindRateLookupFailed:
		return ErrRateLookupFailed
	default:
		return nil
	}
}

func (k Kind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return "unknown"
}

// QueryError reports why ratios could not be computed for a ticker.
// It is terminal: no partial ratios accompany it.
type QueryError struct {
	Kind   Kind
	Ticker string
	Err    error
}

func (e *QueryError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Ticker, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Ticker, e.Kind, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind, so errors.Is(err, ErrNotFound) works.
func (e *QueryError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func queryErr(kind Kind, ticker string, err error) *QueryError {
	return &QueryError{Kind: kind, Ticker: ticker, Err: err}
}
