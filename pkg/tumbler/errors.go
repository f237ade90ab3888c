package tumbler

import (
	"errors"
	"fmt"

	"github.com/ukaji3/tumbler-go/pkg/tumbler/parser"
)

// ErrNoData indicates the source held no rows once blank lines were dropped.
var ErrNoData = parser.ErrNoData

// ErrLoadInFlight indicates another source is still loading.
var ErrLoadInFlight = errors.New("another source is loading")

// ErrNoSource indicates nothing has been loaded yet.
var ErrNoSource = errors.New("no source loaded")

// ErrLocalSource indicates a local file source where only remote ones are allowed.
var ErrLocalSource = errors.New("local sources are not allowed")

// ErrUnsupportedSnapshot indicates a snapshot of an unknown version.
var ErrUnsupportedSnapshot = errors.New("unsupported snapshot version")

// NetworkError represents a failed or unsuccessful fetch.
type NetworkError struct {
	Source     string
	StatusCode int // 0 for transport failures
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ParseError represents source content that could not be turned into columns.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// EmptyPoolError represents a column without words under the reject policy.
type EmptyPoolError struct {
	Column int
	Label  string
}

func (e *EmptyPoolError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("column %d (%s) has no words", e.Column+1, e.Label)
	}
	return fmt.Sprintf("column %d has no words", e.Column+1)
}
