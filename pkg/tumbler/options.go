// Package tumbler loads word columns from a spreadsheet export and draws
// reproducible seeded combinations from them.
package tumbler

import (
	"time"

	"github.com/ukaji3/tumbler-go/pkg/tumbler/generator"
	"github.com/ukaji3/tumbler-go/pkg/tumbler/parser"
)

// DefaultSourceURL is the published sheet used when no source is given.
const DefaultSourceURL = "https://docs.google.com/spreadsheets/d/e/2PACX-1vS5jAMbi-ggWEDgRH3xURkCuVi2QQ_HiNPHAsq80EMMvqR0imJuaZTMSW3CdiXJtsXzAM2HQ_Hiizao/pub?gid=0&single=true&output=csv"

// HeaderMode controls how the first row of a source is interpreted.
type HeaderMode string

const (
	// HeaderAuto treats a single-cell first row as data and every other
	// first row as the header.
	HeaderAuto HeaderMode = "auto"
	// HeaderAlways always consumes the first row as the header.
	HeaderAlways HeaderMode = "always"
)

// EmptyColumns controls what happens when a column has no words.
type EmptyColumns string

const (
	// EmptyColumnsAllow keeps empty columns; they render without a word.
	EmptyColumnsAllow EmptyColumns = "allow"
	// EmptyColumnsReject fails the load with an EmptyPoolError.
	EmptyColumnsReject EmptyColumns = "reject"
)

// Options configures session behavior.
type Options struct {
	// HeaderMode selects header detection (auto, always).
	HeaderMode HeaderMode
	// EmptyColumns selects the empty column policy (allow, reject).
	EmptyColumns EmptyColumns
	// DefaultSource is loaded when a locator names no source.
	// If empty, DefaultSourceURL is used.
	DefaultSource string
	// RevealInterval is the gap between column reveals.
	// If nil, defaults to generator.DefaultRevealInterval.
	RevealInterval *time.Duration
}

// DefaultOptions returns default session options.
func DefaultOptions() Options {
	return Options{
		HeaderMode:   HeaderAuto,
		EmptyColumns: EmptyColumnsAllow,
	}
}

// TableParams returns the parser parameters for the header mode.
func (o Options) TableParams() parser.TableParams {
	params := parser.DefaultTableParams()
	params.DetectHeaderless = o.HeaderMode != HeaderAlways
	return params
}

// ShouldRejectEmptyColumns returns whether empty columns fail a load.
func (o Options) ShouldRejectEmptyColumns() bool {
	return o.EmptyColumns == EmptyColumnsReject
}

// Source returns the default source.
func (o Options) Source() string {
	if o.DefaultSource != "" {
		return o.DefaultSource
	}
	return DefaultSourceURL
}

// Interval returns the reveal interval.
func (o Options) Interval() time.Duration {
	if o.RevealInterval != nil {
		return *o.RevealInterval
	}
	return generator.DefaultRevealInterval
}
