// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package wbs decodes WBS glyph-definition lines into Records.
//
// A WBS line has five $-separated fields: identifier, gloss, pos/colour,
// country and a shape list. The shape list is &-separated; each shape holds
// a triad code such as "W#5#2" followed by a grid placement. How the
// placement is decoded depends on the Policy: the pattern policy extracts
// x, y and letter, the raw policy keeps the placement text as-is.
package wbs

import (
	"fmt"

	"github.com/pdiddy/bliss-wbs/pkg/types"
)

const (
	// FieldSeparator splits a line into its top-level fields.
	FieldSeparator = "$"
	// ShapeSeparator splits the shape-list field into shapes.
	ShapeSeparator = "&"
	// GridDelimiter separates code from grid in raw mode.
	GridDelimiter = "#0"

	// GridEnd and AltGridEnd close a grid specification.
	GridEnd    = "##0#4*"
	AltGridEnd = "##0#6*"
	// ShapeEnd closes the whole shape string. It is the Latin-1 reading of
	// the bytes 25 C2 A3 ("%£" written as UTF-8 by the producing tool).
	ShapeEnd = "%\u00c2\u00a3"
	// UTF8ShapeEnd is the same marker when the input is read as UTF-8.
	UTF8ShapeEnd = "%\u00a3"

	// fieldCount is the number of positional fields in a line.
	fieldCount = 5
)

// Policy selects how shapes and blank lines are handled. Policies are plain
// values; the zero Workers value decodes sequentially.
type Policy struct {
	// Name identifies the policy in config and logs.
	Name string

	// Mode selects pattern extraction or raw grid passthrough.
	Mode types.ShapeMode

	// SkipBlank drops whitespace-only lines from sequences instead of
	// reporting them as malformed.
	SkipBlank bool

	// Workers is the goroutine count for batch decoding.
	Workers int
}

var (
	// PatternPolicy extracts coordinates, degrades gracefully on
	// unrecognized shapes and skips blank lines.
	PatternPolicy = Policy{Name: "pattern", Mode: types.ShapePattern, SkipBlank: true}

	// RawPolicy keeps the grid unparsed, fails a line whose shape lacks the
	// grid delimiter and reports blank lines as malformed.
	RawPolicy = Policy{Name: "raw", Mode: types.ShapeRaw}
)

// PolicyByName returns the named policy. An empty name selects PatternPolicy.
func PolicyByName(name string) (Policy, error) {
	switch name {
	case "", PatternPolicy.Name:
		return PatternPolicy, nil
	case RawPolicy.Name:
		return RawPolicy, nil
	default:
		return Policy{}, fmt.Errorf("unknown decode policy %q: use pattern or raw", name)
	}
}

// PolicyFromConfig builds a Policy from decoder settings.
func PolicyFromConfig(cfg types.DecodeConfig) (Policy, error) {
	p, err := PolicyByName(cfg.Policy)
	if err != nil {
		return Policy{}, err
	}
	if cfg.SkipBlank != nil {
		p.SkipBlank = *cfg.SkipBlank
	}
	if cfg.Workers > 0 {
		p.Workers = cfg.Workers
	}
	return p, nil
}
