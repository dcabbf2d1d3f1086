// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wbs

import (
	"regexp"
	"strings"

	"github.com/pdiddy/bliss-wbs/pkg/types"
)

// The pattern grammar for one shape is:
//
//	shape     = noise triad placement
//	triad     = letter "#" digits "#" digits
//	placement = "#0#" x "#" y "#" digits "#" digits ["#"] [char] rest
//
// Terminators are removed from the placement before matching, wherever they
// occur and in the order listed in terminators.
var (
	triadPattern     = regexp.MustCompile(`[A-Z]#[0-9]+#[0-9]+`)
	placementPattern = regexp.MustCompile(`^#0#([0-9]+)#([0-9]+)#[0-9]+#[0-9]+#?(.?)`)

	terminators = []string{GridEnd, AltGridEnd, "*", ShapeEnd, UTF8ShapeEnd}
)

// splitShapes splits the shape-list field, left to right.
func splitShapes(field string) []string {
	return strings.Split(field, ShapeSeparator)
}

// normalizeCode turns a '#'-separated triad into its '-'-separated form.
func normalizeCode(triad string) string {
	return strings.ReplaceAll(triad, "#", "-")
}

// decodeShape decodes one shape under the given mode. Only raw mode
// returns an error.
func decodeShape(mode types.ShapeMode, text string) (types.Shape, error) {
	if mode == types.ShapeRaw {
		return decodeRawShape(text)
	}
	return decodePatternShape(text), nil
}

// decodePatternShape finds the triad, then reads the coordinates from what
// follows it. Anything before the triad is discarded.
func decodePatternShape(text string) types.Shape {
	shape := types.Shape{Mode: types.ShapePattern}

	loc := triadPattern.FindStringIndex(text)
	if loc == nil {
		shape.Status = types.ShapeUnrecognizedCode
		return shape
	}
	shape.Code = normalizeCode(text[loc[0]:loc[1]])

	x, y, letter, ok := parsePlacement(text[loc[1]:])
	if !ok {
		shape.Status = types.ShapeUnrecognizedPlacement
		return shape
	}
	shape.X, shape.Y, shape.Letter = x, y, letter
	shape.Status = types.ShapeParsed
	return shape
}

// stripTerminators removes every terminator token from placement.
func stripTerminators(placement string) string {
	for _, t := range terminators {
		placement = strings.ReplaceAll(placement, t, "")
	}
	return placement
}

// parsePlacement matches the cleaned placement against the coordinate
// pattern. The letter may be empty even when ok is true.
func parsePlacement(placement string) (x, y, letter string, ok bool) {
	m := placementPattern.FindStringSubmatch(stripTerminators(placement))
	if m == nil {
		return "", "", "", false
	}
	return m[1], m[2], m[3], true
}

// decodeRawShape cuts the shape once at the grid delimiter.
func decodeRawShape(text string) (types.Shape, error) {
	code, grid, found := strings.Cut(text, GridDelimiter)
	if !found {
		return types.Shape{}, ErrMissingGridDelimiter
	}
	return types.Shape{
		Code:   normalizeCode(code),
		Grid:   grid,
		Mode:   types.ShapeRaw,
		Status: types.ShapeParsed,
	}, nil
}
