// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wbs

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedLine reports a line with fewer than five fields.
	ErrMalformedLine = errors.New("malformed line")

	// ErrMissingGridDelimiter reports a raw-mode shape without "#0".
	ErrMissingGridDelimiter = errors.New("missing grid delimiter")

	// ErrUnrecognizedShapeCode marks a pattern-mode shape with no triad.
	// It is never returned as a failure; see types.ShapeUnrecognizedCode.
	ErrUnrecognizedShapeCode = errors.New("unrecognized shape code")

	// ErrUnrecognizedPlacement marks a pattern-mode shape whose placement
	// does not match the coordinate pattern. Non-fatal.
	ErrUnrecognizedPlacement = errors.New("unrecognized placement pattern")
)

// LineError describes a line that could not be decoded.
type LineError struct {
	// Line is the 1-based line number, or 0 when decoding a single line.
	Line int
	// Text is the line content.
	Text string
	// Fields is the number of $-separated fields found.
	Fields int
	Err    error
}

func (e *LineError) Error() string {
	if errors.Is(e.Err, ErrMalformedLine) {
		return fmt.Sprintf("line %d: %v: %d fields, want %d", e.Line, e.Err, e.Fields, fieldCount)
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// ShapeError describes a single shape that failed to decode.
type ShapeError struct {
	// Index is the 0-based position of the shape in the shape list.
	Index int
	// Shape is the raw shape text.
	Shape string
	Err   error
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("shape %d %q: %v", e.Index, e.Shape, e.Err)
}

func (e *ShapeError) Unwrap() error { return e.Err }
