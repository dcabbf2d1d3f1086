// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
)

// Record is one decoded WBS line: a glyph definition. Fields are assigned
// positionally from the five $-separated fields of the line.
type Record struct {
	// Identifier is the opaque glyph key (first field). Duplicates are kept.
	Identifier string `json:"identifier" yaml:"identifier"`

	// Gloss is the human-readable meaning label. May be empty.
	Gloss string `json:"gloss" yaml:"gloss"`

	// PosColour is the combined part-of-speech and colour marker.
	PosColour string `json:"pos_colour" yaml:"pos_colour"`

	// Country is the origin code. May be empty.
	Country string `json:"country" yaml:"country"`

	// Shapes lists the drawing primitives in drawing order.
	Shapes []Shape `json:"shapes" yaml:"shapes"`
}

// UnparsedShapes counts shapes whose code or placement could not be
// recognized.
func (r Record) UnparsedShapes() int {
	n := 0
	for _, s := range r.Shapes {
		if s.Status != ShapeParsed {
			n++
		}
	}
	return n
}

// ShapeMode selects how a shape's placement is represented.
type ShapeMode string

const (
	// ShapePattern extracts x, y and letter from the placement.
	ShapePattern ShapeMode = "pattern"
	// ShapeRaw keeps the placement suffix unparsed in Grid.
	ShapeRaw ShapeMode = "raw"
)

// ShapeStatus records how much of a shape the decoder understood.
type ShapeStatus string

const (
	ShapeParsed                ShapeStatus = "parsed"
	ShapeUnrecognizedCode      ShapeStatus = "unrecognized_code"
	ShapeUnrecognizedPlacement ShapeStatus = "unrecognized_placement"
)

// Shape is one drawing primitive within a glyph. Which placement fields are
// serialized depends on Mode: pattern shapes carry x, y and letter, raw
// shapes carry grid.
type Shape struct {
	// Code is the shape triad with '#' replaced by '-' (e.g. "W-5-2").
	Code string

	X      string
	Y      string
	Letter string

	// Grid is the unparsed placement suffix (raw mode only).
	Grid string

	Mode   ShapeMode
	Status ShapeStatus
}

type patternShape struct {
	Code   string `json:"code" yaml:"code"`
	X      string `json:"x" yaml:"x"`
	Y      string `json:"y" yaml:"y"`
	Letter string `json:"letter" yaml:"letter"`
}

type rawShape struct {
	Code string `json:"code" yaml:"code"`
	Grid string `json:"grid" yaml:"grid"`
}

func (s Shape) wire() any {
	if s.Mode == ShapeRaw {
		return rawShape{Code: s.Code, Grid: s.Grid}
	}
	return patternShape{Code: s.Code, X: s.X, Y: s.Y, Letter: s.Letter}
}

// MarshalJSON writes the keys of the shape's mode in fixed order. Grid and
// letter text is written without HTML escaping.
func (s Shape) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s.wire()); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// MarshalYAML mirrors MarshalJSON.
func (s Shape) MarshalYAML() (any, error) {
	return s.wire(), nil
}

// UnmarshalJSON reads either representation. A "grid" key selects raw mode.
// Status is not part of the wire format and is left empty.
func (s *Shape) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*s = Shape{Code: m["code"]}
	if grid, ok := m["grid"]; ok {
		s.Mode = ShapeRaw
		s.Grid = grid
		return nil
	}
	s.Mode = ShapePattern
	s.X, s.Y, s.Letter = m["x"], m["y"], m["letter"]
	return nil
}

// ConversionStatus indicates the outcome of converting one .wbs file.
type ConversionStatus string

const (
	ConversionNone    ConversionStatus = "none"
	ConversionDone    ConversionStatus = "converted"
	ConversionPartial ConversionStatus = "partial"
	ConversionFailed  ConversionStatus = "failed"
)
