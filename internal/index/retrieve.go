// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/bliss-wbs/pkg/types"
)

// QueryOptions holds parameters for index queries.
type QueryOptions struct {
	// Query is the full-text search string matched against glosses.
	Query string

	Identifier string
	Country    string
	PosColour  string

	// ShapeCode keeps glyphs containing a shape with this code (e.g. "W-5-2").
	ShapeCode string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Identifier == "" && q.Country == "" &&
		q.PosColour == "" && q.ShapeCode == ""
}

// QueryResult is a stored Record with the file it came from.
type QueryResult struct {
	types.Record `yaml:",inline"`
	Source       string `json:"source" yaml:"source"`

	id int64
}

// Retrieve queries the index with optional full-text search and
// filters. Results come back in source file order.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)

	if opts.Query != "" {
		qb.WriteString(
			`SELECT g.id, g.source, g.identifier, g.gloss, g.pos_colour, g.country
			FROM glyphs_fts
			JOIN glyphs g ON g.id = glyphs_fts.docid
			WHERE glyphs_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT g.id, g.source, g.identifier, g.gloss, g.pos_colour, g.country
			FROM glyphs g
			WHERE 1=1`)
	}

	if opts.Identifier != "" {
		qb.WriteString(` AND g.identifier = ?`)
		args = append(args, opts.Identifier)
	}
	if opts.Country != "" {
		qb.WriteString(` AND g.country = ?`)
		args = append(args, opts.Country)
	}
	if opts.PosColour != "" {
		qb.WriteString(` AND g.pos_colour = ?`)
		args = append(args, opts.PosColour)
	}
	if opts.ShapeCode != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM shapes s WHERE s.glyph_id = g.id AND s.code = ?)`)
		args = append(args, opts.ShapeCode)
	}

	qb.WriteString(` ORDER BY g.source, g.seq LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying glyphs: %w", err)
	}

	var results []QueryResult
	for rows.Next() {
		var qr QueryResult
		if err := rows.Scan(&qr.id, &qr.Source, &qr.Identifier, &qr.Gloss, &qr.PosColour, &qr.Country); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, qr)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range results {
		shapes, err := s.loadShapes(ctx, results[i].id)
		if err != nil {
			return nil, err
		}
		results[i].Shapes = shapes
	}

	return results, nil
}

// loadShapes returns a glyph's shapes in drawing order.
func (s *Store) loadShapes(ctx context.Context, glyphID int64) ([]types.Shape, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT code, x, y, letter, grid, mode, status FROM shapes
		 WHERE glyph_id = ? ORDER BY seq`, glyphID)
	if err != nil {
		return nil, fmt.Errorf("querying shapes: %w", err)
	}
	defer rows.Close()

	shapes := []types.Shape{}
	for rows.Next() {
		var (
			sh           types.Shape
			mode, status string
		)
		if err := rows.Scan(&sh.Code, &sh.X, &sh.Y, &sh.Letter, &sh.Grid, &mode, &status); err != nil {
			return nil, fmt.Errorf("scanning shape: %w", err)
		}
		sh.Mode = types.ShapeMode(mode)
		sh.Status = types.ShapeStatus(status)
		shapes = append(shapes, sh)
	}
	return shapes, rows.Err()
}
