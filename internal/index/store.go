// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index persists decoded glyph records in SQLite and answers
// gloss and shape queries over them.
package index

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/bliss-wbs/internal/wbs"
	"github.com/pdiddy/bliss-wbs/pkg/types"
)

const (
	dbFile            = "glyphs.db"
	defaultMaxResults = 20
)

// Decoder decodes a WBS stream under a known policy. *wbs.Decoder
// implements it.
type Decoder interface {
	DecodeReader(ctx context.Context, r io.Reader) (wbs.Batch, error)
	Policy() wbs.Policy
}

// Store manages the glyph index database.
type Store struct {
	db         *sql.DB
	indexDir   string
	maxResults int
}

// NewStore opens or creates the index database at cfg.IndexDir/glyphs.db
// and creates the schema if it does not exist.
func NewStore(cfg types.IndexConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.IndexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(cfg.IndexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{
		db:         db,
		indexDir:   cfg.IndexDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sources (
			path TEXT PRIMARY KEY,
			file_mod_time TEXT,
			policy TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS glyphs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			seq INTEGER NOT NULL,
			identifier TEXT NOT NULL,
			gloss TEXT,
			pos_colour TEXT,
			country TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_glyphs_source ON glyphs(source, seq)`,
		`CREATE INDEX IF NOT EXISTS idx_glyphs_identifier ON glyphs(identifier)`,
		`CREATE TABLE IF NOT EXISTS shapes (
			glyph_id INTEGER NOT NULL REFERENCES glyphs(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			code TEXT,
			x TEXT,
			y TEXT,
			letter TEXT,
			grid TEXT,
			mode TEXT,
			status TEXT,
			PRIMARY KEY (glyph_id, seq)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_shapes_code ON shapes(code)`,

		// Full-text index over glosses, kept in step by triggers.
		`CREATE VIRTUAL TABLE IF NOT EXISTS glyphs_fts USING fts4(gloss)`,
		`CREATE TRIGGER IF NOT EXISTS glyphs_ai AFTER INSERT ON glyphs BEGIN
			INSERT INTO glyphs_fts(docid, gloss) VALUES (new.id, new.gloss);
		END`,
		`CREATE TRIGGER IF NOT EXISTS glyphs_ad AFTER DELETE ON glyphs BEGIN
			DELETE FROM glyphs_fts WHERE docid = old.id;
		END`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// IngestSummary holds counts from an indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of files processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest decodes each .wbs file and stores its records. Files whose
// modification time and decode policy match the last run are skipped;
// changed files have their glyphs replaced. On success it writes
// export.yaml.
func (s *Store) Ingest(ctx context.Context, dec Decoder, paths []string, w io.Writer) (IngestSummary, error) {
	var summary IngestSummary
	policy := dec.Policy().Name

	for _, path := range paths {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		name := filepath.Base(path)

		info, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime, storedPolicy string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time, policy FROM sources WHERE path = ?`, path,
		).Scan(&storedModTime, &storedPolicy)

		if err == nil && storedModTime == modTime && storedPolicy == policy {
			fmt.Fprintf(w, "skipped %s\n", name)
			summary.Skipped++
			continue
		}

		isUpdate := err == nil

		batch, err := decodeFile(ctx, dec, path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}
		for _, f := range batch.Failures {
			fmt.Fprintf(w, "  %s: %v\n", name, f)
		}

		if err := s.ingestFile(ctx, path, batch.Records, modTime, policy); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d glyphs)\n", name, len(batch.Records))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d glyphs)\n", name, len(batch.Records))
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	if summary.Indexed > 0 || summary.Updated > 0 {
		if err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
			fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
		}
	}

	return summary, nil
}

func decodeFile(ctx context.Context, dec Decoder, path string) (wbs.Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return wbs.Batch{}, err
	}
	defer f.Close()
	return dec.DecodeReader(ctx, f)
}

func (s *Store) ingestFile(ctx context.Context, path string, records []types.Record, modTime, policy string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Shapes and FTS rows follow via cascade and trigger.
	if _, err := tx.ExecContext(ctx, `DELETE FROM glyphs WHERE source = ?`, path); err != nil {
		return fmt.Errorf("deleting old glyphs: %w", err)
	}

	glyphStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO glyphs (source, seq, identifier, gloss, pos_colour, country)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing glyph insert: %w", err)
	}
	defer glyphStmt.Close()

	shapeStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO shapes (glyph_id, seq, code, x, y, letter, grid, mode, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing shape insert: %w", err)
	}
	defer shapeStmt.Close()

	for i, r := range records {
		res, err := glyphStmt.ExecContext(ctx, path, i, r.Identifier, r.Gloss, r.PosColour, r.Country)
		if err != nil {
			return fmt.Errorf("inserting glyph %s: %w", r.Identifier, err)
		}
		glyphID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading glyph id: %w", err)
		}
		for j, sh := range r.Shapes {
			_, err := shapeStmt.ExecContext(ctx,
				glyphID, j, sh.Code, sh.X, sh.Y, sh.Letter, sh.Grid,
				string(sh.Mode), string(sh.Status),
			)
			if err != nil {
				return fmt.Errorf("inserting shape %d of glyph %s: %w", j, r.Identifier, err)
			}
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sources (path, file_mod_time, policy) VALUES (?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET file_mod_time=excluded.file_mod_time, policy=excluded.policy`,
		path, modTime, policy,
	)
	if err != nil {
		return fmt.Errorf("updating source status: %w", err)
	}

	return tx.Commit()
}
