// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/bliss-wbs/internal/wbs"
	"github.com/pdiddy/bliss-wbs/pkg/types"
)

const (
	nounsWBS = "100$heart,feeling$NB$SE$H#1#1#0#1#2#3#4&W#5#2#0#12#7#04#0A##0#4*\n" +
		"101$house$NB$SE$C#2#1#0#3#9#12#1B##0#6*\n"
	verbsWBS = "200$to feel$V$CA$W#5#2#0#4#4#0#0\n" +
		"201$to go$V$CA$A#1#1#0#1#1#0#0&B#2#2#0#2#2#0#0&C#3#3#0#3#3#0#0\n" +
		"bad line\n"
)

// --- test helpers ---

func testSetup(t *testing.T) (*Store, string) {
	t.Helper()
	tmpDir := t.TempDir()

	store, err := NewStore(types.IndexConfig{
		IndexDir:   filepath.Join(tmpDir, "index"),
		MaxResults: 20,
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store, tmpDir
}

func writeWBS(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func ingestSamples(t *testing.T, store *Store, tmpDir string) []string {
	t.Helper()
	paths := []string{
		writeWBS(t, tmpDir, "nouns.wbs", nounsWBS),
		writeWBS(t, tmpDir, "verbs.wbs", verbsWBS),
	}
	var buf strings.Builder
	_, err := store.Ingest(context.Background(), wbs.NewDecoder(wbs.PatternPolicy), paths, &buf)
	require.NoError(t, err)
	return paths
}

func countRows(t *testing.T, store *Store, table string) int {
	t.Helper()
	var n int
	require.NoError(t, store.db.QueryRow(`SELECT count(*) FROM `+table).Scan(&n))
	return n
}

// --- schema tests ---

func TestNewStoreCreatesSchema(t *testing.T) {
	store, _ := testSetup(t)

	for _, table := range []string{"glyphs", "shapes", "sources", "glyphs_fts"} {
		var count int
		err := store.db.QueryRow(
			`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "table %s", table)
	}

	_, err := os.Stat(filepath.Join(store.indexDir, dbFile))
	assert.NoError(t, err)
}

// --- ingest tests ---

func TestIngest(t *testing.T) {
	store, tmpDir := testSetup(t)
	paths := []string{
		writeWBS(t, tmpDir, "nouns.wbs", nounsWBS),
		writeWBS(t, tmpDir, "verbs.wbs", verbsWBS),
	}

	var log strings.Builder
	summary, err := store.Ingest(context.Background(), wbs.NewDecoder(wbs.PatternPolicy), paths, &log)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Indexed)
	assert.Equal(t, 2, summary.Total())
	assert.Equal(t, 4, countRows(t, store, "glyphs"))
	assert.Equal(t, 7, countRows(t, store, "shapes"))
	assert.Equal(t, 4, countRows(t, store, "glyphs_fts"))

	out := log.String()
	assert.Contains(t, out, "indexing nouns.wbs (2 glyphs)")
	assert.Contains(t, out, "verbs.wbs: line 3: malformed line")
	assert.Contains(t, out, "indexed: 2, updated: 0, skipped: 0, failed: 0")
}

func TestIngestWritesExportYAML(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingestSamples(t, store, tmpDir)

	data, err := os.ReadFile(filepath.Join(store.indexDir, "export.yaml"))
	require.NoError(t, err)

	var entries []map[string]any
	require.NoError(t, yaml.Unmarshal(data, &entries))
	assert.Len(t, entries, 4)
	assert.Equal(t, "100", entries[0]["identifier"])
}

func TestIngestSkipsUnchanged(t *testing.T) {
	store, tmpDir := testSetup(t)
	paths := ingestSamples(t, store, tmpDir)

	var log strings.Builder
	summary, err := store.Ingest(context.Background(), wbs.NewDecoder(wbs.PatternPolicy), paths, &log)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Skipped)
	assert.Equal(t, 0, summary.Indexed)
	assert.Equal(t, 4, countRows(t, store, "glyphs"))
}

func TestIngestUpdatesChanged(t *testing.T) {
	store, tmpDir := testSetup(t)
	paths := ingestSamples(t, store, tmpDir)

	writeWBS(t, tmpDir, "nouns.wbs", "100$heart$NB$SE$H#1#1#0#1#2#3#4\n")
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(paths[0], future, future))

	var log strings.Builder
	summary, err := store.Ingest(context.Background(), wbs.NewDecoder(wbs.PatternPolicy), paths, &log)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 3, countRows(t, store, "glyphs"))
	assert.Equal(t, 5, countRows(t, store, "shapes"))
	assert.Equal(t, 3, countRows(t, store, "glyphs_fts"))

	results, err := store.Retrieve(context.Background(), QueryOptions{Query: "house"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestIngestReindexesOnPolicyChange(t *testing.T) {
	store, tmpDir := testSetup(t)
	paths := ingestSamples(t, store, tmpDir)

	var log strings.Builder
	summary, err := store.Ingest(context.Background(), wbs.NewDecoder(wbs.RawPolicy), paths, &log)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Updated)

	results, err := store.Retrieve(context.Background(), QueryOptions{Identifier: "200"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, types.ShapeRaw, results[0].Shapes[0].Mode)
	assert.Equal(t, "#4#4#0#0", results[0].Shapes[0].Grid)
}

func TestIngestMissingFile(t *testing.T) {
	store, tmpDir := testSetup(t)

	var log strings.Builder
	summary, err := store.Ingest(context.Background(), wbs.NewDecoder(wbs.PatternPolicy),
		[]string{filepath.Join(tmpDir, "missing.wbs")}, &log)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Contains(t, log.String(), "failed  missing.wbs")
}

func TestIngestCancelled(t *testing.T) {
	store, tmpDir := testSetup(t)
	path := writeWBS(t, tmpDir, "nouns.wbs", nounsWBS)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var log strings.Builder
	_, err := store.Ingest(ctx, wbs.NewDecoder(wbs.PatternPolicy), []string{path}, &log)
	assert.ErrorIs(t, err, context.Canceled)
}

// --- retrieve tests ---

func TestRetrieveFullTextSearch(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingestSamples(t, store, tmpDir)

	results, err := store.Retrieve(context.Background(), QueryOptions{Query: "heart"})
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, "100", r.Identifier)
	assert.Equal(t, "heart,feeling", r.Gloss)
	assert.Equal(t, filepath.Join(tmpDir, "nouns.wbs"), r.Source)
	require.Len(t, r.Shapes, 2)
	assert.Equal(t, "H-1-1", r.Shapes[0].Code)
	assert.Equal(t, "W-5-2", r.Shapes[1].Code)
	assert.Equal(t, "A", r.Shapes[1].Letter)
}

func TestRetrieveFullTextWithFilter(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingestSamples(t, store, tmpDir)

	results, err := store.Retrieve(context.Background(), QueryOptions{Query: "feel OR feeling", Country: "CA"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "200", results[0].Identifier)
}

func TestRetrieveByShapeCode(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingestSamples(t, store, tmpDir)

	results, err := store.Retrieve(context.Background(), QueryOptions{ShapeCode: "W-5-2"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "100", results[0].Identifier)
	assert.Equal(t, "200", results[1].Identifier)
}

func TestRetrieveByPosColour(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingestSamples(t, store, tmpDir)

	results, err := store.Retrieve(context.Background(), QueryOptions{PosColour: "V"})
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Shapes come back in drawing order.
	codes := make([]string, 0, 3)
	for _, s := range results[1].Shapes {
		codes = append(codes, s.Code)
	}
	assert.Equal(t, []string{"A-1-1", "B-2-2", "C-3-3"}, codes)
}

func TestRetrieveRespectsMaxResults(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingestSamples(t, store, tmpDir)

	results, err := store.Retrieve(context.Background(), QueryOptions{Country: "SE", MaxResults: 1})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestRetrieveNoResults(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingestSamples(t, store, tmpDir)

	results, err := store.Retrieve(context.Background(), QueryOptions{Query: "nonexistent"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestQueryOptionsIsEmpty(t *testing.T) {
	assert.True(t, QueryOptions{MaxResults: 5}.IsEmpty())
	assert.False(t, QueryOptions{ShapeCode: "W-5-2"}.IsEmpty())
}

// --- export tests ---

func TestExportJSON(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingestSamples(t, store, tmpDir)

	require.NoError(t, store.ExportJSON(context.Background(), QueryOptions{Country: "CA"}))

	data, err := os.ReadFile(filepath.Join(store.indexDir, "export.json"))
	require.NoError(t, err)

	var entries []map[string]any
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "200", entries[0]["identifier"])
	assert.Contains(t, entries[0], "source")

	shapes := entries[0]["shapes"].([]any)
	shape := shapes[0].(map[string]any)
	assert.Equal(t, "W-5-2", shape["code"])
	assert.Equal(t, "4", shape["x"])
}

func TestExportEmptyIndex(t *testing.T) {
	store, _ := testSetup(t)

	require.NoError(t, store.ExportJSON(context.Background(), QueryOptions{}))
	data, err := os.ReadFile(filepath.Join(store.indexDir, "export.json"))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestIngestSummaryTotal(t *testing.T) {
	s := IngestSummary{Indexed: 1, Updated: 2, Skipped: 3, Failed: 4}
	assert.Equal(t, 10, s.Total())
}
