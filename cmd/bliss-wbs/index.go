// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bliss-wbs/internal/convert"
	"github.com/pdiddy/bliss-wbs/internal/index"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the glyph index (store, retrieve, export)",
	Long: `Index manages a local SQLite index of decoded glyphs. Use subcommands to
index .wbs files, query glyphs by gloss or shape, or export the index.`,
}

// --- store subcommand ---

var indexStoreCmd = &cobra.Command{
	Use:   "store [files...]",
	Short: "Decode .wbs files into the glyph index",
	Long: `Store decodes the given .wbs files (or every .wbs file in --wbs-dir)
and stores their glyphs with full-text indexing on the gloss. Files that
are unchanged since the last run with the same policy are skipped.`,
	RunE: runIndexStore,
}

func runIndexStore(cmd *cobra.Command, args []string) error {
	paths := args
	if len(paths) == 0 {
		wbsDir, _ := cmd.Flags().GetString("wbs-dir")
		found, err := convert.ListWBS(wbsDir)
		if err != nil {
			return err
		}
		paths = found
	}
	for _, p := range paths {
		if err := convert.ValidatePath(p); err != nil {
			return err
		}
	}

	dec, err := newDecoder()
	if err != nil {
		return err
	}

	store, err := index.NewStore(indexConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(context.Background(), dec, paths, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d file(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- retrieve subcommand ---

var indexRetrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Query the glyph index by gloss and filters",
	Long: `Retrieve searches glosses with full-text search, filters by identifier,
country, part-of-speech/colour or shape code, or combines both.`,
	RunE: runIndexRetrieve,
}

func runIndexRetrieve(cmd *cobra.Command, args []string) error {
	store, err := index.NewStore(indexConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --id, --country, --pos, or --shape")
	}

	results, err := store.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatRetrieveOutput(results, jsonOutput)
}

func formatRetrieveOutput(results []index.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		if results == nil {
			results = []index.QueryResult{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-10s  %-30s  %-6s  %-7s  %s\n",
		"ID", "Gloss", "POS", "Country", "Shapes")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 80))

	for _, r := range results {
		gloss := r.Gloss
		if len(gloss) > 30 {
			gloss = gloss[:27] + "..."
		}
		codes := make([]string, len(r.Shapes))
		for i, s := range r.Shapes {
			codes[i] = s.Code
		}
		fmt.Fprintf(os.Stdout, "%-10s  %-30s  %-6s  %-7s  %s\n",
			r.Identifier, gloss, r.PosColour, r.Country, strings.Join(codes, " "))
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var indexExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the glyph index to YAML or JSON",
	Long: `Export writes the full index (or a filtered subset) to export.yaml or
export.json in the index directory. Supports the same filter flags as
retrieve for partial exports.`,
	RunE: runIndexExport,
}

func runIndexExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	cfg := indexConfig()
	store, err := index.NewStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)

	switch format {
	case "yaml", "":
		if err := store.ExportYAML(context.Background(), opts); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/export.yaml\n", cfg.IndexDir)
	case "json":
		if err := store.ExportJSON(context.Background(), opts); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/export.json\n", cfg.IndexDir)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func queryOptsFromFlags(cmd *cobra.Command, args []string) index.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	id, _ := cmd.Flags().GetString("id")
	country, _ := cmd.Flags().GetString("country")
	pos, _ := cmd.Flags().GetString("pos")
	shape, _ := cmd.Flags().GetString("shape")
	limit, _ := cmd.Flags().GetInt("limit")

	return index.QueryOptions{
		Query:      queryText,
		Identifier: id,
		Country:    country,
		PosColour:  pos,
		ShapeCode:  shape,
		MaxResults: limit,
	}
}

func addFilterFlags(cmd *cobra.Command, suffix string) {
	cmd.Flags().String("query", "", "full-text gloss query"+suffix)
	cmd.Flags().String("id", "", "filter by identifier"+suffix)
	cmd.Flags().String("country", "", "filter by country code"+suffix)
	cmd.Flags().String("pos", "", "filter by part-of-speech/colour marker"+suffix)
	cmd.Flags().String("shape", "", "filter by shape code, e.g. W-5-2"+suffix)
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	indexCmd.PersistentFlags().String("index-dir", "index", "directory holding glyphs.db and exports")
	indexCmd.PersistentFlags().Int("max-results", 20, "maximum number of query results")
	bindFlags(indexCmd.PersistentFlags(), map[string]string{
		"index.dir":         "index-dir",
		"index.max_results": "max-results",
	})

	indexStoreCmd.Flags().String("wbs-dir", "wbs", "directory scanned for .wbs files when no files are given")

	addFilterFlags(indexRetrieveCmd, "")
	indexRetrieveCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	indexRetrieveCmd.Flags().Bool("json", false, "output results as JSON")

	indexExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	addFilterFlags(indexExportCmd, " for partial export")
	indexExportCmd.Flags().Int("limit", 0, "maximum glyphs to export (0 = all)")

	// Wire subcommands.
	indexCmd.AddCommand(indexStoreCmd)
	indexCmd.AddCommand(indexRetrieveCmd)
	indexCmd.AddCommand(indexExportCmd)

	rootCmd.AddCommand(indexCmd)
}
