// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bliss-wbs/internal/convert"
)

var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert .wbs files to JSON, JSONL or YAML",
	Long: `Convert decodes WBS symbol-definition files into glyph records.

With a single file and no --output-dir, the records are written to stdout
as a JSON array. Use "-" to read from stdin. With --output-dir (or
--batch), each input gets its own output file and existing outputs are
skipped unless --force is given.

Failed lines are reported on stderr and the remaining lines are still
converted. Use --strict to exit non-zero when any line fails.`,
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	batchMode, _ := cmd.Flags().GetBool("batch")
	strict, _ := cmd.Flags().GetBool("strict")
	cfg := conversionConfig()
	if err := checkConvertArgs(batchMode, cfg.OutputDir, args); err != nil {
		return err
	}

	dec, err := newDecoder()
	if err != nil {
		return err
	}
	enc, err := convert.NewEncoder(cfg.Format)
	if err != nil {
		return err
	}

	// Stream mode: one input, records to stdout.
	if !batchMode && cfg.OutputDir == "" {
		in := os.Stdin
		if args[0] != "-" {
			if err := convert.ValidatePath(args[0]); err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		batch, err := convert.ConvertStream(ctx, dec, enc, in, os.Stdout, os.Stderr)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "decoded %d records (%d failed, %d skipped)\n",
			len(batch.Records), len(batch.Failures), batch.Skipped)
		if strict && batch.HasFailures() {
			return fmt.Errorf("%d line(s) failed decoding", len(batch.Failures))
		}
		return nil
	}

	if cfg.OutputDir == "" {
		cfg.OutputDir = "json"
	}

	var result convert.BatchResult
	if batchMode {
		result, err = convert.ConvertDir(ctx, dec, enc, cfg, os.Stderr)
		if err != nil {
			return err
		}
	} else {
		result = convert.ConvertBatch(ctx, dec, enc, args, cfg, os.Stderr)
	}

	if result.Failed > 0 {
		return fmt.Errorf("%d file(s) failed conversion", result.Failed)
	}
	if strict && result.Partial > 0 {
		return fmt.Errorf("%d file(s) had failed lines", result.Partial)
	}
	return nil
}

// checkConvertArgs rejects file arguments that the selected mode would not
// read: --batch lists --wbs-dir itself, and stdout output takes one input.
func checkConvertArgs(batch bool, outputDir string, args []string) error {
	switch {
	case batch && len(args) > 0:
		return fmt.Errorf("--batch converts every file in --wbs-dir; drop the file arguments or --batch")
	case batch:
		return nil
	case outputDir == "" && len(args) != 1:
		return fmt.Errorf("expected one input file (or -); use --output-dir for several files")
	case len(args) == 0:
		return fmt.Errorf("no input files; give .wbs files or use --batch")
	}
	return nil
}

func init() {
	convertCmd.Flags().String("format", "json", "output format: json, jsonl, or yaml")
	convertCmd.Flags().String("output-dir", "", "directory for output files (default: stdout for a single file)")
	convertCmd.Flags().String("wbs-dir", "wbs", "directory scanned for .wbs files with --batch")
	convertCmd.Flags().Bool("force", false, "overwrite existing output files")
	convertCmd.Flags().Bool("batch", false, "convert every .wbs file in --wbs-dir")
	convertCmd.Flags().Bool("strict", false, "exit non-zero when any line fails to decode")

	bindFlags(convertCmd.Flags(), map[string]string{
		"convert.format":     "format",
		"convert.output_dir": "output-dir",
		"convert.wbs_dir":    "wbs-dir",
		"convert.force":      "force",
	})

	rootCmd.AddCommand(convertCmd)
}
