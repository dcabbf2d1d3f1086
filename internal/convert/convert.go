// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns .wbs files into serialized glyph records.
package convert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/bliss-wbs/internal/wbs"
	"github.com/pdiddy/bliss-wbs/pkg/types"
)

// Extension is the required suffix of input files.
const Extension = ".wbs"

// Decoder reads WBS lines from r and decodes them. *wbs.Decoder
// implements it.
type Decoder interface {
	DecodeReader(ctx context.Context, r io.Reader) (wbs.Batch, error)
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Partial   int
	Skipped   int
	Failed    int
}

// Total returns the total number of files processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Partial + r.Skipped + r.Failed
}

// HasFailures reports whether any file failed or had failed lines.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0 || r.Partial > 0
}

// ValidatePath checks that path names a .wbs file.
func ValidatePath(path string) error {
	if !strings.HasSuffix(path, Extension) {
		return fmt.Errorf("input file (%s) must be a %q file", path, Extension)
	}
	return nil
}

// OutputPath returns where ConvertFile writes the output for path.
func OutputPath(path string, enc Encoder, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return filepath.Join(outDir, base+enc.Ext())
}

// ConvertFile decodes one .wbs file and writes the records to
// cfg.OutputDir. If the output already exists and cfg.Force is false it
// skips the file and returns types.ConversionNone. Files with failed lines are
// still written and return ConversionPartial.
func ConvertFile(ctx context.Context, dec Decoder, enc Encoder, path string, cfg types.ConversionConfig, w io.Writer) types.ConversionStatus {
	base := filepath.Base(path)
	outPath := OutputPath(path, enc, cfg.OutputDir)

	if err := ValidatePath(path); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return types.ConversionFailed
	}

	if !cfg.Force {
		if _, err := os.Stat(outPath); err == nil {
			fmt.Fprintf(w, "skipped: %s (already exists)\n", base)
			return types.ConversionNone
		}
	}

	batch, err := decodeFile(ctx, dec, path)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return types.ConversionFailed
	}
	ReportBatch(w, batch)

	var buf bytes.Buffer
	if err := enc.Encode(&buf, batch.Records); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return types.ConversionFailed
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return types.ConversionFailed
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return types.ConversionFailed
	}

	if batch.HasFailures() {
		fmt.Fprintf(w, "partial: %s (%d records, %d failed lines)\n", base, len(batch.Records), len(batch.Failures))
		return types.ConversionPartial
	}
	fmt.Fprintf(w, "converted: %s (%d records)\n", base, len(batch.Records))
	return types.ConversionDone
}

func decodeFile(ctx context.Context, dec Decoder, path string) (wbs.Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return wbs.Batch{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	batch, err := dec.DecodeReader(ctx, f)
	if err != nil {
		return wbs.Batch{}, fmt.Errorf("decoding %s: %w", path, err)
	}
	return batch, nil
}

// ReportBatch prints line failures, warnings and degraded shape counts.
func ReportBatch(w io.Writer, b wbs.Batch) {
	for _, f := range b.Failures {
		fmt.Fprintf(w, "  %v\n", f)
	}
	for _, warn := range b.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warn)
	}
	if b.Degraded() > 0 {
		fmt.Fprintf(w, "  unparsed shapes: %d unrecognized code, %d unrecognized placement\n",
			b.UnrecognizedCodes, b.UnrecognizedPlacements)
	}
}

// ConvertBatch converts each path, printing per-file status to w and
// returning a summary.
func ConvertBatch(ctx context.Context, dec Decoder, enc Encoder, paths []string, cfg types.ConversionConfig, w io.Writer) BatchResult {
	var result BatchResult
	for _, p := range paths {
		if ctx.Err() != nil {
			break
		}
		switch ConvertFile(ctx, dec, enc, p, cfg, w) {
		case types.ConversionDone:
			result.Converted++
		case types.ConversionPartial:
			result.Partial++
		case types.ConversionNone:
			result.Skipped++
		case types.ConversionFailed:
			result.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d partial, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Partial, result.Skipped, result.Failed, result.Total())
	return result
}

// ConvertDir converts every .wbs file in cfg.WBSDir, in name order.
func ConvertDir(ctx context.Context, dec Decoder, enc Encoder, cfg types.ConversionConfig, w io.Writer) (BatchResult, error) {
	paths, err := ListWBS(cfg.WBSDir)
	if err != nil {
		return BatchResult{}, err
	}
	return ConvertBatch(ctx, dec, enc, paths, cfg, w), nil
}

// ListWBS returns the .wbs files directly under dir, sorted by name.
func ListWBS(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading wbs directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Extension) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// ConvertStream decodes r and writes the records to out. Line failures are
// reported to w; the returned Batch lets the caller decide whether they
// are fatal.
func ConvertStream(ctx context.Context, dec Decoder, enc Encoder, r io.Reader, out, w io.Writer) (wbs.Batch, error) {
	batch, err := dec.DecodeReader(ctx, r)
	if err != nil {
		return batch, err
	}
	ReportBatch(w, batch)
	if err := enc.Encode(out, batch.Records); err != nil {
		return batch, err
	}
	return batch, nil
}
