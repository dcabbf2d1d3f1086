// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wbs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
	"sync"

	"github.com/pdiddy/bliss-wbs/pkg/types"
)

// maxLineSize bounds a single input line.
const maxLineSize = 1 << 20

// Decoder decodes WBS lines under a fixed Policy. A Decoder holds no
// per-line state and is safe for concurrent use.
type Decoder struct {
	policy   Policy
	encoding types.InputEncoding
}

// NewDecoder returns a Decoder for p reading Latin-1 input.
func NewDecoder(p Policy) *Decoder {
	return &Decoder{policy: p, encoding: types.EncodingLatin1}
}

// NewDecoderFromConfig builds a Decoder from decoder settings, validating
// the policy name and input encoding.
func NewDecoderFromConfig(cfg types.DecodeConfig) (*Decoder, error) {
	p, err := PolicyFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	enc := cfg.Encoding
	if enc == "" {
		enc = types.EncodingLatin1
	}
	if _, err := lookupEncoding(enc); err != nil {
		return nil, err
	}
	return &Decoder{policy: p, encoding: enc}, nil
}

// Policy returns the decoder's policy.
func (d *Decoder) Policy() Policy {
	return d.policy
}

// Result is the outcome of decoding one line.
type Result struct {
	// Line is the 1-based line number (0 for DecodeLine).
	Line int

	// Record is valid when Err is nil and Skipped is false.
	Record types.Record

	// Skipped reports a whitespace-only line dropped by the policy.
	Skipped bool

	// ExtraFields counts $-separated fields past the fifth. They are ignored.
	ExtraFields int

	// Err is a *LineError when the line failed.
	Err error
}

// DecodeLine decodes a single line. Blank lines are not skipped here: a
// line with fewer than five fields always yields a *LineError wrapping
// ErrMalformedLine.
func (d *Decoder) DecodeLine(line string) (types.Record, error) {
	r := d.decode(0, line, false)
	return r.Record, r.Err
}

// Decode decodes the line at lineNo, applying the policy's blank-line rule.
func (d *Decoder) Decode(lineNo int, line string) Result {
	return d.decode(lineNo, line, d.policy.SkipBlank)
}

func (d *Decoder) decode(lineNo int, line string, skipBlank bool) Result {
	line = strings.TrimRight(line, "\r\n")
	res := Result{Line: lineNo}

	if skipBlank && strings.TrimSpace(line) == "" {
		res.Skipped = true
		return res
	}

	fields := strings.Split(line, FieldSeparator)
	if len(fields) < fieldCount {
		res.Err = &LineError{Line: lineNo, Text: line, Fields: len(fields), Err: ErrMalformedLine}
		return res
	}
	res.ExtraFields = len(fields) - fieldCount

	parts := splitShapes(fields[4])
	shapes := make([]types.Shape, 0, len(parts))
	for i, part := range parts {
		shape, err := decodeShape(d.policy.Mode, part)
		if err != nil {
			res.Err = &LineError{
				Line:   lineNo,
				Text:   line,
				Fields: len(fields),
				Err:    &ShapeError{Index: i, Shape: part, Err: err},
			}
			return res
		}
		shapes = append(shapes, shape)
	}

	res.Record = types.Record{
		Identifier: fields[0],
		Gloss:      fields[1],
		PosColour:  fields[2],
		Country:    fields[3],
		Shapes:     shapes,
	}
	return res
}

// All lazily decodes lines in order. Line numbers start at 1.
func (d *Decoder) All(lines iter.Seq[string]) iter.Seq[Result] {
	return func(yield func(Result) bool) {
		n := 0
		for line := range lines {
			n++
			if !yield(d.Decode(n, line)) {
				return
			}
		}
	}
}

// Batch collects the outcome of decoding a sequence of lines.
type Batch struct {
	// Records holds the decoded records in input order.
	Records []types.Record

	// Failures holds one *LineError per failed line, in input order.
	Failures []*LineError

	// Skipped counts blank lines dropped by the policy.
	Skipped int

	// UnrecognizedCodes and UnrecognizedPlacements count degraded shapes
	// in pattern mode.
	UnrecognizedCodes      int
	UnrecognizedPlacements int

	// Warnings lists non-fatal notes such as ignored extra fields.
	Warnings []string
}

// Total returns the number of lines processed.
func (b Batch) Total() int {
	return len(b.Records) + len(b.Failures) + b.Skipped
}

// HasFailures reports whether any line failed.
func (b Batch) HasFailures() bool {
	return len(b.Failures) > 0
}

// Degraded returns the number of shapes decoded without full information.
func (b Batch) Degraded() int {
	return b.UnrecognizedCodes + b.UnrecognizedPlacements
}

func (b *Batch) add(r Result) {
	if r.Skipped {
		b.Skipped++
		return
	}
	if r.Err != nil {
		var le *LineError
		if errors.As(r.Err, &le) {
			b.Failures = append(b.Failures, le)
		} else {
			b.Failures = append(b.Failures, &LineError{Line: r.Line, Err: r.Err})
		}
		return
	}
	if r.ExtraFields > 0 {
		b.Warnings = append(b.Warnings,
			fmt.Sprintf("line %d: ignored %d extra field(s)", r.Line, r.ExtraFields))
	}
	for _, s := range r.Record.Shapes {
		switch s.Status {
		case types.ShapeUnrecognizedCode:
			b.UnrecognizedCodes++
		case types.ShapeUnrecognizedPlacement:
			b.UnrecognizedPlacements++
		}
	}
	b.Records = append(b.Records, r.Record)
}

// DecodeLines eagerly decodes lines, continuing past failures. With
// Policy.Workers above 1 lines are decoded concurrently; the Batch is
// always in input order.
func (d *Decoder) DecodeLines(lines []string) Batch {
	b, _ := d.decodeLines(context.Background(), lines)
	return b
}

func (d *Decoder) decodeLines(ctx context.Context, lines []string) (Batch, error) {
	batch := Batch{Records: make([]types.Record, 0, len(lines))}

	if d.policy.Workers < 2 || len(lines) < 2 {
		for i, line := range lines {
			if err := ctx.Err(); err != nil {
				return batch, err
			}
			batch.add(d.Decode(i+1, line))
		}
		return batch, nil
	}

	results := make([]Result, len(lines))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < min(d.policy.Workers, len(lines)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = d.Decode(i+1, lines[i])
			}
		}()
	}

	var cancelled error
feed:
	for i := range lines {
		select {
		case <-ctx.Done():
			cancelled = ctx.Err()
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if cancelled != nil {
		return batch, cancelled
	}
	for _, r := range results {
		batch.add(r)
	}
	return batch, nil
}

// DecodeReader reads lines from r in the decoder's input encoding and
// decodes them. It returns early with ctx.Err() if ctx is cancelled.
func (d *Decoder) DecodeReader(ctx context.Context, r io.Reader) (Batch, error) {
	lines, err := d.ReadLines(ctx, r)
	if err != nil {
		return Batch{}, err
	}
	return d.decodeLines(ctx, lines)
}

// ReadLines reads all lines from r, converting them from the decoder's
// input encoding. Line terminators are removed.
func (d *Decoder) ReadLines(ctx context.Context, r io.Reader) ([]string, error) {
	src, err := NewReader(r, d.encoding)
	if err != nil {
		return nil, err
	}

	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var lines []string
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading lines: %w", err)
	}
	return lines, nil
}
