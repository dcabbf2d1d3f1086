// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wbs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/bliss-wbs/pkg/types"
)

func TestDecodePatternShape(t *testing.T) {
	tests := []struct {
		name       string
		shape      string
		wantCode   string
		wantX      string
		wantY      string
		wantLetter string
		wantStatus types.ShapeStatus
	}{
		{
			name:       "grid end terminator",
			shape:      "W#5#2#0#12#7#04#0A##0#4*",
			wantCode:   "W-5-2",
			wantX:      "12",
			wantY:      "7",
			wantLetter: "A",
			wantStatus: types.ShapeParsed,
		},
		{
			name:       "alternate grid end",
			shape:      "C#2#1#0#3#9#12#1B##0#6*",
			wantCode:   "C-2-1",
			wantX:      "3",
			wantY:      "9",
			wantLetter: "B",
			wantStatus: types.ShapeParsed,
		},
		{
			name:       "trailing asterisks",
			shape:      "C#2#1#0#3#9#12#1**",
			wantCode:   "C-2-1",
			wantX:      "3",
			wantY:      "9",
			wantStatus: types.ShapeParsed,
		},
		{
			name:       "shape end marker",
			shape:      "B#1#3#0#8#4#00#0" + ShapeEnd,
			wantCode:   "B-1-3",
			wantX:      "8",
			wantY:      "4",
			wantStatus: types.ShapeParsed,
		},
		{
			name:       "terminator in the middle is removed",
			shape:      "A#1#1#0#1#2##0#4*#3#4X",
			wantCode:   "A-1-1",
			wantX:      "1",
			wantY:      "2",
			wantLetter: "X",
			wantStatus: types.ShapeParsed,
		},
		{
			name:       "noise before triad is discarded",
			shape:      "xyzW#5#2#0#1#2#3#4",
			wantCode:   "W-5-2",
			wantX:      "1",
			wantY:      "2",
			wantStatus: types.ShapeParsed,
		},
		{
			name:       "hash before letter",
			shape:      "D#1#2#0#10#20#3#4#5",
			wantCode:   "D-1-2",
			wantX:      "10",
			wantY:      "20",
			wantLetter: "5",
			wantStatus: types.ShapeParsed,
		},
		{
			name:       "multi-digit triad fields",
			shape:      "E#12#34#0#1#1#1#1",
			wantCode:   "E-12-34",
			wantX:      "1",
			wantY:      "1",
			wantStatus: types.ShapeParsed,
		},
		{
			name:       "placement does not match",
			shape:      "W#5#2#9#9",
			wantCode:   "W-5-2",
			wantStatus: types.ShapeUnrecognizedPlacement,
		},
		{
			name:       "empty placement",
			shape:      "W#5#2",
			wantCode:   "W-5-2",
			wantStatus: types.ShapeUnrecognizedPlacement,
		},
		{
			name:       "no triad",
			shape:      "zz#0#1#2",
			wantStatus: types.ShapeUnrecognizedCode,
		},
		{
			name:       "empty shape",
			shape:      "",
			wantStatus: types.ShapeUnrecognizedCode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeShape(types.ShapePattern, tt.shape)
			require.NoError(t, err)

			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantX, got.X)
			assert.Equal(t, tt.wantY, got.Y)
			assert.Equal(t, tt.wantLetter, got.Letter)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, types.ShapePattern, got.Mode)
		})
	}
}

func TestDecodeRawShape(t *testing.T) {
	got, err := decodeShape(types.ShapeRaw, "W#5#2#0REST")
	require.NoError(t, err)
	assert.Equal(t, "W-5-2", got.Code)
	assert.Equal(t, "REST", got.Grid)
	assert.Equal(t, types.ShapeRaw, got.Mode)

	// Only the first delimiter splits; the rest stays in the grid.
	got, err = decodeShape(types.ShapeRaw, "W#5#2#0#12#7#04#0A##0#4*")
	require.NoError(t, err)
	assert.Equal(t, "W-5-2", got.Code)
	assert.Equal(t, "#12#7#04#0A##0#4*", got.Grid)
}

func TestDecodeRawShape_ZeroInTriad(t *testing.T) {
	// A zero triad field is itself a delimiter; the cut happens there.
	got, err := decodeShape(types.ShapeRaw, "W#0#2#0REST")
	require.NoError(t, err)
	assert.Equal(t, "W", got.Code)
	assert.Equal(t, "#2#0REST", got.Grid)
}

func TestDecodeRawShape_MissingDelimiter(t *testing.T) {
	_, err := decodeShape(types.ShapeRaw, "W#5#2#9")
	assert.ErrorIs(t, err, ErrMissingGridDelimiter)
}

func TestTriadNormalizationAgrees(t *testing.T) {
	pattern, err := decodeShape(types.ShapePattern, "W#5#2#0#1#2#3#4")
	require.NoError(t, err)
	raw, err := decodeShape(types.ShapeRaw, "W#5#2#0#1#2#3#4")
	require.NoError(t, err)

	assert.Equal(t, "W-5-2", pattern.Code)
	assert.Equal(t, pattern.Code, raw.Code)
}

func TestStripTerminators(t *testing.T) {
	assert.Equal(t, "#0#1#2", stripTerminators("#0#1#2##0#4*"))
	assert.Equal(t, "#0#1#2", stripTerminators("#0#1#2##0#6*"))
	assert.Equal(t, "#0#1#2", stripTerminators("#0#1#2***"))
	assert.Equal(t, "#0#1#2", stripTerminators("#0#1#2"+ShapeEnd))
	assert.Equal(t, "#0#1#2", stripTerminators("#0#1#2##0#4*"+ShapeEnd))
	assert.Equal(t, "#0#1#2", stripTerminators("#0#1#2"+UTF8ShapeEnd))
}
