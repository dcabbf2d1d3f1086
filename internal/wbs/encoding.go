// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wbs

import (
	"fmt"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/pdiddy/bliss-wbs/pkg/types"
)

// lookupEncoding maps a configured encoding name to its decoder.
func lookupEncoding(enc types.InputEncoding) (encoding.Encoding, error) {
	switch enc {
	case types.EncodingLatin1, "latin-1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case types.EncodingWindows1252, "cp1252":
		return charmap.Windows1252, nil
	case types.EncodingUTF8, "utf8":
		return unicode.UTF8, nil
	default:
		return nil, fmt.Errorf("unsupported input encoding %q: use latin1, windows-1252, or utf-8", enc)
	}
}

// NewReader wraps r so that it yields UTF-8 text decoded from enc. WBS
// files come from legacy tooling and are read as single-byte text by
// default, so every byte maps to exactly one rune.
func NewReader(r io.Reader, enc types.InputEncoding) (io.Reader, error) {
	e, err := lookupEncoding(enc)
	if err != nil {
		return nil, err
	}
	return e.NewDecoder().Reader(r), nil
}
