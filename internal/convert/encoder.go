// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/bliss-wbs/pkg/types"
)

// Encoder serializes decoded records. Different output formats (json,
// jsonl, yaml) implement this interface.
type Encoder interface {
	// Encode writes records to w.
	Encode(w io.Writer, records []types.Record) error

	// Ext returns the file extension for the format, including the dot.
	Ext() string
}

// NewEncoder returns the Encoder for format. An empty format selects JSON.
func NewEncoder(format types.OutputFormat) (Encoder, error) {
	switch format {
	case types.FormatJSON, "":
		return jsonEncoder{}, nil
	case types.FormatJSONL:
		return jsonlEncoder{}, nil
	case types.FormatYAML:
		return yamlEncoder{}, nil
	default:
		return nil, fmt.Errorf("unsupported format %q: use json, jsonl, or yaml", format)
	}
}

// jsonEncoder writes a single indented JSON array.
type jsonEncoder struct{}

func (jsonEncoder) Ext() string { return ".json" }

func (jsonEncoder) Encode(w io.Writer, records []types.Record) error {
	if records == nil {
		records = []types.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// jsonlEncoder writes one compact JSON object per line.
type jsonlEncoder struct{}

func (jsonlEncoder) Ext() string { return ".jsonl" }

func (jsonlEncoder) Encode(w io.Writer, records []types.Record) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encoding record %s: %w", r.Identifier, err)
		}
	}
	return nil
}

type yamlEncoder struct{}

func (yamlEncoder) Ext() string { return ".yaml" }

func (yamlEncoder) Encode(w io.Writer, records []types.Record) error {
	if records == nil {
		records = []types.Record{}
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
