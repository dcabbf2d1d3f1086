package types

// InputEncoding names the character encoding of .wbs input files.
type InputEncoding string

const (
	EncodingLatin1      InputEncoding = "latin1"
	EncodingWindows1252 InputEncoding = "windows-1252"
	EncodingUTF8        InputEncoding = "utf-8"
)

// DecodeConfig holds settings for the line decoder.
type DecodeConfig struct {
	// Policy selects shape decoding: "pattern" (default) or "raw".
	Policy string `json:"policy" yaml:"policy"`

	// Encoding is the input character encoding (default latin1).
	Encoding InputEncoding `json:"encoding" yaml:"encoding"`

	// Workers is the number of goroutines used for batch decoding.
	// Values below 2 decode sequentially.
	Workers int `json:"workers" yaml:"workers"`

	// SkipBlank overrides the policy's handling of whitespace-only lines.
	// Nil keeps the policy default.
	SkipBlank *bool `json:"skip_blank,omitempty" yaml:"skip_blank,omitempty"`
}

// OutputFormat selects the serialization of decoded records.
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatJSONL OutputFormat = "jsonl"
	FormatYAML  OutputFormat = "yaml"
)

// ConversionConfig holds settings for the conversion stage.
type ConversionConfig struct {
	// Format selects the output format: json, jsonl, or yaml.
	Format OutputFormat `json:"format" yaml:"format"`

	// WBSDir is the directory scanned for .wbs files in batch mode.
	WBSDir string `json:"wbs_dir" yaml:"wbs_dir"`

	// OutputDir receives one output file per input. Empty means stdout.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Force re-converts files whose output already exists.
	Force bool `json:"force" yaml:"force"`
}

// IndexConfig holds settings for the glyph index.
type IndexConfig struct {
	// IndexDir is the directory holding glyphs.db and exports.
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Decode     DecodeConfig     `json:"decode" yaml:"decode"`
	Conversion ConversionConfig `json:"convert" yaml:"convert"`
	Index      IndexConfig      `json:"index" yaml:"index"`
}
