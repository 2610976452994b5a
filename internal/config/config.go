// Package config defines the canonical, JSON-serializable configuration model
// for a batch import run. It is intentionally small and explicit so batch
// files can be loaded from disk and passed through the program without glue
// code; decoding is performed by the standard library.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Batch describes one full import run. It is the top-level object decoded
// from a batch file (e.g. configs/batches/*.json).
type Batch struct {
	// Job names the run; it is used for metrics labeling and log prefixes.
	Job string `json:"job"`

	// Source says which export files to process.
	Source Source `json:"source"`

	// Parser configures CSV reading.
	Parser Parser `json:"parser"`

	// Storage selects and configures the table store.
	Storage Storage `json:"storage"`

	// RejectLog is the path of the batch's tab-separated audit artifact.
	RejectLog string `json:"reject_log"`

	// Runtime controls concurrency and the per-file timeout.
	Runtime Runtime `json:"runtime"`
}

// Source identifies the input files. When Files is empty, every *.csv file
// in Dir is processed in name order.
type Source struct {
	// Dir is the directory holding the per-metric export files.
	Dir string `json:"dir"`

	// Files optionally names specific files (relative to Dir) to process,
	// in order. Empty means all CSV files in Dir.
	Files []string `json:"files"`
}

// Parser holds CSV reading options.
type Parser struct {
	// Comma is the field delimiter as a one-character string. Empty means ",".
	Comma string `json:"comma"`

	// TrimSpace trims surrounding whitespace from every cell value.
	TrimSpace bool `json:"trim_space"`
}

// Storage selects the sink used to persist metric tables.
type Storage struct {
	// Kind selects the backend: "sqlite" (default), "postgres", or "mysql".
	Kind string `json:"kind"`

	// DB configures the selected backend.
	DB DBConfig `json:"db"`
}

// DBConfig configures the database sink.
type DBConfig struct {
	// DSN is the backend connection string (a file path for sqlite).
	DSN string `json:"dsn"`
}

// Runtime controls concurrency and timeouts for a batch run.
type Runtime struct {
	// Workers bounds how many files are cleaned and imported concurrently.
	// Zero means a small default chosen by the driver.
	Workers int `json:"workers"`

	// FileTimeoutSeconds bounds one file's end-to-end processing so a
	// pathological input cannot stall the whole batch. Zero disables the
	// timeout.
	FileTimeoutSeconds int `json:"file_timeout_seconds"`
}

// CommaRune returns the configured delimiter as a rune, or 0 when unset.
func (p Parser) CommaRune() rune {
	if p.Comma == "" {
		return 0
	}
	return []rune(p.Comma)[0]
}

// Load reads and decodes a batch file from path.
func Load(path string) (Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return Batch{}, fmt.Errorf("config: open: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode decodes a batch configuration from r.
func Decode(r io.Reader) (Batch, error) {
	var b Batch
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return Batch{}, fmt.Errorf("config: decode: %w", err)
	}
	return b, nil
}
