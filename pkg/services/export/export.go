// Package export renders normalized readings into portable file formats.
package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/energy-tools/glow-atlas/pkg/models/domain"
)

const (
	FormatJSONL   = "jsonl"
	FormatCSV     = "csv"
	FormatParquet = "parquet"
)

// Encoder writes a series to w in one format. Records are expected in
// ascending timestamp order; encoders preserve the order they are given.
type Encoder interface {
	Encode(w io.Writer, readings []domain.Reading) error
}

func NewEncoder(format string) (Encoder, error) {
	switch strings.ToLower(format) {
	case FormatJSONL:
		return jsonlEncoder{}, nil
	case FormatCSV:
		return csvEncoder{}, nil
	case FormatParquet:
		return parquetEncoder{}, nil
	default:
		return nil, fmt.Errorf("unknown export format %q (want jsonl, csv or parquet)", format)
	}
}

// ResolveFormat picks the output format: an explicit choice wins, otherwise
// the file extension decides, defaulting to jsonl.
func ResolveFormat(path, explicit string) string {
	if explicit != "" {
		return strings.ToLower(explicit)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".parquet":
		return FormatParquet
	default:
		return FormatJSONL
	}
}
