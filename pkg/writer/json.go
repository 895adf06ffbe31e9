// Package writer persists computation results as JSON files.
package writer

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Export writes v to path as indented JSON. A path ending in .gz gets a
// gzip-compressed compact encoding instead.
func Export(v any, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	werr := Encode(v, f, strings.HasSuffix(path, ".gz"))
	cerr := f.Close()
	if werr != nil {
		return werr
	}
	return cerr
}

// Encode streams v as JSON to w, gzipped when compress is set. Plain output
// is indented for reading; compressed output is compact.
func Encode(v any, w io.Writer, compress bool) error {
	if !compress {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		return nil
	}

	zw := gzip.NewWriter(w)
	if err := json.NewEncoder(zw).Encode(v); err != nil {
		zw.Close()
		return fmt.Errorf("encode result: %w", err)
	}
	return zw.Close()
}
