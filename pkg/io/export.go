package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/papermap/pkg/paper"
)

// WriteJSON encodes records as an indented JSON array.
// The output can be read back with [ReadJSON].
func WriteJSON(records []paper.Record, w io.Writer) error {
	if records == nil {
		records = []paper.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes records to the file at path, replacing it.
func ExportJSON(records []paper.Record, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(records, f); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}
