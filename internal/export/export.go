// Package export writes processed rows to CSV files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	"github.com/mark3labs/regexr/internal/logger"
	"github.com/mark3labs/regexr/internal/session"
)

// FileName derives the export file name from the uploaded file's name.
// Example: "Customer List.xlsx" becomes "customer-list-processed.csv".
func FileName(source string) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	name := slug.Make(base)
	if name == "" {
		name = "export"
	}
	return name + "-processed.csv"
}

// WriteCSV writes a header line of the result's columns followed by every
// processed row. Cells use the same formatting as the results table.
func WriteCSV(w io.Writer, r *session.Result) error {
	return WriteRows(w, r.Columns(), r.Rows)
}

// WriteRows writes columns as a header line, then one record per row. An
// empty column list writes nothing.
func WriteRows(w io.Writer, columns []string, rows []session.Row) error {
	if len(columns) == 0 {
		return nil
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	record := make([]string, len(columns))
	for i, row := range rows {
		for j, col := range columns {
			record[j] = row.Cell(col)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ToDir writes the result into dir using FileName(source) and returns the
// path written.
func ToDir(dir, source string, r *session.Result) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	return ToFile(filepath.Join(dir, FileName(source)), r)
}

// ToFile writes the result to path, replacing any existing file.
func ToFile(path string, r *session.Result) (string, error) {
	if r == nil {
		return "", fmt.Errorf("no processed result to export")
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}

	logger.Debug("Exporting %d rows to %s", len(r.Rows), path)
	if err := WriteCSV(f, r); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close export file: %w", err)
	}
	return path, nil
}
