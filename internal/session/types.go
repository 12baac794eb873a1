package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Stage is one of the three wizard states.
type Stage int

const (
	StageUpload Stage = iota
	StageProcess
	StageResults
)

// String returns the display name of a stage.
func (s Stage) String() string {
	switch s {
	case StageUpload:
		return "Upload"
	case StageProcess:
		return "Process"
	case StageResults:
		return "Results"
	default:
		return "Unknown"
	}
}

// FileRef is the handle to a user-chosen file.
type FileRef struct {
	Path string // Absolute or working-directory relative path
	Name string // Base name, used for extension checks and display
	Size int64  // Size in bytes at selection time (0 if unknown)
}

// NewFileRef builds a FileRef for path. Size is left zero; the caller fills
// it in when it has stat information.
func NewFileRef(path string) FileRef {
	return FileRef{Path: path, Name: filepath.Base(path)}
}

// IsZero reports whether no file is referenced.
func (f FileRef) IsZero() bool {
	return f.Path == ""
}

// Row is a single record returned by the processing service. Keys keep the
// order in which the service sent them.
type Row struct {
	m *orderedmap.OrderedMap[string, any]
}

// NewRow builds a row from alternating key/value pairs.
// Example: NewRow("email", "a@x.com", "id", 1)
func NewRow(pairs ...any) Row {
	r := Row{m: orderedmap.New[string, any]()}
	for i := 0; i+1 < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			key = fmt.Sprint(pairs[i])
		}
		r.m.Set(key, pairs[i+1])
	}
	return r
}

// Keys returns the row's column names in service order.
func (r Row) Keys() []string {
	if r.m == nil {
		return nil
	}
	keys := make([]string, 0, r.m.Len())
	for pair := r.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Get returns the raw value stored under column.
func (r Row) Get(column string) (any, bool) {
	if r.m == nil {
		return nil, false
	}
	return r.m.Get(column)
}

// Len returns the number of columns in the row.
func (r Row) Len() int {
	if r.m == nil {
		return 0
	}
	return r.m.Len()
}

// Cell returns the display string for column. Missing and null values render
// as the empty string.
func (r Row) Cell(column string) string {
	v, ok := r.Get(column)
	if !ok {
		return ""
	}
	return FormatValue(v)
}

// UnmarshalJSON decodes a JSON object while keeping key order. Numbers stay
// json.Number so large integers keep every digit.
func (r *Row) UnmarshalJSON(data []byte) error {
	r.m = orderedmap.New[string, any]()
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("row: expected JSON object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("row: unexpected key %v", tok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("row: column %q: %w", key, err)
		}
		r.m.Set(key, value)
	}
	_, err = dec.Token()
	return err
}

// MarshalJSON encodes the row as a JSON object in key order.
func (r Row) MarshalJSON() ([]byte, error) {
	if r.m == nil {
		return []byte("{}"), nil
	}
	return r.m.MarshalJSON()
}

// FormatValue renders a decoded JSON value as a table cell.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}
}

// Preview is a bounded, read-only snapshot of an uploaded dataset.
type Preview struct {
	Columns     []string // All column names, in file order
	TotalRows   int      // Total number of data rows in the file
	SampleRows  []Row    // First rows of the file
	TextColumns []string // Columns the service classified as text (optional)
}

// Result is the processed dataset returned by the service.
type Result struct {
	ColumnsProcessed []string // Columns the service actually changed
	Rows             []Row    // Processed rows

	// Diagnostics the service may attach. All optional.
	TargetColumn   string
	Pattern        string
	Replacement    string
	MatchesFound   int
	Message        string
	HasDiagnostics bool
}

// Columns returns the columns to display for the processed rows: the keys of
// the first row, or nothing when there are no rows.
func (r *Result) Columns() []string {
	if r == nil || len(r.Rows) == 0 {
		return nil
	}
	return r.Rows[0].Keys()
}

// Summary returns the "Columns processed" line shown with a result.
func (r *Result) Summary() string {
	if r == nil || len(r.ColumnsProcessed) == 0 {
		return "Columns processed: None"
	}
	return "Columns processed: " + strings.Join(r.ColumnsProcessed, ", ")
}

// Diagnostics returns the optional service details as label/value pairs, in
// display order. Empty when the service sent none.
func (r *Result) Diagnostics() [][2]string {
	if r == nil || !r.HasDiagnostics {
		return nil
	}
	var out [][2]string
	if r.TargetColumn != "" {
		out = append(out, [2]string{"Target column", r.TargetColumn})
	}
	if r.Pattern != "" {
		out = append(out, [2]string{"Pattern", r.Pattern})
	}
	if r.Replacement != "" {
		out = append(out, [2]string{"Replacement", r.Replacement})
	}
	out = append(out, [2]string{"Matches", strconv.Itoa(r.MatchesFound)})
	return out
}
