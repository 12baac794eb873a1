package wizard

import (
	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/mark3labs/regexr/internal/session"
	"github.com/mark3labs/regexr/internal/tui/theme"
)

// Row caps for the two data tables.
const (
	PreviewRowLimit = 5
	ResultRowLimit  = 10
)

// ProjectPreview returns the headers and cell strings shown for a preview:
// the preview's own columns and at most limit sample rows.
func ProjectPreview(p *session.Preview, limit int) ([]string, [][]string) {
	if p == nil {
		return nil, nil
	}
	return p.Columns, project(p.Columns, p.SampleRows, limit)
}

// ProjectResult returns the headers and cell strings shown for a processed
// result. Columns come from the first processed row; no rows means no
// columns.
func ProjectResult(r *session.Result, limit int) ([]string, [][]string) {
	columns := r.Columns()
	if len(columns) == 0 {
		return nil, nil
	}
	return columns, project(columns, r.Rows, limit)
}

func project(columns []string, rows []session.Row, limit int) [][]string {
	if len(rows) > limit {
		rows = rows[:limit]
	}
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = row.Cell(col)
		}
		out = append(out, cells)
	}
	return out
}

// renderTable draws headers and rows as a bordered table no wider than
// width. Returns "" when there are no headers.
func renderTable(headers []string, rows [][]string, width int) string {
	if len(headers) == 0 {
		return ""
	}

	s := theme.Current().S()
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(s.TableBorder).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.TableHeader
			}
			return s.TableCell
		})

	if width > 0 && lipgloss.Width(t.String()) > width {
		t = t.Width(width)
	}
	return t.String()
}

// ResultTable renders at most limit processed rows as a bordered table no
// wider than width.
func ResultTable(r *session.Result, limit, width int) string {
	headers, rows := ProjectResult(r, limit)
	return renderTable(headers, rows, width)
}
