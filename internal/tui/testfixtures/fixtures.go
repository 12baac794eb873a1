package testfixtures

import (
	"fmt"

	"github.com/mark3labs/regexr/internal/session"
)

// Fixed test values
const (
	FixedFileID      = "f1"
	FixedInstruction = "replace emails with HIDDEN"
)

// PreviewEmails returns a preview with one email column and one sample row
// out of three.
func PreviewEmails() *session.Preview {
	return &session.Preview{
		Columns:    []string{"email"},
		TotalRows:  3,
		SampleRows: []session.Row{session.NewRow("email", "a@x.com")},
	}
}

// PreviewAB returns a two-column preview with a single row {"a":"1","b":"2"}.
func PreviewAB() *session.Preview {
	return &session.Preview{
		Columns:    []string{"a", "b"},
		TotalRows:  1,
		SampleRows: []session.Row{session.NewRow("a", "1", "b", "2")},
	}
}

// PreviewCustomers returns a preview with n sample rows of name, email and
// numeric id.
func PreviewCustomers(n int) *session.Preview {
	rows := make([]session.Row, 0, n)
	for i := range n {
		rows = append(rows, session.NewRow(
			"name", fmt.Sprintf("user%d", i),
			"email", fmt.Sprintf("user%d@x.com", i),
			"id", float64(i),
		))
	}
	return &session.Preview{
		Columns:     []string{"name", "email", "id"},
		TotalRows:   n * 10,
		SampleRows:  rows,
		TextColumns: []string{"name", "email"},
	}
}

// ResultHidden returns the processed result for PreviewEmails with the
// email replaced.
func ResultHidden() *session.Result {
	return &session.Result{
		ColumnsProcessed: []string{"email"},
		Rows:             []session.Row{session.NewRow("email", "HIDDEN")},
	}
}

// ResultCustomers returns n processed rows matching PreviewCustomers with
// every email hidden, plus diagnostics.
func ResultCustomers(n int) *session.Result {
	rows := make([]session.Row, 0, n)
	for i := range n {
		rows = append(rows, session.NewRow(
			"name", fmt.Sprintf("user%d", i),
			"email", "HIDDEN",
			"id", float64(i),
		))
	}
	return &session.Result{
		ColumnsProcessed: []string{"email"},
		Rows:             rows,
		TargetColumn:     "email",
		Pattern:          `[\w.]+@[\w.]+`,
		Replacement:      "HIDDEN",
		MatchesFound:     n,
		HasDiagnostics:   true,
	}
}

// ResultEmpty returns a result where nothing was processed and no rows came
// back.
func ResultEmpty() *session.Result {
	return &session.Result{}
}
