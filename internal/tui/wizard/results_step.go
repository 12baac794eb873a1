package wizard

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/mark3labs/regexr/internal/session"
	"github.com/mark3labs/regexr/internal/tui/theme"
)

// ProcessAnotherMsg asks for a full reset back to the upload stage.
type ProcessAnotherMsg struct{}

// TryDifferentPatternMsg asks to return to the process stage keeping the
// instruction.
type TryDifferentPatternMsg struct{}

// ExportMsg asks for the processed rows to be written to CSV.
type ExportMsg struct{}

// ResultsStep is the last wizard stage: summary, processed rows and an
// optional diff against the preview sample.
type ResultsStep struct {
	focus     int // 0 = Process Another File, 1 = Try Different Pattern
	showDiff  bool
	exported  string
	exportErr error
	width     int
	height    int
}

// NewResultsStep creates the results step.
func NewResultsStep() *ResultsStep {
	return &ResultsStep{width: 60, height: 20}
}

// Enter resets per-visit state.
func (r *ResultsStep) Enter() {
	r.focus = 0
	r.showDiff = false
	r.exported = ""
	r.exportErr = nil
}

// SetSize updates the dimensions for the results step.
func (r *ResultsStep) SetSize(width, height int) {
	r.width = width
	r.height = height
}

// SetExportResult records the outcome of the last export.
func (r *ResultsStep) SetExportResult(path string, err error) {
	r.exported = path
	r.exportErr = err
}

// ShowingDiff reports whether the diff replaces the table.
func (r *ResultsStep) ShowingDiff() bool {
	return r.showDiff
}

// Update handles keys for the results step.
func (r *ResultsStep) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}

	switch keyMsg.String() {
	case "tab", "right", "l", "shift+tab", "left", "h":
		r.focus = 1 - r.focus
	case "d":
		r.showDiff = !r.showDiff
	case "ctrl+s":
		return emit(ExportMsg{})
	case "n":
		return emit(ProcessAnotherMsg{})
	case "esc", "p":
		return emit(TryDifferentPatternMsg{})
	case "enter", "space":
		if r.focus == 0 {
			return emit(ProcessAnotherMsg{})
		}
		return emit(TryDifferentPatternMsg{})
	}
	return nil
}

// View renders the results step.
func (r *ResultsStep) View(snap session.Snapshot) string {
	s := theme.Current().S()
	res := snap.Result
	var sections []string

	sections = append(sections,
		s.Success.Bold(true).Render("✓ Processing Complete!"),
		s.Base.Render(res.Summary()),
	)
	if diags := res.Diagnostics(); len(diags) > 0 {
		parts := make([]string, 0, len(diags))
		for _, d := range diags {
			parts = append(parts, s.Muted.Render(d[0]+":")+" "+s.Highlight.Render(d[1]))
		}
		sections = append(sections, strings.Join(parts, s.HintSeparator.Render("  •  ")))
	}
	if res != nil && res.Message != "" {
		sections = append(sections, s.Subtle.Render(res.Message))
	}
	sections = append(sections, "")

	if r.showDiff {
		sections = append(sections, s.Title.Render("Changes in Sample Rows"))
		if diff := sampleDiff(snap.Preview, res); diff != "" {
			sections = append(sections, highlightDiff(diff))
		} else {
			sections = append(sections, s.Muted.Render("No changes in the sample rows"))
		}
	} else {
		sections = append(sections, s.Title.Render("Updated Data"))
		headers, rows := ProjectResult(res, ResultRowLimit)
		if table := renderTable(headers, rows, r.width); table != "" {
			sections = append(sections, table)
			if total := len(res.Rows); total > len(rows) {
				sections = append(sections, s.Muted.Render(fmt.Sprintf("Showing first %d of %d rows", len(rows), total)))
			}
		} else {
			sections = append(sections, s.Muted.Render("No rows returned"))
		}
	}

	switch {
	case r.exportErr != nil:
		sections = append(sections, s.Error.Render("Export failed: "+r.exportErr.Error()))
	case r.exported != "":
		sections = append(sections, s.Success.Render("Exported to "+r.exported))
	}

	bar := NewButtonBar([]Button{
		{Label: "Process Another File", State: buttonState(true, r.focus == 0)},
		{Label: "Try Different Pattern", State: buttonState(!snap.Busy, r.focus == 1)},
	})
	bar.SetWidth(r.width)
	sections = append(sections, "", bar.Render(), "")

	diffHint := "diff"
	if r.showDiff {
		diffHint = "table"
	}
	sections = append(sections, renderHintBar(
		"tab", "focus",
		"enter", "select",
		"d", diffHint,
		"ctrl+s", "export csv",
		"esc", "try different pattern",
	))

	return strings.Join(sections, "\n")
}
