package wizard

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/aymanbagabas/go-udiff"
	"github.com/mark3labs/regexr/internal/export"
	"github.com/mark3labs/regexr/internal/session"
	"github.com/mark3labs/regexr/internal/tui/theme"
)

// sampleDiff returns a unified diff of the preview sample against the same
// number of processed rows, both written as CSV over the preview's columns.
// Returns "" when nothing in the sample changed.
func sampleDiff(p *session.Preview, r *session.Result) string {
	if p == nil || r == nil {
		return ""
	}

	n := min(len(p.SampleRows), len(r.Rows))
	var before, after bytes.Buffer
	if err := export.WriteRows(&before, p.Columns, p.SampleRows[:n]); err != nil {
		return ""
	}
	if err := export.WriteRows(&after, p.Columns, r.Rows[:n]); err != nil {
		return ""
	}
	return udiff.Unified("original", "processed", before.String(), after.String())
}

// highlightDiff colors a unified diff with chroma's diff lexer, falling back
// to per-line theme styles if chroma cannot format it.
func highlightDiff(diff string) string {
	lexer := lexers.Get("diff")
	formatter := formatters.Get("terminal16m")
	if lexer == nil || formatter == nil {
		return styleDiffLines(diff)
	}

	iterator, err := lexer.Tokenise(nil, diff)
	if err != nil {
		return styleDiffLines(diff)
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, styles.Get("catppuccin-mocha"), iterator); err != nil {
		return styleDiffLines(diff)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func styleDiffLines(diff string) string {
	s := theme.Current().S()
	lines := strings.Split(strings.TrimRight(diff, "\n"), "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"), strings.HasPrefix(line, "@@"):
			lines[i] = s.DiffHeader.Render(line)
		case strings.HasPrefix(line, "+"):
			lines[i] = s.DiffInsert.Render(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = s.DiffDelete.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
