package wizard

import (
	"strings"

	"charm.land/glamour/v2"
	"github.com/charmbracelet/x/ansi"
)

const helpMarkdown = `# regexr

Upload a table, say what to find and what to put in its place, and check
the result.

## Writing instructions

- Find email addresses and replace them with HIDDEN
- Find names in the Customer column and replace them with PERSON
- Find phone numbers and replace with XXX-XXX-XXXX

Naming a column narrows the change to it. The service reports the column,
pattern and number of matches it used.

## Keys

| Stage   | Key          | Action                   |
|---------|--------------|--------------------------|
| Upload  | enter        | open folder / upload     |
| Upload  | /            | type a path              |
| Process | tab          | move focus               |
| Process | ctrl+enter   | process                  |
| Process | ctrl+e       | edit in $EDITOR          |
| Process | esc          | start over               |
| Results | d            | toggle diff              |
| Results | ctrl+s       | export CSV               |
| Results | esc          | try a different pattern  |
| Any     | ?            | toggle this help         |
| Any     | ctrl+c       | quit                     |
`

// renderMarkdown renders markdown with glamour.
// Falls back to word-wrapped plain text if rendering fails.
func renderMarkdown(content string, width int) string {
	// Cap width to 120 for readability
	if width > 120 {
		width = 120
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return ansi.Wordwrap(content, width, "")
	}

	rendered, err := r.Render(content)
	if err != nil {
		return ansi.Wordwrap(content, width, "")
	}
	return strings.Trim(rendered, "\n")
}

func renderHelp(width int) string {
	return renderMarkdown(helpMarkdown, width) + "\n\n" + renderHintBar("?/esc", "close help")
}
