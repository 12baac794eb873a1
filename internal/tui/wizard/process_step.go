package wizard

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mark3labs/regexr/internal/session"
	"github.com/mark3labs/regexr/internal/tui/theme"
)

const instructionPlaceholder = `e.g., Find email addresses and replace them with HIDDEN
e.g., Find names and replace them with PERSON
e.g., Find phone numbers and replace with XXX-XXX-XXXX`

// focusZone represents which part of the process step has focus.
type focusZone int

const (
	focusInput focusZone = iota
	focusProcessButton
	focusStartOverButton
	focusZoneCount
)

// SubmitMsg asks for the instruction to be processed.
type SubmitMsg struct{}

// StartOverMsg asks for the session to be reset to the upload stage.
type StartOverMsg struct{}

// ProcessStep is the second wizard stage: data preview plus the
// instruction input.
type ProcessStep struct {
	input  textarea.Model
	focus  focusZone
	width  int
	height int
}

// NewProcessStep creates the process step.
func NewProcessStep() *ProcessStep {
	t := theme.Current()

	ta := textarea.New()
	ta.Placeholder = instructionPlaceholder
	ta.CharLimit = 2000
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.SetWidth(60)
	ta.SetHeight(4)

	styles := textarea.DefaultDarkStyles()
	styles.Focused.Base = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.HexToColor(t.BorderFocused))
	styles.Blurred.Base = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.HexToColor(t.BorderMuted))
	styles.Focused.Placeholder = t.S().Muted
	styles.Blurred.Placeholder = t.S().Muted
	styles.Focused.CursorLine = lipgloss.NewStyle()
	ta.SetStyles(styles)

	return &ProcessStep{
		input:  ta,
		width:  60,
		height: 20,
	}
}

// Enter prepares the step for display with the session's instruction text
// and focuses the input.
func (p *ProcessStep) Enter(instruction string) tea.Cmd {
	p.input.SetValue(instruction)
	p.focus = focusInput
	return p.input.Focus()
}

// Value returns the text in the instruction input.
func (p *ProcessStep) Value() string {
	return p.input.Value()
}

// SetSize updates the dimensions for the process step.
func (p *ProcessStep) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.input.SetWidth(max(width-2, 20))
}

func (p *ProcessStep) canSubmit(busy bool) bool {
	return !busy && strings.TrimSpace(p.input.Value()) != ""
}

// Update handles messages for the process step. Only StartOver is
// reachable while busy.
func (p *ProcessStep) Update(msg tea.Msg, busy bool) tea.Cmd {
	if edited, ok := msg.(InstructionEditedMsg); ok {
		if edited.Err == nil && !busy {
			p.input.SetValue(edited.Text)
		}
		return nil
	}

	if keyMsg, ok := msg.(tea.KeyPressMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return emit(StartOverMsg{})
		}
		if busy {
			return nil
		}

		switch keyMsg.String() {
		case "tab":
			return p.setFocus((p.focus + 1) % focusZoneCount)
		case "shift+tab":
			return p.setFocus((p.focus + focusZoneCount - 1) % focusZoneCount)
		case "ctrl+e":
			return openEditor(p.input.Value())
		case "ctrl+enter":
			return emit(SubmitMsg{})
		case "enter", "space":
			switch p.focus {
			case focusProcessButton:
				if p.canSubmit(busy) {
					return emit(SubmitMsg{})
				}
				return nil
			case focusStartOverButton:
				return emit(StartOverMsg{})
			}
		}
	}

	if busy || p.focus != focusInput {
		return nil
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

func (p *ProcessStep) setFocus(zone focusZone) tea.Cmd {
	old := p.focus
	p.focus = zone
	if zone == focusInput && old != focusInput {
		return p.input.Focus()
	}
	if zone != focusInput && old == focusInput {
		p.input.Blur()
	}
	return nil
}

// View renders the process step.
func (p *ProcessStep) View(snap session.Snapshot, spinner string) string {
	s := theme.Current().S()
	var sections []string

	if prev := snap.Preview; prev != nil {
		headers, rows := ProjectPreview(prev, PreviewRowLimit)
		sections = append(sections,
			s.Title.Render("Data Preview")+"  "+s.Muted.Render(snap.SelectedFile.Name),
			s.Subtle.Render(fmt.Sprintf("%d rows • %d columns", prev.TotalRows, len(prev.Columns))),
		)
		if len(prev.TextColumns) > 0 {
			sections = append(sections, s.Muted.Render("Text columns: "+strings.Join(prev.TextColumns, ", ")))
		}
		if table := renderTable(headers, rows, p.width); table != "" {
			sections = append(sections, table)
		}
		if prev.TotalRows > len(rows) && len(rows) > 0 {
			sections = append(sections, s.Muted.Render(fmt.Sprintf("Showing first %d of %d rows", len(rows), prev.TotalRows)))
		}
	}

	sections = append(sections, "",
		s.Title.Render("Describe What You Want to Do"),
		s.Muted.Render("Use natural language to describe the pattern you want to find and replace"),
	)
	if snap.Busy {
		sections = append(sections, s.Panel.Width(p.width).Render(s.Subtle.Render(snap.Instruction)))
	} else {
		sections = append(sections, p.input.View())
	}

	processLabel := "Process Data"
	if snap.Busy {
		processLabel = "Processing..."
	}
	bar := NewButtonBar([]Button{
		{Label: processLabel, State: buttonState(p.canSubmit(snap.Busy), p.focus == focusProcessButton)},
		{Label: "Start Over", State: buttonState(true, p.focus == focusStartOverButton)},
	})
	bar.SetWidth(p.width)
	sections = append(sections, "", bar.Render(), "")

	if snap.Busy {
		sections = append(sections, spinner+" "+s.Highlight.Render("Processing..."))
	} else {
		sections = append(sections, renderHintBar(
			"tab", "focus",
			"ctrl+enter", "process",
			"ctrl+e", "editor",
			"esc", "start over",
		))
	}

	return strings.Join(sections, "\n")
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
