package wizard

import (
	"os"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/editor"
	"github.com/mark3labs/regexr/internal/logger"
)

// InstructionEditedMsg is sent when the external editor returns.
type InstructionEditedMsg struct {
	Text string
	Err  error
}

// openEditor launches $EDITOR on a temp file holding text and reports the
// edited text back as an InstructionEditedMsg.
func openEditor(text string) tea.Cmd {
	tmpfile, err := os.CreateTemp("", "regexr_instruction_*.txt")
	if err != nil {
		return editorFailed(err)
	}
	path := tmpfile.Name()

	if _, err := tmpfile.WriteString(text); err != nil {
		_ = tmpfile.Close()
		_ = os.Remove(path)
		return editorFailed(err)
	}
	_ = tmpfile.Close()

	cmd, err := editor.Command("regexr", path)
	if err != nil {
		_ = os.Remove(path)
		return editorFailed(err)
	}

	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		defer func() { _ = os.Remove(path) }()
		if err != nil {
			logger.Warn("Editor exited with error: %v", err)
			return InstructionEditedMsg{Text: text, Err: err}
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return InstructionEditedMsg{Text: text, Err: err}
		}
		return InstructionEditedMsg{Text: strings.TrimRight(string(data), "\n")}
	})
}

func editorFailed(err error) tea.Cmd {
	logger.Warn("Cannot open editor: %v", err)
	return func() tea.Msg {
		return InstructionEditedMsg{Err: err}
	}
}
