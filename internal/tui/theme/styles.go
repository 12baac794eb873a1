package theme

import "charm.land/lipgloss/v2"

// Styles contains all pre-built lipgloss styles for the TUI.
type Styles struct {
	// Text
	Base      lipgloss.Style
	Title     lipgloss.Style
	Subtle    lipgloss.Style
	Muted     lipgloss.Style
	Highlight lipgloss.Style
	Success   lipgloss.Style
	Error     lipgloss.Style

	// Containers
	ModalContainer lipgloss.Style
	ModalTitle     lipgloss.Style
	Panel          lipgloss.Style
	ErrorBanner    lipgloss.Style

	// Hints
	HintKey       lipgloss.Style
	HintDesc      lipgloss.Style
	HintSeparator lipgloss.Style

	// Buttons
	ButtonNormal   lipgloss.Style
	ButtonDisabled lipgloss.Style
	ButtonFocused  lipgloss.Style

	// Progress indicator
	StepDone    lipgloss.Style
	StepCurrent lipgloss.Style
	StepPending lipgloss.Style

	// Tables
	TableHeader lipgloss.Style
	TableCell   lipgloss.Style
	TableBorder lipgloss.Style

	// File browser
	FileDir         lipgloss.Style
	FileSupported   lipgloss.Style
	FileUnsupported lipgloss.Style
	FileSelected    lipgloss.Style

	// Diff
	DiffInsert lipgloss.Style
	DiffDelete lipgloss.Style
	DiffHeader lipgloss.Style
}

// buildStyles constructs the pre-built styles from theme colors.
func (t *Theme) buildStyles() *Styles {
	c := lipgloss.Color
	button := lipgloss.NewStyle().Padding(0, 2).MarginLeft(1).MarginRight(1)

	return &Styles{
		Base:      lipgloss.NewStyle().Foreground(c(t.FgBase)),
		Title:     lipgloss.NewStyle().Foreground(c(t.Primary)).Bold(true),
		Subtle:    lipgloss.NewStyle().Foreground(c(t.FgSubtle)),
		Muted:     lipgloss.NewStyle().Foreground(c(t.FgMuted)),
		Highlight: lipgloss.NewStyle().Foreground(c(t.Tertiary)).Bold(true),
		Success:   lipgloss.NewStyle().Foreground(c(t.Success)),
		Error:     lipgloss.NewStyle().Foreground(c(t.Error)),

		ModalContainer: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c(t.Tertiary)).
			Background(c(t.BgBase)).
			Padding(1, 2),
		ModalTitle: lipgloss.NewStyle().
			Foreground(c(t.Primary)).
			Bold(true),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c(t.BorderDefault)).
			Padding(0, 1),
		ErrorBanner: lipgloss.NewStyle().
			Foreground(c(t.Error)).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c(t.Error)).
			Padding(0, 1),

		HintKey:       lipgloss.NewStyle().Foreground(c(t.FgSubtle)).Bold(true),
		HintDesc:      lipgloss.NewStyle().Foreground(c(t.FgMuted)),
		HintSeparator: lipgloss.NewStyle().Foreground(c(t.BgSurface2)),

		ButtonNormal: button.
			Foreground(c(t.FgBase)).
			Background(c(t.BgSurface0)),
		ButtonDisabled: button.
			Foreground(c(t.BgOverlay)).
			Background(c(t.BgMantle)),
		ButtonFocused: button.
			Foreground(c(t.BgBase)).
			Background(c(t.Tertiary)).
			Bold(true),

		StepDone:    lipgloss.NewStyle().Foreground(c(t.Success)),
		StepCurrent: lipgloss.NewStyle().Foreground(c(t.Primary)).Bold(true),
		StepPending: lipgloss.NewStyle().Foreground(c(t.BgOverlay)),

		TableHeader: lipgloss.NewStyle().Foreground(c(t.Secondary)).Bold(true).Padding(0, 1),
		TableCell:   lipgloss.NewStyle().Foreground(c(t.FgBase)).Padding(0, 1),
		TableBorder: lipgloss.NewStyle().Foreground(c(t.BorderDefault)),

		FileDir:         lipgloss.NewStyle().Foreground(c(t.Secondary)),
		FileSupported:   lipgloss.NewStyle().Foreground(c(t.FgBase)),
		FileUnsupported: lipgloss.NewStyle().Foreground(c(t.BgOverlay)),
		FileSelected: lipgloss.NewStyle().
			Foreground(c(t.Primary)).
			Background(c(t.BgSurface0)).
			Bold(true),

		DiffInsert: lipgloss.NewStyle().Foreground(c(t.Success)).Background(c(t.DiffInsertBg)),
		DiffDelete: lipgloss.NewStyle().Foreground(c(t.Error)).Background(c(t.DiffDeleteBg)),
		DiffHeader: lipgloss.NewStyle().Foreground(c(t.FgMuted)).Bold(true),
	}
}
