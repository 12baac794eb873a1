// Package wizard is the terminal front end: a Bubble Tea program that walks
// through the upload, process and results stages of a session.
package wizard

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/mark3labs/regexr/internal/controller"
	"github.com/mark3labs/regexr/internal/export"
	"github.com/mark3labs/regexr/internal/logger"
	"github.com/mark3labs/regexr/internal/session"
	"github.com/mark3labs/regexr/internal/tui/theme"
)

// Options configures a wizard run.
type Options struct {
	File      string // Pre-selected file, uploaded on start
	StartDir  string // Directory the upload browser opens in
	ExportDir string // Where ctrl+s writes CSV exports
}

// exportDoneMsg reports the outcome of an export.
type exportDoneMsg struct {
	path string
	err  error
}

// Model is the root BubbleTea model. It owns the controller and routes
// input to the step for the current stage.
type Model struct {
	ctx  context.Context
	ctrl *controller.Controller
	opts Options

	spinner spinner.Model
	upload  *UploadStep
	process *ProcessStep
	results *ResultsStep

	watch    tea.Cmd       // First directory watch wait, handed out by Init
	stage    session.Stage // Stage at the last sync, to detect transitions
	showHelp bool
	width    int
	height   int
}

// New creates the wizard model around ctrl.
func New(ctx context.Context, ctrl *controller.Controller, opts Options) *Model {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = theme.Current().S().Highlight

	m := &Model{
		ctx:     ctx,
		ctrl:    ctrl,
		opts:    opts,
		spinner: s,
		upload:  NewUploadStep(opts.StartDir),
		process: NewProcessStep(),
		results: NewResultsStep(),
		stage:   ctrl.Stage(),
		width:   100,
		height:  30,
	}
	m.updateStepSizes()
	return m
}

// Run starts a BubbleTea program for the wizard and returns the final
// session snapshot once the user quits.
func Run(ctx context.Context, ctrl *controller.Controller, opts Options) (session.Snapshot, error) {
	m := New(ctx, ctrl, opts)
	m.watch = m.upload.StartWatching()
	defer m.upload.StopWatching()

	p := tea.NewProgram(m, tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return ctrl.Snapshot(), fmt.Errorf("wizard failed: %w", err)
	}
	return ctrl.Snapshot(), nil
}

// Init starts the directory watch and uploads the pre-selected file, if
// any.
func (m *Model) Init() tea.Cmd {
	watch := m.watch
	m.watch = nil
	if m.opts.File == "" {
		return watch
	}
	return tea.Batch(watch, m.selectFile(m.opts.File))
}

// Update handles messages for the wizard.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateStepSizes()
		return m, nil

	case tea.KeyPressMsg:
		return m, m.handleKey(msg)

	case spinner.TickMsg:
		if !m.ctrl.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case controller.Completion:
		next := m.ctrl.Resolve(msg)
		return m, tea.Batch(m.run(next), m.sync())

	case dirChangedMsg:
		return m, m.upload.refresh(msg.dir)

	case FileSelectedMsg:
		return m, m.selectFile(msg.Path)

	case SubmitMsg:
		m.ctrl.SetInstruction(m.process.Value())
		return m, m.start(m.ctrl.Submit())

	case StartOverMsg:
		m.ctrl.StartOver()
		return m, m.sync()

	case ProcessAnotherMsg:
		m.ctrl.ProcessAnother()
		return m, m.sync()

	case TryDifferentPatternMsg:
		m.ctrl.TryDifferentPattern()
		return m, m.sync()

	case ExportMsg:
		return m, m.export()

	case exportDoneMsg:
		m.results.SetExportResult(msg.path, msg.err)
		return m, nil

	case InstructionEditedMsg:
		cmd := m.process.Update(msg, m.ctrl.Busy())
		m.ctrl.SetInstruction(m.process.Value())
		return m, cmd
	}

	return m, m.forward(msg)
}

// handleKey applies global keys, then hands the rest to the active step.
func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit
	}

	if m.showHelp {
		switch msg.String() {
		case "?", "esc", "q":
			m.showHelp = false
		}
		return nil
	}

	if msg.String() == "?" && !m.capturingText() {
		m.showHelp = true
		return nil
	}

	if m.ctrl.Stage() == session.StageUpload && msg.String() == "esc" && !m.upload.Typing() {
		if m.ctrl.Busy() {
			return nil
		}
		return tea.Quit
	}

	return m.forward(msg)
}

// forward passes msg to the step for the current stage.
func (m *Model) forward(msg tea.Msg) tea.Cmd {
	busy := m.ctrl.Busy()
	switch m.ctrl.Stage() {
	case session.StageUpload:
		return m.upload.Update(msg, busy)
	case session.StageProcess:
		cmd := m.process.Update(msg, busy)
		m.ctrl.SetInstruction(m.process.Value())
		return cmd
	case session.StageResults:
		return m.results.Update(msg)
	}
	return nil
}

// capturingText reports whether keystrokes are going into a text input.
func (m *Model) capturingText() bool {
	switch m.ctrl.Stage() {
	case session.StageUpload:
		return m.upload.Typing()
	case session.StageProcess:
		return m.process.focus == focusInput && !m.ctrl.Busy()
	}
	return false
}

func (m *Model) selectFile(path string) tea.Cmd {
	logger.Debug("File selected: %s", path)
	return m.start(m.ctrl.SelectFile(path))
}

// start runs the first task of an operation and starts the spinner. The
// spinner keeps ticking until the controller is no longer busy.
func (m *Model) start(task controller.Task) tea.Cmd {
	if task == nil {
		return nil
	}
	return tea.Batch(m.run(task), m.spinner.Tick)
}

// run turns a controller task into a command whose message is the task's
// Completion.
func (m *Model) run(task controller.Task) tea.Cmd {
	if task == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg { return task(ctx) }
}

// sync prepares the step the controller has just moved to.
func (m *Model) sync() tea.Cmd {
	stage := m.ctrl.Stage()
	if stage == m.stage {
		return nil
	}
	m.stage = stage
	logger.Debug("Stage changed to %s", stage)

	switch stage {
	case session.StageProcess:
		return m.process.Enter(m.ctrl.Snapshot().Instruction)
	case session.StageResults:
		m.results.Enter()
	}
	return nil
}

func (m *Model) export() tea.Cmd {
	snap := m.ctrl.Snapshot()
	if snap.Result == nil {
		return nil
	}
	dir, name, result := m.opts.ExportDir, snap.SelectedFile.Name, snap.Result
	return func() tea.Msg {
		path, err := export.ToDir(dir, name, result)
		if err != nil {
			logger.Error("Export failed: %v", err)
		}
		return exportDoneMsg{path: path, err: err}
	}
}

// updateStepSizes gives each step the space inside the modal.
func (m *Model) updateStepSizes() {
	w, h := m.contentSize()
	m.upload.SetSize(w, h)
	m.process.SetSize(w, h)
	m.results.SetSize(w, h)
}

// contentSize is the area inside the modal container, less the header.
func (m *Model) contentSize() (int, int) {
	return max(m.modalWidth()-6, 40), max(m.height-12, 10)
}

func (m *Model) modalWidth() int {
	return min(max(m.width-4, 60), 120)
}

// View renders the wizard UI.
func (m *Model) View() tea.View {
	var view tea.View
	view.AltScreen = true
	view.KeyboardEnhancements = tea.KeyboardEnhancements{
		ReportEventTypes: true, // Required for ctrl+enter
	}

	canvas := uv.NewScreenBuffer(m.width, m.height)
	uv.NewStyledString(m.render()).Draw(canvas, uv.Rectangle{
		Min: uv.Position{X: 0, Y: 0},
		Max: uv.Position{X: m.width, Y: m.height},
	})

	view.Content = lipgloss.NewLayer(canvas.Render())
	return view
}

// render draws the modal: header, error banner and the active step.
func (m *Model) render() string {
	s := theme.Current().S()
	snap := m.ctrl.Snapshot()
	contentWidth, _ := m.contentSize()

	sections := []string{renderHeader(snap.Stage), ""}

	if snap.HasError {
		sections = append(sections, s.ErrorBanner.Width(contentWidth).Render("✗ "+snap.Error), "")
	}

	switch {
	case m.showHelp:
		sections = append(sections, renderHelp(contentWidth))
	case snap.Stage == session.StageUpload:
		sections = append(sections, m.upload.View(snap, m.spinner.View()))
	case snap.Stage == session.StageProcess:
		sections = append(sections, m.process.View(snap, m.spinner.View()))
	case snap.Stage == session.StageResults:
		sections = append(sections, m.results.View(snap))
	}

	modal := s.ModalContainer.Width(m.modalWidth()).Render(strings.Join(sections, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Top, modal)
}

var stepLabels = []string{"Upload File", "Process Data", "Results"}

// renderHeader draws the title and the three-step progress indicator.
func renderHeader(current session.Stage) string {
	t := theme.Current()
	s := t.S()

	title := theme.ApplyGradient("regexr", t.Primary, t.Secondary)

	steps := make([]string, 0, len(stepLabels))
	for i, label := range stepLabels {
		stage := session.Stage(i)
		switch {
		case stage < current:
			steps = append(steps, s.StepDone.Render("✓ "+label))
		case stage == current:
			steps = append(steps, s.StepCurrent.Render(fmt.Sprintf("%d %s", i+1, label)))
		default:
			steps = append(steps, s.StepPending.Render(fmt.Sprintf("%d %s", i+1, label)))
		}
	}

	return title + s.Muted.Render("  find & replace for tables") + "\n" +
		strings.Join(steps, s.StepPending.Render(" ── "))
}
