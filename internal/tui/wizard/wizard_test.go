package wizard

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/mark3labs/regexr/internal/controller"
	"github.com/mark3labs/regexr/internal/session"
	"github.com/mark3labs/regexr/internal/transfer"
	"github.com/mark3labs/regexr/internal/tui/testfixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t    *testing.T
	m    *Model
	tr   *testfixtures.MockTransfer
	dir  string
	out  string
	quit bool
}

func newHarness(t *testing.T, tr *testfixtures.MockTransfer) *harness {
	t.Helper()
	h := &harness{t: t, tr: tr, dir: t.TempDir(), out: t.TempDir()}
	testfixtures.WriteFile(t, h.dir, "data.csv", "email\na@x.com\n")
	testfixtures.WriteFile(t, h.dir, "notes.txt", "hello")

	h.m = New(context.Background(), controller.New(tr), Options{StartDir: h.dir, ExportDir: h.out})
	h.send(tea.WindowSizeMsg{Width: testfixtures.TestTermWidth, Height: testfixtures.TestTermHeight})
	return h
}

// send delivers msg and then every wizard-relevant message the resulting
// commands produce. Commands that do not return promptly (blocked network
// calls, cursor blinks, spinner ticks) are left running.
func (h *harness) send(msg tea.Msg) {
	h.t.Helper()
	queue := []tea.Msg{msg}
	for i := 0; len(queue) > 0 && i < 50; i++ {
		next := queue[0]
		queue = queue[1:]
		_, cmd := h.m.Update(next)
		for _, out := range collect(cmd) {
			if _, ok := out.(tea.QuitMsg); ok {
				h.quit = true
				continue
			}
			if relevant(out) {
				queue = append(queue, out)
			}
		}
	}
}

func (h *harness) key(keys ...string) {
	h.t.Helper()
	for _, k := range keys {
		h.send(testfixtures.Key(k))
	}
}

func (h *harness) typeText(text string) {
	h.t.Helper()
	for _, r := range text {
		if r == ' ' {
			h.send(testfixtures.Key("space"))
			continue
		}
		h.send(testfixtures.Key(string(r)))
	}
}

func (h *harness) view() string {
	return testfixtures.Plain(h.m.render())
}

func (h *harness) snap() session.Snapshot {
	return h.m.ctrl.Snapshot()
}

func (h *harness) toProcess() {
	h.t.Helper()
	h.send(FileSelectedMsg{Path: filepath.Join(h.dir, "data.csv")})
	require.Equal(h.t, session.StageProcess, h.snap().Stage, h.view())
}

func (h *harness) toResults() {
	h.t.Helper()
	h.toProcess()
	h.typeText(testfixtures.FixedInstruction)
	h.key("ctrl+enter")
	require.Equal(h.t, session.StageResults, h.snap().Stage, h.view())
}

func collect(cmd tea.Cmd) []tea.Msg {
	return collectWithin(cmd, 50*time.Millisecond)
}

func collectWithin(cmd tea.Cmd, wait time.Duration) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, collectWithin(c, wait)...)
			}
			return out
		}
		return []tea.Msg{msg}
	case <-time.After(wait):
		return nil
	}
}

func relevant(msg tea.Msg) bool {
	switch msg.(type) {
	case controller.Completion, FileSelectedMsg, SubmitMsg, StartOverMsg,
		ProcessAnotherMsg, TryDifferentPatternMsg, ExportMsg, exportDoneMsg,
		InstructionEditedMsg:
		return true
	}
	return false
}

func TestWizard_HappyPath(t *testing.T) {
	h := newHarness(t, testfixtures.NewMockTransfer())

	view := h.view()
	assert.Contains(t, view, "data.csv")
	assert.Contains(t, view, "notes.txt", "unsupported files are still listed")

	h.toProcess()
	view = h.view()
	assert.Contains(t, view, "3 rows • 1 columns")
	assert.Contains(t, view, "a@x.com")
	assert.Equal(t, testfixtures.FixedFileID, h.snap().FileID)

	h.typeText(testfixtures.FixedInstruction)
	assert.Equal(t, testfixtures.FixedInstruction, h.snap().Instruction)

	h.key("ctrl+enter")
	require.Equal(t, session.StageResults, h.snap().Stage)
	view = h.view()
	assert.Contains(t, view, "Columns processed: email")
	assert.Contains(t, view, "HIDDEN")

	assert.Equal(t, []string{"upload", "preview", "process"}, h.tr.Calls())
	assert.Equal(t, []string{testfixtures.FixedInstruction}, h.tr.Texts())
}

func TestWizard_ExtensionRejection(t *testing.T) {
	h := newHarness(t, testfixtures.NewMockTransfer())

	h.send(FileSelectedMsg{Path: filepath.Join(h.dir, "notes.txt")})

	assert.Equal(t, session.StageUpload, h.snap().Stage)
	assert.Contains(t, h.view(), "Please upload a CSV or Excel file")
	assert.Empty(t, h.tr.Calls())
}

func TestWizard_UploadRejected(t *testing.T) {
	tr := testfixtures.NewMockTransfer()
	tr.UploadErr = &transfer.RejectedError{Op: transfer.OpUpload}
	h := newHarness(t, tr)

	h.send(FileSelectedMsg{Path: filepath.Join(h.dir, "data.csv")})

	snap := h.snap()
	assert.Equal(t, session.StageUpload, snap.Stage)
	assert.False(t, snap.Busy)
	assert.Empty(t, snap.FileID)
	assert.Contains(t, h.view(), "Failed to upload file")
	assert.Equal(t, []string{"upload"}, tr.Calls())
}

func TestWizard_ErrorClearedByNextOperation(t *testing.T) {
	h := newHarness(t, testfixtures.NewMockTransfer())

	h.send(FileSelectedMsg{Path: filepath.Join(h.dir, "notes.txt")})
	require.True(t, h.snap().HasError)

	h.toProcess()
	assert.False(t, h.snap().HasError)
	assert.NotContains(t, h.view(), "Please upload a CSV or Excel file")
}

func TestWizard_BusyUploadShowsSpinnerAndIgnoresInput(t *testing.T) {
	tr := testfixtures.NewMockTransfer()
	tr.Gate = make(chan struct{})
	t.Cleanup(func() { close(tr.Gate) })
	h := newHarness(t, tr)

	h.send(FileSelectedMsg{Path: filepath.Join(h.dir, "data.csv")})
	require.True(t, h.snap().Busy)
	require.Eventually(t, func() bool { return tr.UploadCalls() == 1 }, time.Second, 5*time.Millisecond)

	view := h.view()
	assert.Contains(t, view, "Uploading data.csv...")
	assert.NotContains(t, view, "navigate", "hints give way to the busy indicator")

	// A second selection while busy is ignored.
	h.send(FileSelectedMsg{Path: filepath.Join(h.dir, "data.csv")})
	h.key("down", "enter")
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, tr.UploadCalls())
	assert.Equal(t, session.StageUpload, h.snap().Stage)
}

func TestWizard_ProcessDisabledUntilInstruction(t *testing.T) {
	h := newHarness(t, testfixtures.NewMockTransfer())
	h.toProcess()

	// Focus the Process Data button while the instruction is empty.
	h.key("tab", "enter")
	assert.Equal(t, session.StageProcess, h.snap().Stage)
	assert.False(t, h.snap().HasError, "disabled button does nothing")

	// The keyboard shortcut reaches the guard, which rejects it.
	h.key("shift+tab")
	h.typeText("   ")
	h.key("ctrl+enter")
	assert.Equal(t, session.StageProcess, h.snap().Stage)
	assert.Contains(t, h.view(), "Please enter instructions")
	assert.Equal(t, []string{"upload", "preview"}, h.tr.Calls())
}

func TestWizard_ProcessButton(t *testing.T) {
	h := newHarness(t, testfixtures.NewMockTransfer())
	h.toProcess()

	h.typeText("hide emails")
	h.key("tab", "enter")

	assert.Equal(t, session.StageResults, h.snap().Stage)
	assert.Equal(t, []string{"hide emails"}, h.tr.Texts())
}

func TestWizard_BusyProcessing(t *testing.T) {
	tr := testfixtures.NewMockTransfer()
	h := newHarness(t, tr)
	h.toProcess()

	tr.Gate = make(chan struct{})
	t.Cleanup(func() { close(tr.Gate) })

	h.typeText("hide emails")
	h.key("ctrl+enter")
	require.True(t, h.snap().Busy)

	assert.Contains(t, h.view(), "Processing...")
	assert.False(t, h.m.process.canSubmit(h.snap().Busy))

	// Typing is ignored while the request is in flight.
	h.typeText("x")
	assert.Equal(t, "hide emails", h.snap().Instruction)
}

func TestWizard_PreviewShowsFirstFiveRows(t *testing.T) {
	tr := testfixtures.NewMockTransfer()
	tr.Preview = testfixtures.PreviewCustomers(8)
	h := newHarness(t, tr)
	h.toProcess()

	view := h.view()
	assert.Contains(t, view, "80 rows • 3 columns")
	assert.Contains(t, view, "Text columns: name, email")
	assert.Contains(t, view, "user4@x.com")
	assert.NotContains(t, view, "user5@x.com")
	assert.Contains(t, view, "Showing first 5 of 80 rows")
}

func TestWizard_ResultsShowFirstTenRows(t *testing.T) {
	tr := testfixtures.NewMockTransfer()
	tr.Preview = testfixtures.PreviewCustomers(3)
	tr.Result = testfixtures.ResultCustomers(12)
	h := newHarness(t, tr)
	h.toResults()

	view := h.view()
	assert.Contains(t, view, "Columns processed: email")
	assert.Contains(t, view, "Target column: email")
	assert.Contains(t, view, "Matches: 12")
	assert.Contains(t, view, "user9")
	assert.NotContains(t, view, "user11")
	assert.Contains(t, view, "Showing first 10 of 12 rows")
}

func TestWizard_ResultsNoneProcessed(t *testing.T) {
	tr := testfixtures.NewMockTransfer()
	tr.Result = testfixtures.ResultEmpty()
	h := newHarness(t, tr)
	h.toResults()

	view := h.view()
	assert.Contains(t, view, "Columns processed: None")
	assert.Contains(t, view, "No rows returned")
}

func TestWizard_TryDifferentPattern(t *testing.T) {
	h := newHarness(t, testfixtures.NewMockTransfer())
	h.toResults()
	before := h.snap()

	h.key("esc")

	after := h.snap()
	require.Equal(t, session.StageProcess, after.Stage)
	assert.Equal(t, before.Instruction, after.Instruction)
	assert.Equal(t, before.Preview, after.Preview)
	assert.Equal(t, testfixtures.FixedInstruction, h.m.process.Value(), "input shows the kept instruction")

	// Submitting again goes straight to process with the same file id.
	h.key("ctrl+enter")
	assert.Equal(t, session.StageResults, h.snap().Stage)
	assert.Equal(t, []string{"upload", "preview", "process", "process"}, h.tr.Calls())
}

func TestWizard_StartOver(t *testing.T) {
	h := newHarness(t, testfixtures.NewMockTransfer())
	h.toProcess()

	h.key("esc")

	snap := h.snap()
	assert.Equal(t, session.StageUpload, snap.Stage)
	assert.Empty(t, snap.FileID)
	assert.Nil(t, snap.Preview)
	assert.False(t, h.quit, "esc on process does not quit")
}

func TestWizard_ProcessAnotherFile(t *testing.T) {
	h := newHarness(t, testfixtures.NewMockTransfer())
	h.toResults()

	h.key("enter") // "Process Another File" has focus

	snap := h.snap()
	assert.Equal(t, session.StageUpload, snap.Stage)
	assert.Nil(t, snap.Result)
	assert.Empty(t, snap.Instruction)
}

func TestWizard_DiffToggle(t *testing.T) {
	tr := testfixtures.NewMockTransfer()
	tr.Preview = testfixtures.PreviewCustomers(2)
	tr.Result = testfixtures.ResultCustomers(2)
	h := newHarness(t, tr)
	h.toResults()

	h.key("d")
	view := h.view()
	assert.Contains(t, view, "Changes in Sample Rows")
	assert.Contains(t, view, "-user0,user0@x.com,0")
	assert.Contains(t, view, "+user0,HIDDEN,0")

	h.key("d")
	assert.Contains(t, h.view(), "Updated Data")
}

func TestWizard_Export(t *testing.T) {
	h := newHarness(t, testfixtures.NewMockTransfer())
	h.toResults()

	h.key("ctrl+s")

	path := filepath.Join(h.out, "data-processed.csv")
	assert.Contains(t, h.view(), "Exported to "+path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "email\nHIDDEN\n", string(data))
}

func TestWizard_Help(t *testing.T) {
	h := newHarness(t, testfixtures.NewMockTransfer())

	h.key("?")
	assert.Contains(t, h.view(), "Writing instructions")

	h.key("esc")
	assert.False(t, h.quit, "esc closes help first")
	assert.NotContains(t, h.view(), "Writing instructions")
}

func TestWizard_EscOnUploadQuits(t *testing.T) {
	h := newHarness(t, testfixtures.NewMockTransfer())
	h.key("esc")
	assert.True(t, h.quit)
}

func TestWizard_EscIgnoredWhileUploading(t *testing.T) {
	tr := testfixtures.NewMockTransfer()
	tr.Gate = make(chan struct{})
	t.Cleanup(func() { close(tr.Gate) })
	h := newHarness(t, tr)

	h.send(FileSelectedMsg{Path: filepath.Join(h.dir, "data.csv")})
	require.True(t, h.snap().Busy)

	h.key("esc")
	assert.False(t, h.quit, "esc waits for the upload to settle")
	assert.Equal(t, session.StageUpload, h.snap().Stage)
	assert.True(t, h.snap().Busy)

	h.key("ctrl+c")
	assert.True(t, h.quit)
}

func TestWizard_SpinnerStartsOncePerOperation(t *testing.T) {
	h := newHarness(t, testfixtures.NewMockTransfer())
	wait := 500 * time.Millisecond
	isTick := func(msg tea.Msg) bool {
		_, ok := msg.(spinner.TickMsg)
		return ok
	}

	_, cmd := h.m.Update(FileSelectedMsg{Path: filepath.Join(h.dir, "data.csv")})
	var uploaded controller.Completion
	ticks := 0
	for _, msg := range collectWithin(cmd, wait) {
		if c, ok := msg.(controller.Completion); ok {
			uploaded = c
		}
		if isTick(msg) {
			ticks++
		}
	}
	require.NotNil(t, uploaded)
	assert.Equal(t, 1, ticks, "selecting a file starts the spinner")

	// Resolving the upload chains the preview fetch without a second tick loop.
	_, cmd = h.m.Update(uploaded)
	msgs := collectWithin(cmd, wait)
	assert.NotEmpty(t, msgs)
	for _, msg := range msgs {
		assert.False(t, isTick(msg), "follow-up task must not restart the spinner")
	}
}

func TestWizard_CtrlCQuits(t *testing.T) {
	h := newHarness(t, testfixtures.NewMockTransfer())
	h.toProcess()
	h.key("ctrl+c")
	assert.True(t, h.quit)
}

func TestWizard_PreselectedFile(t *testing.T) {
	tr := testfixtures.NewMockTransfer()
	dir := t.TempDir()
	path := testfixtures.WriteFile(t, dir, "data.csv", "email\n")

	m := New(context.Background(), controller.New(tr), Options{File: path, StartDir: dir})
	h := &harness{t: t, m: m, tr: tr, dir: dir}
	for _, msg := range collect(m.Init()) {
		if relevant(msg) {
			h.send(msg)
		}
	}

	assert.Equal(t, session.StageProcess, h.snap().Stage)
	assert.Equal(t, []string{path}, tr.Paths())
}

func TestRenderHeader(t *testing.T) {
	header := testfixtures.Plain(renderHeader(session.StageProcess))

	assert.Contains(t, header, "regexr")
	assert.Contains(t, header, "✓ Upload File")
	assert.Contains(t, header, "2 Process Data")
	assert.Contains(t, header, "3 Results")
}
