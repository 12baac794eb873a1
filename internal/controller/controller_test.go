package controller

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/regexr/internal/session"
	"github.com/mark3labs/regexr/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransfer records calls and answers from canned values. busyAt holds
// the controller's busy flag observed at the start of each call.
type fakeTransfer struct {
	ctrl *Controller

	fileID    string
	uploadErr error

	preview    *session.Preview
	previewErr error

	result     *session.Result
	processErr error

	calls  []string
	busyAt []bool
	texts  []string
	ids    []string
}

func (f *fakeTransfer) observe(call string) {
	f.calls = append(f.calls, call)
	if f.ctrl != nil {
		f.busyAt = append(f.busyAt, f.ctrl.Busy())
	}
}

func (f *fakeTransfer) Upload(_ context.Context, _ string) (string, error) {
	f.observe("upload")
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	return f.fileID, nil
}

func (f *fakeTransfer) FetchPreview(_ context.Context, fileID string) (*session.Preview, error) {
	f.observe("preview")
	f.ids = append(f.ids, fileID)
	return f.preview, f.previewErr
}

func (f *fakeTransfer) Process(_ context.Context, fileID, text string) (*session.Result, error) {
	f.observe("process")
	f.ids = append(f.ids, fileID)
	f.texts = append(f.texts, text)
	return f.result, f.processErr
}

func happyTransfer() *fakeTransfer {
	return &fakeTransfer{
		fileID: "f1",
		preview: &session.Preview{
			Columns:    []string{"email"},
			TotalRows:  3,
			SampleRows: []session.Row{session.NewRow("email", "a@x.com")},
		},
		result: &session.Result{
			ColumnsProcessed: []string{"email"},
			Rows:             []session.Row{session.NewRow("email", "HIDDEN")},
		},
	}
}

func newController(f *fakeTransfer) *Controller {
	c := New(f)
	f.ctrl = c
	return c
}

// toProcess drives a controller into the Process stage.
func toProcess(t *testing.T, c *Controller) {
	t.Helper()
	c.Drive(context.Background(), c.SelectFile("data.csv"))
	require.Equal(t, session.StageProcess, c.Stage())
}

func TestSupported(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"data.csv", true},
		{"DATA.CSV", true},
		{"book.xlsx", true},
		{"old.xls", true},
		{"notes.txt", false},
		{"csv", false},
		{"archive.csv.gz", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Supported(tt.name))
		})
	}
}

func TestHappyPath(t *testing.T) {
	f := happyTransfer()
	c := newController(f)

	c.Drive(context.Background(), c.SelectFile("data.csv"))

	snap := c.Snapshot()
	assert.Equal(t, session.StageProcess, snap.Stage)
	assert.Equal(t, "f1", snap.FileID)
	assert.Equal(t, "data.csv", snap.SelectedFile.Name)
	require.NotNil(t, snap.Preview)
	assert.Len(t, snap.Preview.SampleRows, 1)
	assert.False(t, snap.Busy)

	c.SetInstruction("replace emails with HIDDEN")
	c.Drive(context.Background(), c.Submit())

	snap = c.Snapshot()
	assert.Equal(t, session.StageResults, snap.Stage)
	require.NotNil(t, snap.Result)
	assert.Equal(t, []string{"email"}, snap.Result.ColumnsProcessed)
	assert.Equal(t, "HIDDEN", snap.Result.Rows[0].Cell("email"))
	assert.False(t, snap.Busy)
	assert.False(t, snap.HasError)

	assert.Equal(t, []string{"upload", "preview", "process"}, f.calls)
	assert.Equal(t, []string{"f1", "f1"}, f.ids)
	assert.Equal(t, []string{"replace emails with HIDDEN"}, f.texts)
}

func TestBusySpansEveryCall(t *testing.T) {
	f := happyTransfer()
	c := newController(f)

	task := c.SelectFile("data.csv")
	require.NotNil(t, task)
	assert.True(t, c.Busy(), "busy as soon as the upload is dispatched")

	next := c.Resolve(task(context.Background()))
	require.NotNil(t, next, "upload success should chain the preview call")
	assert.True(t, c.Busy(), "busy stays set between upload and preview")

	c.Resolve(next(context.Background()))
	assert.False(t, c.Busy())

	c.SetInstruction("x")
	task = c.Submit()
	require.NotNil(t, task)
	assert.True(t, c.Busy())
	c.Resolve(task(context.Background()))
	assert.False(t, c.Busy())

	assert.Equal(t, []bool{true, true, true}, f.busyAt)
}

func TestSelectFile_UnsupportedExtension(t *testing.T) {
	f := happyTransfer()
	c := newController(f)

	task := c.SelectFile("notes.txt")
	assert.Nil(t, task)

	snap := c.Snapshot()
	assert.Equal(t, session.StageUpload, snap.Stage)
	assert.True(t, snap.HasError)
	assert.Equal(t, MsgUnsupportedFile, snap.Error)
	assert.True(t, snap.SelectedFile.IsZero())
	assert.Empty(t, f.calls)

	var verr *ValidationError
	assert.True(t, errors.As(c.Err(), &verr))
}

func TestSelectFile_RejectionKeepsPreviousFile(t *testing.T) {
	f := happyTransfer()
	f.uploadErr = &transfer.NetworkError{Op: transfer.OpUpload, Err: errors.New("refused")}
	c := newController(f)

	c.Drive(context.Background(), c.SelectFile("data.csv"))
	require.Equal(t, "data.csv", c.Snapshot().SelectedFile.Name)

	assert.Nil(t, c.SelectFile("notes.txt"))
	snap := c.Snapshot()
	assert.Equal(t, "data.csv", snap.SelectedFile.Name)
	assert.Equal(t, MsgUnsupportedFile, snap.Error, "only the latest problem is shown")
}

func TestSelectFile_IgnoredWhileBusy(t *testing.T) {
	f := happyTransfer()
	c := newController(f)

	first := c.SelectFile("data.csv")
	require.NotNil(t, first)

	assert.Nil(t, c.SelectFile("other.csv"))
	assert.Nil(t, c.SelectFile("notes.txt"), "guards are not evaluated while busy")
	snap := c.Snapshot()
	assert.Equal(t, "data.csv", snap.SelectedFile.Name)
	assert.False(t, snap.HasError)
}

func TestUploadRejected(t *testing.T) {
	f := happyTransfer()
	f.uploadErr = &transfer.RejectedError{Op: transfer.OpUpload}
	c := newController(f)

	c.Drive(context.Background(), c.SelectFile("data.csv"))

	snap := c.Snapshot()
	assert.Equal(t, session.StageUpload, snap.Stage)
	assert.False(t, snap.Busy)
	assert.Equal(t, MsgUploadRejected, snap.Error)
	assert.Empty(t, snap.FileID)
	assert.Equal(t, []string{"upload"}, f.calls, "preview must not follow a failed upload")

	var rejected *transfer.RejectedError
	assert.True(t, errors.As(c.Err(), &rejected))
}

func TestUploadNetworkError(t *testing.T) {
	f := happyTransfer()
	f.uploadErr = &transfer.NetworkError{Op: transfer.OpUpload, Err: errors.New("connection refused")}
	c := newController(f)

	c.Drive(context.Background(), c.SelectFile("data.csv"))

	snap := c.Snapshot()
	assert.Equal(t, session.StageUpload, snap.Stage)
	assert.Equal(t, MsgUploadNetwork, snap.Error)
	assert.Equal(t, []string{"upload"}, f.calls)
}

func TestPreviewFailure(t *testing.T) {
	f := happyTransfer()
	f.preview = nil
	f.previewErr = &transfer.RejectedError{Op: transfer.OpPreview}
	c := newController(f)

	c.Drive(context.Background(), c.SelectFile("data.csv"))

	snap := c.Snapshot()
	assert.Equal(t, session.StageUpload, snap.Stage)
	assert.False(t, snap.Busy)
	assert.Empty(t, snap.FileID, "file id is only kept once the Process stage is reached")
	assert.Nil(t, snap.Preview)
	assert.Equal(t, MsgPreviewFailed, snap.Error)
	assert.Equal(t, "data.csv", snap.SelectedFile.Name)
}

func TestSubmit_BlankInstruction(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t "} {
		t.Run("blank", func(t *testing.T) {
			f := happyTransfer()
			c := newController(f)
			toProcess(t, c)

			c.SetInstruction(text)
			assert.Nil(t, c.Submit())

			snap := c.Snapshot()
			assert.Equal(t, session.StageProcess, snap.Stage)
			assert.Equal(t, MsgEmptyInstruction, snap.Error)
			assert.NotContains(t, f.calls, "process")
		})
	}
}

func TestSubmit_IgnoredWhileBusy(t *testing.T) {
	f := happyTransfer()
	c := newController(f)
	toProcess(t, c)

	c.SetInstruction("first")
	task := c.Submit()
	require.NotNil(t, task)

	c.SetInstruction("second")
	assert.Nil(t, c.Submit())
	assert.Equal(t, "first", c.Snapshot().Instruction, "instruction is frozen while busy")

	c.Resolve(task(context.Background()))
	assert.Equal(t, []string{"first"}, f.texts)
}

func TestProcessFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "network",
			err:  &transfer.NetworkError{Op: transfer.OpProcess, Status: 502, Err: errors.New("Bad Gateway")},
			want: MsgProcessNetwork,
		},
		{
			name: "rejected",
			err:  &transfer.RejectedError{Op: transfer.OpProcess},
			want: MsgProcessRejected,
		},
		{
			name: "rejected with reason",
			err:  &transfer.RejectedError{Op: transfer.OpProcess, Message: "no text column"},
			want: MsgProcessRejected + ": no text column",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := happyTransfer()
			f.result = nil
			f.processErr = tt.err
			c := newController(f)
			toProcess(t, c)

			c.SetInstruction("replace emails")
			c.Drive(context.Background(), c.Submit())

			snap := c.Snapshot()
			assert.Equal(t, session.StageProcess, snap.Stage)
			assert.False(t, snap.Busy)
			assert.Equal(t, tt.want, snap.Error)
			assert.Nil(t, snap.Result)
			assert.Equal(t, "replace emails", snap.Instruction)
			assert.ErrorIs(t, c.Err(), tt.err)
		})
	}
}

func TestErrorClearedByNextOperation(t *testing.T) {
	f := happyTransfer()
	c := newController(f)
	toProcess(t, c)

	assert.Nil(t, c.Submit())
	require.True(t, c.Snapshot().HasError)

	c.SetInstruction("replace emails")
	task := c.Submit()
	require.NotNil(t, task)
	assert.False(t, c.Snapshot().HasError, "error clears when the operation starts")
	assert.NoError(t, c.Err())
}

func TestTryDifferentPattern_KeepsInstructionAndPreview(t *testing.T) {
	f := happyTransfer()
	c := newController(f)
	toProcess(t, c)
	c.SetInstruction("replace emails with HIDDEN")
	c.Drive(context.Background(), c.Submit())
	require.Equal(t, session.StageResults, c.Stage())

	before := c.Snapshot()
	c.TryDifferentPattern()
	after := c.Snapshot()

	assert.Equal(t, session.StageProcess, after.Stage)
	assert.Equal(t, before.Instruction, after.Instruction)
	assert.Equal(t, before.Preview, after.Preview)
	assert.Equal(t, before.FileID, after.FileID)
	assert.NotNil(t, after.Result, "result is retained")

	c.TryDifferentPattern()
	assert.Equal(t, after, c.Snapshot(), "ignored outside Results")
}

func TestResetTriggers(t *testing.T) {
	t.Run("start over from process", func(t *testing.T) {
		c := newController(happyTransfer())
		toProcess(t, c)
		c.SetInstruction("something")

		c.StartOver()
		assertInitial(t, c.Snapshot())
	})

	t.Run("process another from results", func(t *testing.T) {
		c := newController(happyTransfer())
		toProcess(t, c)
		c.SetInstruction("something")
		c.Drive(context.Background(), c.Submit())
		require.Equal(t, session.StageResults, c.Stage())

		c.ProcessAnother()
		assertInitial(t, c.Snapshot())
	})

	t.Run("wrong stage is ignored", func(t *testing.T) {
		c := newController(happyTransfer())
		c.ProcessAnother()
		c.StartOver()
		c.TryDifferentPattern()
		assertInitial(t, c.Snapshot())

		toProcess(t, c)
		c.ProcessAnother()
		assert.Equal(t, session.StageProcess, c.Stage())
	})
}

func assertInitial(t *testing.T, snap session.Snapshot) {
	t.Helper()
	assert.Equal(t, session.Snapshot{Stage: session.StageUpload}, snap)
}

func TestStaleCompletionAfterReset(t *testing.T) {
	f := happyTransfer()
	c := newController(f)
	toProcess(t, c)

	c.SetInstruction("replace emails")
	task := c.Submit()
	require.NotNil(t, task)

	c.StartOver()
	assert.False(t, c.Busy(), "reset clears busy")

	assert.Nil(t, c.Resolve(task(context.Background())))
	assertInitial(t, c.Snapshot())
}

func TestStaleCompletions(t *testing.T) {
	f := happyTransfer()
	c := newController(f)

	assert.Nil(t, c.Resolve(UploadDone{Epoch: 0, FileID: "f9"}), "nothing in flight")
	assert.Nil(t, c.Resolve(nil))

	task := c.SelectFile("data.csv")
	require.NotNil(t, task)

	assert.Nil(t, c.Resolve(UploadDone{Epoch: 7, FileID: "f9"}), "wrong epoch")
	assert.Nil(t, c.Resolve(PreviewDone{Epoch: 0, FileID: "f9"}), "wrong file")
	assert.True(t, c.Busy())
	assert.Empty(t, c.Snapshot().FileID)

	next := c.Resolve(task(context.Background()))
	require.NotNil(t, next)
	assert.Nil(t, c.Resolve(PreviewDone{Epoch: 0, FileID: "other", Preview: &session.Preview{}}))
	assert.Equal(t, session.StageUpload, c.Stage())

	c.Resolve(next(context.Background()))
	assert.Equal(t, session.StageProcess, c.Stage())
}

func TestSetInstruction_OnlyInProcess(t *testing.T) {
	c := newController(happyTransfer())
	c.SetInstruction("early")
	assert.Empty(t, c.Snapshot().Instruction)

	toProcess(t, c)
	c.SetInstruction("now")
	assert.Equal(t, "now", c.Snapshot().Instruction)
}

func TestFailureError(t *testing.T) {
	inner := errors.New("boom")
	f := &Failure{Message: MsgUploadNetwork, Err: inner}
	assert.Equal(t, "Upload failed. Please try again.: boom", f.Error())
	assert.ErrorIs(t, f, inner)
	assert.Equal(t, MsgPreviewFailed, (&Failure{Message: MsgPreviewFailed}).Error())
}
