// Package controller is the stage machine that drives a wizard session.
//
// The controller is the only writer of a session.Session. Triggers validate
// their guards, mutate the session and, when a network call is needed,
// return a Task. The caller runs the Task wherever it likes and hands the
// resulting Completion back to Resolve on the thread that owns the
// controller. A Controller is not safe for concurrent use.
package controller

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mark3labs/regexr/internal/logger"
	"github.com/mark3labs/regexr/internal/session"
	"github.com/mark3labs/regexr/internal/transfer"
)

// SupportedExtensions lists the file extensions accepted for upload.
var SupportedExtensions = []string{".csv", ".xlsx", ".xls"}

// Supported reports whether name has an accepted extension.
func Supported(name string) bool {
	return slices.Contains(SupportedExtensions, strings.ToLower(filepath.Ext(name)))
}

// Transfer is the subset of the transfer client the controller needs.
type Transfer interface {
	Upload(ctx context.Context, path string) (string, error)
	FetchPreview(ctx context.Context, fileID string) (*session.Preview, error)
	Process(ctx context.Context, fileID, text string) (*session.Result, error)
}

// Task performs one network call off the owning thread.
type Task func(ctx context.Context) Completion

// Completion is the outcome of a Task.
type Completion interface {
	issued() (epoch uint64, fileID string)
}

// UploadDone is delivered when the upload call returns.
type UploadDone struct {
	Epoch  uint64
	FileID string // Identifier returned by the service
	Err    error
}

// PreviewDone is delivered when the preview call returns.
type PreviewDone struct {
	Epoch   uint64
	FileID  string
	Preview *session.Preview
	Err     error
}

// ProcessDone is delivered when the process call returns.
type ProcessDone struct {
	Epoch  uint64
	FileID string
	Result *session.Result
	Err    error
}

func (d UploadDone) issued() (uint64, string)  { return d.Epoch, "" }
func (d PreviewDone) issued() (uint64, string) { return d.Epoch, d.FileID }
func (d ProcessDone) issued() (uint64, string) { return d.Epoch, d.FileID }

// Controller owns a session and its transition rules.
type Controller struct {
	sess     *session.Session
	transfer Transfer
	lastErr  error
}

// New creates a controller with a fresh session.
func New(t Transfer) *Controller {
	return &Controller{sess: session.New(), transfer: t}
}

// Snapshot returns a copy of the session for rendering.
func (c *Controller) Snapshot() session.Snapshot {
	return c.sess.Snapshot()
}

// Stage returns the current stage.
func (c *Controller) Stage() session.Stage {
	return c.sess.Stage()
}

// Busy reports whether a network operation is in flight.
func (c *Controller) Busy() bool {
	return c.sess.Busy()
}

// Err returns the error behind the current error message, or nil.
func (c *Controller) Err() error {
	if _, ok := c.sess.Error(); !ok {
		return nil
	}
	return c.lastErr
}

// SelectFile starts the upload of path. It returns nil when the trigger is
// ignored or its guard fails.
func (c *Controller) SelectFile(path string) Task {
	if c.sess.Stage() != session.StageUpload || c.sess.Busy() {
		logger.Debug("select file ignored: stage=%s busy=%v", c.sess.Stage(), c.sess.Busy())
		return nil
	}

	ref := session.NewFileRef(path)
	if !Supported(ref.Name) {
		c.fail(&ValidationError{Message: MsgUnsupportedFile}, MsgUnsupportedFile)
		logger.Info("rejected %q: unsupported extension", ref.Name)
		return nil
	}
	if info, err := os.Stat(path); err == nil {
		ref.Size = info.Size()
	}

	c.clearError()
	c.sess.SetFile(ref)
	c.sess.SetFileID("")
	c.sess.SetBusy(true)
	logger.Info("uploading %s (%d bytes)", ref.Name, ref.Size)

	epoch := c.sess.Epoch()
	t := c.transfer
	return func(ctx context.Context) Completion {
		id, err := t.Upload(ctx, path)
		return UploadDone{Epoch: epoch, FileID: id, Err: err}
	}
}

// SetInstruction replaces the instruction text. Only allowed in the Process
// stage while idle.
func (c *Controller) SetInstruction(text string) {
	if c.sess.Stage() != session.StageProcess || c.sess.Busy() {
		return
	}
	c.sess.SetInstruction(text)
}

// Submit sends the instruction for processing. It returns nil when the
// trigger is ignored or the instruction is blank.
func (c *Controller) Submit() Task {
	if c.sess.Stage() != session.StageProcess || c.sess.Busy() {
		logger.Debug("submit ignored: stage=%s busy=%v", c.sess.Stage(), c.sess.Busy())
		return nil
	}

	text := c.sess.Instruction()
	if strings.TrimSpace(text) == "" {
		c.fail(&ValidationError{Message: MsgEmptyInstruction}, MsgEmptyInstruction)
		return nil
	}

	c.clearError()
	c.sess.SetBusy(true)
	logger.Info("processing file %s", c.sess.FileID())

	epoch, fileID := c.sess.Epoch(), c.sess.FileID()
	t := c.transfer
	return func(ctx context.Context) Completion {
		result, err := t.Process(ctx, fileID, text)
		return ProcessDone{Epoch: epoch, FileID: fileID, Result: result, Err: err}
	}
}

// StartOver resets the session from the Process stage.
func (c *Controller) StartOver() {
	if c.sess.Stage() != session.StageProcess {
		return
	}
	c.reset()
}

// ProcessAnother resets the session from the Results stage.
func (c *Controller) ProcessAnother() {
	if c.sess.Stage() != session.StageResults {
		return
	}
	c.reset()
}

// TryDifferentPattern returns from Results to Process, keeping the
// instruction, preview and result.
func (c *Controller) TryDifferentPattern() {
	if c.sess.Stage() != session.StageResults || c.sess.Busy() {
		return
	}
	c.clearError()
	c.sess.SetStage(session.StageProcess)
	logger.Debug("back to process stage")
}

// Resolve applies a Completion to the session. Completions issued before the
// last reset, or for a file that is no longer active, are dropped. The
// returned Task, if any, is the next call in the same operation.
func (c *Controller) Resolve(done Completion) Task {
	if done == nil {
		return nil
	}
	if c.stale(done) {
		epoch, fileID := done.issued()
		logger.Debug("dropping stale %T epoch=%d file=%q", done, epoch, fileID)
		return nil
	}

	switch d := done.(type) {
	case UploadDone:
		return c.resolveUpload(d)
	case PreviewDone:
		c.resolvePreview(d)
	case ProcessDone:
		c.resolveProcess(d)
	}
	return nil
}

func (c *Controller) stale(done Completion) bool {
	epoch, fileID := done.issued()
	if epoch != c.sess.Epoch() || !c.sess.Busy() {
		return true
	}
	switch done.(type) {
	case UploadDone:
		return c.sess.Stage() != session.StageUpload || c.sess.HasFileID()
	case PreviewDone:
		return c.sess.Stage() != session.StageUpload || fileID != c.sess.FileID()
	case ProcessDone:
		return c.sess.Stage() != session.StageProcess || fileID != c.sess.FileID()
	}
	return true
}

func (c *Controller) resolveUpload(d UploadDone) Task {
	if d.Err != nil {
		logger.Warn("upload failed: %v", d.Err)
		c.sess.SetBusy(false)
		c.fail(d.Err, describe(transfer.OpUpload, d.Err))
		return nil
	}

	logger.Info("upload accepted as file %s", d.FileID)
	c.sess.SetFileID(d.FileID)

	epoch, fileID := d.Epoch, d.FileID
	t := c.transfer
	return func(ctx context.Context) Completion {
		p, err := t.FetchPreview(ctx, fileID)
		return PreviewDone{Epoch: epoch, FileID: fileID, Preview: p, Err: err}
	}
}

func (c *Controller) resolvePreview(d PreviewDone) {
	c.sess.SetBusy(false)
	if d.Err != nil || d.Preview == nil {
		logger.Warn("preview of %s failed: %v", d.FileID, d.Err)
		c.sess.SetFileID("")
		c.fail(d.Err, describe(transfer.OpPreview, d.Err))
		return
	}

	c.sess.SetPreview(d.Preview)
	c.sess.SetStage(session.StageProcess)
	logger.Info("preview loaded: %d rows, %d columns", d.Preview.TotalRows, len(d.Preview.Columns))
}

func (c *Controller) resolveProcess(d ProcessDone) {
	c.sess.SetBusy(false)
	if d.Err != nil || d.Result == nil {
		logger.Warn("process of %s failed: %v", d.FileID, d.Err)
		c.fail(d.Err, describe(transfer.OpProcess, d.Err))
		return
	}

	c.sess.SetResult(d.Result)
	c.sess.SetStage(session.StageResults)
	logger.Info("processed %d rows, columns changed: %v", len(d.Result.Rows), d.Result.ColumnsProcessed)
}

func (c *Controller) reset() {
	if c.sess.Busy() {
		logger.Info("reset while busy, pending response will be dropped")
	}
	c.sess.Reset()
	c.lastErr = nil
}

func (c *Controller) fail(err error, msg string) {
	c.sess.SetError(msg)
	if _, ok := err.(*ValidationError); ok {
		c.lastErr = err
		return
	}
	c.lastErr = &Failure{Message: msg, Err: err}
}

func (c *Controller) clearError() {
	c.sess.ClearError()
	c.lastErr = nil
}
