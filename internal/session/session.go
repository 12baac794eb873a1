// Package session holds the single source of truth for one wizard run.
//
// A Session is a plain aggregate: mutators replace whole fields and never
// perform I/O or business validation. Transition rules live in the
// controller package, which is the only writer.
package session

import "slices"

// Session is the aggregate root for a wizard run.
type Session struct {
	stage        Stage
	selectedFile FileRef
	fileID       string
	preview      *Preview
	instruction  string
	result       *Result
	busy         bool
	errMsg       string
	hasErr       bool
	epoch        uint64 // Bumped on every reset; guards against stale responses
}

// New creates a session in its initial state.
func New() *Session {
	return &Session{stage: StageUpload}
}

// Stage returns the current wizard stage.
func (s *Session) Stage() Stage { return s.stage }

// SelectedFile returns the chosen file handle (zero if none).
func (s *Session) SelectedFile() FileRef { return s.selectedFile }

// FileID returns the server-issued identifier, or "" before upload succeeds.
func (s *Session) FileID() string { return s.fileID }

// HasFileID reports whether an upload has succeeded in this session.
func (s *Session) HasFileID() bool { return s.fileID != "" }

// Preview returns the preview snapshot, or nil.
func (s *Session) Preview() *Preview { return s.preview }

// Instruction returns the user's instruction text.
func (s *Session) Instruction() string { return s.instruction }

// Result returns the processed result, or nil.
func (s *Session) Result() *Result { return s.result }

// Busy reports whether a network operation is in flight.
func (s *Session) Busy() bool { return s.busy }

// Error returns the current error message and whether one is set.
func (s *Session) Error() (string, bool) { return s.errMsg, s.hasErr }

// Epoch returns the reset generation of the session.
func (s *Session) Epoch() uint64 { return s.epoch }

// SetFile records the chosen file.
func (s *Session) SetFile(f FileRef) { s.selectedFile = f }

// SetFileID records the server-issued identifier. An empty id clears it.
func (s *Session) SetFileID(id string) { s.fileID = id }

// SetPreview stores a preview snapshot. The session keeps its own copy of
// the slices so callers cannot mutate it afterwards.
func (s *Session) SetPreview(p *Preview) {
	if p == nil {
		s.preview = nil
		return
	}
	cp := *p
	cp.Columns = slices.Clone(p.Columns)
	cp.SampleRows = slices.Clone(p.SampleRows)
	cp.TextColumns = slices.Clone(p.TextColumns)
	s.preview = &cp
}

// SetInstruction replaces the instruction text.
func (s *Session) SetInstruction(text string) { s.instruction = text }

// SetResult stores the processed result.
func (s *Session) SetResult(r *Result) {
	if r == nil {
		s.result = nil
		return
	}
	cp := *r
	cp.ColumnsProcessed = slices.Clone(r.ColumnsProcessed)
	cp.Rows = slices.Clone(r.Rows)
	s.result = &cp
}

// SetStage moves the session to stage.
func (s *Session) SetStage(stage Stage) { s.stage = stage }

// SetBusy sets the in-flight flag.
func (s *Session) SetBusy(busy bool) { s.busy = busy }

// SetError sets the error message shown to the user.
func (s *Session) SetError(msg string) {
	s.errMsg = msg
	s.hasErr = true
}

// ClearError removes any error message.
func (s *Session) ClearError() {
	s.errMsg = ""
	s.hasErr = false
}

// Reset returns every field to its initial value and bumps the epoch.
func (s *Session) Reset() {
	epoch := s.epoch + 1
	*s = Session{stage: StageUpload, epoch: epoch}
}

// Snapshot is an immutable view of a Session for rendering.
type Snapshot struct {
	Stage        Stage
	SelectedFile FileRef
	FileID       string
	Preview      *Preview
	Instruction  string
	Result       *Result
	Busy         bool
	Error        string
	HasError     bool
}

// Snapshot copies the session's current state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Stage:        s.stage,
		SelectedFile: s.selectedFile,
		FileID:       s.fileID,
		Instruction:  s.instruction,
		Busy:         s.busy,
		Error:        s.errMsg,
		HasError:     s.hasErr,
	}
	if s.preview != nil {
		p := *s.preview
		p.Columns = slices.Clone(s.preview.Columns)
		p.SampleRows = slices.Clone(s.preview.SampleRows)
		p.TextColumns = slices.Clone(s.preview.TextColumns)
		snap.Preview = &p
	}
	if s.result != nil {
		r := *s.result
		r.ColumnsProcessed = slices.Clone(s.result.ColumnsProcessed)
		r.Rows = slices.Clone(s.result.Rows)
		snap.Result = &r
	}
	return snap
}
