package controller

import (
	"errors"
	"fmt"

	"github.com/mark3labs/regexr/internal/transfer"
)

// User-facing messages.
const (
	MsgUnsupportedFile  = "Please upload a CSV or Excel file"
	MsgEmptyInstruction = "Please enter instructions"
	MsgUploadNetwork    = "Upload failed. Please try again."
	MsgUploadRejected   = "Failed to upload file"
	MsgPreviewFailed    = "Failed to load preview"
	MsgProcessNetwork   = "Processing failed. Please try again."
	MsgProcessRejected  = "Processing failed"
)

// ValidationError is a guard violation caught before any network call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Failure pairs the message shown to the user with the error that caused it.
type Failure struct {
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return f.Message
	}
	return fmt.Sprintf("%s: %v", f.Message, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// describe maps a transfer error for op to its user-facing message.
// Rejections that carry a service reason get it appended.
func describe(op transfer.Op, err error) string {
	var rejected *transfer.RejectedError
	isRejected := errors.As(err, &rejected)

	var msg string
	switch op {
	case transfer.OpUpload:
		msg = MsgUploadNetwork
		if isRejected {
			msg = MsgUploadRejected
		}
	case transfer.OpPreview:
		msg = MsgPreviewFailed
	case transfer.OpProcess:
		msg = MsgProcessNetwork
		if isRejected {
			msg = MsgProcessRejected
		}
	default:
		msg = err.Error()
	}

	if isRejected && rejected.Message != "" {
		msg += ": " + rejected.Message
	}
	return msg
}
