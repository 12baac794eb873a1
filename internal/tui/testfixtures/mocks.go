// Package testfixtures provides mock implementations and test utilities for TUI testing.
//
// MockTransfer stands in for the processing service client. It answers
// from configurable values, records every call, and can hold a call open
// until the test releases it.
//
// Example usage:
//
//	func TestMyComponent(t *testing.T) {
//	    tr := testfixtures.NewMockTransfer()
//	    tr.UploadErr = &transfer.RejectedError{Op: transfer.OpUpload}
//
//	    ctrl := controller.New(tr)
//	    // Use ctrl in your test...
//	    require.Equal(t, 1, tr.UploadCalls())
//	}
package testfixtures

import (
	"context"
	"sync"

	"github.com/mark3labs/regexr/internal/session"
)

// MockTransfer is a thread-safe mock of the processing service client.
type MockTransfer struct {
	mu sync.Mutex

	// Values returned on success
	FileID  string
	Preview *session.Preview
	Result  *session.Result

	// Errors to return instead
	UploadErr  error
	PreviewErr error
	ProcessErr error

	// Gate, when set, blocks every call until it is closed or the context
	// is cancelled.
	Gate chan struct{}

	calls    []string
	paths    []string
	fileIDs  []string
	texts    []string
	previews int
}

// NewMockTransfer creates a MockTransfer that answers with the email
// fixtures.
func NewMockTransfer() *MockTransfer {
	return &MockTransfer{
		FileID:  FixedFileID,
		Preview: PreviewEmails(),
		Result:  ResultHidden(),
	}
}

func (m *MockTransfer) wait(ctx context.Context) error {
	m.mu.Lock()
	gate := m.Gate
	m.mu.Unlock()
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Upload records the path and returns FileID or UploadErr.
func (m *MockTransfer) Upload(ctx context.Context, path string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, "upload")
	m.paths = append(m.paths, path)
	m.mu.Unlock()

	if err := m.wait(ctx); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	return m.FileID, nil
}

// FetchPreview records the file id and returns Preview or PreviewErr.
func (m *MockTransfer) FetchPreview(ctx context.Context, fileID string) (*session.Preview, error) {
	m.mu.Lock()
	m.calls = append(m.calls, "preview")
	m.fileIDs = append(m.fileIDs, fileID)
	m.previews++
	m.mu.Unlock()

	if err := m.wait(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PreviewErr != nil {
		return nil, m.PreviewErr
	}
	return m.Preview, nil
}

// Process records the file id and text and returns Result or ProcessErr.
func (m *MockTransfer) Process(ctx context.Context, fileID, text string) (*session.Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, "process")
	m.fileIDs = append(m.fileIDs, fileID)
	m.texts = append(m.texts, text)
	m.mu.Unlock()

	if err := m.wait(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ProcessErr != nil {
		return nil, m.ProcessErr
	}
	return m.Result, nil
}

// Calls returns the operations invoked so far, in order.
func (m *MockTransfer) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Paths returns the paths passed to Upload.
func (m *MockTransfer) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.paths...)
}

// FileIDs returns the file ids passed to FetchPreview and Process.
func (m *MockTransfer) FileIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.fileIDs...)
}

// Texts returns the instructions passed to Process.
func (m *MockTransfer) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}

// UploadCalls returns how many times Upload was called.
func (m *MockTransfer) UploadCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.paths)
}

// PreviewCalls returns how many times FetchPreview was called.
func (m *MockTransfer) PreviewCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.previews
}

// ProcessCalls returns how many times Process was called.
func (m *MockTransfer) ProcessCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.texts)
}
