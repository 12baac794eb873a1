// Package transfer is the HTTP client for the remote processing service.
//
// It performs the three calls the wizard needs (upload, preview, process)
// and reduces every outcome to either a decoded payload or one of two typed
// failures: *NetworkError for transport problems and *RejectedError when the
// service answers with success false.
package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/regexr/internal/logger"
	"github.com/mark3labs/regexr/internal/session"
	"github.com/rs/xid"
)

// DefaultBaseURL is where the processing service listens in development.
const DefaultBaseURL = "http://localhost:8000"

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 64 << 20

// Client talks to the processing service.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must use http or https", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: http.DefaultClient,
		userAgent:  "regexr",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the service root the client is configured for.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

type uploadResponse struct {
	Success  *bool           `json:"success"`
	FileID   json.RawMessage `json:"file_id"`
	Filename string          `json:"filename"`
	Error    string          `json:"error"`
	Message  string          `json:"message"`
}

type previewResponse struct {
	Success     *bool         `json:"success"`
	Columns     []string      `json:"columns"`
	TotalRows   int           `json:"total_rows"`
	PreviewData []session.Row `json:"preview_data"`
	TextColumns []string      `json:"text_columns"`
	Error       string        `json:"error"`
	Message     string        `json:"message"`
}

type processRequest struct {
	Text string `json:"text"`
}

type processResponse struct {
	Success          *bool         `json:"success"`
	ColumnsProcessed []string      `json:"columns_processed"`
	ProcessedData    []session.Row `json:"processed_data"`
	TargetColumn     *string       `json:"target_column"`
	RegexPattern     *string       `json:"regex_pattern"`
	ReplacementValue *string       `json:"replacement_value"`
	MatchesFound     *int          `json:"matches_found"`
	Message          string        `json:"message"`
	Error            string        `json:"error"`
}

// Upload sends the file at path and returns the identifier the service
// assigned to it.
func (c *Client) Upload(ctx context.Context, path string) (string, error) {
	body, contentType, err := multipartBody(path)
	if err != nil {
		return "", &NetworkError{Op: OpUpload, Err: err}
	}

	var resp uploadResponse
	if err := c.do(ctx, OpUpload, http.MethodPost, "upload/", contentType, body, &resp); err != nil {
		return "", err
	}
	if !isSuccess(resp.Success) {
		return "", &RejectedError{Op: OpUpload, Message: firstNonEmpty(resp.Error, resp.Message)}
	}

	id, err := decodeFileID(resp.FileID)
	if err != nil {
		return "", &NetworkError{Op: OpUpload, Err: err}
	}
	return id, nil
}

// FetchPreview returns the bounded preview of a previously uploaded file.
func (c *Client) FetchPreview(ctx context.Context, fileID string) (*session.Preview, error) {
	var resp previewResponse
	endpoint := "preview/" + url.PathEscape(fileID) + "/"
	if err := c.do(ctx, OpPreview, http.MethodGet, endpoint, "", nil, &resp); err != nil {
		return nil, err
	}
	if !isSuccess(resp.Success) {
		return nil, &RejectedError{Op: OpPreview, Message: firstNonEmpty(resp.Error, resp.Message)}
	}

	return &session.Preview{
		Columns:     resp.Columns,
		TotalRows:   resp.TotalRows,
		SampleRows:  resp.PreviewData,
		TextColumns: resp.TextColumns,
	}, nil
}

// Process submits the natural-language instruction for fileID and returns the
// transformed rows.
func (c *Client) Process(ctx context.Context, fileID, text string) (*session.Result, error) {
	payload, err := json.Marshal(processRequest{Text: text})
	if err != nil {
		return nil, &NetworkError{Op: OpProcess, Err: fmt.Errorf("encoding request: %w", err)}
	}

	var resp processResponse
	endpoint := "process/" + url.PathEscape(fileID) + "/"
	if err := c.do(ctx, OpProcess, http.MethodPost, endpoint, "application/json", payload, &resp); err != nil {
		return nil, err
	}
	if !isSuccess(resp.Success) {
		return nil, &RejectedError{Op: OpProcess, Message: firstNonEmpty(resp.Error, resp.Message)}
	}

	result := &session.Result{
		ColumnsProcessed: resp.ColumnsProcessed,
		Rows:             resp.ProcessedData,
		Message:          resp.Message,
	}
	if resp.TargetColumn != nil {
		result.TargetColumn = *resp.TargetColumn
		result.HasDiagnostics = true
	}
	if resp.RegexPattern != nil {
		result.Pattern = *resp.RegexPattern
		result.HasDiagnostics = true
	}
	if resp.ReplacementValue != nil {
		result.Replacement = *resp.ReplacementValue
		result.HasDiagnostics = true
	}
	if resp.MatchesFound != nil {
		result.MatchesFound = *resp.MatchesFound
		result.HasDiagnostics = true
	}
	return result, nil
}

// Ping checks that the service answers HTTP at its base URL. Any status
// counts as reachable; only transport failures are returned.
func (c *Client) Ping(ctx context.Context) (int, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL.String()+"/", nil)
	if err != nil {
		return 0, &NetworkError{Op: OpPing, Err: fmt.Errorf("building request: %w", err)}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", xid.New().String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, &NetworkError{Op: OpPing, Err: err}
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}

// do performs one request and decodes the JSON body into out. Transport
// failures and undecodable bodies become *NetworkError. A decodable body is
// returned to the caller even on a non-2xx status when it carries an
// explicit success field, so service rejections keep their message.
func (c *Client) do(ctx context.Context, op Op, method, endpoint, contentType string, body []byte, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	target := c.baseURL.JoinPath(endpoint)
	// JoinPath cleans the trailing slash; the service routes require it.
	target.Path = strings.TrimRight(target.Path, "/") + "/"

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("building request: %w", err)}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	requestID := xid.New().String()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	logger.Debug("%s %s request_id=%s", method, target.String(), requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("%s failed request_id=%s: %v", op, requestID, err)
		return &NetworkError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		logger.Warn("%s body read failed request_id=%s: %v", op, requestID, err)
		return &NetworkError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}

	logger.Debug("%s answered status=%d bytes=%d request_id=%s elapsed=%s",
		op, resp.StatusCode, len(data), requestID, time.Since(start).Round(time.Millisecond))

	if err := json.Unmarshal(data, out); err != nil {
		return &NetworkError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if hasExplicitFailure(data) {
			return nil
		}
		return &NetworkError{Op: op, Status: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}
	return nil
}

// multipartBody builds the upload form with the file under field "file".
func multipartBody(path string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing form: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// decodeFileID accepts a JSON string or number and returns its string form.
func decodeFileID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", errors.New("response has no file_id")
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("decoding file_id: %w", err)
		}
		if s == "" {
			return "", errors.New("response has an empty file_id")
		}
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("decoding file_id: %w", err)
	}
	return n.String(), nil
}

// hasExplicitFailure reports whether body is a JSON object whose success
// field is present and false.
func hasExplicitFailure(body []byte) bool {
	var probe struct {
		Success *bool `json:"success"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return false
	}
	return probe.Success != nil && !*probe.Success
}

func isSuccess(v *bool) bool {
	return v != nil && *v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
