package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/regexr/internal/controller"
	"github.com/mark3labs/regexr/internal/export"
	"github.com/mark3labs/regexr/internal/logger"
	"github.com/mark3labs/regexr/internal/session"
)

// previewRows caps the sample rows echoed back by preview_file.
const previewRows = 5

// registerTools registers the transform_file and preview_file tools.
func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("transform_file",
			mcp.WithDescription("Upload a CSV or Excel file, apply a find/replace described in plain language, and return the processed rows as CSV"),
			mcp.WithString("path", mcp.Required(),
				mcp.Description("Path to a .csv, .xlsx or .xls file"),
			),
			mcp.WithString("instruction", mcp.Required(),
				mcp.Description("What to find and what to replace it with, e.g. 'replace emails with HIDDEN'"),
			),
			mcp.WithBoolean("export",
				mcp.Description("Also write the processed rows to a CSV file in the export directory"),
			),
		),
		s.handleTransformFile,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("preview_file",
			mcp.WithDescription("Upload a CSV or Excel file and return its columns, row count and first rows"),
			mcp.WithString("path", mcp.Required(),
				mcp.Description("Path to a .csv, .xlsx or .xls file"),
			),
		),
		s.handlePreviewFile,
	)
}

// handleTransformFile runs the whole wizard for one file.
func (s *Server) handleTransformFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	if args == nil {
		return mcp.NewToolResultError("no arguments provided"), nil
	}

	path, ok := args["path"].(string)
	if !ok || strings.TrimSpace(path) == "" {
		return mcp.NewToolResultError("missing or empty 'path' parameter"), nil
	}
	instruction, ok := args["instruction"].(string)
	if !ok {
		return mcp.NewToolResultError("missing 'instruction' parameter"), nil
	}
	wantExport, _ := args["export"].(bool)

	s.runMu.Lock()
	defer s.runMu.Unlock()

	logger.Info("transform_file %s", path)
	snap, err := controller.Run(ctx, s.transfer, path, instruction)
	if err != nil {
		return mcp.NewToolResultError(failureText(snap, err)), nil
	}

	var b strings.Builder
	b.WriteString(snap.Result.Summary())
	b.WriteString("\n")
	for _, d := range snap.Result.Diagnostics() {
		fmt.Fprintf(&b, "%s: %s\n", d[0], d[1])
	}
	if snap.Result.Message != "" {
		b.WriteString(snap.Result.Message + "\n")
	}
	fmt.Fprintf(&b, "Rows: %d\n", len(snap.Result.Rows))

	if wantExport {
		out, err := export.ToDir(s.exportDir, snap.SelectedFile.Name, snap.Result)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("processed, but export failed: %v", err)), nil
		}
		fmt.Fprintf(&b, "Exported to %s\n", out)
	}

	b.WriteString("\n")
	if err := export.WriteCSV(&b, snap.Result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(b.String()), nil
}

// handlePreviewFile uploads a file and reports its preview.
func (s *Server) handlePreviewFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	if args == nil {
		return mcp.NewToolResultError("no arguments provided"), nil
	}

	path, ok := args["path"].(string)
	if !ok || strings.TrimSpace(path) == "" {
		return mcp.NewToolResultError("missing or empty 'path' parameter"), nil
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	c := controller.New(s.transfer)
	c.Drive(ctx, c.SelectFile(path))
	snap := c.Snapshot()
	if snap.Stage != session.StageProcess {
		return mcp.NewToolResultError(failureText(snap, c.Err())), nil
	}

	p := snap.Preview
	rows := p.SampleRows
	if len(rows) > previewRows {
		rows = rows[:previewRows]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d rows • %d columns\n", p.TotalRows, len(p.Columns))
	if len(p.TextColumns) > 0 {
		fmt.Fprintf(&b, "Text columns: %s\n", strings.Join(p.TextColumns, ", "))
	}
	b.WriteString("\n")
	if err := export.WriteRows(&b, p.Columns, rows); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(b.String()), nil
}

// failureText prefers the message the wizard would show the user.
func failureText(snap session.Snapshot, err error) string {
	if snap.HasError {
		return snap.Error
	}
	if err != nil {
		return err.Error()
	}
	return "request did not complete"
}
