package main

import (
	"fmt"

	"github.com/mark3labs/regexr/internal/logger"
	"github.com/mark3labs/regexr/internal/mcpserver"
	"github.com/spf13/cobra"
)

var mcpFlags struct {
	http string
	api  string
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the find/replace flow as MCP tools",
	Long: `Serve the find/replace flow to MCP clients.

Tools:
  transform_file  upload a file, apply an instruction, return the rows as CSV
  preview_file    upload a file and return its columns and first rows

By default the server speaks MCP over stdin/stdout. With --http it listens on
the given address and serves streamable HTTP at /mcp instead.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpFlags.http, "http", "", "Serve streamable HTTP on this address (e.g. 127.0.0.1:8765) instead of stdio")
	mcpCmd.Flags().StringVar(&mcpFlags.api, "api", "", "Processing service base URL (default: from config)")
}

func runMCP(cmd *cobra.Command, args []string) error {
	env, err := loadEnv(mcpFlags.api)
	if err != nil {
		return err
	}

	srv := mcpserver.New(env.client, env.cfg.ExportDir, version)

	if mcpFlags.http == "" {
		if err := srv.ServeStdio(); err != nil {
			return fmt.Errorf("mcp stdio server failed: %w", err)
		}
		return nil
	}

	ctx := cmd.Context()
	if _, err := srv.Start(ctx, mcpFlags.http); err != nil {
		return err
	}
	defer func() {
		if err := srv.Stop(); err != nil {
			logger.Warn("Error during shutdown: %v", err)
		}
	}()

	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening at %s\n", srv.URL())
	<-ctx.Done()
	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "\nShutting down gracefully...")
	return nil
}
