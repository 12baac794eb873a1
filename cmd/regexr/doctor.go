package main

import (
	"fmt"

	"github.com/mark3labs/regexr/internal/config"
	"github.com/mark3labs/regexr/internal/tui/theme"
	"github.com/spf13/cobra"
)

var doctorFlags struct {
	api string
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Show the resolved config and check the processing service",
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

func init() {
	doctorCmd.Flags().StringVar(&doctorFlags.api, "api", "", "Processing service base URL (default: from config)")
}

func runDoctor(cmd *cobra.Command, args []string) error {
	env, err := loadEnv(doctorFlags.api)
	if err != nil {
		return err
	}

	s := theme.Current().S()
	out := cmd.OutOrStdout()
	cfg := env.cfg

	source := "defaults and environment"
	switch {
	case fileExists(config.ProjectPath()):
		source = config.ProjectPath()
	case fileExists(config.GlobalPath()):
		source = config.GlobalPath()
	}

	timeout := cfg.RequestTimeout
	if timeout == "" {
		timeout = "none"
	}
	logFile := cfg.LogFile
	if logFile == "" {
		logFile = "(disabled)"
	}

	_, _ = fmt.Fprintf(out, "config:          %s\n", source)
	_, _ = fmt.Fprintf(out, "api_base:        %s\n", cfg.APIBase)
	_, _ = fmt.Fprintf(out, "request_timeout: %s\n", timeout)
	_, _ = fmt.Fprintf(out, "log_level:       %s\n", cfg.LogLevel)
	_, _ = fmt.Fprintf(out, "log_file:        %s\n", logFile)
	_, _ = fmt.Fprintf(out, "export_dir:      %s\n\n", cfg.ExportDir)

	status, err := env.client.Ping(cmd.Context())
	if err != nil {
		_, _ = fmt.Fprintln(out, s.Error.Render("✗ Processing service unreachable at "+env.client.BaseURL()))
		return fmt.Errorf("service check failed: %w", err)
	}
	_, _ = fmt.Fprintln(out, s.Success.Render(fmt.Sprintf("✓ Processing service reachable at %s (HTTP %d)", env.client.BaseURL(), status)))
	return nil
}
