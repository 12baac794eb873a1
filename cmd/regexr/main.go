package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/mark3labs/regexr/internal/controller"
	"github.com/mark3labs/regexr/internal/logger"
	"github.com/mark3labs/regexr/internal/tui/theme"
	"github.com/mark3labs/regexr/internal/tui/wizard"
	"github.com/spf13/cobra"
)

const (
	logoText1 = "█▀█ █▀▀ █▀▀ █▀▀ ▀▄▀ █▀█"
	logoText2 = "█▀▄ ██▄ █▄█ ██▄ █ █ █▀▄"
)

// Version set via ldflags during build
var version = "dev"

var rootFlags struct {
	api  string
	file string
}

func main() {
	// Ensure logger is closed on exit
	defer func() { _ = logger.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(ctx, rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "regexr",
	Short: "Find and replace in CSV and Excel files using plain language",
	Args:  cobra.NoArgs,
	RunE:  runWizard,
}

// renderLogo creates the logo with gradient colors
func renderLogo() string {
	t := theme.NewCatppuccinMocha()
	line1 := theme.ApplyGradient(logoText1, t.Primary, t.Secondary)
	line2 := theme.ApplyGradient(logoText2, t.Primary, t.Secondary)
	return strings.Join([]string{line1, line2}, "\n")
}

func init() {
	// Set Long description with logo
	rootCmd.Long = renderLogo() + `

regexr uploads a CSV or Excel file to a processing service, shows a preview,
and applies a find/replace you describe in plain language ("replace emails
with HIDDEN"). The service turns the description into a pattern and sends
back the updated rows.

Running regexr without a subcommand opens the interactive wizard.

Configuration is loaded from multiple sources with the following precedence:
  CLI flags > Environment variables > .env > Project config > Global config > Defaults

Dotenv file: ./.env (REGEXR_* entries only)
Project config: ./regexr.yml
Global config: ~/.config/regexr/regexr.yml`

	rootCmd.Flags().StringVar(&rootFlags.api, "api", "", "Processing service base URL (default: from config)")
	rootCmd.Flags().StringVarP(&rootFlags.file, "file", "f", "", "File to upload on start")

	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(doctorCmd)
}

func runWizard(cmd *cobra.Command, args []string) error {
	env, err := loadEnv(rootFlags.api)
	if err != nil {
		return err
	}

	snap, err := wizard.Run(cmd.Context(), controller.New(env.client), wizard.Options{
		File:      rootFlags.file,
		ExportDir: env.cfg.ExportDir,
	})
	if err != nil {
		return fmt.Errorf("wizard failed: %w", err)
	}

	logger.Info("Wizard closed at stage %s", snap.Stage)
	return nil
}
