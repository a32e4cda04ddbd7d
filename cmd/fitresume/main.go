// Command fitresume runs the tailoring pipeline and schedule maintenance from the shell.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"fitresume/internal/bootstrap"
	"fitresume/internal/shared/config"
	"fitresume/internal/shared/telemetry"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format string // "json" | "text"

	// build constructs the application; tests swap it for an in-memory app.
	build func() (*bootstrap.App, error)
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

func defaultBuild() (*bootstrap.App, error) {
	return bootstrap.Build(config.Load())
}

// NewRootCommand creates the root command for the fitresume CLI.
func NewRootCommand(opts *RootOptions) *cobra.Command {
	if opts.build == nil {
		opts.build = defaultBuild
	}

	cmd := &cobra.Command{
		Use:           "fitresume",
		Short:         "Tailor resumes to job postings",
		Long:          "fitresume rewrites a stored resume for a stored job posting, renders a DOCX artifact and records the version.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewTailorCommand(opts))
	cmd.AddCommand(NewRunScheduleCommand(opts))
	cmd.AddCommand(NewExtractCommand(opts))
	cmd.AddCommand(NewSchedulesCommand(opts))

	return cmd
}

func main() {
	// Logs go to stderr so command output stays parseable.
	telemetry.SetupWithWriters(config.Load().LogLevel, os.Stderr)

	if err := NewRootCommand(&RootOptions{}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// withApp builds the application, runs fn and releases the database handle.
func withApp(opts *RootOptions, fn func(app *bootstrap.App) error) error {
	app, err := opts.build()
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer func() { _ = app.Close() }()
	return fn(app)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
