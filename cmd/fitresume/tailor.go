package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fitresume/internal/bootstrap"
	"fitresume/internal/runs"
	"fitresume/internal/versions"
)

type tailorOutput struct {
	Version      versions.VersionResponse `json:"version"`
	ArtifactPath string                   `json:"artifact_path"`
	Mock         bool                     `json:"mock"`
	Run          runs.RunResponse         `json:"run"`
}

// NewTailorCommand creates the tailor command.
func NewTailorCommand(rootOpts *RootOptions) *cobra.Command {
	var resumeID, jobID string

	cmd := &cobra.Command{
		Use:   "tailor",
		Short: "Tailor one resume to one job posting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resumeID = strings.TrimSpace(resumeID)
			jobID = strings.TrimSpace(jobID)
			if resumeID == "" || jobID == "" {
				return fmt.Errorf("--resume and --job are required")
			}
			return withApp(rootOpts, func(app *bootstrap.App) error {
				outcome, run, err := app.TailoringService.TailorTracked(cmd.Context(), resumeID, jobID)
				if err != nil {
					if run.ID != "" {
						return fmt.Errorf("run %s: %w", run.ID, err)
					}
					return err
				}
				out := tailorOutput{
					Version:      versions.ToResponse(outcome.Version),
					ArtifactPath: outcome.ArtifactPath,
					Mock:         outcome.Fallback,
					Run:          runs.ToResponse(run),
				}
				if rootOpts.Format == "json" {
					return writeJSON(cmd.OutOrStdout(), out)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version:  %s\n", out.Version.ID)
				fmt.Fprintf(cmd.OutOrStdout(), "artifact: %s\n", out.ArtifactPath)
				fmt.Fprintf(cmd.OutOrStdout(), "provider: %s (mock=%t)\n", out.Version.ProviderName, out.Mock)
				fmt.Fprintf(cmd.OutOrStdout(), "run:      %s %s\n", out.Run.ID, out.Run.Status)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&resumeID, "resume", "", "resume id")
	cmd.Flags().StringVar(&jobID, "job", "", "job posting id")

	return cmd
}
