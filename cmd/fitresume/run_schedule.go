package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fitresume/internal/bootstrap"
	"fitresume/internal/runs"
)

// NewRunScheduleCommand creates the run-schedule command.
func NewRunScheduleCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run-schedule <schedule-id>",
		Short: "Run a schedule's pipeline once, now",
		Long: `Run the tailoring pipeline for one schedule immediately.

The run is recorded with a manual trigger origin. A run that ends failed or
skipped still exits zero; its status is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, func(app *bootstrap.App) error {
				run, err := app.Scheduler.RunNow(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				resp := runs.ToResponse(run)
				if rootOpts.Format == "json" {
					return writeJSON(cmd.OutOrStdout(), resp)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "run %s %s\n", resp.ID, resp.Status)
				if resp.Error != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "reason: %s\n", *resp.Error)
				}
				return nil
			})
		},
	}
}
