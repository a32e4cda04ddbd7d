package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fitresume/internal/bootstrap"
)

type entryOutput struct {
	ScheduleID string    `json:"schedule_id"`
	CronExpr   string    `json:"cron_expr"`
	Next       time.Time `json:"next"`
}

// NewSchedulesCommand groups schedule maintenance commands.
func NewSchedulesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedules",
		Short: "Inspect and reconcile recurring schedules",
	}
	cmd.AddCommand(newSchedulesSyncCommand(rootOpts))
	return cmd
}

func newSchedulesSyncCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Reload schedules from storage and report the live triggers",
		Long: `Rebuild the trigger table from stored schedules and print one line per
enabled schedule. Expressions that fail to parse are reported and skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, func(app *bootstrap.App) error {
				syncErr := app.Scheduler.Sync(cmd.Context())

				entries := app.Scheduler.Entries()
				out := make([]entryOutput, 0, len(entries))
				for _, e := range entries {
					out = append(out, entryOutput{ScheduleID: e.ScheduleID, CronExpr: e.CronExpr, Next: e.Next})
				}
				if rootOpts.Format == "json" {
					if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
						return err
					}
				} else {
					for _, e := range out {
						fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tnext=%s\n", e.ScheduleID, e.CronExpr, e.Next.Format(time.RFC3339))
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%d schedule(s) registered\n", len(out))
				}
				return syncErr
			})
		},
	}
}
