package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// addScanCommands adds the full-universe scan commands.
func addScanCommands(rootCmd *cobra.Command, app *App) {
	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan all tracked tickers for put candidates",
		Long: `Scan every tracked ticker for cash-secured put candidates.

At most one scan runs at a time; a request while one is in flight returns
the running scan's eventual results instead of starting another. Results
are cached and served by 'scan results'.`,
	}

	scanCmd.AddCommand(newScanRunCmd(app))
	scanCmd.AddCommand(newScanResultsCmd(app))
	scanCmd.AddCommand(newScanWatchCmd(app))

	rootCmd.AddCommand(scanCmd)
}

func newScanRunCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run a scan and wait for its results",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !app.requireStore(output) {
				return errStoreUnavailable
			}

			app.Pool.Start()
			defer app.Pool.Stop()

			if app.Coordinator.Schedule() {
				output.Info("Scan started")
			} else {
				output.Info("Scan already running, waiting for it")
			}

			deadline := time.Now().Add(app.Config.Scan.SentinelTTL)
			for time.Now().Before(deadline) {
				if stats, ok := app.Coordinator.Results(); ok {
					if output.IsJSON() {
						return output.JSON(stats)
					}
					displayStats(output, stats)
					return nil
				}
				time.Sleep(time.Second)
			}

			output.Error("Scan did not complete within %s", app.Config.Scan.SentinelTTL)
			return errScanTimeout
		},
	}
}

func newScanResultsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "results",
		Short: "Show the most recent scan results",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !app.requireStore(output) {
				return errStoreUnavailable
			}

			stats, ok := app.Coordinator.Results()
			if !ok {
				output.Warning("No recent scan results. Run 'wheel scan run' first.")
				return nil
			}
			if output.IsJSON() {
				return output.JSON(stats)
			}
			displayStats(output, stats)
			return nil
		},
	}
}

func newScanWatchCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run scans on a schedule until interrupted",
		Long: `Run scans on a cron schedule until interrupted.

The schedule supports six-field cron expressions with seconds, or @every
shorthand. The configured scan.schedule is used when no flag is given.`,
		Example: `  wheel scan watch
  wheel scan watch --schedule "@every 10m"
  wheel scan watch --schedule "0 */10 9-16 * * MON-FRI"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !app.requireStore(output) {
				return errStoreUnavailable
			}

			schedule, _ := cmd.Flags().GetString("schedule")
			if schedule == "" {
				schedule = app.Config.Scan.Schedule
			}
			if schedule == "" {
				schedule = "@every 10m"
			}

			if err := app.Scheduler.AddScan(schedule, app.Coordinator); err != nil {
				output.Error("Invalid schedule %q: %v", schedule, err)
				return err
			}

			app.Pool.Start()
			defer app.Pool.Stop()
			app.Scheduler.Start()
			defer app.Scheduler.Stop()

			output.Info("Scanning on schedule %q, Ctrl-C to stop", schedule)

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			<-stop

			output.Println("Stopping")
			return nil
		},
	}

	cmd.Flags().String("schedule", "", "Cron schedule (default from config)")

	return cmd
}
