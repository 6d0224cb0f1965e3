package cli

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"wheel-tracker/internal/models"
	"wheel-tracker/pkg/utils"
)

// addScreenCommands adds the candidate-screening commands.
func addScreenCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newPutsCmd(app))
	rootCmd.AddCommand(newCallsCmd(app))
}

func newPutsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "puts <symbol>",
		Short: "Rank cash-secured put candidates",
		Long: `Rank cash-secured put candidates for a symbol.

For each of the nearest expiry dates, the highest out-of-the-money strikes
are screened for data quality and ranked by annualized return. Candidates
whose expiry spans an earnings report are flagged.`,
		Example: `  wheel puts AAPL
  wheel puts MSFT --expiries 4 --per-expiry 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			symbol := strings.ToUpper(args[0])
			expiries, _ := cmd.Flags().GetInt("expiries")
			perExpiry, _ := cmd.Flags().GetInt("per-expiry")

			stats, err := app.Screener.RankPuts(ctx, symbol, expiries, perExpiry)
			if err != nil {
				output.Error("Failed to rank puts for %s: %v", symbol, err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(stats)
			}
			displayStats(output, stats)
			return nil
		},
	}

	cmd.Flags().Int("expiries", app.Config.Screener.MaxExpiries, "Number of expiry dates to scan")
	cmd.Flags().Int("per-expiry", app.Config.Screener.PutsPerExpiry, "Strikes to keep per expiry")

	return cmd
}

func newCallsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calls <symbol|wheel-id>",
		Short: "Rank covered-call candidates",
		Long: `Rank covered-call candidates for a symbol or an existing wheel.

Given a wheel ID, the ranking reflects the whole position: premium already
collected, days active so far, and the collateral tied up by the put. Given a
bare symbol, candidates are ranked on the call leg alone.`,
		Example: `  wheel calls AAPL
  wheel calls 12`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			expiries, _ := cmd.Flags().GetInt("expiries")

			symbol := strings.ToUpper(args[0])
			daysActive := 0
			revenue := 0.0
			collateral := 0.0

			if id, err := strconv.ParseInt(args[0], 10, 64); err == nil {
				if !app.requireStore(output) {
					return errStoreUnavailable
				}
				w, err := app.Store.GetWheel(ctx, id)
				if err != nil {
					output.Error("Failed to load wheel %d: %v", id, err)
					return err
				}
				if err := app.Ledger.Refresh(ctx, w, false); err != nil {
					output.Error("Failed to refresh wheel %d: %v", id, err)
					return err
				}
				symbol = w.Symbol
				if w.Derived != nil {
					daysActive = w.Derived.DaysActiveSoFar
					revenue = w.Derived.Revenue
					collateral = w.Derived.OpenStrike
				}
			}

			stats, err := app.Screener.RankCalls(ctx, symbol, daysActive, revenue, collateral, expiries)
			if err != nil {
				output.Error("Failed to rank calls for %s: %v", symbol, err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(stats)
			}
			displayStats(output, stats)
			return nil
		},
	}

	cmd.Flags().Int("expiries", app.Config.Screener.MaxExpiries, "Number of expiry dates to scan")

	return cmd
}

// displayStats renders ranked candidates, best first.
func displayStats(output *Output, stats []models.OptionStat) {
	if len(stats) == 0 {
		output.Warning("No candidates passed the screen")
		return
	}

	output.Printf("%-6s %-4s %10s %8s %-12s %5s %8s %7s %10s\n",
		"SYMBOL", "SIDE", "STRIKE", "PRICE", "EXPIRY", "DAYS", "PROFIT", "ODDS", "ANNUAL")
	for _, s := range stats {
		annual := utils.FormatReturn(s.AnnualizedReturn)
		if s.AnnualizedReturn >= 1 {
			annual = output.Green(annual)
		} else {
			annual = output.Red(annual)
		}
		flag := ""
		if s.IncludesEarnings {
			flag = output.Yellow(" [earnings]")
		}
		output.Printf("%-6s %-4s %10s %8.2f %-12s %5d %8s %6.0f%% %10s%s\n",
			s.Symbol, string(s.Side),
			utils.FormatDollars(s.Strike), s.Price,
			s.Expiration.Format("Jan 2 2006"), s.DaysToExpiry,
			utils.FormatPercent(s.MaxProfitDecimal),
			s.OddsOutOfMoney*100, annual, flag)
	}
}
