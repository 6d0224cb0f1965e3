package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"wheel-tracker/internal/models"
)

// addTickerCommands adds the tracked-symbol commands.
func addTickerCommands(rootCmd *cobra.Command, app *App) {
	tickerCmd := &cobra.Command{
		Use:   "ticker",
		Short: "Manage tracked tickers",
		Long:  "Manage the symbols scanned for put candidates.",
	}

	tickerCmd.AddCommand(newTickerAddCmd(app))
	tickerCmd.AddCommand(newTickerListCmd(app))
	tickerCmd.AddCommand(newTickerTagCmd(app))
	tickerCmd.AddCommand(newTickerRmCmd(app))

	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Manage brokerage accounts",
	}
	accountCmd.AddCommand(newAccountAddCmd(app))
	accountCmd.AddCommand(newAccountListCmd(app))

	rootCmd.AddCommand(tickerCmd)
	rootCmd.AddCommand(accountCmd)
}

func newTickerAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <symbol>...",
		Short: "Track one or more tickers",
		Example: `  wheel ticker add AAPL
  wheel ticker add MSFT GOOG --tag ST`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !app.requireStore(output) {
				return errStoreUnavailable
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			tag, _ := cmd.Flags().GetString("tag")
			rec, ok := parseRecommendation(tag)
			if !ok {
				output.Error("Tag must be NO, ST, or HV")
				return errInvalidFlag
			}

			for _, arg := range args {
				symbol := strings.ToUpper(arg)
				if _, err := app.Store.CreateTicker(ctx, symbol, rec); err != nil {
					output.Error("Failed to add %s: %v", symbol, err)
					return err
				}
				output.Success("Tracking %s", symbol)
			}
			return nil
		},
	}

	cmd.Flags().String("tag", "NO", "Recommendation tag: NO, ST (stable), or HV (high volatility)")

	return cmd
}

func newTickerListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked tickers",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !app.requireStore(output) {
				return errStoreUnavailable
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			tag, _ := cmd.Flags().GetString("tag")

			var tickers []models.Ticker
			var err error
			if tag != "" {
				rec, ok := parseRecommendation(tag)
				if !ok {
					output.Error("Tag must be NO, ST, or HV")
					return errInvalidFlag
				}
				tickers, err = app.Store.ListTickersByRecommendation(ctx, rec)
			} else {
				tickers, err = app.Store.ListTickers(ctx)
			}
			if err != nil {
				output.Error("Failed to list tickers: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(tickers)
			}
			if len(tickers) == 0 {
				output.Warning("No tickers tracked. Add one with 'wheel ticker add'.")
				return nil
			}
			for _, t := range tickers {
				output.Printf("%-7s %s\n", t.Symbol, recommendationLabel(output, t.Recommendation))
			}
			return nil
		},
	}

	cmd.Flags().String("tag", "", "Filter by recommendation tag")

	return cmd
}

func newTickerTagCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tag <symbol> <NO|ST|HV>",
		Short: "Set a ticker's recommendation tag",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !app.requireStore(output) {
				return errStoreUnavailable
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			symbol := strings.ToUpper(args[0])
			rec, ok := parseRecommendation(args[1])
			if !ok {
				output.Error("Tag must be NO, ST, or HV")
				return errInvalidFlag
			}

			if err := app.Store.UpdateRecommendation(ctx, symbol, rec); err != nil {
				output.Error("Failed to tag %s: %v", symbol, err)
				return err
			}
			output.Success("Tagged %s as %s", symbol, string(rec))
			return nil
		},
	}
}

func newTickerRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <symbol>",
		Short: "Stop tracking a ticker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !app.requireStore(output) {
				return errStoreUnavailable
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			symbol := strings.ToUpper(args[0])
			if err := app.Store.DeleteTicker(ctx, symbol); err != nil {
				output.Error("Failed to remove %s: %v", symbol, err)
				return err
			}
			output.Success("Stopped tracking %s", symbol)
			return nil
		},
	}
}

func newAccountAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Add a brokerage account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !app.requireStore(output) {
				return errStoreUnavailable
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			account, err := app.Store.CreateAccount(ctx, args[0])
			if err != nil {
				output.Error("Failed to add account: %v", err)
				return err
			}
			output.Success("Added account %s", account.Name)
			return nil
		},
	}
}

func newAccountListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List brokerage accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !app.requireStore(output) {
				return errStoreUnavailable
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			accounts, err := app.Store.ListAccounts(ctx)
			if err != nil {
				output.Error("Failed to list accounts: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(accounts)
			}
			if len(accounts) == 0 {
				output.Warning("No accounts")
				return nil
			}
			for _, a := range accounts {
				output.Println(a.Name)
			}
			return nil
		},
	}
}

func parseRecommendation(tag string) (models.Recommendation, bool) {
	switch models.Recommendation(strings.ToUpper(tag)) {
	case models.RecommendationNone:
		return models.RecommendationNone, true
	case models.RecommendationStable:
		return models.RecommendationStable, true
	case models.RecommendationHighVolatility:
		return models.RecommendationHighVolatility, true
	}
	return "", false
}

func recommendationLabel(output *Output, rec models.Recommendation) string {
	switch rec {
	case models.RecommendationStable:
		return output.Green("stable")
	case models.RecommendationHighVolatility:
		return output.Yellow("high volatility")
	default:
		return output.DimText("untagged")
	}
}
