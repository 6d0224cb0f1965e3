package cli

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"wheel-tracker/internal/models"
	"wheel-tracker/internal/store"
	"wheel-tracker/pkg/utils"
)

// addWheelCommands adds the position ledger commands.
func addWheelCommands(rootCmd *cobra.Command, app *App) {
	wheelCmd := &cobra.Command{
		Use:   "wheel",
		Short: "Manage wheel positions",
		Long: `Manage wheel positions: open a wheel, record each option leg you sell,
and close it when the shares are called away.`,
	}

	wheelCmd.AddCommand(newWheelListCmd(app))
	wheelCmd.AddCommand(newWheelShowCmd(app))
	wheelCmd.AddCommand(newWheelOpenCmd(app))
	wheelCmd.AddCommand(newWheelSellCmd(app))
	wheelCmd.AddCommand(newWheelCloseCmd(app))
	wheelCmd.AddCommand(newWheelReopenCmd(app))
	wheelCmd.AddCommand(newWheelRmCmd(app))

	rootCmd.AddCommand(wheelCmd)
}

func newWheelListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List wheel positions",
		Long: `List wheel positions, active ones by default.

Each active wheel shows its cost basis, profit if it exits at the current
strike, and whether the live price puts it on track (Exit), covered (Hold),
or underwater (Under).`,
		Example: `  wheel wheel list
  wheel wheel list --all
  wheel wheel list --symbol AAPL`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !app.requireStore(output) {
				return errStoreUnavailable
			}
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			all, _ := cmd.Flags().GetBool("all")
			symbol, _ := cmd.Flags().GetString("symbol")
			live, _ := cmd.Flags().GetBool("live")

			filter := store.WheelFilter{Symbol: symbol}
			if !all {
				active := true
				filter.Active = &active
			}

			wheels, err := app.Store.ListWheels(ctx, filter)
			if err != nil {
				output.Error("Failed to list wheels: %v", err)
				return err
			}

			for i := range wheels {
				if err := app.Ledger.Refresh(ctx, &wheels[i], live && wheels[i].Active); err != nil {
					app.Logger.Warn().Err(err).Int64("wheel_id", wheels[i].ID).Msg("Refresh failed")
				}
			}

			if output.IsJSON() {
				return output.JSON(wheels)
			}
			displayWheelList(output, wheels)
			return nil
		},
	}

	cmd.Flags().Bool("all", false, "Include closed wheels")
	cmd.Flags().String("symbol", "", "Filter by ticker symbol")
	cmd.Flags().Bool("live", true, "Fetch live prices for on-track status")

	return cmd
}

func newWheelShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <wheel-id>",
		Short: "Show a wheel with its full leg history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !app.requireStore(output) {
				return errStoreUnavailable
			}
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			id, err := parseWheelID(args[0])
			if err != nil {
				output.Error("Invalid wheel ID %q", args[0])
				return err
			}

			w, err := app.Store.GetWheel(ctx, id)
			if err != nil {
				output.Error("Failed to load wheel %d: %v", id, err)
				return err
			}
			if err := app.Ledger.Refresh(ctx, w, w.Active); err != nil {
				app.Logger.Warn().Err(err).Int64("wheel_id", id).Msg("Refresh failed")
			}

			if output.IsJSON() {
				return output.JSON(w)
			}
			displayWheel(output, app, w)
			return nil
		},
	}
}

func newWheelOpenCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open <symbol>",
		Short: "Open a new wheel",
		Long: `Open a new wheel on a symbol. The ticker is created if it is not
already tracked. Record the opening put with 'wheel wheel sell'.`,
		Example: `  wheel wheel open AAPL
  wheel wheel open AAPL --quantity 2 --account Fidelity`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !app.requireStore(output) {
				return errStoreUnavailable
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			symbol := strings.ToUpper(args[0])
			quantity, _ := cmd.Flags().GetInt("quantity")
			accountName, _ := cmd.Flags().GetString("account")

			ticker, err := app.Store.GetTicker(ctx, symbol)
			if err != nil {
				ticker, err = app.Store.CreateTicker(ctx, symbol, models.RecommendationNone)
				if err != nil {
					output.Error("Failed to create ticker %s: %v", symbol, err)
					return err
				}
			}

			w := &models.Wheel{
				TickerID: ticker.ID,
				Symbol:   symbol,
				Quantity: quantity,
				Active:   true,
			}

			if accountName != "" {
				account, err := findOrCreateAccount(ctx, app.Store, accountName)
				if err != nil {
					output.Error("Failed to resolve account %s: %v", accountName, err)
					return err
				}
				w.Account = account
			}

			if err := app.Store.CreateWheel(ctx, w); err != nil {
				output.Error("Failed to open wheel: %v", err)
				return err
			}

			output.Success("Opened wheel %d on %s", w.ID, symbol)
			return nil
		},
	}

	cmd.Flags().Int("quantity", 1, "Contract multiplier")
	cmd.Flags().String("account", "", "Brokerage account name")

	return cmd
}

func newWheelSellCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sell <wheel-id>",
		Short: "Record a sold option leg",
		Long: `Record an option sold against a wheel: the opening put, a rolled put,
or a covered call after assignment. Without --expiry the next weekly Friday
is used. Legs cannot be edited once recorded.`,
		Example: `  wheel wheel sell 12 --side P --strike 100 --premium 1.50 --price 102.30 --expiry 2026-09-18
  wheel wheel sell 12 --side C --strike 105 --premium 1.25 --price 101.10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !app.requireStore(output) {
				return errStoreUnavailable
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			id, err := parseWheelID(args[0])
			if err != nil {
				output.Error("Invalid wheel ID %q", args[0])
				return err
			}

			sideStr, _ := cmd.Flags().GetString("side")
			strike, _ := cmd.Flags().GetFloat64("strike")
			premium, _ := cmd.Flags().GetFloat64("premium")
			price, _ := cmd.Flags().GetFloat64("price")
			expiryStr, _ := cmd.Flags().GetString("expiry")

			side := models.OptionSide(strings.ToUpper(sideStr))
			if side != models.SidePut && side != models.SideCall {
				output.Error("Side must be P or C")
				return errInvalidFlag
			}
			if strike <= 0 || premium <= 0 {
				output.Error("Strike and premium must be positive")
				return errInvalidFlag
			}
			expiry, err := resolveExpiry(expiryStr, time.Now())
			if err != nil {
				output.Error("Invalid expiry format. Use YYYY-MM-DD")
				return err
			}

			w, err := app.Store.GetWheel(ctx, id)
			if err != nil {
				output.Error("Failed to load wheel %d: %v", id, err)
				return err
			}
			if !w.Active {
				output.Error("Wheel %d is closed. Reopen it first.", id)
				return errInvalidFlag
			}

			leg := &models.OptionLeg{
				WheelID:      w.ID,
				PurchaseTime: time.Now(),
				Expiration:   expiry,
				Strike:       strike,
				Premium:      premium,
				PriceAtSale:  price,
				Side:         side,
			}
			if err := app.Store.AddLeg(ctx, leg); err != nil {
				output.Error("Failed to record leg: %v", err)
				return err
			}

			output.Success("Recorded %s", leg.String())
			return nil
		},
	}

	cmd.Flags().String("side", "", "Option side: P (put) or C (call)")
	cmd.Flags().Float64("strike", 0, "Strike price")
	cmd.Flags().Float64("premium", 0, "Premium received per share")
	cmd.Flags().Float64("price", 0, "Underlying price at sale")
	cmd.Flags().String("expiry", "", "Expiration date (YYYY-MM-DD, default next Friday)")
	cmd.MarkFlagRequired("side")
	cmd.MarkFlagRequired("strike")
	cmd.MarkFlagRequired("premium")

	return cmd
}

func newWheelCloseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "close <wheel-id>",
		Short: "Close a wheel and record its final outcome",
		Long: `Close a wheel: the shares were called away or the final put expired.

Total profit, days active, and the collateral the position tied up are
computed from the leg history and frozen on the record.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !app.requireStore(output) {
				return errStoreUnavailable
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			id, err := parseWheelID(args[0])
			if err != nil {
				output.Error("Invalid wheel ID %q", args[0])
				return err
			}

			w, err := app.Store.GetWheel(ctx, id)
			if err != nil {
				output.Error("Failed to load wheel %d: %v", id, err)
				return err
			}

			if err := app.Ledger.Close(w); err != nil {
				output.Error("Cannot close wheel %d: %v", id, err)
				return err
			}
			if err := app.Store.UpdateWheelLifecycle(ctx, w); err != nil {
				output.Error("Failed to save wheel %d: %v", id, err)
				return err
			}

			output.Success("Closed wheel %d: %s/share profit over %d trading days on %s collateral (%s total)",
				w.ID, utils.FormatDollars(*w.TotalProfit), *w.TotalDaysActive,
				utils.FormatDollars(*w.Collateral),
				utils.FormatDollars(contractTotal(*w.TotalProfit, w.Quantity)))
			return nil
		},
	}
}

func newWheelReopenCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reopen <wheel-id>",
		Short: "Reopen a closed wheel",
		Long: `Reopen a closed wheel, clearing its recorded outcome. The leg history
is kept; use this to undo an accidental close.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !app.requireStore(output) {
				return errStoreUnavailable
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			id, err := parseWheelID(args[0])
			if err != nil {
				output.Error("Invalid wheel ID %q", args[0])
				return err
			}

			w, err := app.Store.GetWheel(ctx, id)
			if err != nil {
				output.Error("Failed to load wheel %d: %v", id, err)
				return err
			}

			app.Ledger.Reopen(w)
			if err := app.Store.UpdateWheelLifecycle(ctx, w); err != nil {
				output.Error("Failed to save wheel %d: %v", id, err)
				return err
			}

			output.Success("Reopened wheel %d on %s", w.ID, w.Symbol)
			return nil
		},
	}
}

func newWheelRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <wheel-id>",
		Short: "Delete a wheel and its legs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !app.requireStore(output) {
				return errStoreUnavailable
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			id, err := parseWheelID(args[0])
			if err != nil {
				output.Error("Invalid wheel ID %q", args[0])
				return err
			}

			if err := app.Store.DeleteWheel(ctx, id); err != nil {
				output.Error("Failed to delete wheel %d: %v", id, err)
				return err
			}
			output.Success("Deleted wheel %d", id)
			return nil
		},
	}
}

func parseWheelID(arg string) (int64, error) {
	return strconv.ParseInt(arg, 10, 64)
}

// resolveExpiry parses an explicit expiration date, defaulting to the next
// weekly Friday when none is given.
func resolveExpiry(expiryStr string, now time.Time) (time.Time, error) {
	if expiryStr == "" {
		return utils.NextFriday(now), nil
	}
	return time.Parse("2006-01-02", expiryStr)
}

// contractTotal converts a per-share amount to the position total:
// 100 shares per contract times the wheel's contract count.
func contractTotal(perShare float64, quantity int) float64 {
	if quantity < 1 {
		quantity = 1
	}
	return perShare * 100 * float64(quantity)
}

func findOrCreateAccount(ctx context.Context, s store.DataStore, name string) (*models.Account, error) {
	accounts, err := s.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if strings.EqualFold(accounts[i].Name, name) {
			return &accounts[i], nil
		}
	}
	return s.CreateAccount(ctx, name)
}

// displayWheelList renders wheels one line each.
func displayWheelList(output *Output, wheels []models.Wheel) {
	if len(wheels) == 0 {
		output.Warning("No wheels found")
		return
	}

	output.Printf("%-4s %-7s %-4s %10s %10s %8s %-6s %s\n",
		"ID", "SYMBOL", "LEGS", "BASIS", "PROFIT", "ANNUAL", "STATUS", "EXPIRES")
	for i := range wheels {
		w := &wheels[i]
		basis, profit, annual := "-", "-", "-"
		status := output.DimText("closed")
		expires := "-"

		if w.Derived != nil {
			basis = utils.FormatDollars(w.Derived.CostBasis)
			profit = utils.FormatDollars(w.Derived.ProfitIfExitsHere)
			annual = utils.FormatReturn(w.Derived.AnnualizedIfExitsHere)
		}
		if w.Active {
			status = "open"
			if w.Derived != nil && w.Derived.OnTrack != "" {
				status = onTrackLabel(output, w.Derived.OnTrack)
			}
			if leg := w.NewestLeg(); leg != nil {
				expires = leg.Expiration.Format("Jan 2 2006")
			}
		} else if w.TotalProfit != nil {
			profit = utils.FormatDollars(*w.TotalProfit)
		}

		output.Printf("%-4d %-7s %-4d %10s %10s %8s %-6s %s\n",
			w.ID, w.Symbol, len(w.Legs), basis, profit, annual, status, expires)
	}
}

// displayWheel renders one wheel in full, legs newest first.
func displayWheel(output *Output, app *App, w *models.Wheel) {
	output.Bold("%s", w.String())
	if !w.Active && w.TotalProfit != nil {
		output.Printf("Closed: %s/share profit over %d trading days on %s collateral (%s total)\n",
			utils.FormatDollars(*w.TotalProfit), *w.TotalDaysActive,
			utils.FormatDollars(*w.Collateral),
			utils.FormatDollars(contractTotal(*w.TotalProfit, w.Quantity)))
	}

	if d := w.Derived; d != nil {
		output.Printf("Revenue:     %s\n", utils.FormatDollars(d.Revenue))
		output.Printf("Cost basis:  %s\n", utils.FormatDollars(d.CostBasis))
		output.Printf("If exits:    %s/share, %s total (%s, %s annualized over %d days)\n",
			utils.FormatDollars(d.ProfitIfExitsHere),
			utils.FormatDollars(contractTotal(d.ProfitIfExitsHere, w.Quantity)),
			utils.FormatPercent(d.DecimalRateOfReturn),
			utils.FormatReturn(d.AnnualizedIfExitsHere),
			d.DaysActiveSoFar)
		if d.OnTrack != "" {
			output.Printf("Current:     %s (%s)\n",
				utils.FormatDollars(d.CurrentPrice), onTrackLabel(output, d.OnTrack))
		}
	}

	if w.Active && app.Ledger.Expired(w) {
		output.Warning("The newest leg has expired. Sell the next leg or close the wheel.")
	}

	if len(w.Legs) == 0 {
		output.Dim("No legs recorded")
		return
	}
	output.Println()
	output.Printf("%-4s %-4s %10s %9s %10s %-12s %s\n",
		"LEG", "SIDE", "STRIKE", "PREMIUM", "AT SALE", "EXPIRY", "SOLD")
	for i := range w.Legs {
		leg := &w.Legs[i]
		output.Printf("%-4d %-4s %10s %9.2f %10s %-12s %s\n",
			leg.ID, string(leg.Side),
			utils.FormatDollars(leg.Strike), leg.Premium,
			utils.FormatDollars(leg.PriceAtSale),
			leg.Expiration.Format("Jan 2 2006"),
			leg.PurchaseTime.Format("Jan 2 2006"))
	}
}

func onTrackLabel(output *Output, status models.WheelStatus) string {
	switch status {
	case models.StatusExit:
		return output.Green(string(status))
	case models.StatusHold:
		return output.Yellow(string(status))
	default:
		return output.Red(string(status))
	}
}
