package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"wheel-tracker/pkg/utils"
)

// addQuoteCommands adds market data commands.
func addQuoteCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newQuoteCmd(app))
}

func newQuoteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "quote <symbol>...",
		Short: "Show current prices and today's change",
		Example: `  wheel quote AAPL
  wheel quote AAPL MSFT GOOG`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			type quoteRow struct {
				Symbol  string  `json:"symbol"`
				Price   float64 `json:"price"`
				Change  float64 `json:"change"`
				Percent float64 `json:"percent"`
			}

			var rows []quoteRow
			for _, arg := range args {
				symbol := strings.ToUpper(arg)
				price, err := app.Quoter.CurrentPrice(ctx, symbol)
				if err != nil {
					output.Error("Failed to quote %s: %v", symbol, err)
					continue
				}
				change, percent, err := app.Quoter.ChangeToday(ctx, symbol)
				if err != nil {
					app.Logger.Debug().Err(err).Str("symbol", symbol).Msg("Change unavailable")
				}
				rows = append(rows, quoteRow{Symbol: symbol, Price: price, Change: change, Percent: percent})
			}

			if output.IsJSON() {
				return output.JSON(rows)
			}
			if !utils.IsMarketOpen(time.Now()) {
				output.Dim("Market closed; prices are the last session's close")
			}
			for _, r := range rows {
				changeStr := utils.FormatDollars(r.Change)
				if r.Change >= 0 {
					changeStr = output.Green("+" + changeStr)
				} else {
					changeStr = output.Red(changeStr)
				}
				output.Printf("%-7s %10s  %s (%.2f%%)\n",
					r.Symbol, utils.FormatDollars(r.Price), changeStr, r.Percent*100)
			}
			return nil
		},
	}
}
