package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"wheel-tracker/internal/errors"
	"wheel-tracker/internal/logging"
	"wheel-tracker/internal/models"
	"wheel-tracker/pkg/utils"
)

// YahooProvider implements Provider against Yahoo Finance's delayed quote
// API. Accuracy is best effort: the feed is free, delayed, and occasionally
// wrong, which is exactly why the screener exists.
type YahooProvider struct {
	client      *http.Client
	baseURL     string
	maxAttempts int
	logger      zerolog.Logger
}

// YahooConfig holds configuration for the Yahoo provider.
type YahooConfig struct {
	BaseURL     string
	Timeout     time.Duration
	MaxAttempts int
}

// NewYahooProvider creates a Yahoo Finance quote provider.
func NewYahooProvider(cfg YahooConfig, logger zerolog.Logger) *YahooProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://query2.finance.yahoo.com"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}
	return &YahooProvider{
		client:      &http.Client{Timeout: cfg.Timeout},
		baseURL:     cfg.BaseURL,
		maxAttempts: cfg.MaxAttempts,
		logger:      logger.With().Str("component", "yahoo").Logger(),
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"chart"`
}

type optionsResponse struct {
	OptionChain struct {
		Result []struct {
			ExpirationDates []int64 `json:"expirationDates"`
			Options         []struct {
				Calls []optionRow `json:"calls"`
				Puts  []optionRow `json:"puts"`
			} `json:"options"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"optionChain"`
}

type optionRow struct {
	Strike            float64  `json:"strike"`
	LastPrice         float64  `json:"lastPrice"`
	Bid               float64  `json:"bid"`
	Ask               float64  `json:"ask"`
	Volume            *float64 `json:"volume"`
	ImpliedVolatility float64  `json:"impliedVolatility"`
}

type calendarResponse struct {
	QuoteSummary struct {
		Result []struct {
			CalendarEvents struct {
				Earnings struct {
					EarningsDate []struct {
						Raw int64 `json:"raw"`
					} `json:"earningsDate"`
				} `json:"earnings"`
			} `json:"calendarEvents"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"quoteSummary"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// RecentCloses returns the most recent trading-day closes, oldest first.
func (y *YahooProvider) RecentCloses(ctx context.Context, symbol string, days int) ([]models.ClosePrice, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?range=%dd&interval=1d", y.baseURL, symbol, days+2)

	var resp chartResponse
	if err := y.fetch(ctx, "recent_closes", symbol, url, &resp); err != nil {
		return nil, err
	}
	if resp.Chart.Error != nil || len(resp.Chart.Result) == 0 {
		return nil, errors.NewProviderError("recent_closes", symbol, errors.ErrNoData)
	}

	result := resp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, errors.NewProviderError("recent_closes", symbol, errors.ErrNoData)
	}

	closes := make([]models.ClosePrice, 0, days)
	quotes := result.Indicators.Quote[0].Close
	for i, ts := range result.Timestamp {
		if i >= len(quotes) || quotes[i] == nil {
			continue
		}
		closes = append(closes, models.ClosePrice{
			Date:  time.Unix(ts, 0).UTC(),
			Price: *quotes[i],
		})
	}
	if len(closes) == 0 {
		return nil, errors.NewProviderError("recent_closes", symbol, errors.ErrNoData)
	}
	if len(closes) > days {
		closes = closes[len(closes)-days:]
	}
	return closes, nil
}

// AvailableExpiries returns the nearest option expiry dates, soonest first.
func (y *YahooProvider) AvailableExpiries(ctx context.Context, symbol string, limit int) ([]time.Time, error) {
	url := fmt.Sprintf("%s/v7/finance/options/%s", y.baseURL, symbol)

	var resp optionsResponse
	if err := y.fetch(ctx, "expiries", symbol, url, &resp); err != nil {
		return nil, err
	}
	if resp.OptionChain.Error != nil || len(resp.OptionChain.Result) == 0 {
		return nil, errors.NewProviderError("expiries", symbol, errors.ErrNoData)
	}

	stamps := resp.OptionChain.Result[0].ExpirationDates
	expiries := make([]time.Time, 0, len(stamps))
	for _, ts := range stamps {
		expiries = append(expiries, time.Unix(ts, 0).UTC())
	}
	sort.Slice(expiries, func(i, j int) bool { return expiries[i].Before(expiries[j]) })
	if limit > 0 && len(expiries) > limit {
		expiries = expiries[:limit]
	}
	if len(expiries) == 0 {
		return nil, errors.NewProviderError("expiries", symbol, errors.ErrNoData)
	}
	return expiries, nil
}

// OptionChain returns one side of the chain snapshot for an expiry, rows
// ordered by strike ascending.
func (y *YahooProvider) OptionChain(ctx context.Context, symbol string, expiry time.Time, side models.OptionSide) ([]models.OptionQuote, error) {
	url := fmt.Sprintf("%s/v7/finance/options/%s?date=%d", y.baseURL, symbol, expiry.Unix())

	var resp optionsResponse
	if err := y.fetch(ctx, "option_chain", symbol, url, &resp); err != nil {
		return nil, err
	}
	if resp.OptionChain.Error != nil || len(resp.OptionChain.Result) == 0 ||
		len(resp.OptionChain.Result[0].Options) == 0 {
		return nil, errors.NewProviderError("option_chain", symbol, errors.ErrNoData)
	}

	rows := resp.OptionChain.Result[0].Options[0].Puts
	if side == models.SideCall {
		rows = resp.OptionChain.Result[0].Options[0].Calls
	}

	quotes := make([]models.OptionQuote, 0, len(rows))
	for _, row := range rows {
		// Yahoo omits volume on rows that never traded; keep the row and let
		// the screener reject it as NaN.
		volume := math.NaN()
		if row.Volume != nil {
			volume = *row.Volume
		}
		quotes = append(quotes, models.OptionQuote{
			Strike:            row.Strike,
			LastPrice:         row.LastPrice,
			Bid:               row.Bid,
			Ask:               row.Ask,
			Volume:            volume,
			ImpliedVolatility: row.ImpliedVolatility,
		})
	}
	sort.Slice(quotes, func(i, j int) bool { return quotes[i].Strike < quotes[j].Strike })
	return quotes, nil
}

// NextEarningsDate returns the next scheduled earnings date, if any.
func (y *YahooProvider) NextEarningsDate(ctx context.Context, symbol string) (time.Time, bool, error) {
	url := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=calendarEvents", y.baseURL, symbol)

	var resp calendarResponse
	if err := y.fetch(ctx, "earnings", symbol, url, &resp); err != nil {
		return time.Time{}, false, err
	}
	if resp.QuoteSummary.Error != nil || len(resp.QuoteSummary.Result) == 0 {
		return time.Time{}, false, errors.NewProviderError("earnings", symbol, errors.ErrNoData)
	}

	now := time.Now()
	for _, d := range resp.QuoteSummary.Result[0].CalendarEvents.Earnings.EarningsDate {
		date := time.Unix(d.Raw, 0).UTC()
		if date.After(now) {
			return date, true, nil
		}
	}
	// A well-formed response with no future dates is a confirmed negative.
	return time.Time{}, false, nil
}

func (y *YahooProvider) fetch(ctx context.Context, operation, symbol, url string, target interface{}) error {
	start := time.Now()
	cfg := utils.DefaultRetryConfig()
	cfg.MaxAttempts = y.maxAttempts

	err := utils.Retry(ctx, cfg, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", "wheel-tracker/0.1")

		resp, err := y.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		return json.NewDecoder(resp.Body).Decode(target)
	})

	logging.LogProviderCall(y.logger, operation, symbol, time.Since(start), err)
	if err != nil {
		return errors.NewProviderError(operation, symbol, err)
	}
	return nil
}
