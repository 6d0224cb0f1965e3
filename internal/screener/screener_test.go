package screener

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wheel-tracker/internal/calendar"
	"wheel-tracker/internal/models"
	"wheel-tracker/internal/pricing"
	"wheel-tracker/internal/quotecache"
	"wheel-tracker/internal/returns"
)

// stubProvider scripts the quote feed for end-to-end ranking tests.
type stubProvider struct {
	price      float64
	expiries   []time.Time
	chains     map[models.OptionSide][]models.OptionQuote
	earnings   time.Time
	earningsOK bool
}

func (p *stubProvider) RecentCloses(ctx context.Context, symbol string, days int) ([]models.ClosePrice, error) {
	return []models.ClosePrice{{Date: time.Now(), Price: p.price}}, nil
}

func (p *stubProvider) AvailableExpiries(ctx context.Context, symbol string, limit int) ([]time.Time, error) {
	return p.expiries, nil
}

func (p *stubProvider) OptionChain(ctx context.Context, symbol string, expiry time.Time, side models.OptionSide) ([]models.OptionQuote, error) {
	return p.chains[side], nil
}

func (p *stubProvider) NextEarningsDate(ctx context.Context, symbol string) (time.Time, bool, error) {
	return p.earnings, p.earningsOK, nil
}

// monday is the fixed "today" for every test: Monday Aug 31, 2026. The test
// expiry is Friday Sep 18, 15 trading days later inclusive.
var (
	monday     = time.Date(2026, time.August, 31, 10, 0, 0, 0, time.UTC)
	testExpiry = time.Date(2026, time.September, 18, 0, 0, 0, 0, time.UTC)
)

func newTestScreener(p *stubProvider) *Screener {
	cache := quotecache.NewMemoryCache()
	quoter := quotecache.NewCachedQuoter(p, cache, quotecache.DefaultOptions(), zerolog.Nop())
	solver := pricing.NewSolver(0.01)
	odds := pricing.NewOddsCalculator(solver, cache, 5*time.Minute)
	counter := calendar.NewBusinessDayCounter(nil)

	s := New(quoter, solver, odds, counter, DefaultConfig(), zerolog.Nop())
	s.now = func() time.Time { return monday }
	return s
}

func goodPut() models.OptionQuote {
	return models.OptionQuote{
		Strike:            45,
		LastPrice:         1.00,
		Bid:               1.00,
		Ask:               1.10,
		Volume:            20,
		ImpliedVolatility: 0.55,
	}
}

func TestScreenPutAccepts(t *testing.T) {
	s := newTestScreener(&stubProvider{})

	stat, reason := s.screenPut("XYZ", 50, goodPut(), 15)
	require.NotNil(t, stat, "reject reason: %s", reason)

	assert.Equal(t, models.SidePut, stat.Side)
	assert.InDelta(t, 1.0/45.0, stat.MaxProfitDecimal, 1e-9)
	assert.Greater(t, stat.OddsOutOfMoney, 0.0)
	assert.LessOrEqual(t, stat.OddsOutOfMoney, 1.0)
	assert.Equal(t, returns.Annualize(stat.MaxProfitDecimal, stat.OddsOutOfMoney, 15, 0), stat.AnnualizedReturn)
}

func TestScreenCommonRejections(t *testing.T) {
	s := newTestScreener(&stubProvider{})

	cases := []struct {
		name   string
		mutate func(*models.OptionQuote)
		reason RejectReason
	}{
		{"thin volume", func(q *models.OptionQuote) { q.Volume = 5 }, RejectLowVolume},
		{"missing volume", func(q *models.OptionQuote) { q.Volume = math.NaN() }, RejectLowVolume},
		{"zero implied volatility", func(q *models.OptionQuote) { q.ImpliedVolatility = 0 }, RejectZeroIV},
		{"no price at all", func(q *models.OptionQuote) { q.Bid = 0; q.LastPrice = 0 }, RejectNoPrice},
		{"NaN last price off hours", func(q *models.OptionQuote) { q.Bid = 0; q.LastPrice = math.NaN() }, RejectNoPrice},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := goodPut()
			tc.mutate(&q)
			_, reason := s.screenCommon(q)
			assert.Equal(t, tc.reason, reason)
		})
	}
}

func TestScreenCommonEffectivePrice(t *testing.T) {
	s := newTestScreener(&stubProvider{})

	// Off hours both bid and ask collapse to zero; the last trade stands in.
	q := goodPut()
	q.Bid = 0
	q.Ask = 0
	q.LastPrice = 2.50
	price, reason := s.screenCommon(q)
	require.Empty(t, reason)
	assert.Equal(t, 2.50, price)

	// During market hours the bid is the worst-case fill.
	q = goodPut()
	q.Bid = 2.00
	q.LastPrice = 2.10
	price, reason = s.screenCommon(q)
	require.Empty(t, reason)
	assert.Equal(t, 2.00, price)
}

func TestScreenPutRejectsNoIntrinsic(t *testing.T) {
	s := newTestScreener(&stubProvider{})

	// A put struck above spot plus premium: buying the stock outright would
	// be cheaper, so the quote cannot be real.
	q := goodPut()
	q.Strike = 52
	q.Bid = 1.00
	q.LastPrice = 1.00
	stat, reason := s.screenPut("XYZ", 50, q, 15)
	assert.Nil(t, stat)
	assert.Equal(t, RejectNoIntrinsic, reason)
}

func TestStaleQuoteRejection(t *testing.T) {
	s := newTestScreener(&stubProvider{})

	// A bid 50% off the last trade is outside the staleness band.
	q := goodPut()
	q.Bid = 1.50
	stat, reason := s.screenPut("XYZ", 50, q, 15)
	assert.Nil(t, stat)
	assert.Equal(t, RejectStaleQuote, reason)

	// A quote failing both checks reports the intrinsic-value rejection:
	// that guard runs before the staleness band.
	q = goodPut()
	q.Strike = 52
	q.Bid = 1.50
	stat, reason = s.screenPut("XYZ", 50, q, 15)
	assert.Nil(t, stat)
	assert.Equal(t, RejectNoIntrinsic, reason)
}

func TestScreenPutHighVolRegime(t *testing.T) {
	s := newTestScreener(&stubProvider{})

	// Above the volatility ceiling the quote takes the direct solve path.
	// It should still produce a usable candidate, not a rejection.
	q := goodPut()
	q.ImpliedVolatility = 5.0
	stat, reason := s.screenPut("XYZ", 50, q, 15)
	require.NotNil(t, stat, "reject reason: %s", reason)
	assert.Greater(t, stat.OddsOutOfMoney, 0.0)
	assert.LessOrEqual(t, stat.OddsOutOfMoney, 1.0)
}

func TestScreenCallWheelEconomics(t *testing.T) {
	s := newTestScreener(&stubProvider{})

	q := models.OptionQuote{
		Strike:            52.5,
		LastPrice:         1.00,
		Bid:               1.00,
		Volume:            20,
		ImpliedVolatility: 0.55,
	}

	// An active wheel: 48 collateral, 2.00 premium collected, 10 days in.
	stat, reason := s.screenCall("XYZ", 50, q, 15, 10, 2, 48)
	require.NotNil(t, stat, "reject reason: %s", reason)

	assert.InDelta(t, returns.CallOnlyProfit(52.5, 1, 50), stat.CallOnlyMaxProfit, 1e-9)
	assert.InDelta(t, returns.WheelProfit(52.5, 48, 1, 2), stat.WheelMaxProfit, 1e-9)
	// Annualization runs over the whole position's horizon, 10+15 days.
	assert.Equal(t, returns.Annualize(stat.WheelMaxProfit, stat.OddsOutOfMoney, 25, 0), stat.AnnualizedReturn)
}

func TestScreenCallWithoutWheel(t *testing.T) {
	s := newTestScreener(&stubProvider{})

	q := models.OptionQuote{
		Strike:            52.5,
		LastPrice:         1.00,
		Bid:               1.00,
		Volume:            20,
		ImpliedVolatility: 0.55,
	}

	// No collateral means no position to amortize over: call-only economics.
	stat, reason := s.screenCall("XYZ", 50, q, 15, 0, 0, 0)
	require.NotNil(t, stat, "reject reason: %s", reason)
	assert.Equal(t, stat.CallOnlyMaxProfit, stat.WheelMaxProfit)
	assert.Equal(t, returns.Annualize(stat.WheelMaxProfit, stat.OddsOutOfMoney, 15, 0), stat.AnnualizedReturn)
}

func TestScreenCallRejectsNoIntrinsic(t *testing.T) {
	s := newTestScreener(&stubProvider{})

	// Strike plus premium under spot: selling the shares outright beats it.
	q := models.OptionQuote{
		Strike:            48,
		LastPrice:         1.00,
		Bid:               1.00,
		Volume:            20,
		ImpliedVolatility: 0.55,
	}
	stat, reason := s.screenCall("XYZ", 50, q, 15, 0, 0, 0)
	assert.Nil(t, stat)
	assert.Equal(t, RejectNoIntrinsic, reason)
}

func TestRankPutsKeepsHighestOTMStrikes(t *testing.T) {
	chain := []models.OptionQuote{}
	for _, strike := range []float64{40, 42.5, 45, 47.5, 50.5, 52.5} {
		q := goodPut()
		q.Strike = strike
		chain = append(chain, q)
	}

	p := &stubProvider{
		price:    50,
		expiries: []time.Time{testExpiry},
		chains:   map[models.OptionSide][]models.OptionQuote{models.SidePut: chain},
	}
	s := newTestScreener(p)

	stats, err := s.RankPuts(context.Background(), "XYZ", 5, 3)
	require.NoError(t, err)

	// The boundary sits at 50.5; the three highest strikes below it are the
	// candidates. In-the-money strikes never rank.
	require.Len(t, stats, 3)
	strikes := map[float64]bool{}
	for _, stat := range stats {
		strikes[stat.Strike] = true
		assert.Equal(t, testExpiry, stat.Expiration)
		assert.Equal(t, 15, stat.DaysToExpiry)
		assert.False(t, stat.IncludesEarnings)
	}
	assert.Equal(t, map[float64]bool{42.5: true, 45: true, 47.5: true}, strikes)

	// Ranked best first.
	for i := 1; i < len(stats); i++ {
		assert.GreaterOrEqual(t, stats[i-1].AnnualizedReturn, stats[i].AnnualizedReturn)
	}
}

func TestRankPutsFlagsEarnings(t *testing.T) {
	p := &stubProvider{
		price:      50,
		expiries:   []time.Time{testExpiry},
		chains:     map[models.OptionSide][]models.OptionQuote{models.SidePut: {goodPut()}},
		earnings:   time.Date(2026, time.September, 10, 0, 0, 0, 0, time.UTC),
		earningsOK: true,
	}
	s := newTestScreener(p)

	stats, err := s.RankPuts(context.Background(), "XYZ", 5, 3)
	require.NoError(t, err)
	require.NotEmpty(t, stats)
	for _, stat := range stats {
		assert.True(t, stat.IncludesEarnings, "expiry spans the earnings date")
	}
}

func TestRankPutsEarningsAfterExpiryNotFlagged(t *testing.T) {
	p := &stubProvider{
		price:      50,
		expiries:   []time.Time{testExpiry},
		chains:     map[models.OptionSide][]models.OptionQuote{models.SidePut: {goodPut()}},
		earnings:   time.Date(2026, time.October, 29, 0, 0, 0, 0, time.UTC),
		earningsOK: true,
	}
	s := newTestScreener(p)

	stats, err := s.RankPuts(context.Background(), "XYZ", 5, 3)
	require.NoError(t, err)
	require.NotEmpty(t, stats)
	for _, stat := range stats {
		assert.False(t, stat.IncludesEarnings)
	}
}

func TestRankCallsWindowStraddlesBoundary(t *testing.T) {
	chain := []models.OptionQuote{}
	for _, strike := range []float64{50.5, 52.5, 55, 57.5} {
		chain = append(chain, models.OptionQuote{
			Strike:            strike,
			LastPrice:         1.00,
			Bid:               1.00,
			Volume:            20,
			ImpliedVolatility: 0.55,
		})
	}

	p := &stubProvider{
		price:    50,
		expiries: []time.Time{testExpiry},
		chains:   map[models.OptionSide][]models.OptionQuote{models.SideCall: chain},
	}
	s := newTestScreener(p)

	stats, err := s.RankCalls(context.Background(), "XYZ", 10, 2, 48, 5)
	require.NoError(t, err)
	require.NotEmpty(t, stats)
	for _, stat := range stats {
		assert.Equal(t, models.SideCall, stat.Side)
		assert.Greater(t, stat.WheelMaxProfit, 0.0)
	}
}
