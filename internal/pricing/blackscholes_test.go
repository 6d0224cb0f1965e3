package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Textbook case: S=100, K=100, r=5%, t=1y, sigma=20%.
// Call = 10.4506, Put = 5.5735 by put-call parity.
func TestBlackScholesKnownValues(t *testing.T) {
	S, K, r, tm, sigma := 100.0, 100.0, 0.05, 1.0, 0.20

	d1, d2 := D1D2(sigma, S, K, r, tm)
	assert.InDelta(t, 0.35, d1, 1e-9)
	assert.InDelta(t, 0.15, d2, 1e-9)

	call := CallPrice(S, K, r, tm, d1, d2)
	put := PutPrice(S, K, r, tm, d1, d2)
	assert.InDelta(t, 10.4506, call, 1e-3)
	assert.InDelta(t, 5.5735, put, 1e-3)

	// Put-call parity: C - P = S - K e^{-rt}
	assert.InDelta(t, S-K*math.Exp(-r*tm), call-put, 1e-9)

	assert.InDelta(t, 0.6368, CallDelta(d1), 1e-3)
	assert.InDelta(t, -0.3632, PutDelta(d1), 1e-3)

	// Call and put deltas differ by exactly 1.
	assert.InDelta(t, 1.0, CallDelta(d1)-PutDelta(d1), 1e-12)

	assert.InDelta(t, 37.524, Vega(S, tm, d1), 1e-2)
}

func TestDeltaBoundsDeepInAndOut(t *testing.T) {
	// Deep in the money call: delta approaches 1.
	d1, _ := D1D2(0.2, 200, 100, 0.01, 0.1)
	assert.Greater(t, CallDelta(d1), 0.999)

	// Deep out of the money call: delta approaches 0. The normal CDF
	// saturates this far out, so the put delta may be exactly -1.
	d1, _ = D1D2(0.2, 50, 100, 0.01, 0.1)
	assert.Less(t, CallDelta(d1), 0.001)
	assert.GreaterOrEqual(t, PutDelta(d1), -1.0)
	assert.Less(t, PutDelta(d1), -0.999)

	// Moderately out of the money: strictly inside the open interval.
	d1, _ = D1D2(0.2, 80, 100, 0.01, 0.1)
	assert.Greater(t, PutDelta(d1), -1.0)
	assert.Less(t, PutDelta(d1), 0.0)
}
