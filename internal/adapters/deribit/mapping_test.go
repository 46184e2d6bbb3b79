package deribit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/optmark/internal/domain"
)

func f64(v float64) *float64 { return &v }

func mustExpiry(t *testing.T, code string) domain.Expiry {
	t.Helper()
	e, err := domain.ParseExpiry(code)
	require.NoError(t, err)
	return e
}

func TestMapQuoteGrid_SkipsForeignAndMalformed(t *testing.T) {
	raw := []bookSummary{
		{InstrumentName: "ETH-9MAY25-1800-C", MarkIV: f64(60), MarkPrice: f64(0.05)},
		{InstrumentName: "ETH-9MAY25-1800-P", MarkIV: f64(61), MarkPrice: f64(0.04)},
		{InstrumentName: "ETH-19MAY25-1800-C", MarkIV: f64(58), MarkPrice: f64(0.07)},
		{InstrumentName: "BTC-9MAY25-95000-C", MarkIV: f64(50), MarkPrice: f64(0.02)},
		{InstrumentName: "ETH-9MAY25-2000-C", MarkIV: f64(62), MarkPrice: nil},
		{InstrumentName: "garbage", MarkIV: f64(1), MarkPrice: f64(1)},
	}

	grid, skipped := mapQuoteGrid(raw, domain.ETH, mustExpiry(t, "9MAY25"))

	assert.Equal(t, 1, skipped)
	assert.Len(t, grid.Calls, 1)
	assert.Len(t, grid.Puts, 1)
	assert.InDelta(t, 0.60, grid.Calls[1800].IV, 1e-12)
	assert.InDelta(t, 0.61, grid.Puts[1800].IV, 1e-12)
}

func TestMapFutureNames(t *testing.T) {
	raw := []instrument{
		{InstrumentName: "PAXG_USDC-27JUN25", Kind: "future", IsActive: true},
		{InstrumentName: "PAXG_USDC-30MAY25", Kind: "future", IsActive: false},
		{InstrumentName: "PAXG_USDC-PERPETUAL", Kind: "future", IsActive: true},
		{InstrumentName: "SOL_USDC-PERPETUAL", Kind: "future", IsActive: true},
		{InstrumentName: "BTC_USDC-27JUN25", Kind: "future", IsActive: true},
	}

	assert.Equal(t, []string{"PAXG_USDC-27JUN25"}, mapFutureNames(raw, domain.PAXGUSDC))
	assert.Empty(t, mapFutureNames(raw, domain.SOLUSDC))
}
