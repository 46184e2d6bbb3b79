package reconciler_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/optmark/internal/application/reconciler"
	"github.com/alejandrodnm/optmark/internal/domain"
)

func TestForwardResolver_Idempotent(t *testing.T) {
	market := newMockMarket(domain.NewQuoteGrid())
	market.prices["ETH-11MAY25"] = 1800
	market.prices["ETH-21MAY25"] = 1820
	curve, _ := domain.NewFuturesCurve([]string{"ETH-11MAY25", "ETH-21MAY25"})
	f := reconciler.NewForwardResolver(market, domain.ETH, curve)

	first, err := f.Resolve(context.Background(), daysOut(15))
	require.NoError(t, err)
	second, err := f.Resolve(context.Background(), daysOut(15))
	require.NoError(t, err)

	assert.InDelta(t, 1810, first, 1e-9)
	assert.Equal(t, first, second)
}

func TestForwardResolver_LongEndExtrapolation(t *testing.T) {
	market := newMockMarket(domain.NewQuoteGrid())
	market.prices["BTC-11MAY25"] = 100000
	market.prices["BTC-21MAY25"] = 101000
	curve, _ := domain.NewFuturesCurve([]string{"BTC-11MAY25", "BTC-21MAY25"})
	f := reconciler.NewForwardResolver(market, domain.BTC, curve)

	price, err := f.Resolve(context.Background(), daysOut(30))
	require.NoError(t, err)
	assert.InDelta(t, 102000, price, 1e-9)
}

func TestForwardResolver_PerpetualForUndatedCurrencies(t *testing.T) {
	market := newMockMarket(domain.NewQuoteGrid())
	market.prices["XRP_USDC-PERPETUAL"] = 2.31
	f := reconciler.NewForwardResolver(market, domain.XRPUSDC, domain.FuturesCurve{})

	price, err := f.Resolve(context.Background(), daysOut(30))
	require.NoError(t, err)
	assert.Equal(t, 2.31, price)
}

func TestForwardResolver_NeedsTwoFutures(t *testing.T) {
	market := newMockMarket(domain.NewQuoteGrid())
	curve, _ := domain.NewFuturesCurve([]string{"PAXG_USDC-11MAY25"})
	f := reconciler.NewForwardResolver(market, domain.PAXGUSDC, curve)

	_, err := f.Resolve(context.Background(), daysOut(15))
	assert.ErrorIs(t, err, domain.ErrResolution)
}

func TestForwardResolver_MissingMarkIsNoData(t *testing.T) {
	market := newMockMarket(domain.NewQuoteGrid())
	market.prices["BTC-11MAY25"] = 100000
	curve, _ := domain.NewFuturesCurve([]string{"BTC-11MAY25", "BTC-21MAY25"})
	f := reconciler.NewForwardResolver(market, domain.BTC, curve)

	_, err := f.Resolve(context.Background(), daysOut(15))
	assert.ErrorIs(t, err, domain.ErrNoData)
}
