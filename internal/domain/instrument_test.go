package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCurrency(t *testing.T) {
	c, err := ParseCurrency("btc")
	require.NoError(t, err)
	assert.Equal(t, BTC, c)

	c, err = ParseCurrency("xrp_usdc")
	require.NoError(t, err)
	assert.Equal(t, XRPUSDC, c)

	_, err = ParseCurrency("DOGE")
	assert.ErrorIs(t, err, ErrUnsupportedCurrency)
	assert.True(t, IsConfigError(err))
}

func TestCurrency_Mappings(t *testing.T) {
	assert.Equal(t, "BTC", BTC.SettlementCurrency())
	assert.Equal(t, "USDC", SOLUSDC.SettlementCurrency())

	assert.Equal(t, "btc_usd", BTC.IndexName())
	assert.Equal(t, "eth_usd", ETH.IndexName())
	assert.Equal(t, "paxg_usdc", PAXGUSDC.IndexName())

	assert.True(t, BTC.IsInverse())
	assert.False(t, PAXGUSDC.IsInverse())

	assert.True(t, PAXGUSDC.UsesDatedFutures())
	assert.False(t, SOLUSDC.UsesDatedFutures())
}

func TestCurrency_ForwardInstrument(t *testing.T) {
	e := mustParseExpiry("27JUN25")
	assert.Equal(t, "BTC-27JUN25", BTC.ForwardInstrument(e))
	assert.Equal(t, "PAXG_USDC-27JUN25", PAXGUSDC.ForwardInstrument(e))
	assert.Equal(t, "XRP_USDC-PERPETUAL", XRPUSDC.ForwardInstrument(e))
}

func TestParseOptionName(t *testing.T) {
	inst, err := ParseOptionName("BTC-9MAY25-95000-C")
	require.NoError(t, err)
	assert.Equal(t, BTC, inst.Currency)
	assert.Equal(t, "9MAY25", inst.Expiry)
	assert.Equal(t, 95000.0, inst.Strike)
	assert.Equal(t, Call, inst.Kind)

	inst, err = ParseOptionName("XRP_USDC-9MAY25-0d625-P")
	require.NoError(t, err)
	assert.Equal(t, 0.625, inst.Strike)
	assert.Equal(t, Put, inst.Kind)
}

func TestParseOptionName_Invalid(t *testing.T) {
	for _, name := range []string{"BTC-PERPETUAL", "BTC-9MAY25-abc-C", "BTC-9MAY25-95000-X"} {
		_, err := ParseOptionName(name)
		assert.Error(t, err, name)
	}
}
