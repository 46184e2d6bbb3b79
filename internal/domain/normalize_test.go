package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePrice_Inverse(t *testing.T) {
	p, err := NormalizePrice(BTC, 1234.5, PriceOf(98765.4))
	require.NoError(t, err)
	assert.Equal(t, 0.0125, p)
}

func TestNormalizePrice_InverseWithoutIndex(t *testing.T) {
	_, err := NormalizePrice(ETH, 120, nil)
	assert.ErrorIs(t, err, ErrNoData)

	_, err = NormalizePrice(ETH, 120, PriceOf(0))
	assert.ErrorIs(t, err, ErrNoData)
}

func TestNormalizePrice_Linear(t *testing.T) {
	p, err := NormalizePrice(SOLUSDC, 3.141592, nil)
	require.NoError(t, err)
	assert.Equal(t, 3.1416, p)
}

func TestRoundPrice(t *testing.T) {
	assert.Equal(t, 0.0123, RoundPrice(0.01234))
	assert.Equal(t, 0.0124, RoundPrice(0.01235))
	assert.Equal(t, 12.0, RoundPrice(12))
}

func TestNewCycle_SortedCallThenPut(t *testing.T) {
	ts := time.Date(2025, time.May, 1, 12, 0, 0, 0, time.UTC)
	results := []StrikeResult{
		{Strike: 52000, Call: Leg{Computed: PriceOf(0.02)}},
		{Strike: 50000, Call: Leg{Quoted: PriceOf(0.03), Computed: PriceOf(0.031)}, Put: Leg{Quoted: PriceOf(0.01)}},
	}

	c := NewCycle("run-1", 0, BTC, "9MAY25", ts, results)

	require.Len(t, c.Records, 4)
	assert.Equal(t, 50000.0, c.Records[0].Strike)
	assert.Equal(t, Call, c.Records[0].Kind)
	assert.Equal(t, Put, c.Records[1].Kind)
	assert.Equal(t, 52000.0, c.Records[2].Strike)
	for _, r := range c.Records {
		assert.True(t, ts.Equal(r.Timestamp))
	}

	assert.True(t, c.Records[0].HasBoth())
	assert.InDelta(t, 0.001, c.Records[0].Diff(), 1e-12)
	assert.False(t, c.Records[1].HasBoth())

	priced, absent := c.Counts()
	assert.Equal(t, 2, priced)
	assert.Equal(t, 2, absent)
}
