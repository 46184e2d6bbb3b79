package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExpiry(t *testing.T) {
	cases := []struct {
		in   string
		code string
		date time.Time
	}{
		{"9MAY25", "9MAY25", time.Date(2025, time.May, 9, 0, 0, 0, 0, time.UTC)},
		{"09may25", "9MAY25", time.Date(2025, time.May, 9, 0, 0, 0, 0, time.UTC)},
		{"27JUN25", "27JUN25", time.Date(2025, time.June, 27, 0, 0, 0, 0, time.UTC)},
		{" 26DEC25 ", "26DEC25", time.Date(2025, time.December, 26, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		e, err := ParseExpiry(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.code, e.Code)
		assert.True(t, tc.date.Equal(e.Date), "%s: got %s", tc.in, e.Date)
	}
}

func TestParseExpiry_Invalid(t *testing.T) {
	for _, in := range []string{"", "MAY25", "9MAY2025", "32JAN25", "9FOO25", "2025-05-09", "PERPETUAL"} {
		_, err := ParseExpiry(in)
		assert.ErrorIs(t, err, ErrInvalidExpiry, in)
		assert.True(t, IsConfigError(err), in)
	}
}

func TestExpiry_SettlesAtEightUTC(t *testing.T) {
	e := mustParseExpiry("9MAY25")
	assert.Equal(t, time.Date(2025, time.May, 9, 8, 0, 0, 0, time.UTC), e.SettlesAt())
}

func TestExpiry_YearsUntil(t *testing.T) {
	e := mustParseExpiry("9MAY25")
	now := time.Date(2025, time.May, 8, 8, 0, 0, 0, time.UTC)

	years, err := e.YearsUntil(now)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/365, years, 1e-12)
}

func TestExpiry_YearsUntil_PastIsInvalid(t *testing.T) {
	e := mustParseExpiry("9MAY25")

	_, err := e.YearsUntil(time.Date(2025, time.May, 9, 8, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrExpired, "el instante de vencimiento ya no es pricable")

	_, err = e.YearsUntil(time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrExpired)
}

func TestExpiryFromFutureName(t *testing.T) {
	e, err := ExpiryFromFutureName("BTC-27JUN25")
	require.NoError(t, err)
	assert.Equal(t, "27JUN25", e.Code)

	e, err = ExpiryFromFutureName("PAXG_USDC-26SEP25")
	require.NoError(t, err)
	assert.Equal(t, time.September, e.Date.Month())

	_, err = ExpiryFromFutureName("BTC-PERPETUAL")
	assert.ErrorIs(t, err, ErrInvalidExpiry)
	_, err = ExpiryFromFutureName("BTC")
	assert.ErrorIs(t, err, ErrInvalidExpiry)
}

func TestExpiryFromDate_RoundTrip(t *testing.T) {
	d := time.Date(2026, time.March, 6, 15, 30, 0, 0, time.UTC)
	e := ExpiryFromDate(d)
	assert.Equal(t, "6MAR26", e.Code)

	parsed := mustParseExpiry(e.Code)
	assert.True(t, parsed.Date.Equal(e.Date))
}

func TestDaysBetween(t *testing.T) {
	a := mustParseExpiry("30MAY25")
	b := mustParseExpiry("27JUN25")
	assert.Equal(t, 28, DaysBetween(a, b))
	assert.Equal(t, -28, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a))
}

// mustParseExpiry es ParseExpiry para literales de test.
func mustParseExpiry(code string) Expiry {
	e, err := ParseExpiry(code)
	if err != nil {
		panic(err)
	}
	return e
}
