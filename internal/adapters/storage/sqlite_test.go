package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/optmark/internal/adapters/storage"
	"github.com/alejandrodnm/optmark/internal/domain"
)

func makeCycle(runID string, index int, ts time.Time) domain.Cycle {
	return domain.NewCycle(runID, index, domain.BTC, "27JUN25", ts, []domain.StrikeResult{
		{
			Strike: 100000,
			Call:   domain.Leg{Quoted: domain.PriceOf(0.0412), Computed: domain.PriceOf(0.0409)},
			Put:    domain.Leg{Quoted: domain.PriceOf(0.0733)},
		},
		{
			Strike: 95000,
			Call:   domain.Leg{Computed: domain.PriceOf(0.0655)},
			Put:    domain.Leg{Computed: domain.PriceOf(0.0501)},
		},
	})
}

func startRun(t *testing.T, db *storage.SQLiteStorage, id string) {
	t.Helper()
	expiry, err := domain.ParseExpiry("27JUN25")
	require.NoError(t, err)
	err = db.StartRun(context.Background(), domain.Run{
		ID:         id,
		Currency:   domain.BTC,
		Expiry:     expiry,
		Strikes:    []float64{95000, 100000},
		Interval:   5 * time.Second,
		Iterations: 12,
		StartedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)
}

func TestSQLiteStorage_WriteAndGetCycles(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	startRun(t, db, "run-1")
	ts := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, db.WriteCycle(context.Background(), makeCycle("run-1", 0, ts)))
	require.NoError(t, db.WriteCycle(context.Background(), makeCycle("run-1", 1, ts.Add(5*time.Second))))

	cycles, err := db.GetCycles(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, cycles, 2)

	c := cycles[0]
	assert.Equal(t, 0, c.Index)
	assert.Equal(t, domain.BTC, c.Currency)
	assert.Equal(t, "27JUN25", c.Expiry)
	assert.True(t, ts.Equal(c.Timestamp))
	require.Len(t, c.Records, 4)

	// mismo orden que NewCycle: strike asc, call antes que put
	assert.Equal(t, 95000.0, c.Records[0].Strike)
	assert.Equal(t, domain.Call, c.Records[0].Kind)
	assert.Nil(t, c.Records[0].Quoted)
	require.NotNil(t, c.Records[0].Computed)
	assert.Equal(t, 0.0655, *c.Records[0].Computed)

	put := c.Records[3]
	assert.Equal(t, 100000.0, put.Strike)
	assert.Equal(t, domain.Put, put.Kind)
	require.NotNil(t, put.Quoted)
	assert.Equal(t, 0.0733, *put.Quoted)
	assert.Nil(t, put.Computed)

	assert.Equal(t, 1, cycles[1].Index)
}

func TestSQLiteStorage_RewriteCycleIsIdempotent(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	startRun(t, db, "run-2")
	cycle := makeCycle("run-2", 0, time.Now().UTC())
	require.NoError(t, db.WriteCycle(context.Background(), cycle))
	require.NoError(t, db.WriteCycle(context.Background(), cycle))

	cycles, err := db.GetCycles(context.Background(), "run-2")
	require.NoError(t, err)
	require.Len(t, cycles, 1)
	assert.Len(t, cycles[0].Records, 4)
}

func TestSQLiteStorage_RunsAreIsolated(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	startRun(t, db, "a")
	startRun(t, db, "b")
	require.NoError(t, db.WriteCycle(context.Background(), makeCycle("a", 0, time.Now().UTC())))

	cycles, err := db.GetCycles(context.Background(), "b")
	require.NoError(t, err)
	assert.Empty(t, cycles)
}

func TestSQLiteStorage_UnknownRun(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = db.GetCycles(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNoData)
}

func TestSQLiteStorage_DuplicateRunFails(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	startRun(t, db, "dup")
	err = db.StartRun(context.Background(), domain.Run{ID: "dup", Currency: domain.ETH, StartedAt: time.Now()})
	assert.Error(t, err)
}
