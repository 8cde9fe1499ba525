package event

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	// One connection: pooled connections would each get their own
	// in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&Event{}))
	return db
}

func seedEvent(t *testing.T, db *gorm.DB, capacity int) *Event {
	t.Helper()
	e := &Event{
		Title:      "Monday Club",
		EventType:  "weekly",
		Status:     StatusScheduled,
		StartAt:    time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC),
		EndAt:      time.Date(2026, 2, 2, 15, 0, 0, 0, time.UTC),
		LocationID: 1,
		Capacity:   capacity,
	}
	require.NoError(t, db.Create(e).Error)
	return e
}

func TestTryAdmitStopsAtCapacity(t *testing.T) {
	db := newTestDB(t)
	e := seedEvent(t, db, 3)
	ledger := NewLedger(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, ledger.TryAdmit(ctx, e.ID))
	}
	assert.ErrorIs(t, ledger.TryAdmit(ctx, e.ID), ErrEventFull)

	var got Event
	require.NoError(t, db.First(&got, e.ID).Error)
	assert.Equal(t, 3, got.CurrentCount)
}

func TestTryAdmitUnknownEvent(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)

	assert.ErrorIs(t, ledger.TryAdmit(context.Background(), 999), ErrNotFound)
}

func TestTryAdmitConcurrentNeverOverbooks(t *testing.T) {
	db := newTestDB(t)
	e := seedEvent(t, db, 5)
	ledger := NewLedger(db)

	const attempts = 12
	var admitted, rejected int64
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				err := ledger.TryAdmit(context.Background(), e.ID)
				if err == nil {
					atomic.AddInt64(&admitted, 1)
					return
				}
				if err == ErrEventFull {
					atomic.AddInt64(&rejected, 1)
					return
				}
				// SQLite single-writer contention; retry.
				if strings.Contains(err.Error(), "lock") || strings.Contains(err.Error(), "busy") {
					time.Sleep(time.Millisecond)
					continue
				}
				t.Errorf("unexpected admit error: %v", err)
				return
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 5, admitted)
	assert.EqualValues(t, attempts-5, rejected)

	var got Event
	require.NoError(t, db.First(&got, e.ID).Error)
	assert.Equal(t, 5, got.CurrentCount)
}

func TestReleaseFloorsAtZero(t *testing.T) {
	db := newTestDB(t)
	e := seedEvent(t, db, 2)
	ledger := NewLedger(db)
	ctx := context.Background()

	require.NoError(t, ledger.TryAdmit(ctx, e.ID))
	require.NoError(t, ledger.Release(ctx, e.ID))
	// Extra releases must not go negative.
	require.NoError(t, ledger.Release(ctx, e.ID))
	require.NoError(t, ledger.Release(ctx, e.ID))

	var got Event
	require.NoError(t, db.First(&got, e.ID).Error)
	assert.Equal(t, 0, got.CurrentCount)
}

func TestReleaseFreesASeat(t *testing.T) {
	db := newTestDB(t)
	e := seedEvent(t, db, 1)
	ledger := NewLedger(db)
	ctx := context.Background()

	require.NoError(t, ledger.TryAdmit(ctx, e.ID))
	require.ErrorIs(t, ledger.TryAdmit(ctx, e.ID), ErrEventFull)

	require.NoError(t, ledger.Release(ctx, e.ID))
	assert.NoError(t, ledger.TryAdmit(ctx, e.ID))
}
