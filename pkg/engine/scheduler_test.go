package engine_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricewatch/pricewatch/pkg/engine"
	"github.com/pricewatch/pricewatch/pkg/model"
	"github.com/pricewatch/pricewatch/pkg/notify"
	"github.com/pricewatch/pricewatch/pkg/sources"
	"github.com/pricewatch/pricewatch/pkg/storage"
)

func newSchedulerTest(t *testing.T) (*engine.Scheduler, *engine.Engine, *storage.SQLite) {
	t.Helper()
	db, err := storage.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := sources.NewRegistry(sources.NewSimulator(), true)
	dispatcher := notify.NewDispatcher(db, nil, logger)
	eng := engine.New(db, registry, dispatcher, logger, engine.Options{BatchPause: time.Millisecond})

	sched := engine.NewScheduler(eng, db, logger, engine.SchedulerOptions{
		SweepInterval: time.Hour,
	})
	return sched, eng, db
}

func newScheduledItem(t *testing.T, db *storage.SQLite) *model.TrackedItem {
	t.Helper()
	item := &model.TrackedItem{
		OwnerID:     "owner-1",
		Platform:    model.PlatformAmazon,
		ProductUID:  "B08N5WRWNW",
		CanonicalID: "B08N5WRWNW",
		IsActive:    true,
	}
	require.NoError(t, db.CreateItem(context.Background(), item))
	return item
}

func TestScheduler_StartStop(t *testing.T) {
	sched, _, _ := newSchedulerTest(t)
	require.False(t, sched.Running())

	sched.Start(context.Background())
	assert.True(t, sched.Running())

	// Start on a running scheduler is a no-op.
	sched.Start(context.Background())
	assert.True(t, sched.Running())

	sched.Stop()
	assert.False(t, sched.Running())

	// Stop is idempotent.
	sched.Stop()
	assert.False(t, sched.Running())
}

func TestScheduler_InitialSweepRuns(t *testing.T) {
	sched, eng, db := newSchedulerTest(t)
	ctx := context.Background()
	item := newScheduledItem(t, db)

	sched.Start(ctx)
	defer sched.Stop()

	// The first sweep fires immediately, not after a full interval.
	require.Eventually(t, func() bool {
		return eng.Stats().ChecksToday == 1
	}, 5*time.Second, 10*time.Millisecond)

	got, err := db.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Greater(t, got.CurrentPrice, 0.0)
}

func TestScheduler_ExpiresRulesBeforeSweep(t *testing.T) {
	sched, _, db := newSchedulerTest(t)
	ctx := context.Background()
	item := newScheduledItem(t, db)

	past := time.Now().UTC().Add(-time.Hour)
	rule := &model.AlertRule{
		ItemID:      item.ID,
		Kind:        model.KindPriceDrop,
		TargetPrice: 1,
		ExpiresAt:   &past,
	}
	require.NoError(t, db.CreateRule(ctx, rule))

	sched.Start(ctx)
	defer sched.Stop()

	// The initial sweep carries an expiry pass with it.
	require.Eventually(t, func() bool {
		pending, err := db.ListPendingRules(ctx, item.ID)
		return err == nil && len(pending) == 0
	}, 5*time.Second, 10*time.Millisecond)
}
