package core

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurgeEntries(t *testing.T) {
	store := &memStore{}
	svc := NewService(store, WithClock(fixedClock(baseTime, 24*time.Hour)))
	seedEntries(t, svc, "contact", 1, 5) // days 0..4

	// The clock is now at day 5: a 2 day window keeps days 3 and 4.
	purged, err := svc.PurgeEntries(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, int64(3), purged)
	assert.Equal(t, baseTime.AddDate(0, 0, 3), store.cutoff)
	assert.Len(t, store.entries, 2)
}

func TestPurgeEntries_RejectsNonPositiveDays(t *testing.T) {
	svc := NewService(&memStore{})

	_, err := svc.PurgeEntries(context.Background(), 0)
	assert.Error(t, err)
}

func TestStartRetentionScheduler(t *testing.T) {
	t.Run("disabled returns immediately", func(t *testing.T) {
		svc := NewService(&memStore{})
		assert.NoError(t, svc.StartRetentionScheduler(context.Background(), RetentionConfig{Days: 0}))
	})

	t.Run("invalid schedule", func(t *testing.T) {
		svc := NewService(&memStore{})
		err := svc.StartRetentionScheduler(context.Background(), RetentionConfig{Days: 30, Schedule: "every now and then"})
		assert.ErrorContains(t, err, "retention schedule")
	})

	t.Run("stops on cancel", func(t *testing.T) {
		svc := NewService(&memStore{})
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() {
			done <- svc.StartRetentionScheduler(ctx, RetentionConfig{Days: 30})
		}()
		cancel()

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("scheduler did not stop")
		}
	})
}

func TestRunRetentionJob_UsesServiceClock(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	// start, purge cutoff and end each read the clock once.
	svc := NewService(&memStore{}, WithClock(fixedClock(baseTime, time.Minute)))
	svc.runRetentionJob(context.Background(), RetentionConfig{Days: 30})

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "purged old entries", record["msg"])
	assert.Equal(t, float64((2 * time.Minute).Milliseconds()), record["duration_ms"])
}
