package events

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civic-portal/internal/models"
)

func TestMemoryBus_FanOut(t *testing.T) {
	bus := NewMemoryBus()
	ctx := context.Background()
	a, cancelA := bus.Subscribe(ctx)
	b, cancelB := bus.Subscribe(ctx)
	defer cancelA()
	defer cancelB()

	c := &models.Complaint{ID: "c-1", ReporterID: "u-1", Status: models.StatusPending, Category: models.CategoryGarbage}
	require.NoError(t, bus.Publish(ctx, FromComplaint(ComplaintCreated, c)))

	for _, ch := range []<-chan Event{a, b} {
		select {
		case e := <-ch:
			assert.Equal(t, ComplaintCreated, e.Kind)
			assert.Equal(t, "c-1", e.ComplaintID)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive event")
		}
	}
}

func TestMemoryBus_ContextCancelClosesChannel(t *testing.T) {
	bus := NewMemoryBus()
	ctx, cancel := context.WithCancel(context.Background())
	ch, _ := bus.Subscribe(ctx)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
	assert.NoError(t, bus.Publish(context.Background(), Event{Kind: ComplaintUpdated}))
}

func TestMemoryTracker_Window(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	tr := NewMemoryTracker()
	tr.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, tr.MarkSubmitted(ctx, "u-1", now.Add(-time.Hour)))
	require.NoError(t, tr.MarkSubmitted(ctx, "u-2", now.Add(-25*time.Hour)))

	at, ok, err := tr.LastSubmitted(ctx, "u-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, now.Add(-time.Hour), at)

	_, ok, err = tr.LastSubmitted(ctx, "u-2")
	require.NoError(t, err)
	assert.False(t, ok, "marks expire after the window")

	assert.Equal(t, 1, tr.Purge())
	_, ok, _ = tr.LastSubmitted(ctx, "u-3")
	assert.False(t, ok)
}

func TestProgressTTL(t *testing.T) {
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		at   time.Time
		want time.Duration
	}{
		{"just now", now, ProgressWindow},
		{"an hour ago", now.Add(-time.Hour), ProgressWindow - time.Hour},
		{"one second left", now.Add(-ProgressWindow + time.Second), time.Second},
		{"exactly at window", now.Add(-ProgressWindow), 0},
		{"long gone", now.Add(-48 * time.Hour), -24 * time.Hour},
		{"clock skew ahead", now.Add(time.Minute), ProgressWindow + time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, progressTTL(tt.at, now))
		})
	}
}

func TestRedisTracker_MarkOutsideWindowIsSkipped(t *testing.T) {
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	// nil client: any Set call would panic
	tr := &RedisTracker{now: func() time.Time { return now }}

	assert.NoError(t, tr.MarkSubmitted(context.Background(), "u-1", now.Add(-ProgressWindow)))
	assert.NoError(t, tr.MarkSubmitted(context.Background(), "u-1", now.Add(-72*time.Hour)))
}

func TestParseMark(t *testing.T) {
	at := time.Date(2026, 7, 1, 9, 30, 15, 250*int(time.Millisecond), time.UTC)
	got, err := parseMark(strconv.FormatInt(at.UnixMilli(), 10))
	require.NoError(t, err)
	assert.True(t, at.Equal(got))
	assert.Equal(t, time.UTC, got.Location())

	_, err = parseMark("yesterday")
	assert.Error(t, err)
}
