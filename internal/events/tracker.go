package events

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProgressWindow is how long after a submission the citizen dashboard keeps
// showing the progress view.
const ProgressWindow = 24 * time.Hour

// Tracker remembers each reporter's most recent submission.
type Tracker interface {
	MarkSubmitted(ctx context.Context, reporterID string, at time.Time) error
	// LastSubmitted reports the last submission inside ProgressWindow.
	LastSubmitted(ctx context.Context, reporterID string) (time.Time, bool, error)
}

type MemoryTracker struct {
	mu   sync.Mutex
	last map[string]time.Time
	now  func() time.Time
}

func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{last: map[string]time.Time{}, now: time.Now}
}

func (t *MemoryTracker) MarkSubmitted(_ context.Context, reporterID string, at time.Time) error {
	t.mu.Lock()
	t.last[reporterID] = at
	t.mu.Unlock()
	return nil
}

func (t *MemoryTracker) LastSubmitted(_ context.Context, reporterID string) (time.Time, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	at, ok := t.last[reporterID]
	if !ok || t.now().Sub(at) >= ProgressWindow {
		return time.Time{}, false, nil
	}
	return at, true, nil
}

// Purge drops marks older than the window and returns how many went.
func (t *MemoryTracker) Purge() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	now := t.now()
	for id, at := range t.last {
		if now.Sub(at) >= ProgressWindow {
			delete(t.last, id)
			n++
		}
	}
	return n
}

// RedisTracker stores marks as keys that expire with the window.
type RedisTracker struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRedisTracker(rdb *redis.Client) *RedisTracker {
	return &RedisTracker{rdb: rdb, now: time.Now}
}

func progressKey(reporterID string) string { return "progress:" + reporterID }

// progressTTL is what is left of the window for a mark made at at. Zero or
// less means the mark is already out of the window.
func progressTTL(at, now time.Time) time.Duration {
	return ProgressWindow - now.Sub(at)
}

func (t *RedisTracker) MarkSubmitted(ctx context.Context, reporterID string, at time.Time) error {
	ttl := progressTTL(at, t.now())
	if ttl <= 0 {
		return nil
	}
	return t.rdb.Set(ctx, progressKey(reporterID), at.UnixMilli(), ttl).Err()
}

func (t *RedisTracker) LastSubmitted(ctx context.Context, reporterID string) (time.Time, bool, error) {
	v, err := t.rdb.Get(ctx, progressKey(reporterID)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	at, err := parseMark(v)
	if err != nil {
		return time.Time{}, false, err
	}
	return at, true, nil
}

func parseMark(v string) (time.Time, error) {
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}
