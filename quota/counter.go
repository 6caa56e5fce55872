// Package quota implements "N events per key per day" limits on top of a
// shared counter store, so limits hold across API instances and restarts.
package quota

import (
	"context"
	"errors"
	"time"
)

// Retention bounds how long a store keeps events. It must cover the
// longest window any limiter asks about.
const Retention = 48 * time.Hour

var ErrLimitExceeded = errors.New("quota exceeded")

// CounterStore records timestamped events per key.
type CounterStore interface {
	// Add records one event at `at` unless key already has `limit` events
	// at or after windowStart. The check and the write are atomic; false
	// means nothing was recorded.
	Add(ctx context.Context, key string, windowStart, at time.Time, limit int64) (bool, error)
	// Count returns the number of events for key at or after windowStart.
	Count(ctx context.Context, key string, windowStart time.Time) (int64, error)
}

// DayStart returns local midnight of t in loc.
func DayStart(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// DailyLimiter allows `limit` events per key per calendar day.
type DailyLimiter struct {
	store CounterStore
	limit int64
	loc   *time.Location
	now   func() time.Time
}

func NewDailyLimiter(store CounterStore, limit int, loc *time.Location) *DailyLimiter {
	return &DailyLimiter{store: store, limit: int64(limit), loc: loc, now: time.Now}
}

// UsedToday returns how many events key has recorded since local midnight.
func (l *DailyLimiter) UsedToday(ctx context.Context, key string) (int64, error) {
	return l.store.Count(ctx, key, DayStart(l.now(), l.loc))
}

// Allow reports whether key is still under today's limit.
func (l *DailyLimiter) Allow(ctx context.Context, key string) (bool, error) {
	used, err := l.UsedToday(ctx, key)
	if err != nil {
		return false, err
	}
	return used < l.limit, nil
}

// Reserve takes one of today's slots for key, or fails with
// ErrLimitExceeded without recording anything. Racing callers get exactly
// the remaining slots.
func (l *DailyLimiter) Reserve(ctx context.Context, key string) error {
	now := l.now()
	ok, err := l.store.Add(ctx, key, DayStart(now, l.loc), now, l.limit)
	if err != nil {
		return err
	}
	if !ok {
		return ErrLimitExceeded
	}
	return nil
}
