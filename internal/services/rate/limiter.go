package rate

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

const (
	searchMinuteWindow = time.Minute
	searchBurstWindow  = 10 * time.Second
)

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	WindowState(ctx context.Context, key string) (int64, time.Duration, error)
}

// Limiter caps how often one user can start a partner search. A zero limit
// disables that window.
type Limiter struct {
	store     WindowStore
	perMinute int
	burst     int
}

func NewLimiter(store WindowStore, perMinute, burst int) *Limiter {
	return &Limiter{
		store:     store,
		perMinute: max(perMinute, 0),
		burst:     max(burst, 0),
	}
}

// AllowSearch counts one search and reports the retry delay in seconds when
// any window is exhausted.
func (l *Limiter) AllowSearch(ctx context.Context, userID int64) (int64, bool, error) {
	if userID <= 0 {
		return 0, false, fmt.Errorf("invalid user id")
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}

	var retryAfter int64
	for _, w := range l.windows(userID) {
		count, ttl, err := l.store.IncrementWindow(ctx, w.key, w.size)
		if err != nil {
			return 0, false, err
		}
		if count > int64(w.limit) {
			retryAfter = max(retryAfter, ceilSeconds(ttl))
		}
	}

	if retryAfter > 0 {
		return retryAfter, false, nil
	}
	return 0, true, nil
}

// RetryAfterSearch reads the windows without counting.
func (l *Limiter) RetryAfterSearch(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, fmt.Errorf("invalid user id")
	}
	if l.store == nil {
		return 0, fmt.Errorf("rate limiter store is nil")
	}

	var retryAfter int64
	for _, w := range l.windows(userID) {
		count, ttl, err := l.store.WindowState(ctx, w.key)
		if err != nil {
			return 0, err
		}
		if count >= int64(w.limit) {
			retryAfter = max(retryAfter, ceilSeconds(ttl))
		}
	}
	return retryAfter, nil
}

type window struct {
	key   string
	size  time.Duration
	limit int
}

func (l *Limiter) windows(userID int64) []window {
	id := strconv.FormatInt(userID, 10)
	out := make([]window, 0, 2)
	if l.perMinute > 0 {
		out = append(out, window{key: "rate:search:min:" + id, size: searchMinuteWindow, limit: l.perMinute})
	}
	if l.burst > 0 {
		out = append(out, window{key: "rate:search:10s:" + id, size: searchBurstWindow, limit: l.burst})
	}
	return out
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	return max(sec, 1)
}
