package rate

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	swipesMinuteWindow = time.Minute
	swipes10SecWindow  = 10 * time.Second
)

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	WindowState(ctx context.Context, key string) (int64, time.Duration, error)
}

// Limiter caps single swipes per user over two fixed windows.
// A zero limit disables that window.
type Limiter struct {
	store     WindowStore
	perMinute int
	per10Sec  int
}

func NewLimiter(store WindowStore, perMinute, per10Sec int) *Limiter {
	if perMinute < 0 {
		perMinute = 0
	}
	if per10Sec < 0 {
		per10Sec = 0
	}

	return &Limiter{
		store:     store,
		perMinute: perMinute,
		per10Sec:  per10Sec,
	}
}

// AllowSwipe counts one swipe and reports whether it fits both windows.
// When it does not, the first return value is the wait in whole seconds.
func (l *Limiter) AllowSwipe(ctx context.Context, userID string) (int64, bool, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, false, fmt.Errorf("invalid user id")
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}

	retryAfterSec := int64(0)
	for _, w := range l.windows(userID) {
		count, ttl, err := l.store.IncrementWindow(ctx, w.key, w.size)
		if err != nil {
			return 0, false, err
		}
		if count > int64(w.limit) {
			retryAfterSec = max(retryAfterSec, ceilSeconds(ttl))
		}
	}

	if retryAfterSec > 0 {
		return retryAfterSec, false, nil
	}
	return 0, true, nil
}

// RetryAfterSwipe reports how long the user must wait without consuming a slot.
func (l *Limiter) RetryAfterSwipe(ctx context.Context, userID string) (int64, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, fmt.Errorf("invalid user id")
	}
	if l.store == nil {
		return 0, fmt.Errorf("rate limiter store is nil")
	}

	retryAfterSec := int64(0)
	for _, w := range l.windows(userID) {
		count, ttl, err := l.store.WindowState(ctx, w.key)
		if err != nil {
			return 0, err
		}
		if count >= int64(w.limit) {
			retryAfterSec = max(retryAfterSec, ceilSeconds(ttl))
		}
	}

	return retryAfterSec, nil
}

type window struct {
	key   string
	size  time.Duration
	limit int
}

func (l *Limiter) windows(userID string) []window {
	out := make([]window, 0, 2)
	if l.perMinute > 0 {
		out = append(out, window{key: "rate:swipes:min:" + userID, size: swipesMinuteWindow, limit: l.perMinute})
	}
	if l.per10Sec > 0 {
		out = append(out, window{key: "rate:swipes:10s:" + userID, size: swipes10SecWindow, limit: l.per10Sec})
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
	if sec <= 0 {
		sec = 1
	}
	return sec
}
