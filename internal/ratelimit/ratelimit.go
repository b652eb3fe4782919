package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Result describes the state of a key's window after one request.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter counts requests per key in fixed windows.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
	Close() error
}

func newResult(count, limit int, resetAt time.Time) Result {
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}

type window struct {
	start time.Time
	count int
}

// DefaultMaxKeys bounds the number of windows a MemoryLimiter tracks.
const DefaultMaxKeys = 10000

// MemoryLimiter keeps windows in process memory. Counts are per instance.
// Expired windows are swept once per period; when maxKeys live windows
// exist, the oldest one is evicted to make room.
type MemoryLimiter struct {
	mu        sync.Mutex
	windows   map[string]*window
	limit     int
	period    time.Duration
	maxKeys   int
	lastSweep time.Time
	now       func() time.Time
}

// NewMemoryLimiter allows limit requests per key every period.
func NewMemoryLimiter(limit int, period time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
		maxKeys: DefaultMaxKeys,
		now:     time.Now,
	}
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string) (Result, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.period {
		l.sweep(now)
	}

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.period {
		if !ok && len(l.windows) >= l.maxKeys {
			l.evictOldest()
		}
		w = &window{start: now}
		l.windows[key] = w
	}
	w.count++
	return newResult(w.count, l.limit, w.start.Add(l.period)), nil
}

// sweep drops expired windows. Callers hold mu.
func (l *MemoryLimiter) sweep(now time.Time) {
	for key, w := range l.windows {
		if now.Sub(w.start) >= l.period {
			delete(l.windows, key)
		}
	}
	l.lastSweep = now
}

// evictOldest drops the window that started first. Callers hold mu.
func (l *MemoryLimiter) evictOldest() {
	var (
		oldestKey string
		oldest    time.Time
	)
	for key, w := range l.windows {
		if oldestKey == "" || w.start.Before(oldest) {
			oldestKey, oldest = key, w.start
		}
	}
	delete(l.windows, oldestKey)
}

func (l *MemoryLimiter) Close() error { return nil }
