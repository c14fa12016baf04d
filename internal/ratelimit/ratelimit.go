package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	cleanupInterval = 3 * time.Minute
	staleAfter      = 5 * time.Minute
)

// keyLimiter holds a rate limiter and last-seen time per key.
type keyLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter admits at most burst triggers per key per window. State is
// in-memory, per-process and transient; it is abuse mitigation, not a
// correctness guarantee. Construct one per server process and pass it by
// reference to whoever needs admission control.
type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*keyLimiter
	limit    rate.Limit
	burst    int
}

// New creates a Limiter allowing burst triggers per window per key.
func New(burst int, window time.Duration) *Limiter {
	l := &Limiter{
		limiters: make(map[string]*keyLimiter),
		limit:    rate.Every(window / time.Duration(burst)),
		burst:    burst,
	}
	go l.cleanup()
	return l
}

// Allow reports whether the key may trigger one more event right now.
func (l *Limiter) Allow(key string) bool {
	return l.get(key).Allow()
}

// Forget drops the window state for a key, typically when its connection
// goes away.
func (l *Limiter) Forget(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.limiters, key)
}

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, exists := l.limiters[key]
	if !exists {
		limiter := rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = &keyLimiter{limiter: limiter, lastSeen: time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

// cleanup removes keys not seen for a while.
func (l *Limiter) cleanup() {
	for {
		time.Sleep(cleanupInterval)
		l.mu.Lock()
		for key, v := range l.limiters {
			if time.Since(v.lastSeen) > staleAfter {
				delete(l.limiters, key)
			}
		}
		l.mu.Unlock()
	}
}
