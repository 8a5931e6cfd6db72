package middleware

import (
	"sync"
	"time"
)

const (
	// LoginMaxAttempts is how many sign-in attempts a client address gets per window
	LoginMaxAttempts = 5
	// LoginWindow is the fixed window length
	LoginWindow = 5 * time.Minute
)

type loginWindow struct {
	start time.Time
	count int
}

// LoginLimiter is an in-process fixed-window limiter keyed by client address.
// State is lost on restart and not shared between replicas.
type LoginLimiter struct {
	mu      sync.Mutex
	windows map[string]*loginWindow
	max     int
	period  time.Duration
	now     func() time.Time

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewLoginLimiter starts a limiter allowing max attempts per period. Close stops
// the goroutine that sweeps expired windows.
func NewLoginLimiter(max int, period time.Duration) *LoginLimiter {
	return newLoginLimiter(max, period, time.Now)
}

func newLoginLimiter(max int, period time.Duration, now func() time.Time) *LoginLimiter {
	l := &LoginLimiter{
		windows: make(map[string]*loginWindow),
		max:     max,
		period:  period,
		now:     now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go l.cleanup()
	return l
}

// Allow records an attempt for key. When the window is exhausted it returns false
// and the time left until the window resets.
func (l *LoginLimiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.period {
		l.windows[key] = &loginWindow{start: now, count: 1}
		return true, 0
	}
	if w.count >= l.max {
		return false, w.start.Add(l.period).Sub(now)
	}
	w.count++
	return true, 0
}

// Reset clears key's window after a successful sign-in.
func (l *LoginLimiter) Reset(key string) {
	l.mu.Lock()
	delete(l.windows, key)
	l.mu.Unlock()
}

func (l *LoginLimiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for k, w := range l.windows {
		if now.Sub(w.start) >= l.period {
			delete(l.windows, k)
		}
	}
}

func (l *LoginLimiter) cleanup() {
	defer close(l.done)
	ticker := time.NewTicker(l.period)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

func (l *LoginLimiter) Close() {
	l.closeOnce.Do(func() {
		close(l.stop)
		<-l.done
	})
}

func (l *LoginLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
