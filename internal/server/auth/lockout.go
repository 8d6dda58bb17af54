package auth

import (
	"sync"
	"time"
)

// Lockout counts failed logins per identifier and client address. After
// max failures inside window the key is locked for duration.
type Lockout struct {
	mu       sync.Mutex
	max      int
	window   time.Duration
	duration time.Duration
	now      func() time.Time
	entries  map[string]*lockEntry
}

type lockEntry struct {
	failures    []time.Time
	lockedUntil time.Time
}

func NewLockout(max int, window, duration time.Duration) *Lockout {
	return &Lockout{
		max:      max,
		window:   window,
		duration: duration,
		now:      time.Now,
		entries:  make(map[string]*lockEntry),
	}
}

// LockoutKey combines the login identifier and client address.
func LockoutKey(identifier, ip string) string {
	return identifier + ":" + ip
}

// Locked reports whether key is locked and for how much longer.
func (l *Lockout) Locked(key string) (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		return 0, false
	}
	if left := e.lockedUntil.Sub(l.now()); left > 0 {
		return left, true
	}
	return 0, false
}

// Fail records a failed attempt. It returns the attempts left before the
// key locks, zero once it is locked.
func (l *Lockout) Fail(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok {
		e = &lockEntry{}
		l.entries[key] = e
	}
	e.failures = append(prune(e.failures, now.Add(-l.window)), now)
	if len(e.failures) >= l.max {
		e.lockedUntil = now.Add(l.duration)
		e.failures = nil
		return 0
	}
	return l.max - len(e.failures)
}

// Reset forgets key after a successful login.
func (l *Lockout) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
}

// Sweep drops entries with no live lock and no recent failures.
func (l *Lockout) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	n := 0
	for k, e := range l.entries {
		e.failures = prune(e.failures, now.Add(-l.window))
		if len(e.failures) == 0 && !e.lockedUntil.After(now) {
			delete(l.entries, k)
			n++
		}
	}
	return n
}

func prune(ts []time.Time, since time.Time) []time.Time {
	out := ts[:0]
	for _, t := range ts {
		if t.After(since) {
			out = append(out, t)
		}
	}
	return out
}
