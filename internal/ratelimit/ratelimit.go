// Package ratelimit enforces the Riot API's published request quotas with
// two sliding windows. All admitted requests count against both windows.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

const (
	// Riot dev key limits
	DefaultShortCap    = 20
	DefaultShortWindow = 1 * time.Second
	DefaultLongCap     = 100
	DefaultLongWindow  = 2 * time.Minute

	// SafetyMargin is added to every computed wait so we never re-check
	// exactly on a window boundary.
	SafetyMargin = 100 * time.Millisecond
)

// Limiter tracks admission timestamps in a short and a long sliding window
// and computes admission/delay decisions. Safe for concurrent use; multiple
// in-flight lookups share one Limiter and therefore one quota.
type Limiter struct {
	mu sync.Mutex

	shortCap    int
	shortWindow time.Duration
	longCap     int
	longWindow  time.Duration

	short []time.Time
	long  []time.Time

	// sleep is swapped out in tests
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Limiter with the default Riot dev-key quotas.
func New() *Limiter {
	return NewWithQuotas(DefaultShortCap, DefaultShortWindow, DefaultLongCap, DefaultLongWindow)
}

// NewWithQuotas creates a Limiter with explicit caps and window durations.
func NewWithQuotas(shortCap int, shortWindow time.Duration, longCap int, longWindow time.Duration) *Limiter {
	return &Limiter{
		shortCap:    shortCap,
		shortWindow: shortWindow,
		longCap:     longCap,
		longWindow:  longWindow,
		short:       make([]time.Time, 0),
		long:        make([]time.Time, 0),
		sleep:       sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// prune drops records whose age exceeds their window duration. Caller must
// hold mu.
func (l *Limiter) prune(now time.Time) {
	l.short = pruneBefore(l.short, now.Add(-l.shortWindow))
	l.long = pruneBefore(l.long, now.Add(-l.longWindow))
}

func pruneBefore(window []time.Time, cutoff time.Time) []time.Time {
	// Records are appended in order, so find the first survivor.
	i := 0
	for i < len(window) && !window[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return window
	}
	return append(window[:0], window[i:]...)
}

// CanAdmit reports whether a request admitted at now would keep both window
// counts strictly below their caps.
func (l *Limiter) CanAdmit(now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.canAdmitLocked(now)
}

func (l *Limiter) canAdmitLocked(now time.Time) bool {
	l.prune(now)
	return len(l.short) < l.shortCap && len(l.long) < l.longCap
}

// RecordAdmission marks one outbound call admitted at now against both
// windows.
func (l *Limiter) RecordAdmission(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recordLocked(now)
}

func (l *Limiter) recordLocked(now time.Time) {
	l.short = append(l.short, now)
	l.long = append(l.long, now)
}

// DelayUntilNextAdmission returns how long a caller must wait before
// admission is possible: zero if admission is already possible, otherwise
// the time until the oldest record of each saturated window leaves it, plus
// the safety margin. When both windows are saturated the larger wait wins.
func (l *Limiter) DelayUntilNextAdmission(now time.Time) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.delayLocked(now)
}

func (l *Limiter) delayLocked(now time.Time) time.Duration {
	l.prune(now)

	var delay time.Duration
	if len(l.short) >= l.shortCap {
		d := l.short[0].Add(l.shortWindow).Sub(now) + SafetyMargin
		if d > delay {
			delay = d
		}
	}
	if len(l.long) >= l.longCap {
		d := l.long[0].Add(l.longWindow).Sub(now) + SafetyMargin
		if d > delay {
			delay = d
		}
	}
	return delay
}

// Wait blocks until an admission slot is available and records it. The
// check-and-record is atomic with respect to other waiters, so concurrent
// lookups cannot overshoot the shared quota.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := time.Now()
		if l.canAdmitLocked(now) {
			l.recordLocked(now)
			l.mu.Unlock()
			return nil
		}
		d := l.delayLocked(now)
		l.mu.Unlock()

		if err := l.sleep(ctx, d); err != nil {
			return err
		}
	}
}

// Pending returns the current record counts of the short and long windows
// after pruning at now. Used for logging and metrics.
func (l *Limiter) Pending(now time.Time) (short, long int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(now)
	return len(l.short), len(l.long)
}
