// Package clock is the time source for the countdown: a mockable wall
// clock plus a cancellable ticker that emits one Reading per interval.
package clock

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is the refresh cadence of the countdown.
const DefaultInterval = time.Second

// Clock supplies the current wall-clock time.
type Clock interface {
	Now() time.Time
}

// Real is the system clock.
type Real struct{}

// Now returns time.Now.
func (Real) Now() time.Time { return time.Now() }

// Fake is a test clock with controllable time.
type Fake struct {
	mu      sync.RWMutex
	current time.Time
}

// NewFake creates a fake clock set to t.
func NewFake(t time.Time) *Fake {
	return &Fake{current: t}
}

// Now returns the fake time.
func (f *Fake) Now() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.current
}

// Set moves the fake clock to t.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = t
}

// Advance moves the fake clock forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = f.current.Add(d)
}

// Reading is a snapshot of the clock. Second is only used for display.
type Reading struct {
	Hour   int
	Minute int
	Second int
	// At is the full instant the reading was taken from.
	At time.Time
}

// ReadingAt builds a Reading from t in t's own location.
func ReadingAt(t time.Time) Reading {
	return Reading{
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
		At:     t,
	}
}

// Minutes returns the minute of the day (0..1439).
func (r Reading) Minutes() int {
	return r.Hour*60 + r.Minute
}

// Ticker turns a Clock into a stream of readings.
type Ticker struct {
	Clock    Clock
	Interval time.Duration
	// Location, if set, re-anchors every reading (e.g. to the API timezone).
	Location *time.Location
}

// NewTicker returns a Ticker on the real clock at DefaultInterval.
func NewTicker() *Ticker {
	return &Ticker{Clock: Real{}, Interval: DefaultInterval}
}

func (t *Ticker) read() Reading {
	c := t.Clock
	if c == nil {
		c = Real{}
	}
	now := c.Now()
	if t.Location != nil {
		now = now.In(t.Location)
	}
	return ReadingAt(now)
}

// Run calls fn with a reading immediately and then once per interval
// until ctx is cancelled. fn returning false stops the ticker early.
// The underlying time.Ticker is always stopped before Run returns.
func (t *Ticker) Run(ctx context.Context, fn func(Reading) bool) error {
	interval := t.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	if !fn(t.read()) {
		return nil
	}

	tk := time.NewTicker(interval)
	defer tk.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tk.C:
			if !fn(t.read()) {
				return nil
			}
		}
	}
}

// Ticks is the channel form of Run. The channel is closed once ctx is
// cancelled. Readings are dropped, not queued, when the receiver is slow.
func (t *Ticker) Ticks(ctx context.Context) <-chan Reading {
	ch := make(chan Reading, 1)
	go func() {
		defer close(ch)
		_ = t.Run(ctx, func(r Reading) bool {
			select {
			case ch <- r:
			case <-ctx.Done():
				return false
			default:
			}
			return true
		})
	}()
	return ch
}
