// Package watch drives the live countdown: one resolution per tick,
// fanned out to every registered sink.
package watch

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/smokyabdulrahman/salah-clock/internal/clock"
	"github.com/smokyabdulrahman/salah-clock/internal/prayer"
)

// Update is what a session hands its sinks on every tick. Err is set
// when the timing set could not be resolved; it is the last update.
type Update struct {
	Reading clock.Reading
	Result  prayer.Result
	Timings []prayer.Timing
	Err     error
}

// Sink receives updates. Send is called from the session goroutine and
// must not block for long.
type Sink interface {
	Send(Update)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Update)

// Send implements Sink.
func (f SinkFunc) Send(u Update) { f(u) }

// RefreshFunc fetches the timing set for the day containing day.
type RefreshFunc func(ctx context.Context, day time.Time) ([]prayer.Timing, error)

// Session holds the day's timing set and feeds the ticker's readings
// through the resolver.
type Session struct {
	ticker  *clock.Ticker
	refresh RefreshFunc
	log     zerolog.Logger

	mu      sync.RWMutex
	timings []prayer.Timing
	day     string
	retryAt time.Time
	last    *Update
	sinks   []Sink
}

// refreshRetryDelay spaces out refresh attempts after a failure.
const refreshRetryDelay = time.Minute

// Option configures a Session.
type Option func(*Session)

// WithRefresh sets the function called when the date changes between
// ticks. Without it the session keeps the set it started with.
func WithRefresh(fn RefreshFunc) Option {
	return func(s *Session) { s.refresh = fn }
}

// WithLogger sets the session logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) { s.log = log }
}

// NewSession starts from timings, the set for the ticker's current day.
func NewSession(timings []prayer.Timing, ticker *clock.Ticker, opts ...Option) *Session {
	if ticker == nil {
		ticker = clock.NewTicker()
	}
	s := &Session{
		ticker:  ticker,
		timings: slices.Clone(timings),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddSink registers a sink. Sinks added while running get the next tick.
func (s *Session) AddSink(sink Sink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinks = append(s.sinks, sink)
}

// Timings returns a copy of the current set.
func (s *Session) Timings() []prayer.Timing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.timings)
}

// Last returns the most recent update, if any tick has happened.
func (s *Session) Last() (Update, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return Update{}, false
	}
	return *s.last, true
}

// Run ticks until ctx is cancelled or the set fails to resolve. It
// returns nil on cancellation and the resolver error otherwise.
func (s *Session) Run(ctx context.Context) error {
	var failed error
	err := s.ticker.Run(ctx, func(r clock.Reading) bool {
		s.rollover(ctx, r)

		u := s.resolve(r)
		s.dispatch(u)
		if u.Err != nil {
			failed = u.Err
			return false
		}
		return true
	})
	if failed != nil {
		return failed
	}
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (s *Session) rollover(ctx context.Context, r clock.Reading) {
	day := r.At.Format(time.DateOnly)

	s.mu.RLock()
	prev, retryAt := s.day, s.retryAt
	s.mu.RUnlock()

	if prev == day {
		return
	}
	if prev == "" || s.refresh == nil {
		s.mu.Lock()
		s.day = day
		s.mu.Unlock()
		return
	}
	if r.At.Before(retryAt) {
		return
	}

	// s.day only advances once the new set is in, so a failed refresh is
	// retried after refreshRetryDelay.
	timings, err := s.refresh(ctx, r.At)
	if err != nil {
		s.mu.Lock()
		s.retryAt = r.At.Add(refreshRetryDelay)
		s.mu.Unlock()
		s.log.Warn().Err(err).Str("day", day).Dur("retry_in", refreshRetryDelay).Msg("could not refresh timings, keeping previous day")
		return
	}
	s.log.Info().Str("day", day).Msg("timings refreshed")

	s.mu.Lock()
	s.timings = slices.Clone(timings)
	s.day = day
	s.retryAt = time.Time{}
	s.mu.Unlock()
}

func (s *Session) resolve(r clock.Reading) Update {
	s.mu.RLock()
	timings := slices.Clone(s.timings)
	s.mu.RUnlock()

	res, err := prayer.Resolve(timings, r)
	if err != nil {
		s.log.Error().Err(err).Msg("cannot resolve next prayer")
	}
	return Update{Reading: r, Result: res, Timings: timings, Err: err}
}

func (s *Session) dispatch(u Update) {
	s.mu.Lock()
	s.last = &u
	sinks := slices.Clone(s.sinks)
	s.mu.Unlock()

	for _, sink := range sinks {
		sink.Send(u)
	}
}
