// Package candlestore provides a bounded, timestamp-deduplicated rolling
// history of model.Candle. It is a fixed-capacity ring indexed by position,
// so eviction of the oldest bar never reallocates or shifts the window.
package candlestore

import (
	"tradingbot/internal/model"
)

// DefaultCapacity matches the 200-bar history the pipeline operates on.
const DefaultCapacity = 200

// Store is a single-goroutine rolling candle history.
// Invariants: Len() <= capacity; stored timestamps strictly increase; only
// the most recent entry is ever overwritten in place.
type Store struct {
	buf   []model.Candle
	start int // ring index of the oldest candle
	n     int
}

// New creates a store with the given capacity. Capacities below 1 fall back
// to DefaultCapacity.
func New(capacity int) *Store {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Store{buf: make([]model.Candle, capacity)}
}

// UpsertResult reports what Upsert did with a candle.
type UpsertResult int

const (
	// Appended: a new bar opened a slot (evicting the oldest when full).
	Appended UpsertResult = iota
	// Replaced: same timestamp as the latest bar, overwritten in place.
	Replaced
	// Dropped: older than the latest bar, not stored.
	Dropped
)

// Upsert inserts a candle. If the incoming timestamp equals the latest stored
// timestamp the latest entry is replaced in place (exchanges re-push the
// current bar until it closes). Candles older than the latest are dropped to
// keep timestamps strictly increasing. Otherwise the candle is appended,
// evicting the oldest entry once the store is full.
func (s *Store) Upsert(c model.Candle) UpsertResult {
	if s.n > 0 {
		last := &s.buf[s.idx(s.n-1)]
		if last.TS.Equal(c.TS) {
			*last = c
			return Replaced
		}
		if c.TS.Before(last.TS) {
			return Dropped
		}
	}
	if s.n == len(s.buf) {
		s.buf[s.start] = c
		s.start = (s.start + 1) % len(s.buf)
		return Appended
	}
	s.buf[s.idx(s.n)] = c
	s.n++
	return Appended
}

// Len returns the number of stored candles.
func (s *Store) Len() int { return s.n }

// Cap returns the store capacity.
func (s *Store) Cap() int { return len(s.buf) }

// Latest returns the most recent candle, or false if the store is empty.
func (s *Store) Latest() (model.Candle, bool) {
	if s.n == 0 {
		return model.Candle{}, false
	}
	return s.buf[s.idx(s.n-1)], true
}

// TailWindow returns a copy of the most recent n candles in timestamp order,
// or fewer if the store holds fewer. Callers must handle short windows.
func (s *Store) TailWindow(n int) []model.Candle {
	if n > s.n {
		n = s.n
	}
	if n <= 0 {
		return nil
	}
	out := make([]model.Candle, n)
	for i := 0; i < n; i++ {
		out[i] = s.buf[s.idx(s.n-n+i)]
	}
	return out
}

func (s *Store) idx(i int) int {
	return (s.start + i) % len(s.buf)
}
