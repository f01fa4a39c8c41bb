// Package trader wires the decision pipeline: candle history → indicator
// snapshot → signal → position state machine, driven once per closed bar.
package trader

import (
	"context"
	"log"
	"time"

	"tradingbot/internal/candlestore"
	"tradingbot/internal/indicator"
	"tradingbot/internal/metrics"
	"tradingbot/internal/model"
	"tradingbot/internal/position"
	redisstore "tradingbot/internal/store/redis"
	"tradingbot/internal/strategy"
)

// Trader owns the per-bar pipeline and the bar sequence counter. All state
// is touched from the single ingest goroutine; a slow order or balance
// round-trip inside Tick delays the next bar.
type Trader struct {
	symbol string

	store  *candlestore.Store
	engine *indicator.Engine
	gen    *strategy.Generator
	mgr    *position.Manager

	barSeq uint64 // total closed bars appended, never capped

	// Optional sinks; nil disables them.
	Redis   *redisstore.Writer
	Metrics *metrics.Metrics
}

// New creates a Trader from its pipeline stages.
func New(symbol string, store *candlestore.Store, engine *indicator.Engine,
	gen *strategy.Generator, mgr *position.Manager) *Trader {
	return &Trader{symbol: symbol, store: store, engine: engine, gen: gen, mgr: mgr}
}

// BarSeq returns the number of distinct closed bars processed so far.
func (t *Trader) BarSeq() uint64 { return t.barSeq }

// OnClosedBar runs the full pipeline for one closed bar: upsert into the
// store, recompute indicators, evaluate the signal and tick the position
// manager. Re-pushed bars with a known timestamp overwrite in place and do
// not advance the bar sequence. Bars older than the latest stored one are
// not part of the history and must not drive a decision: they end the
// pipeline here.
func (t *Trader) OnClosedBar(ctx context.Context, c model.Candle) {
	start := time.Now()

	switch t.store.Upsert(c) {
	case candlestore.Appended:
		t.barSeq++
	case candlestore.Dropped:
		log.Printf("[trader] %s: dropping stale bar ts=%s close=%v", t.symbol, c.TS.Format(time.RFC3339), c.Close)
		return
	}
	if t.Metrics != nil {
		t.Metrics.BarsTotal.Inc()
	}
	if t.Redis != nil {
		t.Redis.WriteCandle(ctx, t.symbol, c)
	}

	snap, ok := t.engine.Compute(t.store.TailWindow(t.engine.Window()))
	if !ok {
		// Window not full yet: no signal, no tick, last signal untouched.
		return
	}
	if t.Redis != nil {
		t.Redis.WriteSnapshot(ctx, t.symbol, snap)
	}

	sig := t.gen.Evaluate(snap, c.Close, t.mgr.LastSignal())
	t.mgr.Tick(ctx, sig, snap, c.Close, t.barSeq)

	if t.Redis != nil {
		t.Redis.WriteSignal(ctx, t.symbol, sig)
	}
	if t.Metrics != nil {
		t.Metrics.SetSignal(sig)
		_, open := t.mgr.Position()
		t.Metrics.SetPositionOpen(open)
		t.Metrics.PipelineDur.Observe(time.Since(start).Seconds())
	}
}
