// Package ws runs the resilient streaming ingestion loop: one long-lived
// kline subscription, filtered to closed bars, driving the decision pipeline
// bar by bar.
package ws

import (
	"context"
	"log"
	"time"

	"tradingbot/internal/model"
)

// reconnectDelay is the fixed wait before resubscribing after any stream
// error. No backoff growth, no attempt ceiling: reconnection is the only
// recovery path.
const reconnectDelay = 5 * time.Second

// BarHandler is invoked for every closed bar, on the ingest goroutine.
type BarHandler func(ctx context.Context, c model.Candle)

// Ingestor maintains the live subscription and retries it forever.
type Ingestor struct {
	feed     model.MarketDataFeed
	symbol   string
	interval string
	delay    time.Duration

	// Optional hooks for metrics/health.
	OnConnect   func()
	OnReconnect func()
}

// NewIngestor creates an ingestor for one symbol/interval.
func NewIngestor(feed model.MarketDataFeed, symbol, interval string) *Ingestor {
	return &Ingestor{
		feed:     feed,
		symbol:   symbol,
		interval: interval,
		delay:    reconnectDelay,
	}
}

// Run subscribes and consumes the stream, calling onBar for every closed
// bar. On any connection or protocol error it logs, waits the fixed delay
// and resubscribes — indefinitely. Returns only when ctx is cancelled.
func (ing *Ingestor) Run(ctx context.Context, onBar BarHandler) error {
	for {
		err := ing.consume(ctx, onBar)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("[ws] stream error: %v — reconnecting in %s", err, ing.delay)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(ing.delay):
		}
		if ing.OnReconnect != nil {
			ing.OnReconnect()
		}
	}
}

// consume runs one subscription until it fails.
func (ing *Ingestor) consume(ctx context.Context, onBar BarHandler) error {
	stream, err := ing.feed.Subscribe(ctx, ing.symbol, ing.interval)
	if err != nil {
		return err
	}
	defer stream.Close()

	log.Printf("[ws] subscribed to %s@kline_%s", ing.symbol, ing.interval)
	if ing.OnConnect != nil {
		ing.OnConnect()
	}

	for {
		k, err := stream.Next()
		if err != nil {
			return err
		}
		if !k.Closed {
			continue // forming bar, not decision input
		}
		onBar(ctx, k.Candle)
	}
}
