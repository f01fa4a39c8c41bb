package model

import "context"

// ── Exchange Port Interfaces ──
// These interfaces decouple the decision pipeline from the concrete exchange
// client (pkg/mexc). The pipeline consumes them; it never implements them.

// Kline is a validated bar message from the market-data feed.
// Closed reports whether the bar's time window has fully elapsed; forming
// bars carry the same TS as the eventual closed bar.
type Kline struct {
	Candle Candle
	Closed bool
}

// KlineStream is one live subscription. Next blocks until the next message
// arrives and returns an error when the connection drops, at which point the
// ingestor must resubscribe.
type KlineStream interface {
	Next() (Kline, error)
	Close() error
}

// MarketDataFeed opens kline subscriptions for a symbol/interval.
type MarketDataFeed interface {
	Subscribe(ctx context.Context, symbol, interval string) (KlineStream, error)
}

// OrderGateway places market orders on the exchange.
type OrderGateway interface {
	// CreateOrder submits a market order. side is SignalBuy or SignalSell.
	CreateOrder(ctx context.Context, side Signal, qty float64) error
}

// BalanceProvider reports the free balance of an asset, used synchronously
// before sizing a new entry.
type BalanceProvider interface {
	GetBalance(ctx context.Context, asset string) (float64, error)
}
