// Package redis publishes live pipeline state to Redis for dashboards and
// ad-hoc inspection. Writes are best-effort: failures are logged and never
// block or fail the decision pipeline.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"tradingbot/internal/model"
)

const (
	// Stream trimming: ~3.5 days of 1m bars.
	candleStreamMaxLen = 5000
	latestTTL          = 30 * time.Minute
)

// WriterConfig configures the Redis writer.
type WriterConfig struct {
	Addr     string // Redis address, e.g. "localhost:6379"
	Password string
	DB       int
}

// Writer writes closed candles, indicator snapshots and signals to Redis.
type Writer struct {
	client *goredis.Client
}

// New creates a new Redis Writer and pings the server.
func New(cfg WriterConfig) (*Writer, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Printf("[redis] connected to %s", cfg.Addr)
	return &Writer{client: client}, nil
}

// Client returns the underlying Redis client for health checks.
func (w *Writer) Client() *goredis.Client { return w.client }

// WriteCandle records a closed candle: latest-value key plus a capped stream.
func (w *Writer) WriteCandle(ctx context.Context, symbol string, c model.Candle) {
	data := c.JSON()

	if err := w.client.Set(ctx, "latest:candle:"+symbol, data, latestTTL).Err(); err != nil {
		log.Printf("[redis] set latest candle: %v", err)
		return
	}
	err := w.client.XAdd(ctx, &goredis.XAddArgs{
		Stream: "candles:" + symbol,
		MaxLen: candleStreamMaxLen,
		Approx: true,
		Values: map[string]interface{}{"data": data},
	}).Err()
	if err != nil {
		log.Printf("[redis] xadd candle: %v", err)
	}
}

// WriteSnapshot records the indicator snapshot attached to the latest bar.
func (w *Writer) WriteSnapshot(ctx context.Context, symbol string, snap model.IndicatorSnapshot) {
	data, _ := json.Marshal(snap)
	if err := w.client.Set(ctx, "latest:indicators:"+symbol, data, latestTTL).Err(); err != nil {
		log.Printf("[redis] set snapshot: %v", err)
	}
}

// WriteSignal records the most recent signal.
func (w *Writer) WriteSignal(ctx context.Context, symbol string, sig model.Signal) {
	if err := w.client.Set(ctx, "latest:signal:"+symbol, sig.String(), latestTTL).Err(); err != nil {
		log.Printf("[redis] set signal: %v", err)
	}
}

// Close releases the underlying connection.
func (w *Writer) Close() error {
	return w.client.Close()
}
