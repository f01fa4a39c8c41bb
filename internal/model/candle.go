package model

import (
	"encoding/json"
	"time"
)

// Candle represents one closed OHLCV bar for the traded symbol.
// TS is the bar close time (UTC, exchange epoch-ms truncated) and is the
// unique key: exchanges re-push the still-forming bar under the same TS
// until it closes, so TS collisions mean "overwrite", not "append".
type Candle struct {
	TS     time.Time `json:"ts"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// JSON returns the JSON-encoded candle (ignoring errors for hot-path usage).
func (c *Candle) JSON() []byte {
	b, _ := json.Marshal(c)
	return b
}
