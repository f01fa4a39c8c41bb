package model

// Signal is the trading signal derived from the latest indicator snapshot.
// The zero value is SignalNone so an unset "last signal" means no-trade.
type Signal string

const (
	SignalNone Signal = ""
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
)

// String renders the signal for logs; SignalNone prints as "NONE".
func (s Signal) String() string {
	if s == SignalNone {
		return "NONE"
	}
	return string(s)
}

// Opposite returns the order side that closes a position opened with s.
func (s Signal) Opposite() Signal {
	switch s {
	case SignalBuy:
		return SignalSell
	case SignalSell:
		return SignalBuy
	default:
		return SignalNone
	}
}

// IndicatorSnapshot holds the indicator values attached to the latest candle.
// A snapshot is only produced once the candle window is full; callers receive
// an ok=false instead of a snapshot before that.
type IndicatorSnapshot struct {
	ATR     float64 `json:"atr"`
	SMA     float64 `json:"sma"`
	EMAFast float64 `json:"ema_fast"`
	EMASlow float64 `json:"ema_slow"`
}
