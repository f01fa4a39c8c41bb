package indicator

import "tradingbot/internal/model"

// Default periods for the fast/slow EMA trend pair.
const (
	DefaultEMAFast = 12
	DefaultEMASlow = 26
)

// Engine computes one IndicatorSnapshot per closed bar over the most recent
// window of the candle history. Values attach to the latest candle only;
// historical snapshots are never recomputed. Single-goroutine usage, no
// locks needed.
type Engine struct {
	window    int
	atrPeriod int
	emaFast   int
	emaSlow   int
}

// NewEngine creates an engine evaluating the last window candles, with ATR
// averaged over atrPeriod true ranges.
func NewEngine(window, atrPeriod int) *Engine {
	return &Engine{
		window:    window,
		atrPeriod: atrPeriod,
		emaFast:   DefaultEMAFast,
		emaSlow:   DefaultEMASlow,
	}
}

// Window returns the number of candles the engine evaluates.
func (e *Engine) Window() int { return e.window }

// Compute evaluates the indicators over the last window candles of the given
// history. Returns ok=false when fewer than window candles exist — the
// snapshot is not ready and must not be traded on.
func (e *Engine) Compute(candles []model.Candle) (model.IndicatorSnapshot, bool) {
	if len(candles) < e.window {
		return model.IndicatorSnapshot{}, false
	}
	w := candles[len(candles)-e.window:]
	return model.IndicatorSnapshot{
		ATR:     atr(w, e.atrPeriod),
		SMA:     sma(w),
		EMAFast: ema(w, e.emaFast),
		EMASlow: ema(w, e.emaSlow),
	}, true
}
