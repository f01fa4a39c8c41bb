// Package strategy converts indicator snapshots into trading signals.
//
// The generator is a hysteresis-gated mean-reversion rule with an EMA trend
// filter: price leaving the band around the SMA proposes a side, price inside
// the band keeps the previously persisted signal sticky, and the EMA pair
// vetoes candidates that fight the trend.
package strategy

import "tradingbot/internal/model"

// Generator evaluates the latest snapshot into a Buy/Sell/None signal.
// It is stateless; the previously persisted signal is passed in by the
// caller, which owns signal persistence across bars.
type Generator struct {
	hysteresisK float64 // band width as a multiple of ATR
	minVolPct   float64 // minimum ATR/close ratio worth trading
}

// NewGenerator creates a generator with the given hysteresis band multiplier
// and minimum volatility ratio.
func NewGenerator(hysteresisK, minVolPct float64) *Generator {
	return &Generator{hysteresisK: hysteresisK, minVolPct: minVolPct}
}

// Evaluate derives the signal for the latest closed bar.
//
// Preconditions handled locally: a zero ATR or ATR/close below the minimum
// volatility ratio yields SignalNone. Inside the band [sma-band, sma+band]
// the previous signal is retained (hysteresis hold). The trend filter
// suppresses a Buy unless emaFast > emaSlow and a Sell unless
// emaFast < emaSlow — suppression returns SignalNone, indistinguishable from
// "no candidate". Callers persisting the result therefore erase a held
// signal when the filter fires; the tests pin that as the contract.
func (g *Generator) Evaluate(snap model.IndicatorSnapshot, close float64, prev model.Signal) model.Signal {
	if snap.ATR == 0 || snap.ATR/close < g.minVolPct {
		return model.SignalNone
	}

	band := g.hysteresisK * snap.ATR
	var sig model.Signal
	switch {
	case close < snap.SMA-band:
		sig = model.SignalBuy
	case close > snap.SMA+band:
		sig = model.SignalSell
	default:
		sig = prev
	}

	if sig == model.SignalBuy && snap.EMAFast <= snap.EMASlow {
		return model.SignalNone
	}
	if sig == model.SignalSell && snap.EMAFast >= snap.EMASlow {
		return model.SignalNone
	}
	return sig
}
