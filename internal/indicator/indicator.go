// Package indicator computes the technical indicators the signal generator
// consumes: ATR, SMA and a fast/slow EMA pair, all evaluated over the most
// recent window of candles.
package indicator

import (
	"math"

	"tradingbot/internal/model"
)

// sma returns the arithmetic mean of the closes.
func sma(candles []model.Candle) float64 {
	if len(candles) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range candles {
		sum += c.Close
	}
	return sum / float64(len(candles))
}

// ema returns the exponential moving average of the closes with smoothing
// factor 2/(period+1), seeded by the first close of the slice.
func ema(candles []model.Candle, period int) float64 {
	if len(candles) == 0 {
		return 0
	}
	alpha := 2.0 / float64(period+1)
	cur := candles[0].Close
	for _, c := range candles[1:] {
		cur = c.Close*alpha + cur*(1-alpha)
	}
	return cur
}

// atr returns the plain rolling mean of true range over the last period bars
// of the slice. The first bar has no previous close inside the slice and
// contributes no true range.
func atr(candles []model.Candle, period int) float64 {
	if len(candles) < 2 {
		return 0
	}
	trs := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		trs = append(trs, trueRange(candles[i], candles[i-1].Close))
	}
	if len(trs) > period {
		trs = trs[len(trs)-period:]
	}
	sum := 0.0
	for _, tr := range trs {
		sum += tr
	}
	return sum / float64(len(trs))
}

// trueRange is max(high-low, |high-prevClose|, |low-prevClose|).
func trueRange(c model.Candle, prevClose float64) float64 {
	tr := c.High - c.Low
	if hc := math.Abs(c.High - prevClose); hc > tr {
		tr = hc
	}
	if lc := math.Abs(c.Low - prevClose); lc > tr {
		tr = lc
	}
	return tr
}
