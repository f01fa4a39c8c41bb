package indicator

import (
	"math"
	"testing"
	"time"

	"tradingbot/internal/model"
)

var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func flatBars(n int, close, spread float64) []model.Candle {
	out := make([]model.Candle, n)
	for i := range out {
		out[i] = model.Candle{
			TS:    base.Add(time.Duration(i) * time.Minute),
			Open:  close,
			High:  close + spread,
			Low:   close - spread,
			Close: close,
		}
	}
	return out
}

func TestEngine_NotReadyBelowWindow(t *testing.T) {
	e := NewEngine(20, 14)
	for n := 0; n < 20; n++ {
		if _, ok := e.Compute(flatBars(n, 100, 1)); ok {
			t.Fatalf("expected not ready with %d candles", n)
		}
	}
	if _, ok := e.Compute(flatBars(20, 100, 1)); !ok {
		t.Fatal("expected ready with a full window")
	}
}

func TestEngine_FlatMarket(t *testing.T) {
	e := NewEngine(20, 14)
	snap, ok := e.Compute(flatBars(20, 100, 1))
	if !ok {
		t.Fatal("expected ready snapshot")
	}
	// Every bar spans [99,101] around an unchanging close: TR=2 on all bars.
	if math.Abs(snap.ATR-2.0) > 1e-9 {
		t.Errorf("expected ATR=2, got %v", snap.ATR)
	}
	if math.Abs(snap.SMA-100.0) > 1e-9 {
		t.Errorf("expected SMA=100, got %v", snap.SMA)
	}
	if math.Abs(snap.EMAFast-100.0) > 1e-9 || math.Abs(snap.EMASlow-100.0) > 1e-9 {
		t.Errorf("expected both EMAs=100, got fast=%v slow=%v", snap.EMAFast, snap.EMASlow)
	}
}

func TestEngine_SMARisingCloses(t *testing.T) {
	e := NewEngine(20, 14)
	bars := flatBars(20, 0, 0)
	for i := range bars {
		bars[i].Close = float64(i + 1) // 1..20
		bars[i].Open = bars[i].Close
		bars[i].High = bars[i].Close
		bars[i].Low = bars[i].Close
	}
	snap, _ := e.Compute(bars)
	if math.Abs(snap.SMA-10.5) > 1e-9 {
		t.Errorf("expected SMA=10.5, got %v", snap.SMA)
	}
	// Fast EMA must track the rising trend more closely than the slow one.
	if snap.EMAFast <= snap.EMASlow {
		t.Errorf("expected EMAFast > EMASlow in an uptrend, got fast=%v slow=%v",
			snap.EMAFast, snap.EMASlow)
	}
}

func TestEngine_EMASeededByFirstClose(t *testing.T) {
	// One bar window: EMA must equal the seed close, regardless of period.
	e := &Engine{window: 1, atrPeriod: 14, emaFast: 12, emaSlow: 26}
	snap, ok := e.Compute(flatBars(1, 42, 0))
	if !ok {
		t.Fatal("expected ready")
	}
	if snap.EMAFast != 42 || snap.EMASlow != 42 {
		t.Errorf("expected seeded EMAs=42, got fast=%v slow=%v", snap.EMAFast, snap.EMASlow)
	}
}

func TestEngine_ATRGapUp(t *testing.T) {
	e := NewEngine(3, 2)
	bars := flatBars(3, 100, 1)
	// Last bar gaps up: high-prevClose dominates the true range.
	bars[2].Open = 110
	bars[2].High = 112
	bars[2].Low = 109
	bars[2].Close = 111
	snap, _ := e.Compute(bars)
	// TRs over period 2: bar1 vs bar0 close 100 → 2; bar2 vs bar1 close 100 →
	// max(3, |112-100|, |109-100|) = 12. ATR = (2+12)/2 = 7.
	if math.Abs(snap.ATR-7.0) > 1e-9 {
		t.Errorf("expected ATR=7, got %v", snap.ATR)
	}
}

func TestEngine_ComputesOverTailOnly(t *testing.T) {
	e := NewEngine(20, 14)
	// 30 bars: first 10 wild, last 20 flat. Only the tail should matter.
	bars := append(flatBars(10, 500, 50), flatBars(20, 100, 1)...)
	for i := range bars {
		bars[i].TS = base.Add(time.Duration(i) * time.Minute)
	}
	snap, _ := e.Compute(bars)
	if math.Abs(snap.SMA-100.0) > 1e-9 {
		t.Errorf("expected SMA over tail=100, got %v", snap.SMA)
	}
	if math.Abs(snap.ATR-2.0) > 1e-9 {
		t.Errorf("expected ATR over tail=2, got %v", snap.ATR)
	}
}
