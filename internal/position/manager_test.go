package position

import (
	"context"
	"errors"
	"math"
	"testing"

	"tradingbot/internal/model"
)

type order struct {
	side model.Signal
	qty  float64
}

// fakeExchange implements model.OrderGateway and model.BalanceProvider.
type fakeExchange struct {
	balance  float64
	balErr   error
	orderErr error
	orders   []order
}

func (f *fakeExchange) CreateOrder(_ context.Context, side model.Signal, qty float64) error {
	f.orders = append(f.orders, order{side, qty})
	return f.orderErr
}

func (f *fakeExchange) GetBalance(_ context.Context, _ string) (float64, error) {
	return f.balance, f.balErr
}

func newTestManager(ex *fakeExchange) *Manager {
	return NewManager(Config{
		RiskPct:           0.01,
		StopATRMult:       1.5,
		MinBarsInPosition: 3,
		Asset:             "USDT",
	}, ex, ex)
}

func snapATR(atr float64) model.IndicatorSnapshot {
	return model.IndicatorSnapshot{ATR: atr, SMA: 100, EMAFast: 101, EMASlow: 100}
}

func TestManager_EntrySizing(t *testing.T) {
	ex := &fakeExchange{balance: 10000}
	m := newTestManager(ex)

	m.Tick(context.Background(), model.SignalBuy, snapATR(5), 100, 1)

	pos, ok := m.Position()
	if !ok || pos.Side != model.SideLong {
		t.Fatalf("expected open long, got %+v ok=%v", pos, ok)
	}
	// dist = 1.5*5 = 7.5; qty = floor6(10000*0.01/7.5) = 13.333333
	if pos.Qty != 13.333333 {
		t.Fatalf("expected qty=13.333333, got %v", pos.Qty)
	}
	// qty * stopDistance recovers the risked amount within rounding loss.
	if risked := pos.Qty * 7.5; math.Abs(risked-100) > 7.5*1e-6 {
		t.Errorf("risked %v, expected ~100", risked)
	}
	if pos.StopPrice != 100-7.5 {
		t.Errorf("expected stop=92.5, got %v", pos.StopPrice)
	}
	if len(ex.orders) != 1 || ex.orders[0] != (order{model.SignalBuy, 13.333333}) {
		t.Fatalf("unexpected orders: %+v", ex.orders)
	}
}

func TestManager_ZeroQtySuppressesEntry(t *testing.T) {
	ex := &fakeExchange{balance: 0.0001}
	m := newTestManager(ex)

	// qty = floor6(0.0001*0.01/7.5) = floor6(1.33e-7) = 0
	m.Tick(context.Background(), model.SignalBuy, snapATR(5), 100, 1)

	if _, ok := m.Position(); ok {
		t.Fatal("expected no position for zero quantity")
	}
	if len(ex.orders) != 0 {
		t.Fatalf("expected no orders, got %+v", ex.orders)
	}
	// The signal is still persisted.
	if m.LastSignal() != model.SignalBuy {
		t.Fatalf("expected last signal BUY, got %v", m.LastSignal())
	}
}

func TestManager_TrailingStopRatchet(t *testing.T) {
	ex := &fakeExchange{balance: 10000}
	m := newTestManager(ex)
	m.Tick(context.Background(), model.SignalBuy, snapATR(2), 100, 1) // stop=97

	prevStop := 0.0
	for _, close := range []float64{101, 103, 102, 105, 104, 104.5} {
		m.Tick(context.Background(), model.SignalNone, snapATR(2), close, 2)
		pos, ok := m.Position()
		if !ok {
			t.Fatalf("close=%v: position exited unexpectedly", close)
		}
		if pos.StopPrice < prevStop {
			t.Fatalf("close=%v: stop relaxed from %v to %v", close, prevStop, pos.StopPrice)
		}
		prevStop = pos.StopPrice
	}
	// Highest close was 105 → stop = 105 - 3 = 102.
	if prevStop != 102 {
		t.Fatalf("expected stop=102, got %v", prevStop)
	}
}

func TestManager_StopBreachExitsLong(t *testing.T) {
	ex := &fakeExchange{balance: 10000}
	m := newTestManager(ex)
	m.Tick(context.Background(), model.SignalBuy, snapATR(2), 100, 1) // stop=97
	ex.orders = nil

	// close=94 is below the stop; the ratchet (94-3=91) does not move it up.
	m.Tick(context.Background(), model.SignalNone, snapATR(2), 94, 2)

	if _, ok := m.Position(); ok {
		t.Fatal("expected flat after stop breach")
	}
	if len(ex.orders) != 1 || ex.orders[0].side != model.SignalSell {
		t.Fatalf("expected one SELL exit order, got %+v", ex.orders)
	}
}

func TestManager_ShortStopRatchetsDown(t *testing.T) {
	ex := &fakeExchange{balance: 10000}
	m := newTestManager(ex)
	m.Tick(context.Background(), model.SignalSell, model.IndicatorSnapshot{
		ATR: 2, SMA: 100, EMAFast: 99, EMASlow: 100,
	}, 100, 1) // short, stop=103

	prevStop := math.Inf(1)
	for _, close := range []float64{98, 96, 97, 95} {
		m.Tick(context.Background(), model.SignalNone, snapATR(2), close, 2)
		pos, ok := m.Position()
		if !ok {
			t.Fatalf("close=%v: position exited unexpectedly", close)
		}
		if pos.StopPrice > prevStop {
			t.Fatalf("close=%v: short stop relaxed from %v to %v", close, prevStop, pos.StopPrice)
		}
		prevStop = pos.StopPrice
	}
	// Lowest close 95 → stop = 95 + 3 = 98; close=98.5 >= stop exits.
	m.Tick(context.Background(), model.SignalNone, snapATR(2), 98.5, 6)
	if _, ok := m.Position(); ok {
		t.Fatal("expected flat after short stop breach")
	}
	if last := ex.orders[len(ex.orders)-1]; last.side != model.SignalBuy {
		t.Fatalf("expected BUY exit order, got %+v", last)
	}
}

func TestManager_ReversalHonorsMinimumHold(t *testing.T) {
	ex := &fakeExchange{balance: 10000}
	m := newTestManager(ex)
	m.Tick(context.Background(), model.SignalBuy, snapATR(2), 100, 10)
	ex.orders = nil

	// Opposite signal only 2 bars after entry: blocked (min hold is 3).
	m.Tick(context.Background(), model.SignalSell, snapATR(2), 100, 12)
	if pos, ok := m.Position(); !ok || pos.Side != model.SideLong {
		t.Fatalf("expected long to survive early reversal, got %+v ok=%v", pos, ok)
	}
	if len(ex.orders) != 0 {
		t.Fatalf("expected no orders, got %+v", ex.orders)
	}

	// Signal flips back then sell again after the hold elapses: close + reverse.
	m.Tick(context.Background(), model.SignalBuy, snapATR(2), 100, 13)
	m.Tick(context.Background(), model.SignalSell, snapATR(2), 100, 14)
	pos, ok := m.Position()
	if !ok || pos.Side != model.SideShort {
		t.Fatalf("expected reversal into short, got %+v ok=%v", pos, ok)
	}
	// One SELL closing the long, one SELL opening the short.
	if len(ex.orders) != 2 {
		t.Fatalf("expected 2 orders, got %+v", ex.orders)
	}
}

func TestManager_RepeatSignalDoesNothing(t *testing.T) {
	ex := &fakeExchange{balance: 10000}
	m := newTestManager(ex)
	m.Tick(context.Background(), model.SignalBuy, snapATR(2), 100, 1)
	ex.orders = nil

	// Same persisted signal again: no stacking, no churn.
	m.Tick(context.Background(), model.SignalBuy, snapATR(2), 100.5, 2)
	if len(ex.orders) != 0 {
		t.Fatalf("expected no orders on repeated signal, got %+v", ex.orders)
	}
}

func TestManager_FailedExitStillFlattens(t *testing.T) {
	ex := &fakeExchange{balance: 10000}
	m := newTestManager(ex)
	m.Tick(context.Background(), model.SignalBuy, snapATR(2), 100, 1)

	ex.orderErr = errors.New("exchange rejected")
	m.Tick(context.Background(), model.SignalNone, snapATR(2), 90, 2)

	// The exchange may still hold the position; local state says flat.
	if _, ok := m.Position(); ok {
		t.Fatal("expected local state flat despite failed exit order")
	}
}

func TestManager_BalanceErrorSkipsEntry(t *testing.T) {
	ex := &fakeExchange{balErr: errors.New("timeout")}
	m := newTestManager(ex)

	m.Tick(context.Background(), model.SignalBuy, snapATR(2), 100, 1)
	if _, ok := m.Position(); ok {
		t.Fatal("expected no entry when balance lookup fails")
	}
	if len(ex.orders) != 0 {
		t.Fatalf("expected no orders, got %+v", ex.orders)
	}
}

func TestManager_OnOrderHook(t *testing.T) {
	ex := &fakeExchange{balance: 10000}
	m := newTestManager(ex)

	var reasons []string
	m.OnOrder = func(_ model.Signal, _, _ float64, reason string, _ error) {
		reasons = append(reasons, reason)
	}

	m.Tick(context.Background(), model.SignalBuy, snapATR(2), 100, 1)
	m.Tick(context.Background(), model.SignalNone, snapATR(2), 90, 2)

	if len(reasons) != 2 || reasons[0] != "entry" || reasons[1] != "trailing stop" {
		t.Fatalf("unexpected hook calls: %v", reasons)
	}
}
