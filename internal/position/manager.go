// Package position manages the single open position: entry sizing, trailing
// stop ratcheting, reversal handling and the persisted last signal.
package position

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"tradingbot/internal/model"
)

// DefaultStopATRMult is the stop distance as a multiple of ATR.
const DefaultStopATRMult = 1.5

// Config holds the risk parameters for position management.
type Config struct {
	RiskPct           float64 // fraction of balance risked per entry
	StopATRMult       float64 // stop distance = StopATRMult * ATR
	MinBarsInPosition int     // bars to hold before a reversal may close
	Asset             string  // quote asset used for balance lookup
}

// Manager is the Flat/Long/Short state machine driven once per closed bar.
// All state is touched from the single pipeline goroutine. Order and balance
// failures are logged and swallowed: the in-memory position is updated
// regardless, so a failed exit order is an operator-visible inconsistency
// surfaced only via logs.
type Manager struct {
	cfg     Config
	orders  model.OrderGateway
	balance model.BalanceProvider

	pos        *model.Position
	lastSignal model.Signal

	// OnOrder, if set, is called after every order attempt (entry or exit),
	// including failed ones.
	OnOrder func(side model.Signal, qty, price float64, reason string, err error)
}

// NewManager creates a Manager with the given risk config and exchange ports.
// A zero StopATRMult falls back to DefaultStopATRMult.
func NewManager(cfg Config, orders model.OrderGateway, balance model.BalanceProvider) *Manager {
	if cfg.StopATRMult == 0 {
		cfg.StopATRMult = DefaultStopATRMult
	}
	return &Manager{cfg: cfg, orders: orders, balance: balance}
}

// Position returns a copy of the open position, or ok=false when flat.
func (m *Manager) Position() (model.Position, bool) {
	if m.pos == nil {
		return model.Position{}, false
	}
	return *m.pos, true
}

// LastSignal returns the signal persisted on the previous tick.
func (m *Manager) LastSignal() model.Signal { return m.lastSignal }

// Tick drives the state machine for one closed bar:
//
//  1. ratchet the trailing stop and exit on breach;
//  2. on a signal change, close an opposite position once the minimum
//     holding period has elapsed, then size and open a new entry when flat;
//  3. persist the signal as "last signal" whether or not an order was placed.
//
// bar is a monotonically increasing closed-bar sequence number; the minimum
// holding period counts bars, not wall-clock time.
func (m *Manager) Tick(ctx context.Context, sig model.Signal, snap model.IndicatorSnapshot, close float64, bar uint64) {
	if m.pos != nil && snap.ATR > 0 {
		m.trail(ctx, snap.ATR, close)
	}

	if sig != model.SignalNone && sig != m.lastSignal {
		slog.Info("signal change",
			"signal", sig.String(), "close", close, "atr", snap.ATR)

		if m.pos != nil && sig != m.pos.Side.EntrySide() &&
			bar-m.pos.OpenedAtBar >= uint64(m.cfg.MinBarsInPosition) {
			m.closePosition(ctx, close, "reversal")
		}
		if m.pos == nil && snap.ATR > 0 {
			m.open(ctx, sig, snap.ATR, close, bar)
		}
	}

	m.lastSignal = sig
}

// trail ratchets the stop in the position's favor and exits on breach.
// The stop never relaxes.
func (m *Manager) trail(ctx context.Context, atr, close float64) {
	dist := m.cfg.StopATRMult * atr
	switch m.pos.Side {
	case model.SideLong:
		if s := close - dist; s > m.pos.StopPrice {
			m.pos.StopPrice = s
		}
		if close <= m.pos.StopPrice {
			m.closePosition(ctx, close, "trailing stop")
		}
	case model.SideShort:
		if s := close + dist; s < m.pos.StopPrice {
			m.pos.StopPrice = s
		}
		if close >= m.pos.StopPrice {
			m.closePosition(ctx, close, "trailing stop")
		}
	}
}

func (m *Manager) closePosition(ctx context.Context, close float64, reason string) {
	side := m.pos.Side.EntrySide().Opposite()
	qty := m.pos.Qty

	err := m.orders.CreateOrder(ctx, side, qty)
	if err != nil {
		// Exchange may still hold the position open; local state moves on.
		slog.Error("exit order failed, flattening local state anyway",
			"side", side.String(), "qty", qty, "reason", reason, "err", err)
	} else {
		slog.Info("position closed",
			"side", side.String(), "qty", qty, "close", close,
			"entry", m.pos.EntryPrice, "stop", m.pos.StopPrice, "reason", reason)
	}
	if m.OnOrder != nil {
		m.OnOrder(side, qty, close, reason, err)
	}
	m.pos = nil
}

func (m *Manager) open(ctx context.Context, sig model.Signal, atr, close float64, bar uint64) {
	dist := m.cfg.StopATRMult * atr

	bal, err := m.balance.GetBalance(ctx, m.cfg.Asset)
	if err != nil {
		slog.Error("balance fetch failed, skipping entry", "err", err)
		return
	}

	qty := floor6(bal * m.cfg.RiskPct / dist)
	if qty <= 0 {
		return
	}

	err = m.orders.CreateOrder(ctx, sig, qty)
	if err != nil {
		slog.Error("entry order failed, tracking position anyway",
			"side", sig.String(), "qty", qty, "err", err)
	}

	side := model.SideLong
	stop := close - dist
	if sig == model.SignalSell {
		side = model.SideShort
		stop = close + dist
	}
	m.pos = &model.Position{
		Side:        side,
		Qty:         qty,
		EntryPrice:  close,
		StopPrice:   stop,
		OpenedAtBar: bar,
	}
	if m.OnOrder != nil {
		m.OnOrder(sig, qty, close, "entry", err)
	}
	slog.Info("position opened",
		"side", string(side), "qty", qty, "entry", close, "stop", stop,
		"balance", bal)
}

// floor6 truncates toward zero at 6 decimal places, the exchange's quantity
// precision. Truncation (not rounding) keeps sizing conservative.
func floor6(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Truncate(6).Float64()
	return f
}
