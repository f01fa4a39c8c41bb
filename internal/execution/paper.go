package execution

import (
	"context"
	"log"
	"sync"
	"time"

	"tradingbot/internal/model"
)

// PaperFill is one simulated order.
type PaperFill struct {
	Side     model.Signal `json:"side"`
	Qty      float64      `json:"qty"`
	FilledAt time.Time    `json:"filled_at"`
}

// PaperGateway simulates the exchange for dry runs: orders are logged and
// recorded in memory, the balance is a fixed configured amount. It satisfies
// model.OrderGateway and model.BalanceProvider.
type PaperGateway struct {
	mu      sync.Mutex
	balance float64
	fills   []PaperFill
}

// NewPaperGateway creates a paper gateway with the given starting balance.
func NewPaperGateway(balance float64) *PaperGateway {
	return &PaperGateway{balance: balance}
}

// CreateOrder records the order and always succeeds.
func (p *PaperGateway) CreateOrder(_ context.Context, side model.Signal, qty float64) error {
	p.mu.Lock()
	p.fills = append(p.fills, PaperFill{Side: side, Qty: qty, FilledAt: time.Now()})
	p.mu.Unlock()
	log.Printf("[paper] %s %.6f filled", side.String(), qty)
	return nil
}

// GetBalance returns the configured balance; paper fills do not move it.
func (p *PaperGateway) GetBalance(_ context.Context, _ string) (float64, error) {
	return p.balance, nil
}

// Fills returns a snapshot of all simulated orders.
func (p *PaperGateway) Fills() []PaperFill {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := make([]PaperFill, len(p.fills))
	copy(cp, p.fills)
	return cp
}
