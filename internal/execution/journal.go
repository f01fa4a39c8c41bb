// Package execution records order activity. The live gateway is pkg/mexc;
// this package provides the SQLite trade journal and a paper gateway for
// dry runs.
package execution

import (
	"database/sql"
	"log"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"tradingbot/internal/model"
)

// Journal persists order intents to SQLite for analysis and audit.
// Failed orders are recorded too: a row with a non-empty error column is the
// only durable trace of a position/exchange mismatch.
type Journal struct {
	mu sync.Mutex
	db *sql.DB
}

// NewJournal opens (or creates) a SQLite journal database.
func NewJournal(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_sync=NORMAL")
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS orders (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol      TEXT NOT NULL,
		side        TEXT NOT NULL,
		qty         REAL NOT NULL,
		price       REAL NOT NULL,
		reason      TEXT,
		error       TEXT,
		placed_at   DATETIME NOT NULL,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_orders_symbol ON orders(symbol);
	CREATE INDEX IF NOT EXISTS idx_orders_placed_at ON orders(placed_at);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	log.Printf("[journal] opened trade journal at %s", dbPath)
	return &Journal{db: db}, nil
}

// RecordOrder persists one order attempt. price is the close the decision
// was made on, not the fill price (market orders fill unobserved here).
func (j *Journal) RecordOrder(symbol string, side model.Signal, qty, price float64, reason string, orderErr error) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	errText := ""
	if orderErr != nil {
		errText = orderErr.Error()
	}
	_, err := j.db.Exec(
		`INSERT INTO orders (symbol, side, qty, price, reason, error, placed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		symbol,
		side.String(),
		qty,
		price,
		reason,
		errText,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// OrderRecord represents a row from the orders table.
type OrderRecord struct {
	ID       int64   `json:"id"`
	Symbol   string  `json:"symbol"`
	Side     string  `json:"side"`
	Qty      float64 `json:"qty"`
	Price    float64 `json:"price"`
	Reason   string  `json:"reason"`
	Error    string  `json:"error"`
	PlacedAt string  `json:"placed_at"`
}

// GetOrders returns the last N recorded orders, newest first.
func (j *Journal) GetOrders(limit int) ([]OrderRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.Query(
		`SELECT id, symbol, side, qty, price, reason, error, placed_at
		 FROM orders ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []OrderRecord
	for rows.Next() {
		var o OrderRecord
		if err := rows.Scan(&o.ID, &o.Symbol, &o.Side, &o.Qty, &o.Price,
			&o.Reason, &o.Error, &o.PlacedAt); err != nil {
			continue
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// Close closes the journal database.
func (j *Journal) Close() error {
	return j.db.Close()
}
