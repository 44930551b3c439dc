// Package position owns open positions and the realized PnL of closed ones.
package position

import (
	"context"
	"time"
)

// Position is an open quantity of a token bought at EntryPrice (SOL per token).
type Position struct {
	Mint       string    `json:"mint"`
	EntryPrice float64   `json:"entry_price"`
	Amount     float64   `json:"amount"`
	OpenedAt   time.Time `json:"opened_at"`
}

// Trade is a closed position with its realized result.
type Trade struct {
	ID         string    `json:"id"`
	Mint       string    `json:"mint"`
	EntryPrice float64   `json:"entry_price"`
	ExitPrice  float64   `json:"exit_price"`
	Amount     float64   `json:"amount"`
	OpenedAt   time.Time `json:"opened_at"`
	ClosedAt   time.Time `json:"closed_at"`
	PnL        float64   `json:"pnl"`
	PnLPct     float64   `json:"pnl_pct"`
	Reason     string    `json:"reason"`
}

// PnLUpdate is the mark-to-market view of one open position.
type PnLUpdate struct {
	Mint          string
	EntryPrice    float64
	CurrentPrice  float64
	Amount        float64
	Unrealized    float64
	PercentChange float64
}

// Quoter supplies current prices for marking positions.
type Quoter interface {
	CurrentPrice(ctx context.Context, mint string) (float64, error)
}

// Store persists open positions so they survive restarts.
type Store interface {
	Save(Position) error
	Delete(mint string) error
	Load() ([]Position, error)
}

// TradeRecorder captures closed trades for later inspection.
type TradeRecorder interface {
	Record(Trade)
}

func pnl(entry, exit, amount float64) (abs, pct float64) {
	return (exit - entry) * amount, (exit - entry) / entry * 100
}
