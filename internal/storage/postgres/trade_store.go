package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"pumpbot/internal/position"
)

const schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id    TEXT PRIMARY KEY,
	mint        TEXT NOT NULL,
	entry_price DOUBLE PRECISION NOT NULL,
	exit_price  DOUBLE PRECISION NOT NULL,
	amount      DOUBLE PRECISION NOT NULL,
	pnl         DOUBLE PRECISION NOT NULL,
	pnl_pct     DOUBLE PRECISION NOT NULL,
	reason      TEXT NOT NULL DEFAULT '',
	opened_at   TIMESTAMPTZ NOT NULL,
	closed_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS trades_mint_idx ON trades (mint);
`

// TradeStore writes closed trades and doubles as a position.TradeRecorder.
type TradeStore struct {
	pool    *Pool
	log     zerolog.Logger
	timeout time.Duration
}

// NewTradeStore creates a TradeStore.
func NewTradeStore(pool *Pool, log zerolog.Logger) *TradeStore {
	return &TradeStore{pool: pool, log: log.With().Str("component", "trade_store").Logger(), timeout: 5 * time.Second}
}

var _ position.TradeRecorder = (*TradeStore)(nil)

// Migrate creates the trades table when missing.
func (s *TradeStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate trades: %w", err)
	}
	return nil
}

// Insert adds a trade. Returns ErrDuplicateKey if the id exists.
func (s *TradeStore) Insert(ctx context.Context, t position.Trade) error {
	query := `
		INSERT INTO trades (
			trade_id, mint, entry_price, exit_price, amount,
			pnl, pnl_pct, reason, opened_at, closed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.pool.Exec(ctx, query,
		t.ID, t.Mint, t.EntryPrice, t.ExitPrice, t.Amount,
		t.PnL, t.PnLPct, t.Reason, t.OpenedAt, t.ClosedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

// GetByMint returns trades for mint ordered by close time.
func (s *TradeStore) GetByMint(ctx context.Context, mint string) ([]position.Trade, error) {
	query := `
		SELECT trade_id, mint, entry_price, exit_price, amount,
			pnl, pnl_pct, reason, opened_at, closed_at
		FROM trades
		WHERE mint = $1
		ORDER BY closed_at ASC, trade_id ASC
	`
	rows, err := s.pool.Query(ctx, query, mint)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	trades, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (position.Trade, error) {
		var t position.Trade
		err := row.Scan(&t.ID, &t.Mint, &t.EntryPrice, &t.ExitPrice, &t.Amount,
			&t.PnL, &t.PnLPct, &t.Reason, &t.OpenedAt, &t.ClosedAt)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan trades: %w", err)
	}
	return trades, nil
}

// Record inserts trade and logs failures; duplicates are ignored.
func (s *TradeStore) Record(trade position.Trade) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.Insert(ctx, trade); err != nil && !errors.Is(err, ErrDuplicateKey) {
		s.log.Warn().Err(err).Str("mint", trade.Mint).Str("trade_id", trade.ID).Msg("persist trade failed")
	}
}
