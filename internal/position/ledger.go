package position

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"pumpbot/internal/risk"
)

var (
	// ErrPriceUnavailable rejects an open without a usable entry price.
	ErrPriceUnavailable = errors.New("entry price unavailable")
	// ErrInvalidAmount rejects an open with a non-positive amount.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrAlreadyOpen rejects a reservation for a mint that is open or pending.
	ErrAlreadyOpen = errors.New("position already open")
	// ErrCapReached rejects a reservation once the concurrency cap is used up.
	ErrCapReached = errors.New("max concurrent trades reached")
)

// Ledger tracks open positions keyed by mint. All mutations are serialized by
// one mutex; at most one position exists per mint.
//
// Entries go through Reserve before the buy is submitted so the concurrency cap
// counts in-flight purchases, and exits go through BeginExit so two callers
// never sell the same position.
type Ledger struct {
	mu        sync.Mutex
	positions map[string]Position
	reserved  map[string]struct{}
	exiting   map[string]struct{}
	realized  float64

	throttle     time.Duration
	lastSnapshot time.Time

	store     Store
	recorders []TradeRecorder
	log       zerolog.Logger
	now       func() time.Time
}

// Option configures Ledger construction parameters.
type Option func(*Ledger)

// WithStore persists every open and close.
func WithStore(s Store) Option {
	return func(l *Ledger) { l.store = s }
}

// WithRecorder receives every closed trade.
func WithRecorder(r TradeRecorder) Option {
	return func(l *Ledger) {
		if r != nil {
			l.recorders = append(l.recorders, r)
		}
	}
}

// WithLogger sets the logger used for position events.
func WithLogger(log zerolog.Logger) Option {
	return func(l *Ledger) { l.log = log }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithThrottle sets the minimum spacing between PnL snapshots.
func WithThrottle(d time.Duration) Option {
	return func(l *Ledger) { l.throttle = d }
}

// NewLedger constructs an empty ledger.
func NewLedger(opts ...Option) *Ledger {
	l := &Ledger{
		positions: make(map[string]Position),
		reserved:  make(map[string]struct{}),
		exiting:   make(map[string]struct{}),
		log:       zerolog.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Restore loads persisted positions into the ledger and returns how many were loaded.
func (l *Ledger) Restore() (int, error) {
	if l.store == nil {
		return 0, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	loaded, err := l.store.Load()
	if err != nil {
		return 0, err
	}
	for _, pos := range loaded {
		l.positions[pos.Mint] = pos
	}
	return len(loaded), nil
}

// Reserve claims a slot for a pending entry on mint.
func (l *Ledger) Reserve(mint string, limits risk.Limits) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.positions[mint]; ok {
		return ErrAlreadyOpen
	}
	if _, ok := l.reserved[mint]; ok {
		return ErrAlreadyOpen
	}
	if !limits.AllowEntry(len(l.positions) + len(l.reserved)) {
		return ErrCapReached
	}
	l.reserved[mint] = struct{}{}
	return nil
}

// Release drops a reservation that did not turn into a position.
func (l *Ledger) Release(mint string) {
	l.mu.Lock()
	delete(l.reserved, mint)
	l.mu.Unlock()
}

// Open records a position, replacing any stale entry for the same mint.
func (l *Ledger) Open(mint string, entryPrice, amount float64) (Position, error) {
	if entryPrice <= 0 || math.IsNaN(entryPrice) || math.IsInf(entryPrice, 0) {
		l.log.Warn().Str("mint", mint).Msg("open skipped: no entry price")
		return Position{}, ErrPriceUnavailable
	}
	if amount <= 0 {
		l.log.Warn().Str("mint", mint).Float64("amount", amount).Msg("open skipped: no amount")
		return Position{}, ErrInvalidAmount
	}
	pos := Position{Mint: mint, EntryPrice: entryPrice, Amount: amount, OpenedAt: l.now()}

	l.mu.Lock()
	l.positions[mint] = pos
	delete(l.reserved, mint)
	delete(l.exiting, mint)
	l.persist(pos)
	l.mu.Unlock()

	l.log.Info().Str("mint", mint).Float64("price", entryPrice).Float64("amount", amount).Msg("OPEN position")
	return pos, nil
}

// Close removes the position for mint and returns the realized trade. It is a
// no-op returning false when nothing is open for mint.
func (l *Ledger) Close(mint string, exitPrice float64, reason string) (Trade, bool) {
	l.mu.Lock()
	pos, ok := l.positions[mint]
	if !ok {
		l.mu.Unlock()
		return Trade{}, false
	}
	abs, pct := pnl(pos.EntryPrice, exitPrice, pos.Amount)
	trade := Trade{
		ID:         uuid.NewString(),
		Mint:       mint,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  exitPrice,
		Amount:     pos.Amount,
		OpenedAt:   pos.OpenedAt,
		ClosedAt:   l.now(),
		PnL:        abs,
		PnLPct:     pct,
		Reason:     reason,
	}
	delete(l.positions, mint)
	delete(l.exiting, mint)
	l.realized += abs
	l.unpersist(mint)
	recorders := l.recorders
	l.mu.Unlock()

	for _, r := range recorders {
		r.Record(trade)
	}
	l.log.Info().
		Str("mint", mint).
		Float64("price", exitPrice).
		Float64("amount", trade.Amount).
		Float64("pnl", trade.PnL).
		Float64("pnl_pct", trade.PnLPct).
		Str("reason", reason).
		Msg("CLOSE position")
	return trade, true
}

// persist and unpersist mirror the in-memory map into the store. Callers hold
// l.mu so the store sees writes for one mint in the order the map did.
func (l *Ledger) persist(pos Position) {
	if l.store == nil {
		return
	}
	if err := l.store.Save(pos); err != nil {
		l.log.Error().Err(err).Str("mint", pos.Mint).Msg("persist position")
	}
}

func (l *Ledger) unpersist(mint string) {
	if l.store == nil {
		return
	}
	if err := l.store.Delete(mint); err != nil {
		l.log.Error().Err(err).Str("mint", mint).Msg("delete persisted position")
	}
}

// BeginExit latches mint for selling. It returns false when the position is
// not open or another exit already holds the latch.
func (l *Ledger) BeginExit(mint string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.positions[mint]; !ok {
		return false
	}
	if _, busy := l.exiting[mint]; busy {
		return false
	}
	l.exiting[mint] = struct{}{}
	return true
}

// EndExit releases the exit latch after a failed sell.
func (l *Ledger) EndExit(mint string) {
	l.mu.Lock()
	delete(l.exiting, mint)
	l.mu.Unlock()
}

// Get returns the open position for mint.
func (l *Ledger) Get(mint string) (Position, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	pos, ok := l.positions[mint]
	return pos, ok
}

// Has reports whether mint has an open position.
func (l *Ledger) Has(mint string) bool {
	_, ok := l.Get(mint)
	return ok
}

// Len returns the number of open positions.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.positions)
}

// Positions returns a copy of the open positions ordered by opening time.
func (l *Ledger) Positions() []Position {
	l.mu.Lock()
	out := make([]Position, 0, len(l.positions))
	for _, pos := range l.positions {
		out = append(out, pos)
	}
	l.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].OpenedAt.Equal(out[j].OpenedAt) {
			return out[i].Mint < out[j].Mint
		}
		return out[i].OpenedAt.Before(out[j].OpenedAt)
	})
	return out
}

// RealizedPnL returns total closed-trade profit and loss.
func (l *Ledger) RealizedPnL() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.realized
}

// SnapshotPnL marks every open position against q. Calls arriving sooner than
// the throttle interval after the previous snapshot return nil without
// quoting. Positions whose price is unavailable are left out. The ledger is
// not modified.
func (l *Ledger) SnapshotPnL(ctx context.Context, q Quoter) []PnLUpdate {
	l.mu.Lock()
	now := l.now()
	if !l.lastSnapshot.IsZero() && now.Sub(l.lastSnapshot) < l.throttle {
		l.mu.Unlock()
		return nil
	}
	l.lastSnapshot = now
	l.mu.Unlock()

	var updates []PnLUpdate
	for _, pos := range l.Positions() {
		price, err := q.CurrentPrice(ctx, pos.Mint)
		if err != nil || price <= 0 {
			if err != nil {
				l.log.Debug().Err(err).Str("mint", pos.Mint).Msg("mark skipped")
			}
			continue
		}
		abs, pct := pnl(pos.EntryPrice, price, pos.Amount)
		updates = append(updates, PnLUpdate{
			Mint:          pos.Mint,
			EntryPrice:    pos.EntryPrice,
			CurrentPrice:  price,
			Amount:        pos.Amount,
			Unrealized:    abs,
			PercentChange: pct,
		})
	}
	return updates
}
