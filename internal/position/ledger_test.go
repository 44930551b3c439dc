package position

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"pumpbot/internal/risk"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type mapQuoter map[string]float64

func (q mapQuoter) CurrentPrice(_ context.Context, mint string) (float64, error) {
	p, ok := q[mint]
	if !ok {
		return 0, errors.New("no price")
	}
	return p, nil
}

func TestOpenCloseRealizesPnL(t *testing.T) {
	journal := NewJournal(1)
	ledger := NewLedger(WithRecorder(journal))

	if _, err := ledger.Open("MINT", 0.001, 1000); err != nil {
		t.Fatalf("open: %v", err)
	}
	trade, ok := ledger.Close("MINT", 0.0015, "signal")
	if !ok {
		t.Fatalf("expected close to succeed")
	}
	wantPnL := (0.0015 - 0.001) * 1000
	wantPct := (0.0015 - 0.001) / 0.001 * 100
	if trade.PnL != wantPnL || trade.PnLPct != wantPct {
		t.Fatalf("pnl mismatch: got %v/%v want %v/%v", trade.PnL, trade.PnLPct, wantPnL, wantPct)
	}
	if trade.ID == "" || trade.Reason != "signal" {
		t.Fatalf("unexpected trade %+v", trade)
	}
	if ledger.Has("MINT") {
		t.Fatalf("position should be removed after close")
	}
	if got := journal.Snapshot(); len(got) != 1 || got[0].Mint != "MINT" {
		t.Fatalf("journal did not capture trade: %+v", got)
	}
	if ledger.RealizedPnL() != wantPnL || journal.RealizedPnL() != wantPnL {
		t.Fatalf("realized pnl not tracked")
	}
}

func TestCloseUnknownMintIsNoop(t *testing.T) {
	journal := NewJournal(0)
	ledger := NewLedger(WithRecorder(journal))
	if _, ok := ledger.Close("NOPE", 1, "signal"); ok {
		t.Fatalf("expected no-op close")
	}
	if len(journal.Snapshot()) != 0 {
		t.Fatalf("no trade should be recorded")
	}
}

func TestOpenRejectsMissingPrice(t *testing.T) {
	ledger := NewLedger()
	for _, price := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := ledger.Open("MINT", price, 10); !errors.Is(err, ErrPriceUnavailable) {
			t.Fatalf("price %v: expected ErrPriceUnavailable, got %v", price, err)
		}
	}
	if _, err := ledger.Open("MINT", 1, 0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if ledger.Len() != 0 {
		t.Fatalf("ledger should stay empty")
	}
}

func TestOpenOverwritesStaleEntry(t *testing.T) {
	ledger := NewLedger()
	if _, err := ledger.Open("MINT", 1, 10); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := ledger.Open("MINT", 2, 5); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	pos, ok := ledger.Get("MINT")
	if !ok || pos.EntryPrice != 2 || pos.Amount != 5 {
		t.Fatalf("expected overwritten position, got %+v", pos)
	}
	if ledger.Len() != 1 {
		t.Fatalf("expected a single entry per mint")
	}
}

func TestReserveEnforcesCap(t *testing.T) {
	ledger := NewLedger()
	limits := risk.Limits{MaxConcurrentTrades: 2}

	if err := ledger.Reserve("A", limits); err != nil {
		t.Fatalf("reserve A: %v", err)
	}
	if err := ledger.Reserve("A", limits); !errors.Is(err, ErrAlreadyOpen) {
		t.Fatalf("expected duplicate reservation to fail, got %v", err)
	}
	if _, err := ledger.Open("A", 1, 1); err != nil {
		t.Fatalf("open A: %v", err)
	}
	if err := ledger.Reserve("B", limits); err != nil {
		t.Fatalf("reserve B: %v", err)
	}
	if err := ledger.Reserve("C", limits); !errors.Is(err, ErrCapReached) {
		t.Fatalf("expected cap error, got %v", err)
	}
	ledger.Release("B")
	if err := ledger.Reserve("C", limits); err != nil {
		t.Fatalf("reserve after release: %v", err)
	}
}

func TestReserveConcurrentRespectsCap(t *testing.T) {
	ledger := NewLedger()
	limits := risk.Limits{MaxConcurrentTrades: 3}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			mint := string(rune('A' + i))
			if err := ledger.Reserve(mint, limits); err == nil {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	if granted != 3 {
		t.Fatalf("expected exactly 3 reservations, got %d", granted)
	}
}

func TestBeginExitLatch(t *testing.T) {
	ledger := NewLedger()
	if ledger.BeginExit("MINT") {
		t.Fatalf("latch should fail without a position")
	}
	if _, err := ledger.Open("MINT", 1, 1); err != nil {
		t.Fatalf("open: %v", err)
	}
	if !ledger.BeginExit("MINT") {
		t.Fatalf("first latch should succeed")
	}
	if ledger.BeginExit("MINT") {
		t.Fatalf("second latch should fail while exiting")
	}
	ledger.EndExit("MINT")
	if !ledger.BeginExit("MINT") {
		t.Fatalf("latch should be available after EndExit")
	}
}

func TestPositionsOrderedByOpenTime(t *testing.T) {
	clock := &fixedClock{now: time.Unix(1_700_000_000, 0)}
	ledger := NewLedger(WithClock(clock.Now))
	for _, mint := range []string{"C", "A", "B"} {
		if _, err := ledger.Open(mint, 1, 1); err != nil {
			t.Fatalf("open %s: %v", mint, err)
		}
		clock.Advance(time.Second)
	}
	got := ledger.Positions()
	if len(got) != 3 || got[0].Mint != "C" || got[1].Mint != "A" || got[2].Mint != "B" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestSnapshotPnLThrottled(t *testing.T) {
	clock := &fixedClock{now: time.Unix(1_700_000_000, 0)}
	ledger := NewLedger(WithClock(clock.Now), WithThrottle(5*time.Second))
	if _, err := ledger.Open("A", 2, 10); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := ledger.Open("B", 1, 1); err != nil {
		t.Fatalf("open: %v", err)
	}
	quotes := mapQuoter{"A": 3}

	updates := ledger.SnapshotPnL(context.Background(), quotes)
	if len(updates) != 1 {
		t.Fatalf("expected one marked position, got %d", len(updates))
	}
	if updates[0].Unrealized != 10 || updates[0].PercentChange != 50 {
		t.Fatalf("unexpected mark %+v", updates[0])
	}
	if ledger.SnapshotPnL(context.Background(), quotes) != nil {
		t.Fatalf("expected throttled snapshot to return nil")
	}
	clock.Advance(5 * time.Second)
	if ledger.SnapshotPnL(context.Background(), quotes) == nil {
		t.Fatalf("expected snapshot after throttle interval")
	}
	if ledger.Len() != 2 {
		t.Fatalf("snapshot must not modify the ledger")
	}
}

// gatedStore blocks the first Delete until release is closed.
type gatedStore struct {
	mu       sync.Mutex
	saved    map[string]Position
	deleting chan struct{}
	release  chan struct{}
	once     sync.Once
}

func newGatedStore() *gatedStore {
	return &gatedStore{saved: map[string]Position{}, deleting: make(chan struct{}), release: make(chan struct{})}
}

func (s *gatedStore) Save(pos Position) error {
	s.mu.Lock()
	s.saved[pos.Mint] = pos
	s.mu.Unlock()
	return nil
}

func (s *gatedStore) Delete(mint string) error {
	first := false
	s.once.Do(func() { first = true })
	if first {
		close(s.deleting)
		<-s.release
	}
	s.mu.Lock()
	delete(s.saved, mint)
	s.mu.Unlock()
	return nil
}

func (s *gatedStore) Load() ([]Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Position, 0, len(s.saved))
	for _, p := range s.saved {
		out = append(out, p)
	}
	return out, nil
}

func TestReopenDuringCloseKeepsStoredPosition(t *testing.T) {
	store := newGatedStore()
	ledger := NewLedger(WithStore(store))
	if _, err := ledger.Open("MINT", 1, 10); err != nil {
		t.Fatalf("Open error: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		ledger.Close("MINT", 2, "exit")
	}()
	<-store.deleting
	go func() {
		defer wg.Done()
		if _, err := ledger.Open("MINT", 3, 5); err != nil {
			t.Errorf("reopen error: %v", err)
		}
	}()
	time.Sleep(20 * time.Millisecond)
	close(store.release)
	wg.Wait()

	if !ledger.Has("MINT") {
		t.Fatalf("expected reopened position in memory")
	}
	restored := NewLedger(WithStore(store))
	n, err := restored.Restore()
	if err != nil || n != 1 {
		t.Fatalf("expected one stored position, got %d (%v)", n, err)
	}
	pos, _ := restored.Get("MINT")
	if pos.EntryPrice != 3 || pos.Amount != 5 {
		t.Fatalf("expected reopened position in store, got %+v", pos)
	}
}
