// Package lifecycle drives each new token from detection through entry,
// monitoring and exit.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"pumpbot/internal/execution"
	"pumpbot/internal/metrics"
	"pumpbot/internal/position"
	"pumpbot/internal/signal"
	"pumpbot/internal/strategy"
)

// ErrInsufficientBalance is returned by CheckBalance when the wallet is below the floor.
var ErrInsufficientBalance = errors.New("wallet balance below minimum")

const reasonEmergency = "emergency"

// Deps are the collaborators an Orchestrator drives.
type Deps struct {
	Feed     ListingFeed
	Tx       TxFetcher // optional; listings are not verified when nil
	Safety   SafetyChecker
	Prices   PriceSource
	Balance  BalanceSource
	Swaps    execution.Swapper
	Strategy strategy.Strategy
	Ledger   *position.Ledger
}

func (d Deps) validate() error {
	switch {
	case d.Feed == nil:
		return errors.New("lifecycle: listing feed required")
	case d.Safety == nil:
		return errors.New("lifecycle: safety checker required")
	case d.Prices == nil:
		return errors.New("lifecycle: price source required")
	case d.Balance == nil:
		return errors.New("lifecycle: balance source required")
	case d.Swaps == nil:
		return errors.New("lifecycle: swapper required")
	case d.Strategy == nil:
		return errors.New("lifecycle: strategy required")
	case d.Ledger == nil:
		return errors.New("lifecycle: ledger required")
	}
	return nil
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the orchestrator logger.
func WithLogger(log zerolog.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// WithObserver registers fn for every transition.
func WithObserver(fn Observer) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.observers = append(o.observers, fn)
		}
	}
}

// WithClock overrides time.Now for transition timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// Orchestrator runs one goroutine per tracked token. Position state lives in
// the ledger; the orchestrator only keeps which tokens are in flight.
type Orchestrator struct {
	deps      Deps
	cfg       Settings
	log       zerolog.Logger
	observers []Observer
	now       func() time.Time

	mu      sync.Mutex
	tokens  map[string]State
	balance float64

	emergency atomic.Bool
	wg        sync.WaitGroup
}

// New builds an orchestrator. Transition metrics are always recorded.
func New(deps Deps, cfg Settings, opts ...Option) (*Orchestrator, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	cfg.normalize()
	o := &Orchestrator{
		deps:      deps,
		cfg:       cfg,
		log:       zerolog.Nop(),
		observers: []Observer{MetricsObserver},
		now:       time.Now,
		tokens:    make(map[string]State),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Run subscribes to the listing feed and runs the balance sweep until ctx is
// cancelled, then waits for every token goroutine to stop.
func (o *Orchestrator) Run(ctx context.Context) error {
	id, err := o.deps.Feed.Subscribe(ctx, func(l signal.Listing) { o.HandleListing(ctx, l) })
	if err != nil {
		return fmt.Errorf("subscribe listings: %w", err)
	}
	o.log.Info().
		Str("strategy", o.deps.Strategy.Name()).
		Bool("enabled", o.deps.Strategy.Enabled()).
		Bool("simulation", o.cfg.SimulationMode).
		Msg("orchestrator started")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		o.sweep(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		if err := o.deps.Feed.Unsubscribe(id); err != nil {
			o.log.Warn().Err(err).Msg("unsubscribe listings")
		}
		return nil
	})
	err = g.Wait()
	o.wg.Wait()
	o.log.Info().Int("open_positions", o.deps.Ledger.Len()).Msg("orchestrator stopped")
	return err
}

// HandleListing starts tracking l. It returns false when the mint is already
// tracked or held, or once ctx is done.
func (o *Orchestrator) HandleListing(ctx context.Context, l signal.Listing) bool {
	metrics.ListingsTotal.Inc()
	if l.Mint == "" {
		return false
	}
	if ctx.Err() != nil {
		o.log.Debug().Str("mint", l.Mint).Msg("listing ignored: shutting down")
		return false
	}
	if !o.track(l.Mint, Detected) {
		o.log.Debug().Str("mint", l.Mint).Msg("listing ignored: already tracked")
		return false
	}
	o.notify(Transition{Mint: l.Mint, To: Detected, Reason: "listing", At: o.now()})
	o.log.Info().Str("mint", l.Mint).Str("symbol", l.Symbol).Str("sig", l.Signature).Msg("new listing")

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer o.forget(l.Mint)
		o.process(ctx, l)
	}()
	return true
}

// Resume starts monitors for positions already in the ledger, e.g. restored
// after a restart. It returns how many monitors were started.
func (o *Orchestrator) Resume(ctx context.Context) int {
	started := 0
	for _, pos := range o.deps.Ledger.Positions() {
		if !o.track(pos.Mint, Holding) {
			continue
		}
		o.notify(Transition{Mint: pos.Mint, To: Holding, Reason: "resumed", At: o.now()})
		started++
		o.wg.Add(1)
		go func(mint string) {
			defer o.wg.Done()
			defer o.forget(mint)
			o.monitor(ctx, mint, nil)
		}(pos.Mint)
	}
	metrics.OpenPositions.Set(float64(o.deps.Ledger.Len()))
	return started
}

// State returns the current state of a tracked mint.
func (o *Orchestrator) State(mint string) (State, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	st, ok := o.tokens[mint]
	return st, ok
}

// Tracked returns how many tokens are in flight.
func (o *Orchestrator) Tracked() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.tokens)
}

// LastBalance returns the most recent wallet balance observed.
func (o *Orchestrator) LastBalance() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.balance
}

func (o *Orchestrator) process(ctx context.Context, l signal.Listing) {
	mint := l.Mint

	if o.deps.Tx != nil && l.Signature != "" {
		detail, err := o.fetchTx(ctx, l.Signature)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			o.log.Warn().Err(err).Str("mint", mint).Str("sig", l.Signature).Msg("listing tx unavailable")
			o.transition(mint, Rejected, ReasonTxFetch)
			return
		}
		if detail.Failed {
			o.transition(mint, Rejected, ReasonTxFailed)
			return
		}
	}

	o.transition(mint, SafetyChecking, "")
	balance, err := o.CheckBalance(ctx)
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			o.transition(mint, Rejected, ReasonBalance)
		} else {
			o.transition(mint, Rejected, ReasonBalanceUnavailable)
		}
		return
	}
	safe, err := o.deps.Safety.Check(ctx, mint)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		o.log.Warn().Err(err).Str("mint", mint).Msg("safety check failed")
	}
	if err != nil || !safe {
		o.transition(mint, Rejected, ReasonSafety)
		return
	}

	o.transition(mint, Sampling, "")
	history, err := o.warmup(ctx, mint)
	if err != nil {
		return
	}
	if len(history) < o.cfg.MinWarmupSamples {
		o.log.Info().Str("mint", mint).Int("samples", len(history)).Msg("not enough samples")
		o.transition(mint, Rejected, ReasonSamples)
		return
	}

	o.transition(mint, Evaluating, "")
	sig := o.deps.Strategy.Analyze(mint, history, balance)
	if sig == nil {
		o.transition(mint, Rejected, ReasonNoEntry)
		return
	}
	metrics.SignalsTotal.WithLabelValues(string(sig.Type)).Inc()
	if o.cfg.SimulationMode {
		o.log.Info().Str("mint", mint).Float64("price", sig.Price).Str("reason", sig.Reason).Msg("SIMULATION buy signal")
		o.transition(mint, Rejected, ReasonSimulation)
		return
	}
	if !o.enter(ctx, mint, history) {
		return
	}

	o.transition(mint, Holding, sig.Reason)
	o.monitor(ctx, mint, history)
}

// enter buys mint and opens the position. Rejections are reported here.
func (o *Orchestrator) enter(ctx context.Context, mint string, history []signal.PriceSample) bool {
	ledger := o.deps.Ledger
	if err := ledger.Reserve(mint, o.cfg.Limits); err != nil {
		reason := ReasonCap
		if errors.Is(err, position.ErrAlreadyOpen) {
			reason = ReasonAlreadyOpen
		}
		o.log.Info().Err(err).Str("mint", mint).Msg("entry skipped")
		o.transition(mint, Rejected, reason)
		return false
	}
	res, err := o.deps.Swaps.Buy(ctx, mint, o.cfg.SwapLamports)
	if err != nil {
		ledger.Release(mint)
		o.transition(mint, Rejected, ReasonBuyFailed)
		return false
	}
	entry := o.quote(ctx, mint)
	if entry <= 0 {
		if last, ok := signal.Last(history); ok {
			entry = last.Price
		}
	}
	if _, err := ledger.Open(mint, entry, res.Amount); err != nil {
		ledger.Release(mint)
		o.log.Error().Err(err).Str("mint", mint).Str("sig", res.Signature).Msg("bought but position not recorded")
		o.transition(mint, Rejected, ReasonEntryPrice)
		return false
	}
	metrics.OpenPositions.Set(float64(ledger.Len()))
	return true
}

// monitor re-evaluates an open position on every tick until it is closed or
// ctx ends. Tick failures are logged and the loop carries on.
func (o *Orchestrator) monitor(ctx context.Context, mint string, history []signal.PriceSample) {
	ticker := time.NewTicker(o.cfg.PriceCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		pos, ok := o.deps.Ledger.Get(mint)
		if !ok {
			o.transition(mint, Closed, "position closed")
			return
		}
		samples, err := o.deps.Prices.Samples(ctx, mint)
		if err != nil {
			o.log.Warn().Err(err).Str("mint", mint).Msg("monitor tick failed")
			continue
		}
		if len(samples) == 0 {
			continue
		}
		history = appendBounded(history, samples, o.cfg.SampleWindow)

		sig := o.deps.Strategy.Review(mint, pos.EntryPrice, history, o.LastBalance())
		if sig == nil {
			continue
		}
		metrics.SignalsTotal.WithLabelValues(string(sig.Type)).Inc()
		o.transition(mint, Exiting, sig.Reason)
		if o.sell(ctx, mint, sig.Reason) {
			o.transition(mint, Closed, sig.Reason)
			return
		}
		o.transition(mint, Holding, "sell failed")
	}
}

// sell disposes of the whole position for mint and closes it in the ledger.
func (o *Orchestrator) sell(ctx context.Context, mint, reason string) bool {
	ledger := o.deps.Ledger
	if !ledger.BeginExit(mint) {
		return false
	}
	pos, ok := ledger.Get(mint)
	if !ok {
		ledger.EndExit(mint)
		return false
	}
	res, err := o.deps.Swaps.Sell(ctx, mint, pos.Amount)
	if err != nil || !res.OK {
		ledger.EndExit(mint)
		o.log.Warn().Err(err).Str("mint", mint).Str("msg", res.Message).Str("reason", reason).Msg("sell did not complete")
		return false
	}
	exit := o.quote(ctx, mint)
	if exit <= 0 {
		exit = pos.EntryPrice
	}
	trade, closed := ledger.Close(mint, exit, reason)
	if !closed {
		return false
	}
	metrics.OpenPositions.Set(float64(ledger.Len()))
	metrics.RealizedPnL.Add(trade.PnL)
	metrics.UnrealizedPnL.DeleteLabelValues(mint)
	return true
}

// EmergencyExit tries to sell every open position. Positions whose sale fails
// stay open for the next attempt. Concurrent calls collapse into one.
func (o *Orchestrator) EmergencyExit(ctx context.Context) (sold, failed int) {
	if !o.emergency.CompareAndSwap(false, true) {
		return 0, 0
	}
	defer o.emergency.Store(false)

	for _, pos := range o.deps.Ledger.Positions() {
		if o.sell(ctx, pos.Mint, reasonEmergency) {
			sold++
		} else {
			failed++
		}
	}
	o.log.Warn().Int("sold", sold).Int("failed", failed).Msg("EMERGENCY exit")
	return sold, failed
}

// CheckBalance refreshes the wallet balance. A balance under the floor
// triggers EmergencyExit and returns ErrInsufficientBalance.
func (o *Orchestrator) CheckBalance(ctx context.Context) (float64, error) {
	bal, err := o.deps.Balance.Balance(ctx)
	if err != nil {
		o.log.Warn().Err(err).Msg("balance unavailable")
		return 0, fmt.Errorf("balance: %w", err)
	}
	o.mu.Lock()
	o.balance = bal
	o.mu.Unlock()
	metrics.WalletBalance.Set(bal)

	if !o.cfg.Limits.SufficientBalance(bal) {
		o.log.Warn().Float64("balance", bal).Float64("min", o.cfg.Limits.MinBalanceSOL).Msg("balance below minimum")
		o.EmergencyExit(ctx)
		return bal, ErrInsufficientBalance
	}
	return bal, nil
}

// sweep marks open positions and checks solvency on a fixed cadence.
func (o *Orchestrator) sweep(ctx context.Context) {
	ticker := time.NewTicker(o.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		for _, u := range o.deps.Ledger.SnapshotPnL(ctx, o.deps.Prices) {
			metrics.UnrealizedPnL.WithLabelValues(u.Mint).Set(u.Unrealized)
			o.log.Info().
				Str("mint", u.Mint).
				Float64("price", u.CurrentPrice).
				Float64("pnl", u.Unrealized).
				Float64("pnl_pct", u.PercentChange).
				Msg("position mark")
		}
		_, _ = o.CheckBalance(ctx)
	}
}

func (o *Orchestrator) fetchTx(ctx context.Context, sig string) (signal.TxDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.TxFetchTimeout)
	defer cancel()

	if err := sleep(ctx, o.cfg.TxInitialDelay); err != nil {
		return signal.TxDetail{}, err
	}
	var lastErr error
	for attempt := 1; attempt <= o.cfg.TxMaxRetries; attempt++ {
		detail, err := o.deps.Tx.FetchTransaction(ctx, sig)
		if err == nil {
			return detail, nil
		}
		lastErr = err
		o.log.Debug().Err(err).Str("sig", sig).Int("attempt", attempt).Msg("tx fetch retry")
		if attempt == o.cfg.TxMaxRetries {
			break
		}
		if err := sleep(ctx, o.cfg.TxRetryDelay); err != nil {
			return signal.TxDetail{}, fmt.Errorf("tx fetch abandoned after %d attempts: %w", attempt, err)
		}
	}
	return signal.TxDetail{}, fmt.Errorf("tx fetch failed after %d attempts: %w", o.cfg.TxMaxRetries, lastErr)
}

// warmup gathers the initial sample history. It only errors when ctx ends.
func (o *Orchestrator) warmup(ctx context.Context, mint string) ([]signal.PriceSample, error) {
	if err := sleep(ctx, o.cfg.WarmupDelay); err != nil {
		return nil, err
	}
	var history []signal.PriceSample
	for i := 0; i < o.cfg.WarmupSamples; i++ {
		if i > 0 {
			if err := sleep(ctx, o.cfg.WarmupSpacing); err != nil {
				return nil, err
			}
		}
		samples, err := o.deps.Prices.Samples(ctx, mint)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			o.log.Debug().Err(err).Str("mint", mint).Msg("warm-up sample failed")
			continue
		}
		history = appendBounded(history, samples, o.cfg.SampleWindow)
	}
	return history, nil
}

func (o *Orchestrator) quote(ctx context.Context, mint string) float64 {
	price, err := o.deps.Prices.CurrentPrice(ctx, mint)
	if err != nil {
		o.log.Debug().Err(err).Str("mint", mint).Msg("quote unavailable")
		return 0
	}
	return price
}

func (o *Orchestrator) track(mint string, st State) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, busy := o.tokens[mint]; busy {
		return false
	}
	if st == Detected && o.deps.Ledger.Has(mint) {
		return false
	}
	o.tokens[mint] = st
	return true
}

func (o *Orchestrator) forget(mint string) {
	o.mu.Lock()
	delete(o.tokens, mint)
	o.mu.Unlock()
}

func (o *Orchestrator) transition(mint string, to State, reason string) {
	o.mu.Lock()
	from := o.tokens[mint]
	if to.Terminal() {
		delete(o.tokens, mint)
	} else {
		o.tokens[mint] = to
	}
	o.mu.Unlock()

	t := Transition{Mint: mint, From: from, To: to, Reason: reason, At: o.now()}
	ev := o.log.Debug()
	if to.Terminal() {
		ev = o.log.Info()
	}
	ev.Str("mint", mint).Str("from", string(from)).Str("state", string(to)).Str("reason", reason).Msg("transition")
	o.notify(t)
}

func (o *Orchestrator) notify(t Transition) {
	for _, fn := range o.observers {
		fn(t)
	}
}

func appendBounded(history, samples []signal.PriceSample, window int) []signal.PriceSample {
	history = append(history, samples...)
	if over := len(history) - window; over > 0 {
		history = append(history[:0:0], history[over:]...)
	}
	return history
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
