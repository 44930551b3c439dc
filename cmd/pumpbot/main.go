// Binary pumpbot watches pump.fun launches and trades them through Jupiter.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"pumpbot/internal/config"
	dex "pumpbot/internal/dex/solana"
	"pumpbot/internal/exchange"
	"pumpbot/internal/execution"
	"pumpbot/internal/lifecycle"
	"pumpbot/internal/metrics"
	"pumpbot/internal/position"
	"pumpbot/internal/safety"
	"pumpbot/internal/storage/postgres"
	"pumpbot/internal/strategy"
	"pumpbot/internal/util"
)

func main() {
	configPath := flag.String("config", "internal/config/config.yaml", "path to the YAML config")
	flag.Parse()

	_ = godotenv.Load() // best-effort
	cfg, err := config.Load(*configPath)
	if err != nil {
		boot := util.NewLogger("info", "")
		boot.Fatal().Err(err).Msg("load config")
	}
	cfg.ApplyEnv()

	log := util.NewLogger(cfg.App.LogLevel, cfg.App.LogFile).With().Str("app", cfg.App.Name).Logger()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("pumpbot stopped")
	}
	log.Info().Msg("shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	owner, err := dex.LoadPrivateKey(cfg.Wallet.PrivateKeyBase58)
	if err != nil {
		return err
	}

	srv := metrics.Serve(cfg.App.MetricsAddr)
	log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

	chain := dex.NewChain(rpc.New(cfg.Dex.RpcURL), owner.PublicKey(), cfg.Dex.Commitment)

	jup := dex.NewJupiterClient(cfg.Dex.RpcURL, cfg.Dex.JupiterBase, owner, cfg.Dex.Commitment)
	jup.SlippageBps = cfg.Swap.SlippageBps
	jup.PriorityFeeLamports = cfg.Swap.PriorityFeeLamports
	jup.ConfirmTimeout = ms(cfg.Swap.ConfirmTimeoutMs)
	jup.Decimals = chain
	jup.Holdings = chain

	prices := buildPrices(cfg, log)

	checker := safety.NewRugCheck(cfg.Safety.BaseURL, safetyRules(cfg.Safety),
		cfg.Safety.RequestsPerSecond, ms(cfg.Safety.TimeoutMs), log)

	feed := dex.NewListingFeed(cfg.Dex.WsURL, cfg.Dex.PumpFunProgram,
		dex.WithFeedLogger(log), dex.WithCommitment(cfg.Dex.Commitment))
	defer feed.Close()

	ledger, closeLedger, err := buildLedger(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeLedger()

	strat := strategy.Build(cfg.Strategy.Mode, strategyParams(cfg.Strategy.Active()))

	orch, err := lifecycle.New(lifecycle.Deps{
		Feed:     feed,
		Tx:       chain,
		Safety:   checker,
		Prices:   prices,
		Balance:  chain,
		Swaps:    execution.NewExecutor(jup, log.With().Str("component", "executor").Logger()),
		Strategy: strat,
		Ledger:   ledger,
	}, lifecycleSettings(cfg), lifecycle.WithLogger(log.With().Str("component", "lifecycle").Logger()))
	if err != nil {
		return err
	}

	restored, err := ledger.Restore()
	if err != nil {
		log.Warn().Err(err).Msg("restore positions")
	}
	if restored > 0 {
		log.Info().Int("positions", orch.Resume(ctx)).Msg("resumed monitoring")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return orch.Run(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info().Float64("realized_pnl", ledger.RealizedPnL()).Int("open_positions", ledger.Len()).Msg("session summary")
	return nil
}

func buildPrices(cfg *config.Config, log zerolog.Logger) lifecycle.PriceSource {
	jupPrices := dex.NewPriceClient(cfg.Dex.JupiterPriceURL, cfg.Prices.RequestsPerSecond, ms(cfg.Prices.TimeoutMs))
	if cfg.Prices.Source == "jup" {
		return jupPrices
	}
	screener := exchange.NewDexScreener(
		exchange.WithBaseURL(cfg.Prices.DexScreenerBase),
		exchange.WithRateLimit(cfg.Prices.RequestsPerSecond),
		exchange.WithLogger(log),
	)
	return exchange.Fallback{Primary: screener, Secondary: jupPrices, Log: log.With().Str("component", "prices").Logger()}
}

// buildLedger wires persistence: bbolt for open positions, and JSONL plus an
// optional Postgres table for closed trades.
func buildLedger(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*position.Ledger, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	opts := []position.Option{
		position.WithLogger(log.With().Str("component", "ledger").Logger()),
		position.WithThrottle(ms(cfg.Trading.PnLThrottleMs)),
		position.WithRecorder(position.NewJournal(256)),
	}

	if cfg.Storage.BoltPath != "" {
		store, err := position.OpenBoltStore(cfg.Storage.BoltPath)
		if err != nil {
			return nil, closeAll, err
		}
		closers = append(closers, func() { _ = store.Close() })
		opts = append(opts, position.WithStore(store))
	}
	if cfg.Storage.JournalPath != "" {
		prior, skipped, err := position.ReadTrades(cfg.Storage.JournalPath)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		log.Info().Int("trades", len(prior)).Int("unreadable", skipped).Str("path", cfg.Storage.JournalPath).Msg("trade journal opened")
		rec, err := position.NewJSONLRecorder(cfg.Storage.JournalPath, log)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		closers = append(closers, func() { _ = rec.Close() })
		opts = append(opts, position.WithRecorder(rec))
	}
	if cfg.Storage.PostgresDSN != "" {
		pool, err := postgres.NewPool(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		closers = append(closers, pool.Close)
		trades := postgres.NewTradeStore(pool, log)
		if err := trades.Migrate(ctx); err != nil {
			closeAll()
			return nil, func() {}, err
		}
		opts = append(opts, position.WithRecorder(trades))
	}
	return position.NewLedger(opts...), closeAll, nil
}
