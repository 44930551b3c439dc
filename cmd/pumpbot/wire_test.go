package main

import (
	"testing"
	"time"

	"pumpbot/internal/config"
)

func TestLifecycleSettingsFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.ApplyDefaults()

	s := lifecycleSettings(cfg)
	if !s.SimulationMode {
		t.Fatalf("expected simulation by default")
	}
	if s.PriceCheckInterval != 5*time.Second || s.TxFetchTimeout != 15*time.Second || s.TxRetryDelay != 500*time.Millisecond {
		t.Fatalf("unexpected timings %+v", s)
	}
	if s.Limits.MaxConcurrentTrades != 3 || s.Limits.MinBalanceSOL != 0.1 {
		t.Fatalf("unexpected limits %+v", s.Limits)
	}
	if s.SwapLamports != 10_000_000 || s.WarmupSamples != 3 || s.MinWarmupSamples != 3 {
		t.Fatalf("unexpected sizing %+v", s)
	}
}

func TestStrategyParamsFromConfig(t *testing.T) {
	disabled := false
	p := strategyParams(config.StrategyParams{Enabled: &disabled, RSIPeriod: 7, MinBidAskRatio: 1.5, StopLossPct: 2})
	if p.Enabled || p.RSIPeriod != 7 || p.MinBidAskRatio != 1.5 || p.StopLossPct != 2 {
		t.Fatalf("unexpected params %+v", p)
	}
	if !strategyParams(config.StrategyParams{}).Enabled {
		t.Fatalf("missing enabled flag should mean enabled")
	}
}

func TestSafetyRulesFromConfig(t *testing.T) {
	r := safetyRules(config.Safety{MaxTopHolderPct: 30, BlockSymbols: []string{"XXX"}, AllowMutable: true})
	if r.MaxTopHolderPct != 30 || len(r.BlockSymbols) != 1 || !r.AllowMutable {
		t.Fatalf("unexpected rules %+v", r)
	}
}

func TestBalanceFloorFollowsActiveStrategy(t *testing.T) {
	cfg := &config.Config{}
	cfg.Strategy.Mode = "hft"
	cfg.Strategy.Params.MinBalanceSOL = 0.1
	cfg.Strategy.HFT.MinBalanceSOL = 0.25
	cfg.ApplyDefaults()

	s := lifecycleSettings(cfg)
	p := strategyParams(cfg.Strategy.Active())
	if s.Limits.MinBalanceSOL != 0.25 || p.MinBalanceSOL != s.Limits.MinBalanceSOL {
		t.Fatalf("emergency floor %v must match strategy floor %v", s.Limits.MinBalanceSOL, p.MinBalanceSOL)
	}
	// Under the strategy floor the sweep must treat the wallet as insufficient.
	if s.Limits.SufficientBalance(0.2) {
		t.Fatalf("expected 0.2 SOL to be under the floor")
	}
}
