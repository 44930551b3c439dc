package main

import (
	"time"

	"pumpbot/internal/config"
	"pumpbot/internal/lifecycle"
	"pumpbot/internal/risk"
	"pumpbot/internal/safety"
	"pumpbot/internal/strategy"
)

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }

func strategyParams(p config.StrategyParams) strategy.Params {
	return strategy.Params{
		Enabled:               p.IsEnabled(),
		MinBalanceSOL:         p.MinBalanceSOL,
		RSIPeriod:             p.RSIPeriod,
		RSIOversold:           p.RSIOversold,
		RSIOverbought:         p.RSIOverbought,
		MACDFastPeriod:        p.MACDFastPeriod,
		MACDSlowPeriod:        p.MACDSlowPeriod,
		MACDSignalPeriod:      p.MACDSignalPeriod,
		MACDBuyThreshold:      p.MACDBuyThreshold,
		MACDSellThreshold:     p.MACDSellThreshold,
		MAShortPeriod:         p.MAShortPeriod,
		MALongPeriod:          p.MALongPeriod,
		BuyPressureThreshold:  p.BuyPressureThreshold,
		SellPressureThreshold: p.SellPressureThreshold,
		MinBidAskRatio:        p.MinBidAskRatio,
		VolatilityPeriod:      p.VolatilityPeriod,
		VolatilityMultiplier:  p.VolatilityMultiplier,
		StochasticPeriod:      p.StochasticPeriod,
		ProfitTargetPct:       p.ProfitTargetPct,
		StopLossPct:           p.StopLossPct,
	}
}

func lifecycleSettings(cfg *config.Config) lifecycle.Settings {
	return lifecycle.Settings{
		SimulationMode: cfg.Trading.Simulating(),
		SwapLamports:   cfg.Swap.AmountLamports,
		Limits: risk.Limits{
			MinBalanceSOL:       cfg.Strategy.Active().MinBalanceSOL,
			MaxConcurrentTrades: cfg.Trading.MaxConcurrentTrades,
		},
		PriceCheckInterval: ms(cfg.Trading.PriceCheckIntervalMs),
		SweepInterval:      ms(cfg.Trading.SweepIntervalMs),
		TxInitialDelay:     ms(cfg.Tx.InitialDelayMs),
		TxRetryDelay:       ms(cfg.Tx.RetryDelayMs),
		TxMaxRetries:       cfg.Tx.MaxRetries,
		TxFetchTimeout:     ms(cfg.Tx.FetchTimeoutMs),
		WarmupDelay:        ms(cfg.Warmup.DelayMs),
		WarmupSpacing:      ms(cfg.Warmup.SpacingMs),
		WarmupSamples:      cfg.Warmup.Samples,
		MinWarmupSamples:   cfg.Warmup.MinSamples,
		SampleWindow:       cfg.Trading.SampleWindow,
	}
}

func safetyRules(s config.Safety) safety.Rules {
	return safety.Rules{
		AllowMintAuthority:      s.AllowMintAuthority,
		AllowFreezeAuthority:    s.AllowFreezeAuthority,
		AllowRugged:             s.AllowRugged,
		AllowMutable:            s.AllowMutable,
		AllowInsiderTopHolders:  s.AllowInsiderTopHolders,
		ExcludeLPFromTopHolders: s.ExcludeLPFromTopHolders,
		MaxTopHolderPct:         s.MaxTopHolderPct,
		MinTotalMarkets:         s.MinTotalMarkets,
		MinTotalLPProviders:     s.MinTotalLPProviders,
		MinMarketLiquidity:      s.MinMarketLiquidity,
		MaxScore:                s.MaxScore,
		BlockNames:              s.BlockNames,
		BlockSymbols:            s.BlockSymbols,
		LegacyNotAllowed:        s.LegacyNotAllowed,
	}
}
