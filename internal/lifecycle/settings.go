package lifecycle

import (
	"time"

	"pumpbot/internal/risk"
)

// Settings tunes the orchestrator's timing and risk behavior.
type Settings struct {
	SimulationMode bool
	SwapLamports   uint64
	Limits         risk.Limits

	PriceCheckInterval time.Duration
	SweepInterval      time.Duration

	TxInitialDelay time.Duration
	TxRetryDelay   time.Duration
	TxMaxRetries   int
	TxFetchTimeout time.Duration

	WarmupDelay      time.Duration
	WarmupSpacing    time.Duration
	WarmupSamples    int
	MinWarmupSamples int

	SampleWindow int
}

// DefaultSettings returns the timings the bot ships with.
func DefaultSettings() Settings {
	return Settings{
		SimulationMode:     true,
		SwapLamports:       10_000_000,
		Limits:             risk.Limits{MinBalanceSOL: 0.1, MaxConcurrentTrades: 3},
		PriceCheckInterval: 5 * time.Second,
		SweepInterval:      5 * time.Second,
		TxInitialDelay:     3 * time.Second,
		TxRetryDelay:       500 * time.Millisecond,
		TxMaxRetries:       10,
		TxFetchTimeout:     15 * time.Second,
		WarmupDelay:        5 * time.Second,
		WarmupSpacing:      2 * time.Second,
		WarmupSamples:      3,
		MinWarmupSamples:   3,
		SampleWindow:       64,
	}
}

func (s *Settings) normalize() {
	def := DefaultSettings()
	if s.PriceCheckInterval <= 0 {
		s.PriceCheckInterval = def.PriceCheckInterval
	}
	if s.SweepInterval <= 0 {
		s.SweepInterval = s.PriceCheckInterval
	}
	if s.TxMaxRetries <= 0 {
		s.TxMaxRetries = 1
	}
	if s.TxFetchTimeout <= 0 {
		s.TxFetchTimeout = def.TxFetchTimeout
	}
	if s.WarmupSamples <= 0 {
		s.WarmupSamples = 1
	}
	if s.MinWarmupSamples <= 0 {
		s.MinWarmupSamples = 1
	}
	if s.SampleWindow <= 0 {
		s.SampleWindow = def.SampleWindow
	}
}
