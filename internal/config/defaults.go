package config

// PumpFunProgramID is the pump.fun bonding-curve program on mainnet.
const PumpFunProgramID = "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"

// DefaultStrategyParams are the thresholds the bot has always shipped with.
func DefaultStrategyParams() StrategyParams {
	return StrategyParams{
		MinBalanceSOL:         0.1,
		RSIPeriod:             14,
		RSIOversold:           30,
		RSIOverbought:         70,
		MACDFastPeriod:        12,
		MACDSlowPeriod:        26,
		MACDSignalPeriod:      9,
		MACDBuyThreshold:      0.02,
		MACDSellThreshold:     -0.02,
		MAShortPeriod:         10,
		MALongPeriod:          21,
		BuyPressureThreshold:  0.6,
		SellPressureThreshold: 0.4,
		MinBidAskRatio:        1.2,
		VolatilityPeriod:      14,
		VolatilityMultiplier:  2,
		StochasticPeriod:      14,
	}
}

// ApplyDefaults fills zero-valued knobs with shipped defaults.
func (c *Config) ApplyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "pumpbot"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Dex.Chain == "" {
		c.Dex.Chain = "solana"
	}
	if c.Dex.Commitment == "" {
		c.Dex.Commitment = "confirmed"
	}
	if c.Dex.JupiterBase == "" {
		c.Dex.JupiterBase = "https://quote-api.jup.ag"
	}
	if c.Dex.JupiterPriceURL == "" {
		c.Dex.JupiterPriceURL = "https://api.jup.ag/price/v2"
	}
	if c.Dex.PumpFunProgram == "" {
		c.Dex.PumpFunProgram = PumpFunProgramID
	}

	if c.Strategy.Mode == "" {
		c.Strategy.Mode = "pumpfun"
	}
	fillParams(&c.Strategy.Params)
	fillParams(&c.Strategy.HFT)
	// The HFT block keeps a zero ratio, which disables the depth gate.
	if c.Strategy.Params.MinBidAskRatio == 0 {
		c.Strategy.Params.MinBidAskRatio = DefaultStrategyParams().MinBidAskRatio
	}

	def := func(v *int, d int) {
		if *v <= 0 {
			*v = d
		}
	}
	deff := func(v *float64, d float64) {
		if *v <= 0 {
			*v = d
		}
	}
	def(&c.Trading.MaxConcurrentTrades, 3)
	def(&c.Trading.PriceCheckIntervalMs, 5000)
	def(&c.Trading.SweepIntervalMs, c.Trading.PriceCheckIntervalMs)
	def(&c.Trading.PnLThrottleMs, c.Trading.SweepIntervalMs)
	def(&c.Trading.SampleWindow, 64)

	def(&c.Tx.MaxRetries, 10)
	def(&c.Tx.InitialDelayMs, 3000)
	def(&c.Tx.RetryDelayMs, 500)
	def(&c.Tx.FetchTimeoutMs, 15000)

	def(&c.Warmup.DelayMs, 5000)
	def(&c.Warmup.SpacingMs, 2000)
	def(&c.Warmup.Samples, 3)
	def(&c.Warmup.MinSamples, c.Warmup.Samples)

	if c.Swap.AmountLamports == 0 {
		c.Swap.AmountLamports = 10_000_000
	}
	def(&c.Swap.SlippageBps, 200)
	def(&c.Swap.ConfirmTimeoutMs, 30000)

	if c.Prices.Source == "" {
		c.Prices.Source = "dex"
	}
	if c.Prices.DexScreenerBase == "" {
		c.Prices.DexScreenerBase = "https://api.dexscreener.com"
	}
	deff(&c.Prices.RequestsPerSecond, 5)
	def(&c.Prices.TimeoutMs, 10000)

	if c.Safety.BaseURL == "" {
		c.Safety.BaseURL = "https://api.rugcheck.xyz"
	}
	deff(&c.Safety.RequestsPerSecond, 2)
	def(&c.Safety.TimeoutMs, 10000)

	if c.Storage.BoltPath == "" {
		c.Storage.BoltPath = "data/positions.db"
	}
	if c.Storage.JournalPath == "" {
		c.Storage.JournalPath = "data/trades.jsonl"
	}
}

func fillParams(p *StrategyParams) {
	d := DefaultStrategyParams()
	fi := func(v *int, def int) {
		if *v <= 0 {
			*v = def
		}
	}
	ff := func(v *float64, def float64) {
		if *v == 0 {
			*v = def
		}
	}
	ff(&p.MinBalanceSOL, d.MinBalanceSOL)
	fi(&p.RSIPeriod, d.RSIPeriod)
	ff(&p.RSIOversold, d.RSIOversold)
	ff(&p.RSIOverbought, d.RSIOverbought)
	fi(&p.MACDFastPeriod, d.MACDFastPeriod)
	fi(&p.MACDSlowPeriod, d.MACDSlowPeriod)
	fi(&p.MACDSignalPeriod, d.MACDSignalPeriod)
	ff(&p.MACDBuyThreshold, d.MACDBuyThreshold)
	ff(&p.MACDSellThreshold, d.MACDSellThreshold)
	fi(&p.MAShortPeriod, d.MAShortPeriod)
	fi(&p.MALongPeriod, d.MALongPeriod)
	ff(&p.BuyPressureThreshold, d.BuyPressureThreshold)
	ff(&p.SellPressureThreshold, d.SellPressureThreshold)
	fi(&p.VolatilityPeriod, d.VolatilityPeriod)
	ff(&p.VolatilityMultiplier, d.VolatilityMultiplier)
	fi(&p.StochasticPeriod, d.StochasticPeriod)
}
