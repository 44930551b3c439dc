// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings such as name, environment, metrics, and logging.
type App struct {
	Name        string
	Env         string
	MetricsAddr string
	LogLevel    string
	LogFile     string `yaml:"log_file"`
}

// StrategyParams groups the tunable knobs of one strategy block.
type StrategyParams struct {
	Enabled               *bool   `yaml:"enabled"`
	MinBalanceSOL         float64 `yaml:"min_balance_sol"`
	RSIPeriod             int     `yaml:"rsi_period"`
	RSIOversold           float64 `yaml:"rsi_oversold"`
	RSIOverbought         float64 `yaml:"rsi_overbought"`
	MACDFastPeriod        int     `yaml:"macd_fast_period"`
	MACDSlowPeriod        int     `yaml:"macd_slow_period"`
	MACDSignalPeriod      int     `yaml:"macd_signal_period"`
	MACDBuyThreshold      float64 `yaml:"macd_buy_threshold"`
	MACDSellThreshold     float64 `yaml:"macd_sell_threshold"`
	MAShortPeriod         int     `yaml:"ma_short_period"`
	MALongPeriod          int     `yaml:"ma_long_period"`
	BuyPressureThreshold  float64 `yaml:"buy_pressure_threshold"`
	SellPressureThreshold float64 `yaml:"sell_pressure_threshold"`
	MinBidAskRatio        float64 `yaml:"min_bid_ask_ratio"`
	VolatilityPeriod      int     `yaml:"volatility_period"`
	VolatilityMultiplier  float64 `yaml:"volatility_multiplier"`
	StochasticPeriod      int     `yaml:"stochastic_period"`
	ProfitTargetPct       float64 `yaml:"profit_target_pct"`
	StopLossPct           float64 `yaml:"stop_loss_pct"`
}

// IsEnabled treats a missing enabled flag as true.
func (p StrategyParams) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// Strategy specifies which strategy is active along with its parameter bundles.
type Strategy struct {
	Mode   string
	Params StrategyParams `yaml:"params"`
	HFT    StrategyParams `yaml:"hft"`
}

// Active returns the parameter block for the selected mode.
func (s Strategy) Active() StrategyParams {
	switch s.Mode {
	case "hft", "high_frequency":
		return s.HFT
	}
	return s.Params
}

// Trading holds position sizing, cadence and the simulation switch. The
// balance floor lives in the strategy block so signals and emergency exits
// share it.
type Trading struct {
	SimulationMode       *bool `yaml:"simulation_mode"`
	MaxConcurrentTrades  int   `yaml:"max_concurrent_trades"`
	PriceCheckIntervalMs int   `yaml:"price_check_interval_ms"`
	SweepIntervalMs      int   `yaml:"sweep_interval_ms"`
	PnLThrottleMs        int   `yaml:"pnl_throttle_ms"`
	SampleWindow         int   `yaml:"sample_window"`
}

// Simulating reports whether orders are suppressed. Missing means true.
func (t Trading) Simulating() bool {
	return t.SimulationMode == nil || *t.SimulationMode
}

// Tx tunes the fetch of a listing's creation transaction.
type Tx struct {
	MaxRetries     int `yaml:"max_retries"`
	InitialDelayMs int `yaml:"initial_delay_ms"`
	RetryDelayMs   int `yaml:"retry_delay_ms"`
	FetchTimeoutMs int `yaml:"fetch_timeout_ms"`
}

// Warmup controls the initial price sampling before a token is evaluated.
type Warmup struct {
	DelayMs    int `yaml:"delay_ms"`
	SpacingMs  int `yaml:"spacing_ms"`
	Samples    int `yaml:"samples"`
	MinSamples int `yaml:"min_samples"`
}

// Swap configures order sizing and Jupiter submission.
type Swap struct {
	AmountLamports      uint64 `yaml:"amount_lamports"`
	SlippageBps         int    `yaml:"slippage_bps"`
	PriorityFeeLamports uint64 `yaml:"priority_fee_lamports"`
	ConfirmTimeoutMs    int    `yaml:"confirm_timeout_ms"`
}

// Prices selects where quotes come from. Source is "dex" (DexScreener with
// Jupiter fallback) or "jup" (Jupiter only).
type Prices struct {
	Source            string  `yaml:"source"`
	DexScreenerBase   string  `yaml:"dexscreener_base"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	TimeoutMs         int     `yaml:"timeout_ms"`
}

// Safety configures the RugCheck gate.
type Safety struct {
	BaseURL                 string   `yaml:"base_url"`
	RequestsPerSecond       float64  `yaml:"requests_per_second"`
	TimeoutMs               int      `yaml:"timeout_ms"`
	AllowMintAuthority      bool     `yaml:"allow_mint_authority"`
	AllowFreezeAuthority    bool     `yaml:"allow_freeze_authority"`
	AllowRugged             bool     `yaml:"allow_rugged"`
	AllowMutable            bool     `yaml:"allow_mutable"`
	AllowInsiderTopHolders  bool     `yaml:"allow_insider_topholders"`
	ExcludeLPFromTopHolders bool     `yaml:"exclude_lp_from_topholders"`
	MaxTopHolderPct         float64  `yaml:"max_topholder_pct"`
	MinTotalMarkets         int      `yaml:"min_total_markets"`
	MinTotalLPProviders     int      `yaml:"min_total_lp_providers"`
	MinMarketLiquidity      float64  `yaml:"min_market_liquidity"`
	MaxScore                int      `yaml:"max_score"`
	BlockNames              []string `yaml:"block_names"`
	BlockSymbols            []string `yaml:"block_symbols"`
	LegacyNotAllowed        []string `yaml:"legacy_not_allowed"`
}

// Storage points at local and remote persistence.
type Storage struct {
	BoltPath    string `yaml:"bolt_path"`
	JournalPath string `yaml:"journal_path"`
	PostgresDSN string `yaml:"postgres_dsn"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App      App      `yaml:"app"`
	Dex      Dex      `yaml:"dex"`
	Wallet   Wallet   `yaml:"wallet"`
	Strategy Strategy `yaml:"strategy"`
	Trading  Trading  `yaml:"trading"`
	Tx       Tx       `yaml:"tx"`
	Warmup   Warmup   `yaml:"warmup"`
	Swap     Swap     `yaml:"swap"`
	Prices   Prices   `yaml:"prices"`
	Safety   Safety   `yaml:"safety"`
	Storage  Storage  `yaml:"storage"`
}

// Load reads a YAML file from disk and hydrates a Config struct. Defaults are
// applied to every field left empty.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	config.ApplyDefaults()
	return &config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ApplyEnv overrides endpoints and secrets from the environment.
func (c *Config) ApplyEnv() {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Dex.RpcURL, "SOLANA_RPC_URL")
	set(&c.Dex.WsURL, "SOLANA_WS_URL")
	set(&c.Dex.JupiterBase, "JUPITER_BASE_URL")
	set(&c.Dex.JupiterPriceURL, "JUPITER_PRICE_URL")
	set(&c.Wallet.PrivateKeyBase58, "SOLANA_PRIVATE_KEY_BASE58")
	set(&c.Storage.PostgresDSN, "PUMPBOT_POSTGRES_DSN")
}

// Validate reports configuration that would keep the bot from starting.
func (c *Config) Validate() error {
	var errs []error
	if c.Dex.RpcURL == "" {
		errs = append(errs, errors.New("dex.rpc_url is required"))
	}
	if c.Dex.WsURL == "" {
		errs = append(errs, errors.New("dex.ws_url is required"))
	}
	if c.Dex.PumpFunProgram == "" {
		errs = append(errs, errors.New("dex.pumpfun_program is required"))
	}
	if c.Dex.JupiterBase == "" || c.Dex.JupiterPriceURL == "" {
		errs = append(errs, errors.New("dex.jupiter_base and dex.jupiter_price_url are required"))
	}
	switch c.Prices.Source {
	case "dex", "jup":
	default:
		errs = append(errs, fmt.Errorf("prices.source %q must be dex or jup", c.Prices.Source))
	}
	p := c.Strategy.Active()
	if p.RSIPeriod <= 0 || p.MACDFastPeriod <= 0 || p.MACDSignalPeriod <= 0 {
		errs = append(errs, errors.New("strategy periods must be positive"))
	}
	if p.MACDSlowPeriod <= p.MACDFastPeriod {
		errs = append(errs, fmt.Errorf("macd_slow_period %d must exceed macd_fast_period %d", p.MACDSlowPeriod, p.MACDFastPeriod))
	}
	if p.RSIOversold >= p.RSIOverbought {
		errs = append(errs, errors.New("rsi_oversold must be below rsi_overbought"))
	}
	if c.Warmup.MinSamples > c.Warmup.Samples {
		errs = append(errs, fmt.Errorf("warmup.min_samples %d exceeds warmup.samples %d", c.Warmup.MinSamples, c.Warmup.Samples))
	}
	if !c.Trading.Simulating() && c.Swap.AmountLamports == 0 {
		errs = append(errs, errors.New("swap.amount_lamports is required for live trading"))
	}
	return errors.Join(errs...)
}
