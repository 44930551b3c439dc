// Package strategy turns indicator readings into entry and exit decisions.
package strategy

import "pumpbot/internal/signal"

// Strategy is the capability set the lifecycle orchestrator drives.
type Strategy interface {
	Name() string
	Enabled() bool
	// Analyze returns a buy signal when samples justify opening a position, nil otherwise.
	Analyze(mint string, samples []signal.PriceSample, balanceSOL float64) *signal.TradeSignal
	// Review returns a sell signal when an open position entered at entryPrice should be closed.
	Review(mint string, entryPrice float64, samples []signal.PriceSample, balanceSOL float64) *signal.TradeSignal
}

// Params expresses tunable knobs required by strategy constructors.
type Params struct {
	Enabled       bool
	MinBalanceSOL float64

	RSIPeriod     int
	RSIOversold   float64
	RSIOverbought float64

	MACDFastPeriod    int
	MACDSlowPeriod    int
	MACDSignalPeriod  int
	MACDBuyThreshold  float64
	MACDSellThreshold float64

	MAShortPeriod int
	MALongPeriod  int

	BuyPressureThreshold  float64
	SellPressureThreshold float64
	MinBidAskRatio        float64

	VolatilityPeriod     int
	VolatilityMultiplier float64
	StochasticPeriod     int

	// ProfitTargetPct and StopLossPct close positions on price change alone; zero disables them.
	ProfitTargetPct float64
	StopLossPct     float64
}

// DefaultParams mirrors the thresholds the bot has always shipped with.
func DefaultParams() Params {
	return Params{
		Enabled:               true,
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
