package strategy

import (
	"fmt"
	"strings"

	"pumpbot/internal/indicator"
	"pumpbot/internal/signal"
)

// Snapshot gathers every indicator reading for one sample window.
type Snapshot struct {
	RSI        indicator.RSIResult
	MACD       indicator.MACDResult
	Volume     indicator.VolumeProfileResult
	Depth      indicator.MarketDepthResult
	MAShort    float64
	MALong     float64
	Volatility indicator.VolatilityResult
	Stochastic indicator.StochasticResult
}

// String renders the fields the decision depends on.
func (s Snapshot) String() string {
	return fmt.Sprintf("rsi=%.2f macd_hist=%.6f buy_pressure=%.2f sell_pressure=%.2f depth=%.2f vol_ratio=%.2f",
		s.RSI.Value, s.MACD.Histogram, s.Volume.BuyPressure, s.Volume.SellPressure, s.Depth.Ratio, s.Volume.VolumeRatio)
}

// Policy applies threshold rules to indicator readings. Entry requires every
// condition; exit requires any one of them.
type Policy struct {
	params  Params
	rsi     *indicator.RSI
	macd    *indicator.MACD
	volume  *indicator.VolumeProfile
	depth   *indicator.MarketDepth
	maShort *indicator.MovingAverage
	maLong  *indicator.MovingAverage
	vol     *indicator.Volatility
	stoch   *indicator.Stochastic
}

// NewPolicy wires indicator calculators for the supplied thresholds.
func NewPolicy(params Params) *Policy {
	return &Policy{
		params:  params,
		rsi:     indicator.NewRSI(params.RSIPeriod, params.RSIOverbought, params.RSIOversold),
		macd:    indicator.NewMACD(params.MACDFastPeriod, params.MACDSlowPeriod, params.MACDSignalPeriod),
		volume:  indicator.NewVolumeProfile(),
		depth:   indicator.NewMarketDepth(),
		maShort: indicator.NewMovingAverage(params.MAShortPeriod),
		maLong:  indicator.NewMovingAverage(params.MALongPeriod),
		vol:     indicator.NewVolatility(params.VolatilityPeriod, params.VolatilityMultiplier),
		stoch:   indicator.NewStochastic(params.StochasticPeriod),
	}
}

// Params returns the thresholds the policy was built with.
func (p *Policy) Params() Params { return p.params }

// Evaluate runs every calculator over samples.
func (p *Policy) Evaluate(samples []signal.PriceSample) Snapshot {
	snap := Snapshot{
		RSI:        p.rsi.Calculate(samples),
		MACD:       p.macd.Calculate(samples),
		Volume:     p.volume.Calculate(samples),
		Depth:      p.depth.Calculate(samples),
		Volatility: p.vol.Calculate(samples),
		Stochastic: p.stoch.Calculate(samples),
	}
	if line := p.maShort.Calculate(samples); len(line) > 0 {
		snap.MAShort = line[len(line)-1].Value
	}
	if line := p.maLong.Calculate(samples); len(line) > 0 {
		snap.MALong = line[len(line)-1].Value
	}
	return snap
}

// Open reports whether the policy may act at all: it must be enabled and the
// wallet must hold the minimum balance.
func (p *Policy) Open(balanceSOL float64) bool {
	return p.params.Enabled && balanceSOL >= p.params.MinBalanceSOL
}

// EntryConditions returns the names of the entry conditions snap fails. An
// indicator without enough data fails its condition.
func (p *Policy) EntryConditions(snap Snapshot) (failed []string) {
	if !snap.RSI.Ready || !(snap.RSI.Value < p.params.RSIOversold) {
		failed = append(failed, "rsi")
	}
	if !snap.MACD.Ready || !(snap.MACD.Histogram > p.params.MACDBuyThreshold) {
		failed = append(failed, "macd")
	}
	if !(snap.Volume.BuyPressure > p.params.BuyPressureThreshold) {
		failed = append(failed, "buy_pressure")
	}
	if p.params.MinBidAskRatio > 0 && !(snap.Depth.Ratio > p.params.MinBidAskRatio) {
		failed = append(failed, "depth")
	}
	return failed
}

// ExitConditions returns the names of the exit conditions snap triggers. An
// indicator without enough data never fires.
func (p *Policy) ExitConditions(snap Snapshot) (fired []string) {
	if snap.RSI.Ready && snap.RSI.Value > p.params.RSIOverbought {
		fired = append(fired, "rsi")
	}
	if snap.MACD.Ready && snap.MACD.Histogram < p.params.MACDSellThreshold {
		fired = append(fired, "macd")
	}
	if snap.Volume.SellPressure > p.params.SellPressureThreshold {
		fired = append(fired, "sell_pressure")
	}
	return fired
}

// ShouldEnter is true only when the policy is open and every entry condition holds.
func (p *Policy) ShouldEnter(samples []signal.PriceSample, balanceSOL float64) bool {
	if !p.Open(balanceSOL) || len(samples) == 0 {
		return false
	}
	return len(p.EntryConditions(p.Evaluate(samples))) == 0
}

// ShouldExit is true when the policy is open and any exit condition holds.
func (p *Policy) ShouldExit(samples []signal.PriceSample, balanceSOL float64) bool {
	if !p.Open(balanceSOL) || len(samples) == 0 {
		return false
	}
	return len(p.ExitConditions(p.Evaluate(samples))) > 0
}

func joinReasons(prefix string, names []string) string {
	return prefix + ":" + strings.Join(names, ",")
}
