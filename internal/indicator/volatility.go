package indicator

import (
	talib "github.com/markcheno/go-talib"

	"pumpbot/internal/signal"
)

// VolatilityResult is the dispersion of percentage returns.
type VolatilityResult struct {
	Value  float64
	IsHigh bool
}

// Volatility measures the population standard deviation of percentage returns.
type Volatility struct {
	period     int
	multiplier float64
}

// NewVolatility builds a calculator flagging values above multiplier. Zero values fall back to 14 and 2.
func NewVolatility(period int, multiplier float64) *Volatility {
	if period <= 0 {
		period = 14
	}
	if multiplier <= 0 {
		multiplier = 2
	}
	return &Volatility{period: period, multiplier: multiplier}
}

// Calculate uses at most the trailing period returns.
func (v *Volatility) Calculate(samples []signal.PriceSample) VolatilityResult {
	if len(samples) < 2 {
		return VolatilityResult{}
	}
	returns := make([]float64, 0, len(samples)-1)
	for i := 1; i < len(samples); i++ {
		prev := samples[i-1].Price
		if prev == 0 {
			continue
		}
		returns = append(returns, (samples[i].Price-prev)/prev)
	}
	if len(returns) == 0 {
		return VolatilityResult{}
	}
	if len(returns) > v.period {
		returns = returns[len(returns)-v.period:]
	}
	sd := talib.StdDev(returns, len(returns), 1)
	value := sd[len(sd)-1]
	return VolatilityResult{Value: value, IsHigh: value > v.multiplier}
}
