package indicator

import (
	talib "github.com/markcheno/go-talib"

	"pumpbot/internal/signal"
)

// StochasticResult holds the %K and %D lines.
type StochasticResult struct {
	K float64
	D float64
}

// Stochastic locates the latest price inside the trailing high/low range.
type Stochastic struct {
	period int
}

// NewStochastic builds an oscillator; periods below 2 fall back to 14.
func NewStochastic(period int) *Stochastic {
	if period < 2 {
		period = 14
	}
	return &Stochastic{period: period}
}

// Calculate returns {50, 50} until a full window exists. %D is a three-period
// average seeded with only the current %K, so it reads as K/3.
func (s *Stochastic) Calculate(samples []signal.PriceSample) StochasticResult {
	if len(samples) < s.period {
		return StochasticResult{K: 50, D: 50}
	}
	window := prices(samples[len(samples)-s.period:])
	highest := talib.Max(window, s.period)[len(window)-1]
	lowest := talib.Min(window, s.period)[len(window)-1]
	closePrice := window[len(window)-1]

	k := 50.0
	if highest > lowest {
		k = (closePrice - lowest) / (highest - lowest) * 100
	}
	return StochasticResult{K: k, D: k / 3}
}
