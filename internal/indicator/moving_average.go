package indicator

import (
	"time"

	talib "github.com/markcheno/go-talib"

	"pumpbot/internal/signal"
)

// MAPoint is one value of a moving-average line.
type MAPoint struct {
	Value float64
	Ts    time.Time
}

// MovingAverage is a simple moving average of sample prices.
type MovingAverage struct {
	period int
}

// NewMovingAverage builds a moving average; non-positive periods fall back to 14.
func NewMovingAverage(period int) *MovingAverage {
	if period <= 0 {
		period = 14
	}
	return &MovingAverage{period: period}
}

// Period returns the lookback length.
func (m *MovingAverage) Period() int { return m.period }

// Calculate returns one point per index i >= period-1, each the mean of the
// trailing period prices. Fewer samples than the period yields nil.
func (m *MovingAverage) Calculate(samples []signal.PriceSample) []MAPoint {
	if len(samples) < m.period {
		return nil
	}
	sma := talib.Sma(prices(samples), m.period)
	out := make([]MAPoint, 0, len(samples)-m.period+1)
	for i := m.period - 1; i < len(samples); i++ {
		out = append(out, MAPoint{Value: sma[i], Ts: samples[i].Ts})
	}
	return out
}
