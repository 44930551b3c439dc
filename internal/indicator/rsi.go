package indicator

import "pumpbot/internal/signal"

// RSIResult holds the relative strength index and its threshold flags.
type RSIResult struct {
	Value      float64
	Overbought bool
	Oversold   bool
	// Ready is false when the value is the neutral default rather than a measurement.
	Ready bool
}

// RSI computes a relative strength index from simple (not Wilder-smoothed) averages.
type RSI struct {
	period     int
	overbought float64
	oversold   float64
}

// NewRSI builds an RSI calculator. Zero values fall back to 14/70/30.
func NewRSI(period int, overbought, oversold float64) *RSI {
	if period <= 0 {
		period = 14
	}
	if overbought <= 0 {
		overbought = 70
	}
	if oversold <= 0 {
		oversold = 30
	}
	return &RSI{period: period, overbought: overbought, oversold: oversold}
}

// Calculate averages gains and losses over the trailing period deltas. A zero
// average loss pins RS at 100. With fewer than period+1 samples the neutral
// value 50 is returned with Ready unset.
func (r *RSI) Calculate(samples []signal.PriceSample) RSIResult {
	if len(samples) < r.period+1 {
		return RSIResult{Value: 50}
	}
	window := samples[len(samples)-r.period-1:]
	var gains, losses float64
	for i := 1; i < len(window); i++ {
		delta := window[i].Price - window[i-1].Price
		switch {
		case delta > 0:
			gains += delta
		case delta < 0:
			losses -= delta
		}
	}
	avgGain := gains / float64(r.period)
	avgLoss := losses / float64(r.period)

	rs := 100.0
	if avgLoss != 0 {
		rs = avgGain / avgLoss
	}
	value := 100 - 100/(1+rs)
	return RSIResult{
		Value:      value,
		Overbought: value > r.overbought,
		Oversold:   value < r.oversold,
		Ready:      true,
	}
}
