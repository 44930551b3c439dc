// Package indicator computes technical indicators over windows of price samples.
//
// Every calculator is pure: it keeps only its fixed configuration, so one
// instance may be shared by concurrent callers working on independent series.
// Insufficient input never yields an error; each calculator returns its
// documented neutral value instead and callers treat that as "no data".
package indicator

import "pumpbot/internal/signal"

func prices(samples []signal.PriceSample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Price
	}
	return out
}

// ratio divides num by den, substituting 1 for a zero denominator.
func ratio(num, den float64) float64 {
	if den == 0 {
		return num
	}
	return num / den
}
