package indicator

import (
	"time"

	"pumpbot/internal/signal"
)

func series(values ...float64) []signal.PriceSample {
	start := time.Unix(1_700_000_000, 0)
	out := make([]signal.PriceSample, len(values))
	for i, v := range values {
		out[i] = signal.PriceSample{Price: v, Volume: 1, High: v, Low: v, Ts: start.Add(time.Duration(i) * time.Second)}
	}
	return out
}

func withVolumes(samples []signal.PriceSample, volumes ...float64) []signal.PriceSample {
	for i := range samples {
		samples[i].Volume = volumes[i]
	}
	return samples
}
