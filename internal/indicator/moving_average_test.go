package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovingAverageInsufficientData(t *testing.T) {
	for period := 1; period <= 6; period++ {
		ma := NewMovingAverage(period)
		assert.Empty(t, ma.Calculate(series(make([]float64, period-1)...)), "period %d", period)
	}
}

func TestMovingAverageConstantSeries(t *testing.T) {
	values := []float64{2.5, 2.5, 2.5, 2.5, 2.5, 2.5, 2.5}
	for _, period := range []int{1, 3, 7} {
		points := NewMovingAverage(period).Calculate(series(values...))
		require.Len(t, points, len(values)-period+1)
		for _, p := range points {
			assert.InDelta(t, 2.5, p.Value, 1e-12)
		}
	}
}

func TestMovingAverageTrailingWindow(t *testing.T) {
	samples := series(1, 2, 3, 4, 5)
	points := NewMovingAverage(3).Calculate(samples)
	require.Len(t, points, 3)
	assert.InDelta(t, 2, points[0].Value, 1e-12)
	assert.InDelta(t, 3, points[1].Value, 1e-12)
	assert.InDelta(t, 4, points[2].Value, 1e-12)
	assert.Equal(t, samples[4].Ts, points[2].Ts)
}

func TestMovingAverageDefaultPeriod(t *testing.T) {
	assert.Equal(t, 14, NewMovingAverage(0).Period())
}
