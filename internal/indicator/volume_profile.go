package indicator

import "pumpbot/internal/signal"

// VolumeProfileResult splits traded volume into buy and sell pressure.
type VolumeProfileResult struct {
	BuyPressure  float64
	SellPressure float64
	VolumeRatio  float64
}

// VolumeProfile classifies each sample's volume as buying when its price is
// above the first sample's price and as selling otherwise.
type VolumeProfile struct{}

// NewVolumeProfile returns a volume profile calculator.
func NewVolumeProfile() *VolumeProfile { return &VolumeProfile{} }

// Calculate returns zero pressures and a ratio of 1 when there is no volume.
func (VolumeProfile) Calculate(samples []signal.PriceSample) VolumeProfileResult {
	if len(samples) == 0 {
		return VolumeProfileResult{VolumeRatio: 1}
	}
	anchor := samples[0].Price
	var total, buy float64
	for _, s := range samples {
		total += s.Volume
		if s.Price > anchor {
			buy += s.Volume
		}
	}
	if total == 0 {
		return VolumeProfileResult{VolumeRatio: 1}
	}
	sell := total - buy
	return VolumeProfileResult{
		BuyPressure:  buy / total,
		SellPressure: sell / total,
		VolumeRatio:  ratio(buy, sell),
	}
}
