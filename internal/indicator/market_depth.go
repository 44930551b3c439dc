package indicator

import "pumpbot/internal/signal"

// MarketDepthResult compares volume traded below and above the latest price.
type MarketDepthResult struct {
	BidDepth float64
	AskDepth float64
	Ratio    float64
}

// MarketDepth approximates book depth from the trade tape: volume printed
// below the latest price counts as bids, volume above it as asks.
type MarketDepth struct{}

// NewMarketDepth returns a market depth calculator.
func NewMarketDepth() *MarketDepth { return &MarketDepth{} }

// Calculate returns the zero result for an empty window.
func (MarketDepth) Calculate(samples []signal.PriceSample) MarketDepthResult {
	last, ok := signal.Last(samples)
	if !ok {
		return MarketDepthResult{}
	}
	var bid, ask float64
	for _, s := range samples {
		switch {
		case s.Price < last.Price:
			bid += s.Volume
		case s.Price > last.Price:
			ask += s.Volume
		}
	}
	return MarketDepthResult{BidDepth: bid, AskDepth: ask, Ratio: ratio(bid, ask)}
}
