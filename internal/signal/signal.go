// Package signal standardizes payloads shared between data ingestion, strategy, and lifecycle layers.
package signal

import "time"

// PriceSample is one price/volume observation for a token, quoted in SOL.
type PriceSample struct {
	Price  float64
	Volume float64
	High   float64
	Low    float64
	Ts     time.Time
}

// SignalType tells whether a TradeSignal opens or closes exposure.
type SignalType string

const (
	// Buy opens a position.
	Buy SignalType = "buy"
	// Sell closes a position.
	Sell SignalType = "sell"
)

// TradeSignal expresses a decision produced by a strategy implementation.
type TradeSignal struct {
	Type       SignalType
	Mint       string
	Price      float64
	Ts         time.Time
	Confidence float64 // share of the strategy's conditions that fired, 0..1
	Reason     string
}

// Listing is a newly created token reported by the launchpad feed.
type Listing struct {
	Mint      string
	Creator   string
	Signature string
	Slot      uint64
	Name      string
	Symbol    string
}

// TxDetail is the subset of a fetched transaction the lifecycle cares about.
type TxDetail struct {
	Signature string
	Slot      uint64
	BlockTime time.Time
	Failed    bool
}

// Last returns the most recent sample, or false when samples is empty.
func Last(samples []PriceSample) (PriceSample, bool) {
	if len(samples) == 0 {
		return PriceSample{}, false
	}
	return samples[len(samples)-1], true
}
