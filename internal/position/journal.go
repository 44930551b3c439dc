package position

import "sync"

// Journal stores closed trades in memory for quick inspection.
type Journal struct {
	mu     sync.Mutex
	trades []Trade
}

// NewJournal creates an empty journal optionally pre-sizing storage.
func NewJournal(capacity int) *Journal {
	if capacity < 0 {
		capacity = 0
	}
	return &Journal{trades: make([]Trade, 0, capacity)}
}

// Record appends a trade to the journal.
func (j *Journal) Record(trade Trade) {
	j.mu.Lock()
	j.trades = append(j.trades, trade)
	j.mu.Unlock()
}

// Snapshot returns a copy of the recorded trades.
func (j *Journal) Snapshot() []Trade {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Trade, len(j.trades))
	copy(out, j.trades)
	return out
}

// RealizedPnL sums PnL over the recorded trades.
func (j *Journal) RealizedPnL() float64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	var total float64
	for _, t := range j.trades {
		total += t.PnL
	}
	return total
}

// Reset clears all stored trades.
func (j *Journal) Reset() {
	j.mu.Lock()
	j.trades = j.trades[:0]
	j.mu.Unlock()
}

// MultiRecorder fans a trade out to several recorders.
type MultiRecorder []TradeRecorder

// Record forwards trade to every recorder.
func (m MultiRecorder) Record(trade Trade) {
	for _, r := range m {
		if r != nil {
			r.Record(trade)
		}
	}
}
