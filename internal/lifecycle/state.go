package lifecycle

import (
	"time"

	"pumpbot/internal/metrics"
)

// State is a stage in a token's lifecycle.
type State string

const (
	Detected       State = "detected"
	SafetyChecking State = "safety_checking"
	Sampling       State = "sampling"
	Evaluating     State = "evaluating"
	Holding        State = "holding"
	Exiting        State = "exiting"
	Closed         State = "closed"
	Rejected       State = "rejected"
)

// Terminal reports whether no further transitions follow s.
func (s State) Terminal() bool {
	return s == Closed || s == Rejected
}

// Rejection reasons reported on transitions into Rejected.
const (
	ReasonTxFetch            = "tx_fetch"
	ReasonTxFailed           = "tx_failed"
	ReasonBalanceUnavailable = "balance_unavailable"
	ReasonBalance            = "insufficient_balance"
	ReasonSafety             = "safety"
	ReasonSamples            = "insufficient_samples"
	ReasonNoEntry            = "no_entry"
	ReasonSimulation         = "simulation"
	ReasonCap                = "max_concurrent"
	ReasonAlreadyOpen        = "already_open"
	ReasonBuyFailed          = "buy_failed"
	ReasonEntryPrice         = "entry_price"
)

// Transition records one state change of a token.
type Transition struct {
	Mint   string
	From   State
	To     State
	Reason string
	At     time.Time
}

// Observer is notified of every transition. Observers must not block.
type Observer func(Transition)

// MetricsObserver counts transitions and rejections.
func MetricsObserver(t Transition) {
	metrics.StateTransitions.WithLabelValues(string(t.To)).Inc()
	if t.To == Rejected {
		metrics.RejectionsTotal.WithLabelValues(t.Reason).Inc()
	}
}
