package strategy

import (
	"time"

	"pumpbot/internal/signal"
)

const exitConditionCount = 3

// PumpFun trades freshly launched pump.fun tokens on oversold rebounds with
// buy-side volume and bid support.
type PumpFun struct {
	policy *Policy
	now    func() time.Time
}

// NewPumpFun builds the strategy from params.
func NewPumpFun(params Params) *PumpFun {
	return &PumpFun{policy: NewPolicy(params), now: time.Now}
}

// Name returns the identifier for logging.
func (s *PumpFun) Name() string { return "PumpFun" }

// Enabled reports the configuration flag.
func (s *PumpFun) Enabled() bool { return s.policy.params.Enabled }

// Policy exposes the underlying threshold rules.
func (s *PumpFun) Policy() *Policy { return s.policy }

// Analyze emits a buy signal when every entry condition holds. The signal
// carries full confidence because entry is all-or-nothing.
func (s *PumpFun) Analyze(mint string, samples []signal.PriceSample, balanceSOL float64) *signal.TradeSignal {
	last, ok := signal.Last(samples)
	if !ok || !s.policy.Open(balanceSOL) {
		return nil
	}
	snap := s.policy.Evaluate(samples)
	if failed := s.policy.EntryConditions(snap); len(failed) > 0 {
		return nil
	}
	return &signal.TradeSignal{
		Type:       signal.Buy,
		Mint:       mint,
		Price:      last.Price,
		Ts:         s.now(),
		Confidence: 1,
		Reason:     "entry " + snap.String(),
	}
}

// Review emits a sell signal when price crossed a configured profit target or
// stop loss, or when any exit condition fires. Confidence is the share of exit
// conditions that fired.
func (s *PumpFun) Review(mint string, entryPrice float64, samples []signal.PriceSample, balanceSOL float64) *signal.TradeSignal {
	last, ok := signal.Last(samples)
	if !ok || !s.policy.Open(balanceSOL) {
		return nil
	}
	sell := func(confidence float64, reason string) *signal.TradeSignal {
		return &signal.TradeSignal{
			Type:       signal.Sell,
			Mint:       mint,
			Price:      last.Price,
			Ts:         s.now(),
			Confidence: confidence,
			Reason:     reason,
		}
	}

	params := s.policy.params
	if entryPrice > 0 {
		change := (last.Price - entryPrice) / entryPrice * 100
		if params.ProfitTargetPct > 0 && change >= params.ProfitTargetPct {
			return sell(1, "take_profit")
		}
		if params.StopLossPct > 0 && change <= -params.StopLossPct {
			return sell(1, "stop_loss")
		}
	}

	snap := s.policy.Evaluate(samples)
	fired := s.policy.ExitConditions(snap)
	if len(fired) == 0 {
		return nil
	}
	return sell(float64(len(fired))/exitConditionCount, joinReasons("exit", fired)+" "+snap.String())
}

// HFT runs the PumpFun rules under its own parameter block.
type HFT struct {
	*PumpFun
}

// NewHFT builds the high-frequency variant.
func NewHFT(params Params) *HFT {
	return &HFT{PumpFun: NewPumpFun(params)}
}

// Name returns the identifier for logging.
func (s *HFT) Name() string { return "HFT" }
