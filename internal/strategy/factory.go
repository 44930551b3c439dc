package strategy

import "strings"

// Build returns a strategy implementation matching the configured mode.
func Build(mode string, params Params) Strategy {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "pumpfun", "pump_fun":
		return NewPumpFun(params)
	case "hft", "high_frequency":
		return NewHFT(params)
	default:
		return NewPumpFun(params)
	}
}
