// Package execution handles swap submission against a venue.
package execution

import (
	"context"
	"errors"

	"pumpbot/internal/metrics"

	"github.com/rs/zerolog"
)

// Side enumerates order directions used by the executor.
type Side string

const (
	// Buy swaps SOL into a token.
	Buy Side = "buy"
	// Sell swaps a token back into SOL.
	Sell Side = "sell"
)

// ErrSellRejected is returned when the venue reports a sell as not completed.
var ErrSellRejected = errors.New("sell rejected")

// BuyResult describes a completed purchase. Amount is in whole tokens.
type BuyResult struct {
	Signature string
	Amount    float64
}

// SellResult describes a sale attempt. OK is false when the venue refused it.
type SellResult struct {
	OK        bool
	Message   string
	Signature string
}

// Swapper is the venue that fills buys and sells.
type Swapper interface {
	Buy(ctx context.Context, mint string, lamports uint64) (BuyResult, error)
	Sell(ctx context.Context, mint string, amount float64) (SellResult, error)
}

// Executor wraps a Swapper with logging and order metrics.
type Executor struct {
	swapper Swapper
	log     zerolog.Logger
}

// NewExecutor wraps swapper, logging every order to log.
func NewExecutor(swapper Swapper, log zerolog.Logger) *Executor {
	return &Executor{swapper: swapper, log: log}
}

// Buy spends lamports on mint.
func (executor *Executor) Buy(ctx context.Context, mint string, lamports uint64) (BuyResult, error) {
	res, err := executor.swapper.Buy(ctx, mint, lamports)
	if err != nil {
		metrics.OrdersTotal.WithLabelValues(string(Buy), "error").Inc()
		executor.log.Error().Err(err).Str("mint", mint).Uint64("lamports", lamports).Msg("buy failed")
		return BuyResult{}, err
	}
	metrics.OrdersTotal.WithLabelValues(string(Buy), "ok").Inc()
	executor.log.Info().Str("mint", mint).Uint64("lamports", lamports).Float64("amount", res.Amount).Str("sig", res.Signature).Msg("buy filled")
	return res, nil
}

// Sell disposes of amount tokens of mint. A venue refusal is reported as
// ErrSellRejected alongside the result.
func (executor *Executor) Sell(ctx context.Context, mint string, amount float64) (SellResult, error) {
	res, err := executor.swapper.Sell(ctx, mint, amount)
	if err != nil {
		metrics.OrdersTotal.WithLabelValues(string(Sell), "error").Inc()
		executor.log.Error().Err(err).Str("mint", mint).Float64("amount", amount).Msg("sell failed")
		return res, err
	}
	if !res.OK {
		metrics.OrdersTotal.WithLabelValues(string(Sell), "rejected").Inc()
		executor.log.Warn().Str("mint", mint).Float64("amount", amount).Str("msg", res.Message).Msg("sell rejected")
		return res, ErrSellRejected
	}
	metrics.OrdersTotal.WithLabelValues(string(Sell), "ok").Inc()
	executor.log.Info().Str("mint", mint).Float64("amount", amount).Str("sig", res.Signature).Msg("sell filled")
	return res, nil
}
