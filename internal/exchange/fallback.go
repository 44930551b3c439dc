package exchange

import (
	"context"

	"github.com/rs/zerolog"

	"pumpbot/internal/signal"
)

// PriceSource supplies samples and spot quotes for a mint.
type PriceSource interface {
	Samples(ctx context.Context, mint string) ([]signal.PriceSample, error)
	CurrentPrice(ctx context.Context, mint string) (float64, error)
}

// Fallback asks Primary first and Secondary when Primary fails or has nothing.
type Fallback struct {
	Primary   PriceSource
	Secondary PriceSource
	Log       zerolog.Logger
}

// CurrentPrice returns the first positive quote.
func (f Fallback) CurrentPrice(ctx context.Context, mint string) (float64, error) {
	price, err := f.Primary.CurrentPrice(ctx, mint)
	if err == nil && price > 0 {
		return price, nil
	}
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}
	f.Log.Debug().Err(err).Str("mint", mint).Msg("primary quote unavailable")
	return f.Secondary.CurrentPrice(ctx, mint)
}

// Samples returns the first non-empty sample batch.
func (f Fallback) Samples(ctx context.Context, mint string) ([]signal.PriceSample, error) {
	samples, err := f.Primary.Samples(ctx, mint)
	if err == nil && len(samples) > 0 {
		return samples, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	f.Log.Debug().Err(err).Str("mint", mint).Msg("primary samples unavailable")
	return f.Secondary.Samples(ctx, mint)
}
