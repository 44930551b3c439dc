package lifecycle

import (
	"context"

	"pumpbot/internal/signal"
)

// ListingFeed delivers newly created tokens.
type ListingFeed interface {
	Subscribe(ctx context.Context, fn func(signal.Listing)) (int, error)
	Unsubscribe(id int) error
}

// TxFetcher loads the transaction that announced a listing.
type TxFetcher interface {
	FetchTransaction(ctx context.Context, signature string) (signal.TxDetail, error)
}

// SafetyChecker decides whether a token is safe enough to trade.
type SafetyChecker interface {
	Check(ctx context.Context, mint string) (bool, error)
}

// PriceSource supplies sample batches and spot quotes in SOL.
type PriceSource interface {
	Samples(ctx context.Context, mint string) ([]signal.PriceSample, error)
	CurrentPrice(ctx context.Context, mint string) (float64, error)
}

// BalanceSource reports the trading wallet's SOL balance.
type BalanceSource interface {
	Balance(ctx context.Context) (float64, error)
}
