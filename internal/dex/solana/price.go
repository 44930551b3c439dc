package solana

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"pumpbot/internal/signal"
)

// WrappedSOLMint is the SPL mint for wrapped SOL.
const WrappedSOLMint = "So11111111111111111111111111111111111111112"

// ErrNoPrice means the price API has no quote for the mint.
var ErrNoPrice = errors.New("price unavailable")

// PriceClient reads SOL-denominated quotes from the Jupiter price API.
type PriceClient struct {
	Base    string
	Http    *http.Client
	limiter *rate.Limiter
	now     func() time.Time
}

// NewPriceClient polls base at no more than rps requests per second.
func NewPriceClient(base string, rps float64, timeout time.Duration) *PriceClient {
	if rps <= 0 {
		rps = 5
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PriceClient{
		Base:    base,
		Http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		now:     time.Now,
	}
}

func (p *PriceClient) fetch(ctx context.Context, mint string) (gjson.Result, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return gjson.Result{}, err
	}
	q := url.Values{}
	q.Set("ids", mint)
	q.Set("vsToken", WrappedSOLMint)
	q.Set("showExtraInfo", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.Base+"?"+q.Encode(), nil)
	if err != nil {
		return gjson.Result{}, err
	}
	resp, err := p.Http.Do(req)
	if err != nil {
		return gjson.Result{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, fmt.Errorf("jupiter price status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.GetBytes(body, "data").Exists() {
		return gjson.Result{}, errors.New("jupiter price: missing data")
	}
	return gjson.GetBytes(body, "data."+gjson.Escape(mint)), nil
}

// CurrentPrice returns the headline price for mint.
func (p *PriceClient) CurrentPrice(ctx context.Context, mint string) (float64, error) {
	entry, err := p.fetch(ctx, mint)
	if err != nil {
		return 0, err
	}
	price := entry.Get("price").Float()
	if price <= 0 {
		return 0, ErrNoPrice
	}
	return price, nil
}

// Samples returns one sample built from the last Jupiter sell price, or none
// when the token has not traded through Jupiter yet.
func (p *PriceClient) Samples(ctx context.Context, mint string) ([]signal.PriceSample, error) {
	entry, err := p.fetch(ctx, mint)
	if err != nil {
		return nil, err
	}
	extra := entry.Get("extraInfo")
	last := extra.Get("lastSwappedPrice.lastJupiterSellPrice").Float()
	if last <= 0 {
		return nil, nil
	}
	sample := signal.PriceSample{
		Price:  last,
		Volume: extra.Get("oneDayVolume").Float(),
		High:   extra.Get("high24h").Float(),
		Low:    extra.Get("low24h").Float(),
		Ts:     p.now(),
	}
	if sample.High <= 0 {
		sample.High = last
	}
	if sample.Low <= 0 {
		sample.Low = last
	}
	return []signal.PriceSample{sample}, nil
}
