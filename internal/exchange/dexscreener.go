// Package exchange hosts HTTP price sources and the fallback chain between them.
package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"pumpbot/internal/signal"
)

// ErrNoPrice means the source has no usable quote for the mint.
var ErrNoPrice = errors.New("price unavailable")

const defaultDexScreenerBaseURL = "https://api.dexscreener.com"

type dexscreenerPairsResponse struct {
	Pairs []dexscreenerPair `json:"pairs"`
	Pair  *dexscreenerPair  `json:"pair"`
}

type dexscreenerPair struct {
	ChainID     string               `json:"chainId"`
	PairAddress string               `json:"pairAddress"`
	BaseToken   dexscreenerToken     `json:"baseToken"`
	QuoteToken  dexscreenerToken     `json:"quoteToken"`
	PriceUsd    string               `json:"priceUsd"`
	PriceNative string               `json:"priceNative"`
	Txns        dexscreenerTxns      `json:"txns"`
	Volume      dexscreenerVolumes   `json:"volume"`
	Liquidity   dexscreenerLiquidity `json:"liquidity"`
}

type dexscreenerToken struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

type dexscreenerTxns struct {
	M5  dexscreenerTxn `json:"m5"`
	H1  dexscreenerTxn `json:"h1"`
	H24 dexscreenerTxn `json:"h24"`
}

type dexscreenerTxn struct {
	Buys  int `json:"buys"`
	Sells int `json:"sells"`
}

type dexscreenerVolumes struct {
	M5  float64 `json:"m5"`
	H1  float64 `json:"h1"`
	H24 float64 `json:"h24"`
}

type dexscreenerLiquidity struct {
	USD float64 `json:"usd"`
}

// pairFor prefers the Solana pair whose base token is mint.
func (r *dexscreenerPairsResponse) pairFor(mint string) (*dexscreenerPair, bool) {
	for i := range r.Pairs {
		p := &r.Pairs[i]
		if p.ChainID == "solana" && p.BaseToken.Address == mint {
			return p, true
		}
	}
	if len(r.Pairs) > 0 {
		return &r.Pairs[0], true
	}
	if r.Pair != nil {
		return r.Pair, true
	}
	return nil, false
}

// DexScreener quotes tokens in SOL using the DexScreener tokens endpoint.
type DexScreener struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger
	now     func() time.Time
}

// Option configures DexScreener construction parameters.
type Option func(*DexScreener)

// WithBaseURL overrides the API root.
func WithBaseURL(baseURL string) Option {
	return func(d *DexScreener) {
		if baseURL != "" {
			d.baseURL = strings.TrimSuffix(baseURL, "/")
		}
	}
}

// WithHTTPClient swaps the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(d *DexScreener) {
		if c != nil {
			d.client = c
		}
	}
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(rps float64) Option {
	return func(d *DexScreener) {
		if rps > 0 {
			d.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(d *DexScreener) { d.log = log }
}

// NewDexScreener constructs a price source with the given options.
func NewDexScreener(opts ...Option) *DexScreener {
	d := &DexScreener{
		baseURL: defaultDexScreenerBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(5), 1),
		log:     zerolog.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// CurrentPrice returns the SOL price of mint.
func (d *DexScreener) CurrentPrice(ctx context.Context, mint string) (float64, error) {
	pair, err := d.fetch(ctx, mint)
	if err != nil {
		return 0, err
	}
	return parseDexScreenerPrice(pair)
}

// Samples returns one sample from the latest pair snapshot. Volume is the
// five-minute USD volume.
func (d *DexScreener) Samples(ctx context.Context, mint string) ([]signal.PriceSample, error) {
	pair, err := d.fetch(ctx, mint)
	if err != nil {
		return nil, err
	}
	price, err := parseDexScreenerPrice(pair)
	if err != nil {
		return nil, nil
	}
	return []signal.PriceSample{{
		Price:  price,
		Volume: pair.Volume.M5,
		High:   price,
		Low:    price,
		Ts:     d.now().UTC(),
	}}, nil
}

func (d *DexScreener) fetch(ctx context.Context, mint string) (*dexscreenerPair, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/latest/dex/tokens/%s", d.baseURL, mint)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "pumpbot/1.0")
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var payload dexscreenerPairsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	pair, ok := payload.pairFor(mint)
	if !ok {
		d.log.Debug().Str("mint", mint).Msg("dexscreener has no pair")
		return nil, ErrNoPrice
	}
	return pair, nil
}

func parseDexScreenerPrice(pair *dexscreenerPair) (float64, error) {
	if pair == nil {
		return 0, fmt.Errorf("pair missing")
	}
	if pair.PriceNative != "" {
		if px, err := strconv.ParseFloat(pair.PriceNative, 64); err == nil && px > 0 {
			return px, nil
		}
	}
	return 0, ErrNoPrice
}
