package exchange

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"pumpbot/internal/signal"
)

const tokensBody = `{"schemaVersion":"1.0.0","pairs":[
{"chainId":"base","pairAddress":"X","baseToken":{"address":"MINT"},"priceNative":"9.0"},
{"chainId":"solana","pairAddress":"PAIR","baseToken":{"address":"MINT","symbol":"DOG"},"quoteToken":{"symbol":"SOL"},
 "priceUsd":"0.0021","priceNative":"0.0000125","txns":{"m5":{"buys":10,"sells":4}},"volume":{"m5":321.5,"h24":9000},"liquidity":{"usd":15000}}]}`

func TestDexScreenerQuotesNativePrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/latest/dex/tokens/MINT" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(tokensBody))
	}))
	defer server.Close()

	source := NewDexScreener(WithBaseURL(server.URL+"/"), WithHTTPClient(server.Client()), WithRateLimit(100))
	fixed := time.Unix(1_700_000_000, 0)
	source.now = func() time.Time { return fixed }

	price, err := source.CurrentPrice(context.Background(), "MINT")
	if err != nil {
		t.Fatalf("CurrentPrice returned error: %v", err)
	}
	if price != 0.0000125 {
		t.Fatalf("expected solana pair native price, got %v", price)
	}

	samples, err := source.Samples(context.Background(), "MINT")
	if err != nil {
		t.Fatalf("Samples returned error: %v", err)
	}
	if len(samples) != 1 || samples[0].Volume != 321.5 || !samples[0].Ts.Equal(fixed) {
		t.Fatalf("unexpected samples %+v", samples)
	}
}

func TestDexScreenerNoPairs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"pairs":null}`))
	}))
	defer server.Close()

	source := NewDexScreener(WithBaseURL(server.URL), WithRateLimit(100))
	if _, err := source.CurrentPrice(context.Background(), "MINT"); !errors.Is(err, ErrNoPrice) {
		t.Fatalf("expected ErrNoPrice, got %v", err)
	}
}

func TestDexScreenerStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	source := NewDexScreener(WithBaseURL(server.URL), WithRateLimit(100))
	if _, err := source.Samples(context.Background(), "MINT"); err == nil {
		t.Fatalf("expected status error")
	}
}

type stubSource struct {
	price   float64
	samples []signal.PriceSample
	err     error
	calls   int
}

func (s *stubSource) Samples(context.Context, string) ([]signal.PriceSample, error) {
	s.calls++
	return s.samples, s.err
}

func (s *stubSource) CurrentPrice(context.Context, string) (float64, error) {
	s.calls++
	return s.price, s.err
}

func TestFallbackUsesSecondaryOnFailure(t *testing.T) {
	primary := &stubSource{err: errors.New("down")}
	secondary := &stubSource{price: 2, samples: []signal.PriceSample{{Price: 2}}}
	f := Fallback{Primary: primary, Secondary: secondary, Log: zerolog.Nop()}

	price, err := f.CurrentPrice(context.Background(), "MINT")
	if err != nil || price != 2 {
		t.Fatalf("expected secondary price, got %v %v", price, err)
	}
	samples, err := f.Samples(context.Background(), "MINT")
	if err != nil || len(samples) != 1 {
		t.Fatalf("expected secondary samples, got %v %v", samples, err)
	}
}

func TestFallbackPrefersPrimary(t *testing.T) {
	primary := &stubSource{price: 1, samples: []signal.PriceSample{{Price: 1}}}
	secondary := &stubSource{price: 2}
	f := Fallback{Primary: primary, Secondary: secondary}

	if price, _ := f.CurrentPrice(context.Background(), "MINT"); price != 1 {
		t.Fatalf("expected primary price, got %v", price)
	}
	if samples, _ := f.Samples(context.Background(), "MINT"); samples[0].Price != 1 {
		t.Fatalf("expected primary samples")
	}
	if secondary.calls != 0 {
		t.Fatalf("secondary should not be consulted")
	}
}
