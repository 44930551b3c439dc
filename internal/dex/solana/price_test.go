package solana

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const priceBody = `{"data":{"MINT":{"id":"MINT","type":"derivedPrice","price":"0.0000125",
"extraInfo":{"lastSwappedPrice":{"lastJupiterSellPrice":"0.000012","lastJupiterBuyPrice":"0.000013"},
"oneDayVolume":"1500.5","high24h":"0.00002","low24h":""}}},"timeTaken":0.001}`

func TestPriceClientSamplesAndQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("ids") != "MINT" || q.Get("showExtraInfo") != "true" || q.Get("vsToken") != WrappedSOLMint {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(priceBody))
	}))
	defer server.Close()

	client := NewPriceClient(server.URL, 100, time.Second)
	fixed := time.Unix(1_700_000_000, 0)
	client.now = func() time.Time { return fixed }

	price, err := client.CurrentPrice(context.Background(), "MINT")
	if err != nil {
		t.Fatalf("CurrentPrice returned error: %v", err)
	}
	if price != 0.0000125 {
		t.Fatalf("unexpected price %v", price)
	}

	samples, err := client.Samples(context.Background(), "MINT")
	if err != nil {
		t.Fatalf("Samples returned error: %v", err)
	}
	if len(samples) != 1 {
		t.Fatalf("expected one sample, got %d", len(samples))
	}
	s := samples[0]
	if s.Price != 0.000012 || s.Volume != 1500.5 || s.High != 0.00002 || s.Low != 0.000012 || !s.Ts.Equal(fixed) {
		t.Fatalf("unexpected sample %+v", s)
	}
}

func TestPriceClientUnknownMint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"OTHER":null}}`))
	}))
	defer server.Close()

	client := NewPriceClient(server.URL, 100, time.Second)
	if _, err := client.CurrentPrice(context.Background(), "MINT"); !errors.Is(err, ErrNoPrice) {
		t.Fatalf("expected ErrNoPrice, got %v", err)
	}
	samples, err := client.Samples(context.Background(), "MINT")
	if err != nil || len(samples) != 0 {
		t.Fatalf("expected no samples, got %v %v", samples, err)
	}
}

func TestPriceClientHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewPriceClient(server.URL, 100, time.Second)
	if _, err := client.Samples(context.Background(), "MINT"); err == nil {
		t.Fatalf("expected status error")
	}
}
