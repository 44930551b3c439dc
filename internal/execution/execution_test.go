package execution

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

type stubSwapper struct {
	buy     BuyResult
	buyErr  error
	sell    SellResult
	sellErr error
}

func (s stubSwapper) Buy(context.Context, string, uint64) (BuyResult, error) {
	return s.buy, s.buyErr
}

func (s stubSwapper) Sell(context.Context, string, float64) (SellResult, error) {
	return s.sell, s.sellErr
}

func TestBuyLogsOrder(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	exec := NewExecutor(stubSwapper{buy: BuyResult{Signature: "sig1", Amount: 42}}, logger)
	res, err := exec.Buy(context.Background(), "MINT111", 1_000_000)
	if err != nil {
		t.Fatalf("Buy returned error: %v", err)
	}
	if res.Amount != 42 {
		t.Fatalf("unexpected amount %v", res.Amount)
	}
	out := buf.String()
	if !strings.Contains(out, "MINT111") || !strings.Contains(out, "buy filled") {
		t.Fatalf("log does not contain order: %s", out)
	}
}

func TestBuyPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	exec := NewExecutor(stubSwapper{buyErr: boom}, zerolog.Nop())
	if _, err := exec.Buy(context.Background(), "MINT", 1); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestSellRejectedIsError(t *testing.T) {
	var buf bytes.Buffer
	exec := NewExecutor(stubSwapper{sell: SellResult{OK: false, Message: "no route"}}, zerolog.New(&buf))

	res, err := exec.Sell(context.Background(), "MINT", 10)
	if !errors.Is(err, ErrSellRejected) {
		t.Fatalf("expected ErrSellRejected, got %v", err)
	}
	if res.Message != "no route" {
		t.Fatalf("result should be returned with the error")
	}
	if !strings.Contains(buf.String(), "no route") {
		t.Fatalf("rejection not logged: %s", buf.String())
	}
}

func TestSellOK(t *testing.T) {
	exec := NewExecutor(stubSwapper{sell: SellResult{OK: true, Signature: "s"}}, zerolog.Nop())
	if _, err := exec.Sell(context.Background(), "MINT", 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
