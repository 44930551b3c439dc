package solana

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	bin "github.com/gagliardetto/binary"
	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"pumpbot/internal/execution"
)

var (
	// ErrNotConfirmed means a submitted swap did not confirm before the deadline.
	ErrNotConfirmed = errors.New("transaction not confirmed")
	// ErrTxFailed means the swap landed but the program returned an error.
	ErrTxFailed = errors.New("transaction failed")
)

// DecimalsSource resolves a mint's decimals.
type DecimalsSource interface {
	TokenDecimals(ctx context.Context, mint string) (uint8, error)
}

// HoldingsSource reports how many base units of a mint the wallet holds.
type HoldingsSource interface {
	TokenHoldings(ctx context.Context, mint string) (uint64, error)
}

type JupiterClient struct {
	Base   string
	RPC    *rpc.Client
	Owner  solana.PrivateKey
	Commit rpc.CommitmentType
	Http   *http.Client

	SlippageBps         int
	PriorityFeeLamports uint64
	ConfirmTimeout      time.Duration
	PollInterval        time.Duration
	Decimals            DecimalsSource
	Holdings            HoldingsSource // optional; fills fall back to the quote
}

type Quote struct {
	InputMint      string  `json:"inputMint"`
	OutputMint     string  `json:"outputMint"`
	InAmount       string  `json:"inAmount"`
	OutAmount      string  `json:"outAmount"`
	OtherAmount    string  `json:"otherAmountThreshold"`
	SlippageBps    int     `json:"slippageBps"`
	RoutePlan      any     `json:"routePlan"`
	PriceImpactPct float64 `json:"priceImpactPct,string"`

	// Raw is the response as received; the swap endpoint wants it verbatim.
	Raw json.RawMessage `json:"-"`
}

func NewJupiterClient(rpcURL, base string, owner solana.PrivateKey, commit string) *JupiterClient {
	return &JupiterClient{
		Base:           base,
		RPC:            rpc.New(rpcURL),
		Owner:          owner,
		Commit:         commitment(commit),
		Http:           &http.Client{Timeout: 8 * time.Second},
		SlippageBps:    200,
		ConfirmTimeout: 30 * time.Second,
		PollInterval:   500 * time.Millisecond,
	}
}

// amount is in smallest units (lamports for SOL; token decimals apply).
func (j *JupiterClient) GetQuote(ctx context.Context, inputMint, outputMint string, amount uint64, slippageBps int) (*Quote, error) {
	q := url.Values{}
	q.Set("inputMint", inputMint)
	q.Set("outputMint", outputMint)
	q.Set("amount", fmt.Sprintf("%d", amount))
	q.Set("slippageBps", fmt.Sprintf("%d", slippageBps))
	q.Set("onlyDirectRoutes", "false")
	u := j.Base + "/v6/quote?" + q.Encode()

	req, _ := http.NewRequestWithContext(ctx, "GET", u, nil)
	resp, err := j.Http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("jupiter quote status %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var out Quote
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	out.Raw = raw
	return &out, nil
}

// BuildAndSendSwap asks Jupiter for a ready-to-sign transaction, signs it locally, then submits via RPC.
func (j *JupiterClient) BuildAndSendSwap(ctx context.Context, quote *Quote) (sig solana.Signature, err error) {
	payload := map[string]any{
		"userPublicKey":             j.Owner.PublicKey().String(),
		"wrapAndUnwrapSol":          true,
		"asLegacyTransaction":       false,
		"useTokenLedger":            false,
		"prioritizationFeeLamports": j.PriorityFeeLamports,
		"quoteResponse":             quote,
	}
	if len(quote.Raw) > 0 {
		payload["quoteResponse"] = quote.Raw
	}
	body, _ := json.Marshal(payload)

	req, _ := http.NewRequestWithContext(ctx, "POST", j.Base+"/v6/swap", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := j.Http.Do(req)
	if err != nil {
		return sig, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return sig, fmt.Errorf("jupiter swap status %d", resp.StatusCode)
	}
	var sr struct {
		SwapTransaction string `json:"swapTransaction"` // base64-encoded tx (unsigned)
	}
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return sig, err
	}

	raw, err := base64.StdEncoding.DecodeString(sr.SwapTransaction)
	if err != nil {
		return sig, fmt.Errorf("decode tx: %w", err)
	}

	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return sig, fmt.Errorf("unmarshal tx: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(j.Owner.PublicKey()) {
			return &j.Owner
		}
		return nil
	})
	if err != nil {
		return sig, fmt.Errorf("sign: %w", err)
	}

	sig, err = j.RPC.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: j.Commit,
	})
	return sig, err
}

// Confirm polls signature status until sig reaches confirmed or finalized.
func (j *JupiterClient) Confirm(ctx context.Context, sig solana.Signature) error {
	ctx, cancel := context.WithTimeout(ctx, j.ConfirmTimeout)
	defer cancel()
	ticker := time.NewTicker(j.PollInterval)
	defer ticker.Stop()
	for {
		out, err := j.RPC.GetSignatureStatuses(ctx, false, sig)
		if err == nil && out != nil && len(out.Value) > 0 && out.Value[0] != nil {
			st := out.Value[0]
			if st.Err != nil {
				return fmt.Errorf("%w: %v", ErrTxFailed, st.Err)
			}
			switch st.ConfirmationStatus {
			case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %s", ErrNotConfirmed, sig)
		case <-ticker.C:
		}
	}
}

func (j *JupiterClient) swap(ctx context.Context, in, out string, amount uint64) (*Quote, solana.Signature, error) {
	quote, err := j.GetQuote(ctx, in, out, amount, j.SlippageBps)
	if err != nil {
		return nil, solana.Signature{}, fmt.Errorf("quote: %w", err)
	}
	sig, err := j.BuildAndSendSwap(ctx, quote)
	if err != nil {
		return nil, solana.Signature{}, fmt.Errorf("swap: %w", err)
	}
	if err := j.Confirm(ctx, sig); err != nil {
		return quote, sig, err
	}
	return quote, sig, nil
}

func (j *JupiterClient) scale(ctx context.Context, mint string) (float64, error) {
	if j.Decimals == nil {
		return 0, errors.New("jupiter: decimals source not configured")
	}
	d, err := j.Decimals.TokenDecimals(ctx, mint)
	if err != nil {
		return 0, err
	}
	return math.Pow10(int(d)), nil
}

// Buy swaps lamports of SOL into mint. Amount is what the wallet received in
// whole tokens, or the quoted output when holdings cannot be read.
func (j *JupiterClient) Buy(ctx context.Context, mint string, lamports uint64) (execution.BuyResult, error) {
	scale, err := j.scale(ctx, mint)
	if err != nil {
		return execution.BuyResult{}, err
	}
	before, haveBefore := j.holdings(ctx, mint)
	quote, sig, err := j.swap(ctx, WrappedSOLMint, mint, lamports)
	if err != nil {
		return execution.BuyResult{}, err
	}
	raw, err := strconv.ParseUint(quote.OutAmount, 10, 64)
	if err != nil {
		return execution.BuyResult{}, fmt.Errorf("parse out amount %q: %w", quote.OutAmount, err)
	}
	if after, ok := j.holdings(ctx, mint); ok && haveBefore && after > before {
		raw = after - before
	}
	return execution.BuyResult{Signature: sig.String(), Amount: float64(raw) / scale}, nil
}

func (j *JupiterClient) holdings(ctx context.Context, mint string) (uint64, bool) {
	if j.Holdings == nil {
		return 0, false
	}
	n, err := j.Holdings.TokenHoldings(ctx, mint)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Sell swaps amount whole tokens of mint back into SOL, capped at what the
// wallet holds. A swap that fails to land is reported through SellResult
// rather than as an error.
func (j *JupiterClient) Sell(ctx context.Context, mint string, amount float64) (execution.SellResult, error) {
	scale, err := j.scale(ctx, mint)
	if err != nil {
		return execution.SellResult{}, err
	}
	raw := uint64(math.Floor(amount * scale))
	if held, ok := j.holdings(ctx, mint); ok && held < raw {
		raw = held
	}
	if raw == 0 {
		return execution.SellResult{OK: false, Message: "nothing to sell"}, nil
	}
	_, sig, err := j.swap(ctx, mint, WrappedSOLMint, raw)
	switch {
	case errors.Is(err, ErrNotConfirmed), errors.Is(err, ErrTxFailed):
		return execution.SellResult{OK: false, Message: err.Error(), Signature: sig.String()}, nil
	case err != nil:
		return execution.SellResult{}, err
	}
	return execution.SellResult{OK: true, Signature: sig.String()}, nil
}
