package solana

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"pumpbot/internal/signal"
)

// ErrTxNotFound means the RPC node has not indexed the transaction yet.
var ErrTxNotFound = errors.New("transaction not found")

// Chain answers wallet and token queries over JSON-RPC.
type Chain struct {
	RPC    *rpc.Client
	Owner  solana.PublicKey
	Commit rpc.CommitmentType

	mu       sync.Mutex
	decimals map[string]uint8
}

// NewChain queries on behalf of owner at the given commitment.
func NewChain(client *rpc.Client, owner solana.PublicKey, commit string) *Chain {
	return &Chain{
		RPC:      client,
		Owner:    owner,
		Commit:   commitment(commit),
		decimals: make(map[string]uint8),
	}
}

func commitment(name string) rpc.CommitmentType {
	switch name {
	case "processed":
		return rpc.CommitmentProcessed
	case "finalized":
		return rpc.CommitmentFinalized
	}
	return rpc.CommitmentConfirmed
}

// Balance returns the owner's SOL balance.
func (c *Chain) Balance(ctx context.Context) (float64, error) {
	out, err := c.RPC.GetBalance(ctx, c.Owner, c.Commit)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return float64(out.Value) / float64(solana.LAMPORTS_PER_SOL), nil
}

// FetchTransaction loads the transaction sig. A not-yet-indexed transaction
// yields ErrTxNotFound so callers can retry.
func (c *Chain) FetchTransaction(ctx context.Context, sig string) (signal.TxDetail, error) {
	s, err := solana.SignatureFromBase58(sig)
	if err != nil {
		return signal.TxDetail{}, fmt.Errorf("parse signature: %w", err)
	}
	commit := c.Commit
	if commit == rpc.CommitmentProcessed {
		commit = rpc.CommitmentConfirmed
	}
	maxVersion := uint64(0)
	out, err := c.RPC.GetTransaction(ctx, s, &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     commit,
		MaxSupportedTransactionVersion: &maxVersion,
	})
	if errors.Is(err, rpc.ErrNotFound) || (err == nil && out == nil) {
		return signal.TxDetail{}, ErrTxNotFound
	}
	if err != nil {
		return signal.TxDetail{}, fmt.Errorf("get transaction: %w", err)
	}
	detail := signal.TxDetail{Signature: sig, Slot: out.Slot}
	if out.BlockTime != nil {
		detail.BlockTime = out.BlockTime.Time()
	}
	if out.Meta != nil && out.Meta.Err != nil {
		detail.Failed = true
	}
	return detail, nil
}

// TokenDecimals returns the mint's decimals, caching the answer.
func (c *Chain) TokenDecimals(ctx context.Context, mint string) (uint8, error) {
	c.mu.Lock()
	d, ok := c.decimals[mint]
	c.mu.Unlock()
	if ok {
		return d, nil
	}
	pk, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return 0, fmt.Errorf("parse mint: %w", err)
	}
	out, err := c.RPC.GetTokenSupply(ctx, pk, c.Commit)
	if err != nil {
		return 0, fmt.Errorf("get token supply: %w", err)
	}
	if out == nil || out.Value == nil {
		return 0, fmt.Errorf("token supply for %s empty", mint)
	}
	c.mu.Lock()
	c.decimals[mint] = out.Value.Decimals
	c.mu.Unlock()
	return out.Value.Decimals, nil
}

// TokenHoldings returns the owner's balance of mint in base units, summed
// over every token account it holds for that mint.
func (c *Chain) TokenHoldings(ctx context.Context, mint string) (uint64, error) {
	pk, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return 0, fmt.Errorf("parse mint: %w", err)
	}
	out, err := c.RPC.GetTokenAccountsByOwner(ctx, c.Owner,
		&rpc.GetTokenAccountsConfig{Mint: &pk},
		&rpc.GetTokenAccountsOpts{Commitment: c.Commit, Encoding: solana.EncodingBase64},
	)
	if err != nil {
		return 0, fmt.Errorf("get token accounts: %w", err)
	}
	if out == nil {
		return 0, nil
	}
	var total uint64
	for _, acct := range out.Value {
		if acct == nil {
			continue
		}
		bal, err := c.RPC.GetTokenAccountBalance(ctx, acct.Pubkey, c.Commit)
		if err != nil {
			return 0, fmt.Errorf("get token account balance: %w", err)
		}
		if bal == nil || bal.Value == nil {
			continue
		}
		raw, err := strconv.ParseUint(bal.Value.Amount, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse token amount %q: %w", bal.Value.Amount, err)
		}
		total += raw
	}
	return total, nil
}
