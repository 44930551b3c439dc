// Binary dexexec performs one manual buy or sell through Jupiter.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/joho/godotenv"

	"pumpbot/internal/config"
	dex "pumpbot/internal/dex/solana"
)

func main() {
	configPath := flag.String("config", "internal/config/config.yaml", "path to the YAML config")
	side := flag.String("side", "buy", "buy or sell")
	mint := flag.String("mint", "", "token mint")
	lamports := flag.Uint64("lamports", 0, "SOL to spend on a buy, in lamports (default swap.amount_lamports)")
	amount := flag.Float64("amount", 0, "tokens to sell")
	flag.Parse()

	if *mint == "" {
		log.Fatalf("-mint is required")
	}

	_ = godotenv.Load()
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg.ApplyEnv()

	owner, err := dex.LoadPrivateKey(cfg.Wallet.PrivateKeyBase58)
	if err != nil {
		log.Fatalf("wallet: %v", err)
	}

	jup := dex.NewJupiterClient(cfg.Dex.RpcURL, cfg.Dex.JupiterBase, owner, cfg.Dex.Commitment)
	jup.SlippageBps = cfg.Swap.SlippageBps
	jup.PriorityFeeLamports = cfg.Swap.PriorityFeeLamports
	jup.ConfirmTimeout = time.Duration(cfg.Swap.ConfirmTimeoutMs) * time.Millisecond
	chain := dex.NewChain(rpc.New(cfg.Dex.RpcURL), owner.PublicKey(), cfg.Dex.Commitment)
	jup.Decimals = chain
	jup.Holdings = chain

	ctx, cancel := context.WithTimeout(context.Background(), jup.ConfirmTimeout+15*time.Second)
	defer cancel()

	switch *side {
	case "buy":
		spend := *lamports
		if spend == 0 {
			spend = cfg.Swap.AmountLamports
		}
		res, err := jup.Buy(ctx, *mint, spend)
		if err != nil {
			log.Fatalf("buy: %v", err)
		}
		log.Printf("bought %.6f %s tx %s", res.Amount, *mint, res.Signature)
	case "sell":
		if *amount <= 0 {
			log.Fatalf("-amount must be positive for a sell")
		}
		res, err := jup.Sell(ctx, *mint, *amount)
		if err != nil {
			log.Fatalf("sell: %v", err)
		}
		if !res.OK {
			log.Fatalf("sell not completed: %s", res.Message)
		}
		log.Printf("sold %.6f %s tx %s", *amount, *mint, res.Signature)
	default:
		log.Fatalf("unknown -side %q", *side)
	}
}
