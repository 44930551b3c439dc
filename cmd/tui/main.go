// Binary tui is an interactive editor for the pumpbot config file.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"pumpbot/internal/config"
)

const defaultConfigPath = "internal/config/config.yaml"

func main() {
	path := flag.String("config", defaultConfigPath, "path to the YAML config")
	flag.Parse()
	reader := bufio.NewReader(os.Stdin)

	cfg, err := config.Load(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	for {
		fmt.Println("\n=== PumpBot Control ===")
		fmt.Println("1) Show configuration summary")
		fmt.Println("2) Edit strategy thresholds")
		fmt.Println("3) Edit trading and risk knobs")
		fmt.Println("4) Toggle simulation mode")
		fmt.Println("5) Save config")
		fmt.Println("6) Launch bot")
		fmt.Println("7) Reload config from disk")
		fmt.Println("0) Exit")
		fmt.Print("Select option: ")

		input, _ := reader.ReadString('\n')
		switch strings.TrimSpace(input) {
		case "1":
			printSummary(os.Stdout, cfg)
		case "2":
			editStrategy(reader, cfg)
		case "3":
			editTrading(reader, cfg)
		case "4":
			sim := !cfg.Trading.Simulating()
			cfg.Trading.SimulationMode = &sim
			fmt.Printf("simulation mode: %v\n", sim)
		case "5":
			if err := cfg.Validate(); err != nil {
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			}
			if err := config.Save(*path, cfg); err != nil {
				fmt.Fprintf(os.Stderr, "save failed: %v\n", err)
			} else {
				fmt.Println("config saved")
			}
		case "6":
			launchBot(reader, *path)
		case "7":
			reloaded, err := config.Load(*path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "reload failed: %v\n", err)
			} else {
				cfg = reloaded
				fmt.Println("config reloaded")
			}
		case "0":
			return
		default:
			fmt.Println("unknown option")
		}
	}
}

func printSummary(w io.Writer, cfg *config.Config) {
	p := cfg.Strategy.Active()
	fmt.Fprintln(w, "\n--- Configuration Summary ---")
	fmt.Fprintf(w, "Strategy: %s (enabled %v)\n", cfg.Strategy.Mode, p.IsEnabled())
	fmt.Fprintf(w, "Simulation mode: %v\n", cfg.Trading.Simulating())
	fmt.Fprintf(w, "RSI %d oversold %.0f overbought %.0f\n", p.RSIPeriod, p.RSIOversold, p.RSIOverbought)
	fmt.Fprintf(w, "MACD %d/%d/%d buy %.3f sell %.3f\n", p.MACDFastPeriod, p.MACDSlowPeriod, p.MACDSignalPeriod, p.MACDBuyThreshold, p.MACDSellThreshold)
	fmt.Fprintf(w, "Pressure buy %.2f sell %.2f | min bid/ask %.2f\n", p.BuyPressureThreshold, p.SellPressureThreshold, p.MinBidAskRatio)
	fmt.Fprintf(w, "Take profit %.2f%% | stop loss %.2f%%\n", p.ProfitTargetPct, p.StopLossPct)
	fmt.Fprintf(w, "Min balance: %.3f SOL | max concurrent: %d\n", p.MinBalanceSOL, cfg.Trading.MaxConcurrentTrades)
	fmt.Fprintf(w, "Swap size: %d lamports | slippage %d bps\n", cfg.Swap.AmountLamports, cfg.Swap.SlippageBps)
	fmt.Fprintf(w, "Price source: %s | check every %dms\n", cfg.Prices.Source, cfg.Trading.PriceCheckIntervalMs)
}

func editStrategy(reader *bufio.Reader, cfg *config.Config) {
	fmt.Println("\n--- Edit Strategy ---")
	p := &cfg.Strategy.Params
	if cfg.Strategy.Mode == "hft" || cfg.Strategy.Mode == "high_frequency" {
		p = &cfg.Strategy.HFT
	}
	p.RSIOversold = promptFloat(reader, "RSI oversold", p.RSIOversold)
	p.RSIOverbought = promptFloat(reader, "RSI overbought", p.RSIOverbought)
	p.MACDBuyThreshold = promptFloat(reader, "MACD buy threshold", p.MACDBuyThreshold)
	p.MACDSellThreshold = promptFloat(reader, "MACD sell threshold", p.MACDSellThreshold)
	p.BuyPressureThreshold = promptFloat(reader, "Buy pressure threshold", p.BuyPressureThreshold)
	p.SellPressureThreshold = promptFloat(reader, "Sell pressure threshold", p.SellPressureThreshold)
	p.MinBidAskRatio = promptFloat(reader, "Min bid/ask ratio", p.MinBidAskRatio)
	p.MinBalanceSOL = promptFloat(reader, "Min balance (SOL)", p.MinBalanceSOL)
	p.ProfitTargetPct = promptFloat(reader, "Take profit (%)", p.ProfitTargetPct)
	p.StopLossPct = promptFloat(reader, "Stop loss (%)", p.StopLossPct)
}

func editTrading(reader *bufio.Reader, cfg *config.Config) {
	fmt.Println("\n--- Edit Trading ---")
	cfg.Trading.MaxConcurrentTrades = int(promptFloat(reader, "Max concurrent trades", float64(cfg.Trading.MaxConcurrentTrades)))
	cfg.Trading.PriceCheckIntervalMs = int(promptFloat(reader, "Price check interval (ms)", float64(cfg.Trading.PriceCheckIntervalMs)))
	cfg.Swap.AmountLamports = uint64(promptFloat(reader, "Swap amount (lamports)", float64(cfg.Swap.AmountLamports)))
	cfg.Swap.SlippageBps = int(promptFloat(reader, "Slippage (bps)", float64(cfg.Swap.SlippageBps)))
}

func launchBot(reader *bufio.Reader, path string) {
	fmt.Println("Launching pumpbot (Ctrl+C to stop)...")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := exec.CommandContext(ctx, "go", "run", "./cmd/pumpbot", "-config", path)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	if err := cmd.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start bot: %v\n", err)
		return
	}

	go func() {
		_ = cmd.Wait()
		cancel()
	}()

	fmt.Print("\nPress ENTER to stop the bot and return to menu...")
	_, _ = reader.ReadString('\n')
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func promptFloat(reader *bufio.Reader, label string, current float64) float64 {
	fmt.Printf("%s [%g]: ", label, current)
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return current
	}
	val, err := strconv.ParseFloat(line, 64)
	if err != nil {
		fmt.Printf("invalid number, keeping %g\n", current)
		return current
	}
	return val
}
