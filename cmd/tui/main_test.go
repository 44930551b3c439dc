package main

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"pumpbot/internal/config"
)

func TestPromptFloat(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("\n2.5\nabc\n"))
	if got := promptFloat(reader, "keep", 1); got != 1 {
		t.Fatalf("blank input should keep current, got %v", got)
	}
	if got := promptFloat(reader, "set", 1); got != 2.5 {
		t.Fatalf("expected 2.5, got %v", got)
	}
	if got := promptFloat(reader, "bad", 3); got != 3 {
		t.Fatalf("invalid input should keep current, got %v", got)
	}
}

func TestEditStrategyTargetsActiveBlock(t *testing.T) {
	cfg := &config.Config{}
	cfg.Strategy.Mode = "hft"
	cfg.ApplyDefaults()
	reader := bufio.NewReader(strings.NewReader("25\n\n\n\n\n\n\n\n\n3\n"))
	editStrategy(reader, cfg)
	if cfg.Strategy.HFT.RSIOversold != 25 || cfg.Strategy.HFT.StopLossPct != 3 {
		t.Fatalf("expected hft block edited, got %+v", cfg.Strategy.HFT)
	}
	if cfg.Strategy.Params.RSIOversold != 30 {
		t.Fatalf("pumpfun block should be untouched")
	}
}

func TestPrintSummary(t *testing.T) {
	cfg := &config.Config{}
	cfg.ApplyDefaults()
	var buf bytes.Buffer
	printSummary(&buf, cfg)
	out := buf.String()
	for _, want := range []string{"Strategy: pumpfun", "Simulation mode: true", "MACD 12/26/9"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}
