package position

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestJSONLRecorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal", "trades.jsonl")

	recorder, err := NewJSONLRecorder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewJSONLRecorder error: %v", err)
	}
	trade := Trade{ID: "t1", Mint: "MINT", EntryPrice: 1, ExitPrice: 2, Amount: 3, PnL: 3, PnLPct: 100, Reason: "signal"}
	recorder.Record(trade)
	if err := recorder.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	recorder.Record(trade)

	trades, skipped, err := ReadTrades(path)
	if err != nil {
		t.Fatalf("ReadTrades error: %v", err)
	}
	if len(trades) != 1 || skipped != 0 {
		t.Fatalf("expected one trade after close, got %d (skipped %d)", len(trades), skipped)
	}
	if trades[0].Mint != trade.Mint || trades[0].PnL != trade.PnL {
		t.Fatalf("unexpected decoded trade %+v", trades[0])
	}
	if written, failed := recorder.Stats(); written != 1 || failed != 0 {
		t.Fatalf("expected 1 written 0 failed, got %d/%d", written, failed)
	}
}

func TestJSONLRecorderReportsEncodeFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.jsonl")
	var logs bytes.Buffer
	recorder, err := NewJSONLRecorder(path, zerolog.New(&logs))
	if err != nil {
		t.Fatalf("NewJSONLRecorder error: %v", err)
	}
	defer recorder.Close()

	recorder.Record(Trade{ID: "bad", Mint: "MINT", ExitPrice: math.NaN(), PnL: math.NaN()})
	recorder.Record(Trade{ID: "good", Mint: "MINT", ExitPrice: 2, PnL: 1})

	if written, failed := recorder.Stats(); written != 1 || failed != 1 {
		t.Fatalf("expected 1 written 1 failed, got %d/%d", written, failed)
	}
	if !strings.Contains(logs.String(), `"trade":"bad"`) || !strings.Contains(logs.String(), "encode trade") {
		t.Fatalf("expected encode failure to be logged, got %s", logs.String())
	}
	trades, skipped, err := ReadTrades(path)
	if err != nil {
		t.Fatalf("ReadTrades error: %v", err)
	}
	if len(trades) != 1 || trades[0].ID != "good" || skipped != 0 {
		t.Fatalf("expected only the good trade on disk, got %+v (skipped %d)", trades, skipped)
	}
}

func TestReadTradesSkipsCorruptLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.jsonl")
	data := `{"id":"a","mint":"M1","pnl":1}` + "\n" + `{"id":"b","mint` + "\n\n" + `{"id":"c","mint":"M2","pnl":-1}` + "\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write journal: %v", err)
	}
	trades, skipped, err := ReadTrades(path)
	if err != nil {
		t.Fatalf("ReadTrades error: %v", err)
	}
	if len(trades) != 2 || skipped != 1 {
		t.Fatalf("expected 2 trades and 1 skipped, got %d/%d", len(trades), skipped)
	}

	missing, _, err := ReadTrades(filepath.Join(t.TempDir(), "absent.jsonl"))
	if err != nil || len(missing) != 0 {
		t.Fatalf("expected empty result for missing journal, got %v %v", missing, err)
	}
}

func TestJournalReset(t *testing.T) {
	journal := NewJournal(2)
	MultiRecorder{journal, nil}.Record(Trade{Mint: "MINT", PnL: 1})

	if len(journal.Snapshot()) != 1 {
		t.Fatalf("expected 1 trade")
	}
	journal.Reset()
	if len(journal.Snapshot()) != 0 {
		t.Fatalf("expected journal reset")
	}
}
