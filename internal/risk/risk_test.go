package risk

import "testing"

func TestSufficientBalance(t *testing.T) {
	limits := Limits{MinBalanceSOL: 0.1}
	if !limits.SufficientBalance(0.1) {
		t.Fatalf("expected balance at the floor to pass")
	}
	if limits.SufficientBalance(0.0999) {
		t.Fatalf("expected balance under the floor to fail")
	}
}

func TestAllowEntry(t *testing.T) {
	limits := Limits{MaxConcurrentTrades: 3}
	if !limits.AllowEntry(2) {
		t.Fatalf("expected entry under cap to pass")
	}
	if limits.AllowEntry(3) {
		t.Fatalf("expected entry at cap to fail")
	}
	if !(Limits{}).AllowEntry(100) {
		t.Fatalf("expected zero cap to disable the check")
	}
}
