package safety

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

const cleanReport = `{
 "token": {"mintAuthority": null, "freezeAuthority": null},
 "tokenMeta": {"name": "Doge Two", "symbol": "DOG2", "mutable": false},
 "topHolders": [{"address": "LPVAULT", "pct": 60, "insider": false}, {"address": "W1", "pct": 4.5, "insider": false}],
 "markets": [{"pubkey": "M1", "liquidityA": "LPVAULT", "liquidityB": "LPVAULTB"}],
 "totalLPProviders": 3,
 "totalMarketLiquidity": 12000.5,
 "score": 101,
 "rugged": false,
 "risks": [{"name": "Low amount of LP Providers", "level": "warn"}]
}`

func TestEvaluatePassesCleanReport(t *testing.T) {
	rules := Rules{ExcludeLPFromTopHolders: true, MaxTopHolderPct: 30, MinTotalMarkets: 1, MaxScore: 500}
	if problems := Evaluate(gjson.Parse(cleanReport), rules); len(problems) != 0 {
		t.Fatalf("expected no problems, got %v", problems)
	}
}

func TestEvaluateFlagsEachRule(t *testing.T) {
	report := gjson.Parse(`{
 "token": {"mintAuthority": "AUTH", "freezeAuthority": "FRZ"},
 "tokenMeta": {"name": "XXX", "symbol": "xxx", "mutable": true},
 "topHolders": [{"address": "W1", "pct": 12, "insider": true}],
 "markets": [],
 "totalLPProviders": 0,
 "totalMarketLiquidity": 10,
 "score": 9000,
 "rugged": true,
 "risks": [{"name": "Copycat token"}]
}`)
	rules := Rules{
		MinTotalMarkets:     1,
		MinTotalLPProviders: 1,
		MinMarketLiquidity:  100,
		MaxScore:            500,
		BlockNames:          []string{"XXX"},
		BlockSymbols:        []string{"XXX"},
		LegacyNotAllowed:    []string{"copycat token"},
	}
	problems := Evaluate(report, rules)
	if len(problems) != 12 {
		t.Fatalf("expected 12 problems, got %d: %v", len(problems), problems)
	}
}

func TestEvaluateTopHolderConcentration(t *testing.T) {
	rules := Rules{MaxTopHolderPct: 30}
	if problems := Evaluate(gjson.Parse(cleanReport), rules); len(problems) != 1 {
		t.Fatalf("expected lp vault to count without exclusion, got %v", problems)
	}
}

func TestEvaluateAllowances(t *testing.T) {
	report := gjson.Parse(`{"token":{"mintAuthority":"A","freezeAuthority":"F"},"tokenMeta":{"mutable":true},"rugged":true,
"topHolders":[{"address":"W","pct":1,"insider":true}]}`)
	rules := Rules{AllowMintAuthority: true, AllowFreezeAuthority: true, AllowMutable: true, AllowRugged: true, AllowInsiderTopHolders: true}
	if problems := Evaluate(report, rules); len(problems) != 0 {
		t.Fatalf("expected allowances to pass, got %v", problems)
	}
}

func TestRugCheckCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/tokens/GOOD/report":
			_, _ = w.Write([]byte(cleanReport))
		case "/v1/tokens/BAD/report":
			_, _ = w.Write([]byte(`{"rugged": true}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	checker := NewRugCheck(server.URL+"/", Rules{ExcludeLPFromTopHolders: true, MaxTopHolderPct: 30}, 100, time.Second, zerolog.Nop())
	ctx := context.Background()

	ok, err := checker.Check(ctx, "GOOD")
	if err != nil || !ok {
		t.Fatalf("expected GOOD to pass, got %v %v", ok, err)
	}
	ok, err = checker.Check(ctx, "BAD")
	if err != nil || ok {
		t.Fatalf("expected BAD to fail without error, got %v %v", ok, err)
	}
	if _, err := checker.Check(ctx, "MISSING"); err == nil {
		t.Fatalf("expected status error for MISSING")
	}
}
