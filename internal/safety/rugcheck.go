// Package safety screens fresh listings against the RugCheck token report.
package safety

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.rugcheck.xyz"

// Rules decides which report findings reject a token. Zero thresholds are off.
type Rules struct {
	AllowMintAuthority      bool
	AllowFreezeAuthority    bool
	AllowRugged             bool
	AllowMutable            bool
	AllowInsiderTopHolders  bool
	ExcludeLPFromTopHolders bool
	MaxTopHolderPct         float64
	MinTotalMarkets         int
	MinTotalLPProviders     int
	MinMarketLiquidity      float64
	MaxScore                int
	BlockNames              []string
	BlockSymbols            []string
	LegacyNotAllowed        []string
}

// RugCheck implements the lifecycle safety gate.
type RugCheck struct {
	BaseURL string
	Rules   Rules
	Http    *http.Client

	limiter *rate.Limiter
	log     zerolog.Logger
}

// NewRugCheck builds a checker limited to rps report requests per second.
func NewRugCheck(baseURL string, rules Rules, rps float64, timeout time.Duration, log zerolog.Logger) *RugCheck {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if rps <= 0 {
		rps = 2
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RugCheck{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Rules:   rules,
		Http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		log:     log.With().Str("component", "rugcheck").Logger(),
	}
}

// Check fetches the report for mint and returns false with no error when any
// rule fails.
func (r *RugCheck) Check(ctx context.Context, mint string) (bool, error) {
	report, err := r.report(ctx, mint)
	if err != nil {
		return false, err
	}
	problems := Evaluate(report, r.Rules)
	if len(problems) > 0 {
		r.log.Info().Str("mint", mint).Strs("problems", problems).Msg("token failed safety")
		return false, nil
	}
	return true, nil
}

func (r *RugCheck) report(ctx context.Context, mint string) (gjson.Result, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return gjson.Result{}, err
	}
	url := fmt.Sprintf("%s/v1/tokens/%s/report", r.BaseURL, mint)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return gjson.Result{}, err
	}
	resp, err := r.Http.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("rugcheck: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, fmt.Errorf("rugcheck status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("rugcheck: invalid json")
	}
	return gjson.ParseBytes(body), nil
}

// Evaluate lists every rule the report violates.
func Evaluate(report gjson.Result, rules Rules) []string {
	var problems []string
	fail := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if !rules.AllowMintAuthority && report.Get("token.mintAuthority").String() != "" {
		fail("mint authority set")
	}
	if !rules.AllowFreezeAuthority && report.Get("token.freezeAuthority").String() != "" {
		fail("freeze authority set")
	}
	if !rules.AllowRugged && report.Get("rugged").Bool() {
		fail("rugged")
	}
	if !rules.AllowMutable && report.Get("tokenMeta.mutable").Bool() {
		fail("mutable metadata")
	}

	name := report.Get("tokenMeta.name").String()
	symbol := report.Get("tokenMeta.symbol").String()
	if blocked(name, rules.BlockNames) {
		fail("blocked name %q", name)
	}
	if blocked(symbol, rules.BlockSymbols) {
		fail("blocked symbol %q", symbol)
	}

	lpAccounts := map[string]bool{}
	if rules.ExcludeLPFromTopHolders {
		report.Get("markets.#.liquidityA").ForEach(func(_, v gjson.Result) bool {
			lpAccounts[v.String()] = true
			return true
		})
		report.Get("markets.#.liquidityB").ForEach(func(_, v gjson.Result) bool {
			lpAccounts[v.String()] = true
			return true
		})
	}
	report.Get("topHolders").ForEach(func(_, h gjson.Result) bool {
		if lpAccounts[h.Get("address").String()] {
			return true
		}
		if !rules.AllowInsiderTopHolders && h.Get("insider").Bool() {
			fail("insider in top holders")
			return false
		}
		if rules.MaxTopHolderPct > 0 && h.Get("pct").Float() > rules.MaxTopHolderPct {
			fail("top holder owns %.2f%%", h.Get("pct").Float())
			return false
		}
		return true
	})

	if markets := int(report.Get("markets.#").Int()); rules.MinTotalMarkets > 0 && markets < rules.MinTotalMarkets {
		fail("%d markets below %d", markets, rules.MinTotalMarkets)
	}
	if lps := int(report.Get("totalLPProviders").Int()); rules.MinTotalLPProviders > 0 && lps < rules.MinTotalLPProviders {
		fail("%d lp providers below %d", lps, rules.MinTotalLPProviders)
	}
	if liq := report.Get("totalMarketLiquidity").Float(); rules.MinMarketLiquidity > 0 && liq < rules.MinMarketLiquidity {
		fail("market liquidity %.2f below %.2f", liq, rules.MinMarketLiquidity)
	}
	if score := int(report.Get("score").Int()); rules.MaxScore > 0 && score > rules.MaxScore {
		fail("score %d above %d", score, rules.MaxScore)
	}

	report.Get("risks.#.name").ForEach(func(_, v gjson.Result) bool {
		for _, name := range rules.LegacyNotAllowed {
			if strings.EqualFold(v.String(), name) {
				fail("risk %q", v.String())
			}
		}
		return true
	})
	return problems
}

func blocked(value string, list []string) bool {
	if value == "" {
		return false
	}
	for _, b := range list {
		if b != "" && strings.EqualFold(strings.TrimSpace(value), b) {
			return true
		}
	}
	return false
}
