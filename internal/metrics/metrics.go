// Package metrics exposes Prometheus collectors for the trading agent.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ListingsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "pumpbot_listings_total", Help: "New token listings observed"},
	)
	RejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pumpbot_rejections_total", Help: "Tokens rejected before entry"},
		[]string{"reason"},
	)
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pumpbot_signals_total", Help: "Trade signals emitted by the strategy"},
		[]string{"type"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pumpbot_orders_total", Help: "Swaps submitted"},
		[]string{"side", "result"},
	)
	StateTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pumpbot_state_transitions_total", Help: "Token lifecycle transitions by target state"},
		[]string{"state"},
	)
	OpenPositions = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "pumpbot_open_positions", Help: "Currently open positions"},
	)
	RealizedPnL = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "pumpbot_realized_pnl_sol", Help: "Realized profit and loss in SOL"},
	)
	WalletBalance = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "pumpbot_wallet_balance_sol", Help: "Last observed wallet balance in SOL"},
	)
	UnrealizedPnL = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "pumpbot_unrealized_pnl_sol", Help: "Mark-to-market PnL per open position"},
		[]string{"mint"},
	)
)

func init() {
	prometheus.MustRegister(
		ListingsTotal,
		RejectionsTotal,
		SignalsTotal,
		OrdersTotal,
		StateTransitions,
		OpenPositions,
		RealizedPnL,
		WalletBalance,
		UnrealizedPnL,
	)
}

// Serve starts the /metrics endpoint in the background.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
