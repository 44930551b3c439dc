package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestServeRegistersMetrics(t *testing.T) {
	srv := Serve(":0")
	defer srv.Close()

	OrdersTotal.WithLabelValues("buy", "ok").Inc()

	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	found := false
	for _, mf := range mfs {
		if mf.GetName() == "pumpbot_orders_total" {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("pumpbot_orders_total metric not found")
	}
}

func TestRejectionsCountedByReason(t *testing.T) {
	before := testutil.ToFloat64(RejectionsTotal.WithLabelValues("safety"))
	RejectionsTotal.WithLabelValues("safety").Inc()
	if got := testutil.ToFloat64(RejectionsTotal.WithLabelValues("safety")); got != before+1 {
		t.Fatalf("expected %v, got %v", before+1, got)
	}
}
