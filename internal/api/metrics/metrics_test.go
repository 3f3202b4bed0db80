package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_RegisterTwiceOnSeparateRegistries(t *testing.T) {
	a := New(prometheus.NewRegistry())
	b := New(prometheus.NewRegistry())

	a.ObserveLogin("success")
	a.ObserveLogin("success")
	b.ObserveLogin("success")

	if got := testutil.ToFloat64(a.LoginsTotal.WithLabelValues("success")); got != 2 {
		t.Fatalf("expected 2, got %v", got)
	}
	if got := testutil.ToFloat64(b.LoginsTotal.WithLabelValues("success")); got != 1 {
		t.Fatalf("expected 1, got %v", got)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveLogin("success")
	m.ObserveDenied("forbidden", "superuser")
	m.ObserveCreated("signup")
}

func TestMetrics_AuditObserver(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.AuditQueueDepth("0", 3)
	m.AuditEventDropped()

	if got := testutil.ToFloat64(m.AuditQueueDepthGauge.WithLabelValues("0")); got != 3 {
		t.Fatalf("expected depth 3, got %v", got)
	}
	if got := testutil.ToFloat64(m.AuditDroppedTotal); got != 1 {
		t.Fatalf("expected 1 dropped, got %v", got)
	}
}
