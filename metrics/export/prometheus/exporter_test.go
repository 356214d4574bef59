package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	cylink "github.com/cylink-sh/cylink-go"
)

type fakeSource struct {
	snapshot         cylink.MetricsSnapshot
	telemetryDropped uint64
	clicksDropped    uint64
}

func (f fakeSource) MetricsSnapshot() cylink.MetricsSnapshot { return f.snapshot }
func (f fakeSource) TelemetryDropped() uint64                { return f.telemetryDropped }
func (f fakeSource) ClicksDropped() uint64                   { return f.clicksDropped }

func TestRenderEmptyWhenMetricsDisabled(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: cylink.MetricsSnapshot{
			Counters:   map[cylink.MetricID]uint64{},
			Histograms: map[cylink.MetricID][]uint64{},
		},
	})

	if got := exp.Render(); got != "" {
		t.Fatalf("expected empty output for disabled metrics, got:\n%s", got)
	}
}

func TestRenderIncludesCounterAndHistogram(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: cylink.MetricsSnapshot{
			Counters: map[cylink.MetricID]uint64{
				cylink.MetricResolveSuccess:  7,
				cylink.MetricResolveFallback: 2,
			},
			Histograms: map[cylink.MetricID][]uint64{
				cylink.MetricResolveLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		telemetryDropped: 2,
		clicksDropped:    1,
	})

	out := exp.Render()
	if !strings.Contains(out, "cylink_resolve_success_total 7") {
		t.Fatalf("expected resolve_success counter in output, got:\n%s", out)
	}
	if !strings.Contains(out, "cylink_resolve_fallback_total 2") {
		t.Fatalf("expected resolve_fallback counter in output, got:\n%s", out)
	}
	if !strings.Contains(out, "cylink_resolve_latency_seconds_bucket{le=\"0.005\"} 1") {
		t.Fatalf("expected first histogram bucket in output, got:\n%s", out)
	}
	if !strings.Contains(out, "cylink_resolve_latency_seconds_bucket{le=\"+Inf\"} 36") {
		t.Fatalf("expected +Inf cumulative bucket in output, got:\n%s", out)
	}
	if !strings.Contains(out, "cylink_telemetry_dropped_total 2") {
		t.Fatalf("expected telemetry dropped counter in output, got:\n%s", out)
	}
	if !strings.Contains(out, "cylink_click_queue_dropped_total 1") {
		t.Fatalf("expected click queue dropped counter in output, got:\n%s", out)
	}
}

func TestHandlerWritesPrometheusContentType(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: cylink.MetricsSnapshot{
			Counters:   map[cylink.MetricID]uint64{cylink.MetricResolveSuccess: 1},
			Histograms: map[cylink.MetricID][]uint64{},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "text/plain") {
		t.Fatalf("expected prometheus content type, got %q", got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func BenchmarkRender(b *testing.B) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: cylink.MetricsSnapshot{
			Counters: map[cylink.MetricID]uint64{
				cylink.MetricResolveSuccess:  1000,
				cylink.MetricResolveFallback: 40,
				cylink.MetricResolveNotFound: 80,
				cylink.MetricClickRecorded:   900,
				cylink.MetricClickDeduped:    100,
				cylink.MetricLinkCreated:     25,
			},
			Histograms: map[cylink.MetricID][]uint64{
				cylink.MetricResolveLatency: {10, 20, 30, 40, 50, 60, 70, 80},
			},
		},
	})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = exp.Render()
	}
}
