package cylink

import "testing"

func TestClickEnqueueAfterCloseCountsDrop(t *testing.T) {
	metrics := NewMetrics(MetricsConfig{Enabled: true})
	r := newClickRecorder(ClicksConfig{Enabled: true, BufferSize: 4}, nil, nil, metrics, nil)
	r.Close()

	r.Enqueue(clickJob{code: "abc123", visitorID: "visitor-1"})

	if got := r.Dropped(); got != 1 {
		t.Fatalf("Dropped = %d, want 1", got)
	}
	if got := metrics.Value(MetricClickDropped); got != 1 {
		t.Fatalf("MetricClickDropped = %d, want 1", got)
	}
	if got := metrics.Value(MetricClickEnqueued); got != 0 {
		t.Fatalf("MetricClickEnqueued = %d, want 0", got)
	}
}
