package prometheus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MrEthical07/swclient"
)

type fakeSource struct {
	snapshot swclient.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() swclient.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                    { return f.dropped }

func TestRenderEmptyWhenMetricsDisabled(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: swclient.MetricsSnapshot{
			Counters:   map[swclient.MetricID]uint64{},
			Histograms: map[swclient.MetricID][]uint64{},
		},
		dropped: 0,
	})

	if got := exp.Render(); got != "" {
		t.Fatalf("expected empty output for disabled metrics, got:\n%s", got)
	}
}

func TestRenderDeterministicIncludesCounterAndHistogram(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: swclient.MetricsSnapshot{
			Counters: map[swclient.MetricID]uint64{
				swclient.MetricRequest: 7,
			},
			Histograms: map[swclient.MetricID][]uint64{
				swclient.MetricRequestLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		dropped: 2,
	})

	out := exp.Render()
	if !strings.Contains(out, "swclient_requests_total 7") {
		t.Fatalf("expected requests counter in output, got:\n%s", out)
	}
	if !strings.Contains(out, "swclient_request_latency_seconds_bucket{le=\"0.05\"} 1") {
		t.Fatalf("expected first histogram bucket in output, got:\n%s", out)
	}
	if !strings.Contains(out, "swclient_request_latency_seconds_bucket{le=\"+Inf\"} 36") {
		t.Fatalf("expected +Inf cumulative bucket in output, got:\n%s", out)
	}
	if !strings.Contains(out, "swclient_audit_dropped_total 2") {
		t.Fatalf("expected audit dropped counter in output, got:\n%s", out)
	}
}

func TestHandlerWritesPrometheusContentType(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: swclient.MetricsSnapshot{
			Counters:   map[swclient.MetricID]uint64{swclient.MetricRequest: 1},
			Histograms: map[swclient.MetricID][]uint64{},
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

func TestRenderFromClient(t *testing.T) {
	c, err := swclient.New().WithBaseURL("http://backend.invalid").Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer c.Close()

	user := swclient.User{ID: 1, Email: "a@b.com", Role: swclient.RoleEmployee}
	if err := c.SetSession(context.Background(), "tok-abc", user); err != nil {
		t.Fatalf("SetSession failed: %v", err)
	}
	_ = c.ClearSession(context.Background())

	out := NewPrometheusExporter(c).Render()
	if !strings.Contains(out, "swclient_session_set_total 1") || !strings.Contains(out, "swclient_session_cleared_total 1") {
		t.Fatalf("expected session counters, got:\n%s", out)
	}
}

func BenchmarkRender(b *testing.B) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: swclient.MetricsSnapshot{
			Counters: map[swclient.MetricID]uint64{
				swclient.MetricRequest:                1000,
				swclient.MetricForbidden:                40,
				swclient.MetricRequestSuccess:              800,
				swclient.MetricServerFault:              10,
				swclient.MetricSessionSet:              800,
				swclient.MetricSessionCleared:          20,
				swclient.MetricRedirect: 3,
			},
			Histograms: map[swclient.MetricID][]uint64{
				swclient.MetricRequestLatency: {10, 20, 30, 40, 50, 60, 70, 80},
			},
		},
		dropped: 0,
	})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = exp.Render()
	}
}
