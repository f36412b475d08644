package metrics_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/castup/castup/internal/metrics"
)

func TestRegistryExposesMetrics(t *testing.T) {
	metrics.EmitBuildInfo()
	metrics.AddProcessStart("metrics-test-service")
	metrics.AddShutdownTrigger("signal")

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}).ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("unexpected status code from metrics handler: %d", rec.Code)
	}

	body := rec.Body.String()
	startLine := `castup_process_starts_total{service="metrics-test-service"} 1`
	if !strings.Contains(body, startLine) {
		t.Fatalf("expected start counter line %q in body:\n%s", startLine, body)
	}
	triggerLine := `castup_shutdown_triggers_total{trigger="signal"} 1`
	if !strings.Contains(body, triggerLine) {
		t.Fatalf("expected trigger counter line %q in body:\n%s", triggerLine, body)
	}
	if !strings.Contains(body, "castup_build_info{") {
		t.Fatalf("expected build info metric in body:\n%s", body)
	}
}
