package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestCollector_RecordsAndExposesMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := NewCollector(registry)

	c.RecordLoginSuccess()
	c.RecordLoginSuccess()
	c.RecordLoginFailure("token_exchange")
	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(404)
	c.RecordRequestDuration(25 * time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler(registry).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	body := w.Body.String()
	checks := []string{
		"nexlist_login_success_total 2",
		`nexlist_login_fail_total{reason="token_exchange"} 1`,
		`nexlist_http_status_total{status_code="200"} 1`,
		`nexlist_http_status_total{status_code="404"} 1`,
		"nexlist_request_duration_seconds",
	}
	for _, want := range checks {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestNewCollector_RegistersWithoutPanic(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("NewCollector panicked: %v", r)
		}
	}()
	NewCollector(prometheus.NewRegistry())
}
