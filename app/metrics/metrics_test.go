package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordersUpdateCounters(t *testing.T) {
	before := testutil.ToFloat64(requestsCreated.WithLabelValues("leave"))
	RecordRequestCreated("leave")
	if got := testutil.ToFloat64(requestsCreated.WithLabelValues("leave")); got != before+1 {
		t.Fatalf("requests_created = %v, want %v", got, before+1)
	}

	RecordBroadcast(3, 1)
	if got := testutil.ToFloat64(broadcastMessages.WithLabelValues("failed")); got < 1 {
		t.Fatalf("broadcast failed = %v", got)
	}
}

func TestHandlerExposesDomainMetrics(t *testing.T) {
	RecordDecision("approve")
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "hrbot_decisions_total") {
		t.Fatal("decisions counter missing from exposition")
	}
}

func TestRecordBuildInfo(t *testing.T) {
	RecordBuildInfo()
	RecordBuildInfo()
	if n := testutil.CollectAndCount(buildInfo); n != 1 {
		t.Fatalf("build_info series = %d, want 1", n)
	}
}
