package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.Submission("accepted")
	m.Submission("accepted")
	m.Payout("insufficient_balance")
	m.ProviderCall("create_payout", errors.New("boom"))
	m.ObserveOracle("broadcast", time.Now())
	m.StatusUpdated()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	for _, want := range []string{
		`sharemitra_submissions_total{outcome="accepted"} 2`,
		`sharemitra_payouts_total{outcome="insufficient_balance"} 1`,
		`sharemitra_payout_provider_calls_total{op="create_payout",result="error"} 1`,
		`sharemitra_payout_status_updates_total 1`,
		`sharemitra_oracle_request_seconds_count{check="broadcast"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.Submission("accepted")
	m.Payout("ok")
	m.ObserveOracle("broadcast", time.Now())
	m.ProviderCall("x", nil)
	m.StatusUpdated()
}
