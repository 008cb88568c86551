package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chris/clothing-swap-settlement/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	rr := httptest.NewRecorder()
	c.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	return rr.Body.String()
}

func TestObserveSettlement(t *testing.T) {
	c := New()

	c.ObserveSettlement("redeem", nil, 5*time.Millisecond)
	c.ObserveSettlement("redeem", models.ErrTransactionFailed, time.Millisecond)
	c.ObserveSettlement("redeem", nil, time.Millisecond)

	body := scrape(t, c)
	assert.Contains(t, body, `swap_settlement_settlement_total{kind="redeem",outcome="ok"} 2`)
	assert.Contains(t, body, `swap_settlement_settlement_total{kind="redeem",outcome="TransactionFailure"} 1`)
	assert.Contains(t, body, `swap_settlement_settlement_duration_seconds_count{kind="redeem"} 3`)
}

func TestHTTPAndAudit(t *testing.T) {
	c := New()
	done := c.RequestStarted()
	done(http.MethodPost, "/items/{itemId}/redeem", http.StatusCreated)
	c.SetInconsistentUsers(2)

	body := scrape(t, c)
	assert.Contains(t, body, `swap_settlement_http_requests_total{method="POST",route="/items/{itemId}/redeem",status="201"} 1`)
	assert.Contains(t, body, "swap_settlement_http_inflight_requests 0")
	assert.Contains(t, body, "swap_settlement_ledger_inconsistent_users 2")
}
