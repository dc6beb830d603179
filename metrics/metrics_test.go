package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordFetch(t *testing.T) {
	before := testutil.ToFloat64(fetches.WithLabelValues("ok"))
	RecordFetch("ok", 120*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(fetches.WithLabelValues("ok")))

	before = testutil.ToFloat64(fetches.WithLabelValues("unknown"))
	RecordFetch("", time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(fetches.WithLabelValues("unknown")))
}

func TestRecordPricesAndAlerts(t *testing.T) {
	RecordPrices(13.494, 10.5)
	assert.Equal(t, 13.494, testutil.ToFloat64(currentPrice))
	assert.Equal(t, 10.5, testutil.ToFloat64(nextPrice))

	before := testutil.ToFloat64(alerts.WithLabelValues("below"))
	RecordAlert("below")
	assert.Equal(t, before+1, testutil.ToFloat64(alerts.WithLabelValues("below")))

	before = testutil.ToFloat64(feedAnomalies.WithLabelValues("gap"))
	RecordAnomaly("gap")
	assert.Equal(t, before+1, testutil.ToFloat64(feedAnomalies.WithLabelValues("gap")))
}

func TestSetWebsocketClients(t *testing.T) {
	SetWebsocketClients(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(websocketClients))
	SetWebsocketClients(0)
	assert.Equal(t, 0.0, testutil.ToFloat64(websocketClients))
}

func TestCanonicalPath(t *testing.T) {
	tests := map[string]string{
		"":                  "/",
		"/":                 "/",
		"/api/status":       "/api/status",
		"/api/prices/extra": "/api/prices",
		"/api":              "/api",
		"/prices":           "/prices",
		"/chartjs/chart.js": "/static",
		"/wp-admin/x.php":   "/other",
	}
	for in, want := range tests {
		assert.Equal(t, want, canonicalPath(in), in)
	}
}

func TestInstrumentHandler(t *testing.T) {
	h := InstrumentHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/status", "418"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/status", "418")))
}

func TestHandler(t *testing.T) {
	RecordPrices(1, 2)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "spotprice_monitor_current_price_cents 1"))
}
