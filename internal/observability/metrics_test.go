package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRequest(t *testing.T) {
	m := NewMetrics("test")
	m.RecordRequest("/api/crypto/data", http.MethodPost, http.StatusOK, 20*time.Millisecond)
	m.RecordRequest("/api/crypto/data", http.MethodPost, http.StatusNotFound, time.Millisecond)
	m.RecordRequest("/api/crypto/data", http.MethodPost, http.StatusNotFound, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/api/crypto/data", "POST", "2xx")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/api/crypto/data", "POST", "4xx")))
}

func TestRecordIntentAndTableLoad(t *testing.T) {
	m := NewMetrics("")
	m.RecordIntent("price_query")
	m.RecordIntent("price_query")
	m.RecordChatFailure()
	m.RecordTableLoad("csv", 42, 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ChatIntents.WithLabelValues("price_query")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChatFailures))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.TableRows))
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := NewMetrics("test")
	m.RecordIntent("greeting")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `test_chat_intents_total{intent="greeting"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestMetricsInstancesAreIndependent(t *testing.T) {
	a := NewMetrics("test")
	b := NewMetrics("test")
	a.RecordChatFailure()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ChatFailures))
}
