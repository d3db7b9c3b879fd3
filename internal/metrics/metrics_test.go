package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.Event("start")
	m.Event("start")
	m.RowAppended("expense")
	m.RowDeleted("income")
	m.StoreError("append")
	m.Rejected("value_range")
	m.Unauthorized()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.events.WithLabelValues("start")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.appended.WithLabelValues("expense")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.deleted.WithLabelValues("income")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeErrors.WithLabelValues("append")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejections.WithLabelValues("value_range")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.denied))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Event("start")
		m.RowAppended("expense")
		m.StoreError("append")
		m.Unauthorized()
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.RowAppended("expense")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `budgetbot_rows_appended_total{table="expense"} 1`)
}
