package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ikkim/bizreview-backend/internal/app/service"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventCounter(t *testing.T) {
	created := testutil.ToFloat64(entityEvents.WithLabelValues(string(service.EventBusinessDeleted)))
	cascaded := testutil.ToFloat64(cascadedReviews)

	EventCounter{}.Publish(service.Event{Type: service.EventBusinessDeleted, ID: 1, Cascaded: []int64{2, 3}})

	assert.Equal(t, created+1, testutil.ToFloat64(entityEvents.WithLabelValues(string(service.EventBusinessDeleted))))
	assert.Equal(t, cascaded+2, testutil.ToFloat64(cascadedReviews))
}

func TestObserveRequestAndHandler(t *testing.T) {
	done := InFlight()
	assert.Equal(t, 1.0, testutil.ToFloat64(httpInFlight))
	done()
	assert.Equal(t, 0.0, testutil.ToFloat64(httpInFlight))

	ObserveRequest("get", "/businesses/:id", http.StatusOK, 5*time.Millisecond)
	ObserveRequest("GET", "", http.StatusNotFound, time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/businesses/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "unmatched", "404")))

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bizreview_http_requests_total")
}
