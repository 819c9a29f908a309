package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveEventDefaultsRule(t *testing.T) {
	before := testutil.ToFloat64(events.WithLabelValues("alert-router", "ignored", "none"))
	ObserveEvent("alert-router", "ignored", "")
	assert.Equal(t, before+1, testutil.ToFloat64(events.WithLabelValues("alert-router", "ignored", "none")))
}

func TestObserveDelivery(t *testing.T) {
	okBefore := testutil.ToFloat64(deliveries.WithLabelValues("webhook", "ok"))
	errBefore := testutil.ToFloat64(deliveries.WithLabelValues("webhook", "error"))

	ObserveDelivery("webhook", nil)
	ObserveDelivery("webhook", errors.New("boom"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(deliveries.WithLabelValues("webhook", "ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(deliveries.WithLabelValues("webhook", "error")))
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.POST("/api/v1/admin-alerts", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(httpRequests.WithLabelValues("/api/v1/admin-alerts", http.MethodPost, "200"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/admin-alerts", nil))

	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("/api/v1/admin-alerts", http.MethodPost, "200")))
}
