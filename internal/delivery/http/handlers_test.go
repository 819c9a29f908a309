package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ilindan-dev/pitch-dispatcher/internal/config"
	"github.com/ilindan-dev/pitch-dispatcher/internal/domain/model"
	"github.com/ilindan-dev/pitch-dispatcher/internal/intake"
	"github.com/ilindan-dev/pitch-dispatcher/internal/service"
	"github.com/ilindan-dev/pitch-dispatcher/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandler struct {
	outcome  model.Outcome
	err      error
	payloads []string
}

func (s *stubHandler) Handle(_ context.Context, payload []byte) (model.Outcome, error) {
	s.payloads = append(s.payloads, string(payload))
	return s.outcome, s.err
}

func newTestRouter(path string, handler intake.EventHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zerolog.Nop()
	return NewRouter(NewHandlers(Endpoint{Path: path, Handler: handler}, &logger))
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, path, strings.NewReader(body)))
	return w
}

func TestHandleEventPassesRawBody(t *testing.T) {
	stub := &stubHandler{outcome: model.Outcome{Status: model.OutcomeSent, Rule: "receipt", Sent: 1}}
	router := newTestRouter("/api/v1/user-emails", stub)

	for _, path := range []string{"/api/v1/user-emails", "/"} {
		w := do(router, http.MethodPost, path, `{"type":"INSERT"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp EventResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "sent", resp.Status)
		assert.Equal(t, "receipt", resp.Rule)
		assert.Equal(t, 1, resp.Sent)
	}
	assert.Equal(t, []string{`{"type":"INSERT"}`, `{"type":"INSERT"}`}, stub.payloads)
}

func TestHandleEventServiceErrorIs500(t *testing.T) {
	stub := &stubHandler{outcome: model.Outcome{Status: model.OutcomeFailed, Rule: "receipt"}, err: errors.New("delivery failed")}
	router := newTestRouter("/api/v1/user-emails", stub)

	w := do(router, http.MethodPost, "/api/v1/user-emails", `{}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "receipt", resp.Rule)
}

func TestOtherMethodsAreNotAllowed(t *testing.T) {
	router := newTestRouter("/api/v1/admin-alerts", &stubHandler{})

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		assert.Equal(t, http.StatusMethodNotAllowed, do(router, method, "/api/v1/admin-alerts", "").Code, method)
		assert.Equal(t, http.StatusMethodNotAllowed, do(router, method, "/", "").Code, method)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	router := newTestRouter("/api/v1/admin-alerts", &stubHandler{})

	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/health", "").Code)

	w := do(router, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_request_duration_seconds")
}

// The alert router answers 200 for bodies it cannot use.
func TestAlertRouterEndpointIgnoresBadBodies(t *testing.T) {
	logger := zerolog.Nop()
	router := service.NewAlertRouter(&config.Config{}, testutil.NewDirectory(), &testutil.Notifier{}, &logger)
	engine := newTestRouter("/api/v1/admin-alerts", router)

	for _, body := range []string{"", "not json", `{"type":"INSERT","table":"nope"}`} {
		w := do(engine, http.MethodPost, "/api/v1/admin-alerts", body)
		require.Equal(t, http.StatusOK, w.Code, body)

		var resp EventResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "ignored", resp.Status, body)
	}
}
