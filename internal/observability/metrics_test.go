package observability

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveInvocation(t *testing.T) {
	t.Parallel()

	// Arrange
	m := New("unit")

	// Act
	m.ObserveInvocation("greet", 2*time.Millisecond, nil)
	m.ObserveInvocation("greet", time.Millisecond, nil)
	m.ObserveInvocation("greet", time.Millisecond, errors.New("boom"))

	// Assert
	assert.Equal(t, 2.0, testutil.ToFloat64(m.invocations.WithLabelValues("unit", "greet", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.invocations.WithLabelValues("unit", "greet", "fault")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.invokeDuration))
}

func TestInstancesAreIsolated(t *testing.T) {
	t.Parallel()

	a, b := New("a"), New("b")
	a.ObserveInvocation("x", 0, nil)

	assert.Equal(t, 1, testutil.CollectAndCount(a.invocations))
	assert.Equal(t, 0, testutil.CollectAndCount(b.invocations))
}

func TestMiddleware(t *testing.T) {
	// Arrange
	gin.SetMode(gin.TestMode)
	m := New("web")
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	r := gin.New()
	r.Use(RequestLogger(logger), m.RequestMetricsMiddleware())
	r.GET("/items/:id", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	// Act
	for _, path := range []string{"/items/1", "/items/2", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	// Assert
	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("web", "GET", "/items/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("web", "GET", "/nope", "404")))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "hotswap_http_requests_total"))
	assert.Contains(t, logs.String(), "level=WARN msg=http_request method=GET path=/nope status=404")
}
