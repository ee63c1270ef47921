package server

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codebase-docgen/internal/config"
	"codebase-docgen/internal/handler"
	"codebase-docgen/internal/service"
	"codebase-docgen/pkg/response"
	"codebase-docgen/test/mocks"
)

var factPattern = regexp.MustCompile(`^<h1>Welcome to the App deployed via GitHub Actions!</h1><p>Random Logic: (\d+) ([+-]) (\d+) = (-?\d+)</p>$`)

func newTestServer(t *testing.T, cfg config.ServerConfig) *server {
	t.Helper()
	greeting := handler.NewGreetingHandler(service.NewFactService(rand.NewPCG(3, 4)), cfg.CustomMessage, &mocks.MockLogger{})
	return NewServer(cfg, greeting, prometheus.NewRegistry(), &mocks.MockLogger{}).(*server)
}

func do(s *server, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestHelloRoute(t *testing.T) {
	s := newTestServer(t, config.DefaultServerConfig)

	for range 20 {
		w := do(s, http.MethodGet, "/")
		require.Equal(t, http.StatusOK, w.Code)
		m := factPattern.FindStringSubmatch(w.Body.String())
		require.NotNil(t, m, w.Body.String())

		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[3])
		result, _ := strconv.Atoi(m[4])
		assert.True(t, a >= 1 && a <= 100)
		assert.True(t, b >= 1 && b <= 100)
		if m[2] == "+" {
			assert.Equal(t, a+b, result)
		} else {
			assert.Equal(t, a-b, result)
		}
	}
}

func TestStatusRoute(t *testing.T) {
	s := newTestServer(t, config.DefaultServerConfig)
	w := do(s, http.MethodGet, "/status")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"OK","message":"Application is running!"}`, w.Body.String())
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestUnknownRouteAndMethod(t *testing.T) {
	s := newTestServer(t, config.DefaultServerConfig)

	w := do(s, http.MethodGet, "/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
	var body response.Response[any]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "docgen.route_not_found", body.Code)
	assert.False(t, body.Success)

	w = do(s, http.MethodPost, "/status")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "docgen.method_not_allowed", body.Code)
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t, config.DefaultServerConfig)

	w := do(s, http.MethodGet, "/status")
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))
}

func TestRateLimit(t *testing.T) {
	cfg := config.DefaultServerConfig
	cfg.RateLimit = 0.001
	cfg.RateBurst = 1
	s := newTestServer(t, cfg)

	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/status").Code)
	w := do(s, http.MethodGet, "/status")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "docgen.rate_limited")
}

func TestRecovery(t *testing.T) {
	s := newTestServer(t, config.DefaultServerConfig)
	s.engine.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := do(s, http.MethodGet, "/panic")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "docgen.internal_server_error")
}

func TestMetricsRoute(t *testing.T) {
	s := newTestServer(t, config.DefaultServerConfig)
	do(s, http.MethodGet, "/status")

	w := do(s, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `docgen_http_requests_total{method="GET",route="/status",status="200"} 1`)
}

func TestShutdownRightAfterStart(t *testing.T) {
	cfg := config.DefaultServerConfig
	cfg.Address = "127.0.0.1:0"

	for range 5 {
		s := newTestServer(t, cfg)
		errCh := make(chan error, 1)
		go func() {
			errCh <- s.Start()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		require.NoError(t, s.Shutdown(ctx))
		cancel()

		select {
		case err := <-errCh:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("Start did not return after Shutdown")
		}
	}
}
