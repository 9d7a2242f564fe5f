package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEcho(checkers map[string]HealthChecker) *echo.Echo {
	e := echo.New()
	svc := NewHealthService(nil)
	for name, c := range checkers {
		svc.AddChecker(name, c)
	}
	RegisterEnhancedHealthEndpoints(e, "ledger", "1.2.3", svc)
	return e
}

func serve(e *echo.Echo, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCheckAllHealth(t *testing.T) {
	t.Run("all dependencies healthy", func(t *testing.T) {
		svc := NewHealthService(nil)
		svc.AddChecker("postgres", CheckerFunc(func(ctx context.Context) error { return nil }))
		svc.AddChecker("redis", NewRedisHealthChecker(nil))

		resp := svc.CheckAllHealth(context.Background())
		assert.Equal(t, "healthy", resp.Status)
		assert.Len(t, resp.Dependencies, 2)
	})

	t.Run("one failing dependency marks the service unhealthy", func(t *testing.T) {
		svc := NewHealthService(nil)
		svc.AddChecker("postgres", CheckerFunc(func(ctx context.Context) error { return nil }))
		svc.AddChecker("elasticsearch", CheckerFunc(func(ctx context.Context) error {
			return errors.New("connection refused")
		}))

		resp := svc.CheckAllHealth(context.Background())
		assert.Equal(t, "unhealthy", resp.Status)
		assert.Equal(t, "healthy", resp.Dependencies["postgres"].Status)
		assert.Equal(t, "connection refused", resp.Dependencies["elasticsearch"].Error)
	})

	t.Run("deadline errors are reported as timeouts", func(t *testing.T) {
		svc := NewHealthService(nil)
		svc.AddChecker("nats", CheckerFunc(func(ctx context.Context) error { return context.DeadlineExceeded }))

		resp := svc.CheckAllHealth(context.Background())
		assert.Equal(t, "health check timed out", resp.Dependencies["nats"].Error)
	})
}

func TestHealthEndpoints(t *testing.T) {
	failing := map[string]HealthChecker{
		"postgres": CheckerFunc(func(ctx context.Context) error { return errors.New("down") }),
	}

	t.Run("liveness ignores dependencies", func(t *testing.T) {
		rec := serve(newTestEcho(failing), "/health/live")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "alive")
	})

	t.Run("readiness fails when a dependency is down", func(t *testing.T) {
		rec := serve(newTestEcho(failing), "/health/ready")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("readiness succeeds when dependencies are up", func(t *testing.T) {
		rec := serve(newTestEcho(nil), "/health/ready")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "ready")
	})

	t.Run("detailed includes service and version", func(t *testing.T) {
		rec := serve(newTestEcho(failing), "/health/detailed")
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ledger", resp.Service)
		assert.Equal(t, "1.2.3", resp.Version)
		assert.Equal(t, "unhealthy", resp.Dependencies["postgres"].Status)
	})

	t.Run("basic health", func(t *testing.T) {
		rec := serve(newTestEcho(nil), "/health")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
