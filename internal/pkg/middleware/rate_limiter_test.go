package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPRateLimiter(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	e := echo.New()
	e.GET("/v1/search", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, IPRateLimiter("search", 2, time.Minute, client))

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/search", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	first := do()
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, do().Code)

	limited := do()
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "0", limited.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, limited.Header().Get("Retry-After"))

	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, do().Code)
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	client, mock := redismock.NewClientMock()
	defer client.Close()

	mock.ExpectIncr("rate:limit:search:192.0.2.1").SetErr(errors.New("connection refused"))

	e := echo.New()
	e.GET("/v1/search", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, IPRateLimiter("search", 1, time.Minute, client))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/search", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_SetsWindowOnFirstHit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	defer client.Close()

	mock.ExpectIncr("rate:limit:search:192.0.2.1").SetVal(1)
	mock.ExpectExpire("rate:limit:search:192.0.2.1", 30*time.Second).SetVal(true)
	mock.ExpectIncr("rate:limit:search:192.0.2.1").SetVal(2)

	e := echo.New()
	e.GET("/v1/search", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, IPRateLimiter("search", 5, 30*time.Second, client))

	for _, remaining := range []string{"4", "3"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/search", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, remaining, rec.Header().Get("X-RateLimit-Remaining"))
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_Disabled(t *testing.T) {
	client, mock := redismock.NewClientMock()
	defer client.Close()

	e := echo.New()
	e.GET("/v1/search", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, IPRateLimiter("search", 0, time.Minute, client))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/search", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
