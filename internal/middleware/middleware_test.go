package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/design-studio/internal/config"
	"github.com/iliyamo/design-studio/internal/logger"
	"github.com/iliyamo/design-studio/internal/model"
)

type stubAuth map[string]model.User

var errBadToken = echo.NewHTTPError(http.StatusUnauthorized, "invalid token")

func (s stubAuth) Authenticate(_ context.Context, raw string) (model.User, error) {
	if u, ok := s[raw]; ok {
		return u, nil
	}
	return model.User{}, errBadToken
}

func noContent(c echo.Context) error { return c.NoContent(http.StatusNoContent) }

func serve(t *testing.T, mw []echo.MiddlewareFunc, h echo.HandlerFunc, header http.Header) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/designs?page=1", nil)
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/designs")
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return rec, h(c)
}

func TestJWTAuth(t *testing.T) {
	auth := stubAuth{
		"alice-token": {ID: "u-1", Username: "alice"},
		"root-token":  {ID: "u-2", Username: "root", IsAdmin: true},
	}

	t.Run("missing header", func(t *testing.T) {
		_, err := serve(t, []echo.MiddlewareFunc{JWTAuth(auth)}, noContent, nil)
		var he *echo.HTTPError
		require.True(t, errors.As(err, &he))
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		_, err := serve(t, []echo.MiddlewareFunc{JWTAuth(auth)}, noContent, http.Header{"Authorization": {"Basic abc"}})
		var he *echo.HTTPError
		require.True(t, errors.As(err, &he))
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})

	t.Run("authenticator error passes through", func(t *testing.T) {
		_, err := serve(t, []echo.MiddlewareFunc{JWTAuth(auth)}, noContent, http.Header{"Authorization": {"Bearer nope"}})
		assert.Same(t, errBadToken, err)
	})

	t.Run("user stored on context", func(t *testing.T) {
		var got model.User
		h := func(c echo.Context) error {
			u, found := CurrentUser(c)
			require.True(t, found)
			got = u
			assert.Equal(t, "u-1", currentUserID(c))
			return noContent(c)
		}
		rec, err := serve(t, []echo.MiddlewareFunc{JWTAuth(auth)}, h, http.Header{"Authorization": {"Bearer alice-token"}})
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "alice", got.Username)
	})
}

func TestRequireAdmin(t *testing.T) {
	auth := stubAuth{
		"alice-token": {ID: "u-1", Username: "alice"},
		"root-token":  {ID: "u-2", Username: "root", IsAdmin: true},
	}
	chain := []echo.MiddlewareFunc{JWTAuth(auth), RequireAdmin()}

	_, err := serve(t, chain, noContent, http.Header{"Authorization": {"Bearer alice-token"}})
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusForbidden, he.Code)

	rec, err := serve(t, chain, noContent, http.Header{"Authorization": {"Bearer root-token"}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, err = serve(t, []echo.MiddlewareFunc{RequireAdmin()}, noContent, nil)
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequestID(t *testing.T) {
	rec, err := serve(t, []echo.MiddlewareFunc{RequestID()}, noContent, nil)
	require.NoError(t, err)
	assert.Len(t, rec.Header().Get(logger.RequestIDKey), 36)

	var seen string
	h := func(c echo.Context) error {
		seen, _ = c.Get(logger.RequestIDKey).(string)
		return noContent(c)
	}
	rec, err = serve(t, []echo.MiddlewareFunc{RequestID()}, h, http.Header{logger.RequestIDKey: {"abc-123"}})
	require.NoError(t, err)
	assert.Equal(t, "abc-123", rec.Header().Get(logger.RequestIDKey))
	assert.Equal(t, "abc-123", seen)
}

func TestDisabledWithoutRedis(t *testing.T) {
	rl := NewTokenBucket(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil)
	cache := NewRedisCache(config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}}, nil)

	rec, err := serve(t, []echo.MiddlewareFunc{rl, cache}, noContent, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/generate-design", nil)
	req.RemoteAddr = "10.0.0.7:5555"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/generate-design")
	c.Set(UserIDKey, "u-9")

	tests := []struct {
		strategy string
		want     string
	}{
		{"ip", "rl:ip:10.0.0.7"},
		{"user", "rl:user:u-9"},
		{"user_route", "rl:user:u-9:route:POST /api/generate-design"},
		{"", "rl:ip:10.0.0.7:user:u-9:route:POST /api/generate-design"},
	}
	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: tt.strategy}
			assert.Equal(t, tt.want, buildRateKey(cfg, c))
		})
	}

	anon := e.NewContext(req, httptest.NewRecorder())
	assert.Equal(t, "rl:user:anon", buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}, anon))
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 0, retryAfterSeconds(-20))
	assert.Equal(t, 1, retryAfterSeconds(1))
	assert.Equal(t, 6, retryAfterSeconds(int64(6*time.Second/time.Millisecond)))
	assert.Equal(t, int64(7), asInt64("7"))
	assert.Equal(t, int64(0), asInt64(nil))
}

func TestPayloadCodec(t *testing.T) {
	h := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, h, []byte(`{"ok":true}`))
	require.NoError(t, err)

	status, hdr, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", hdr.Get("Content-Type"))
	assert.JSONEq(t, `{"ok":true}`, string(body))

	_, _, _, ok = decodePayload(bs[:5])
	assert.False(t, ok)
	_, _, _, ok = decodePayload(append([]byte{0, 0, 0, 200, 0, 0, 1, 0}, 'x'))
	assert.False(t, ok)
}

func TestCaptureWriterLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}
	_, _ = cw.Write([]byte("abc"))
	assert.False(t, cw.truncated())
	_, _ = cw.Write([]byte("def"))
	assert.True(t, cw.truncated())
	assert.Equal(t, "abcd", cw.buf.String())
	assert.Equal(t, "abcdef", rec.Body.String())
}

func TestCacheKeyStrategies(t *testing.T) {
	e := echo.New()
	mk := func(q string) echo.Context {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/showcase?"+q, nil), httptest.NewRecorder())
		c.SetPath("/api/showcase")
		return c
	}
	byQuery := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}
	byRoute := config.CacheConfig{Prefix: "cache", KeyStrategy: "route"}

	assert.NotEqual(t, cacheKeyFrom(byQuery, mk("a=1")), cacheKeyFrom(byQuery, mk("a=2")))
	assert.Equal(t, cacheKeyFrom(byRoute, mk("a=1")), cacheKeyFrom(byRoute, mk("a=2")))
	assert.Contains(t, cacheKeyFrom(byRoute, mk("")), "cache:")
}
