package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/parkseva/internal/config"
	"github.com/iliyamo/parkseva/internal/logger"
	"github.com/iliyamo/parkseva/internal/utils"
)

const secret = "test-secret"

func ok(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"user_id": UserID(c), "role": Role(c)})
}

func serve(e *echo.Echo, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthAndRequireRole(t *testing.T) {
	e := echo.New()
	e.GET("/me", ok, JWTAuth(secret))
	e.GET("/admin", ok, JWTAuth(secret), RequireRole("admin"))

	user, err := utils.NewAccessToken(secret, "user-1", "user", 5)
	require.NoError(t, err)
	admin, err := utils.NewAccessToken(secret, "admin-1", "admin", 5)
	require.NoError(t, err)
	forged, err := utils.NewAccessToken("other-secret", "admin-1", "admin", 5)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/me", forged.Token).Code)

	rec := serve(e, http.MethodGet, "/me", user.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id":"user-1","role":"user"}`, rec.Body.String())

	assert.Equal(t, http.StatusForbidden, serve(e, http.MethodGet, "/admin", user.Token).Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/admin", admin.Token).Code)
}

func TestTokenBucket_MemoryFallback(t *testing.T) {
	logger.Discard()
	cfg := config.RateLimitConfig{Enabled: true, Prefix: "test:rl", MemoryRate: "2-M", KeyStrategy: "ip"}
	e := echo.New()
	e.GET("/lots", ok, NewTokenBucket(cfg, nil))

	first := serve(e, http.MethodGet, "/lots", "")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/lots", "").Code)

	blocked := serve(e, http.MethodGet, "/lots", "")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.NotEmpty(t, blocked.Header().Get("Retry-After"))
}

func TestTokenBucket_Disabled(t *testing.T) {
	e := echo.New()
	e.GET("/lots", ok, NewTokenBucket(config.RateLimitConfig{Enabled: false, MemoryRate: "1-M"}, nil))
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/lots", "").Code)
	}
}

func TestRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/lots", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/lots")

	assert.Equal(t, "rl:ip:10.0.0.1", rateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip"}, c))
	assert.Equal(t, "rl:ip:10.0.0.1:user:anon:route:GET /v1/lots", rateKey(config.RateLimitConfig{Prefix: "rl"}, c))

	c.Set(ctxUserID, "u1")
	assert.Equal(t, "rl:user:u1", rateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}, c))
}

func TestCachePayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"items":[]}`))
	require.NoError(t, err)

	status, got, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, `{"items":[]}`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 0})
	assert.False(t, ok)
}

func TestCacheKey_IncludesLotParam(t *testing.T) {
	e := echo.New()
	cfg := config.CacheConfig{Prefix: "c", KeyStrategy: "route_query"}
	key := func(id string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/lots/"+id+"/slots", nil), httptest.NewRecorder())
		c.SetPath("/v1/lots/:id/slots")
		c.SetParamNames("id")
		c.SetParamValues(id)
		return cacheKey(cfg, c)
	}
	assert.NotEqual(t, key("a"), key("b"))
	assert.Equal(t, key("a"), key("a"))
}

func TestRedisCache_PassThroughWithoutRedis(t *testing.T) {
	e := echo.New()
	e.GET("/lots", ok, NewRedisCache(config.CacheConfig{Enabled: true, TTL: time.Second}, nil))
	rec := serve(e, http.MethodGet, "/lots", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestRequestLogger(t *testing.T) {
	logger.Discard()
	e := echo.New()
	e.Use(RequestLogger())
	e.GET("/boom", func(c echo.Context) error { return echo.NewHTTPError(http.StatusTeapot, "nope") })
	assert.Equal(t, http.StatusTeapot, serve(e, http.MethodGet, "/boom", "").Code)
}
