package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"printscrap/internal/apierror"
	"printscrap/internal/model"
	"printscrap/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Helpers ───────────────────────────────────────────────────────────────────

const testSecret = "test_jwt_secret_32_chars_minimum!"

func signToken(t *testing.T, userID uint, role, tokenType string, dur time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID, "email": "owner@acme.test", "role": role, "token_type": tokenType,
		"exp": time.Now().Add(dur).Unix(), "iat": time.Now().Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

type stubSubscriptions struct {
	service.SubscriptionService
	err   error
	calls int
}

func (s *stubSubscriptions) EnsureUsable(_ context.Context, _ uint) error {
	s.calls++
	return s.err
}

func testRouter(subs service.SubscriptionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), JWTAuth(testSecret))
	r.GET("/me", func(c *gin.Context) {
		claims := GetClaims(c)
		c.JSON(http.StatusOK, gin.H{"user_id": claims.UserID, "role": claims.Role})
	})
	r.GET("/admin", RequireRole(model.RoleSuperAdmin), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.POST("/write", RequireActiveSubscription(subs), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return r
}

func do(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

// ── Tests: JWT ────────────────────────────────────────────────────────────────

func TestJWTAuth_NoToken(t *testing.T) {
	w := do(testRouter(&stubSubscriptions{}), http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var env apierror.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
}

func TestJWTAuth_ValidAccessToken(t *testing.T) {
	tok := signToken(t, 42, model.RoleClient, service.TokenAccess, time.Hour)
	w := do(testRouter(&stubSubscriptions{}), http.MethodGet, "/me", tok)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		UserID uint   `json:"user_id"`
		Role   string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, uint(42), body.UserID)
	assert.Equal(t, model.RoleClient, body.Role)
}

func TestJWTAuth_RefreshTokenRejected(t *testing.T) {
	tok := signToken(t, 42, model.RoleClient, service.TokenRefresh, time.Hour)
	w := do(testRouter(&stubSubscriptions{}), http.MethodGet, "/me", tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_ExpiredToken(t *testing.T) {
	tok := signToken(t, 42, model.RoleClient, service.TokenAccess, -time.Second)
	w := do(testRouter(&stubSubscriptions{}), http.MethodGet, "/me", tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_WrongSecret(t *testing.T) {
	claims := jwt.MapClaims{"user_id": 1, "role": model.RoleClient, "token_type": service.TokenAccess,
		"exp": time.Now().Add(time.Hour).Unix()}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("another-secret"))
	require.NoError(t, err)

	w := do(testRouter(&stubSubscriptions{}), http.MethodGet, "/me", tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// ── Tests: roles and subscription gate ───────────────────────────────────────

func TestRequireRole(t *testing.T) {
	r := testRouter(&stubSubscriptions{})

	client := signToken(t, 5, model.RoleClient, service.TokenAccess, time.Hour)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/admin", client).Code)

	admin := signToken(t, 1, model.RoleSuperAdmin, service.TokenAccess, time.Hour)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/admin", admin).Code)
}

func TestRequireActiveSubscription_ExpiredClientBlocked(t *testing.T) {
	subs := &stubSubscriptions{err: apierror.Forbidden("subscription expired")}
	tok := signToken(t, 5, model.RoleClient, service.TokenAccess, time.Hour)

	w := do(testRouter(subs), http.MethodPost, "/write", tok)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "subscription expired")
}

func TestRequireActiveSubscription_StorageErrorIsGeneric(t *testing.T) {
	subs := &stubSubscriptions{err: apierror.Storage("load subscription", errors.New("conn refused"))}
	tok := signToken(t, 5, model.RoleClient, service.TokenAccess, time.Hour)

	w := do(testRouter(subs), http.MethodPost, "/write", tok)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "conn refused")
}

func TestRequireActiveSubscription_SuperAdminSkipsCheck(t *testing.T) {
	subs := &stubSubscriptions{err: apierror.Forbidden("subscription expired")}
	tok := signToken(t, 1, model.RoleSuperAdmin, service.TokenAccess, time.Hour)

	w := do(testRouter(subs), http.MethodPost, "/write", tok)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Zero(t, subs.calls)
}

// ── Tests: request id, errors, rate limiting ─────────────────────────────────

func TestRequestID_GeneratedAndEchoed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := do(r, http.MethodGet, "/", "")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestErrorHandler_MapsTypedErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/missing", func(c *gin.Context) { _ = c.Error(apierror.NotFound("sale", 9)) })
	r.GET("/boom", func(c *gin.Context) { _ = c.Error(errors.New("pq: deadlock detected")) })

	w := do(r, http.MethodGet, "/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "sale 9 not found")

	w = do(r, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), apierror.GenericMessage)
	assert.NotContains(t, w.Body.String(), "deadlock")
}

func TestRecovery_PanicBecomes500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery())
	r.GET("/", func(c *gin.Context) { panic("nil map") })

	w := do(r, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "nil map")
}

func TestRateLimiter_LocalCounter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimiter(nil, "test-local", 2, time.Minute, "slow down"))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/", "").Code)
	w := do(r, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestPurgeCounters_DropsExpiredWindows(t *testing.T) {
	wc := counterFor("test-purge")
	wc.hit("10.0.0.1", time.Second, time.Now())

	assert.GreaterOrEqual(t, purgeCounters(time.Now().Add(time.Minute)), 1)
	wc.mu.Lock()
	defer wc.mu.Unlock()
	assert.NotContains(t, wc.entries, "10.0.0.1")
}

func TestCORS_Preflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS("https://app.printscrap.test, https://admin.printscrap.test"))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	preflight := func(origin string) *httptest.ResponseRecorder {
		req, _ := http.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := preflight("https://admin.printscrap.test")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://admin.printscrap.test", w.Header().Get("Access-Control-Allow-Origin"))

	w = preflight("https://evil.test")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a, ,b "))
	assert.Empty(t, splitAndTrim(""))
}
