package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malo-app/malo-web/internal/config"
	"github.com/malo-app/malo-web/internal/model"
	"github.com/malo-app/malo-web/internal/portal"
	"github.com/malo-app/malo-web/internal/session"
)

func newManager() *session.Manager {
	return session.NewManager([]byte("0123456789abcdef0123456789abcdef"), session.NewMemoryStore(), session.Options{TTL: time.Hour})
}

// signIn returns a request carrying the session cookie of acc.
func signIn(t *testing.T, mgr *session.Manager, acc model.Account, method, target string) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, mgr.Login(rec, httptest.NewRequest(http.MethodPost, "/login", nil), acc))
	req := httptest.NewRequest(method, target, nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func gatedServer(mgr *session.Manager, g Gate) *echo.Echo {
	e := echo.New()
	e.Use(RequestLogger(), LoadSession(mgr))
	grp := e.Group("", RequireRole(mgr, g), RequireOnboarded(g))
	grp.GET("/page", func(c echo.Context) error {
		acc, _ := Account(c)
		return c.String(http.StatusOK, "hello "+acc.Name+" "+session.ContextTokens{}.Token(c.Request().Context()))
	})
	return e
}

func TestRequireRoleRedirectsAnonymous(t *testing.T) {
	e := gatedServer(newManager(), AdminGate)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/page", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get(echo.HeaderLocation))
}

func TestRequireRoleAdmitsManager(t *testing.T) {
	mgr := newManager()
	e := gatedServer(mgr, AdminGate)
	acc := model.Account{ID: "1", Name: "Maria", MyRole: model.RoleManager, IsOnboarded: true, Token: "tok"}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, signIn(t, mgr, acc, http.MethodGet, "/page"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello Maria tok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestRequireRoleTurnsAwayOtherPortal(t *testing.T) {
	mgr := newManager()
	e := gatedServer(mgr, AdminGate)
	acc := model.Account{ID: "2", MyRole: model.RoleResident, IsOnboarded: true}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, signIn(t, mgr, acc, http.MethodGet, "/page"))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get(echo.HeaderLocation))

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		next.AddCookie(c)
	}
	flashes, err := mgr.Flashes(httptest.NewRecorder(), next)
	require.NoError(t, err)
	require.Len(t, flashes, 1)
	assert.Equal(t, "Access denied. This portal is for managing staff only.", portal.DecodeNotice(flashes[0]).Message)
}

func TestResidentGateTurnsAwayManager(t *testing.T) {
	mgr := newManager()
	e := gatedServer(mgr, ResidentGate)
	acc := model.Account{ID: "3", MyRole: model.RoleManager, IsOnboarded: true}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, signIn(t, mgr, acc, http.MethodGet, "/page"))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/dashboard", rec.Header().Get(echo.HeaderLocation))
}

func TestResidentGateTurnsAwaySecurityStaff(t *testing.T) {
	mgr := newManager()
	e := gatedServer(mgr, ResidentGate)
	acc := model.Account{ID: "5", MyRole: model.RoleSecurity, IsOnboarded: true}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, signIn(t, mgr, acc, http.MethodGet, "/page"))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
	assert.False(t, ResidentGate.Allows(acc))
	assert.False(t, AdminGate.Allows(acc))
}

func TestRequireOnboarded(t *testing.T) {
	mgr := newManager()
	e := gatedServer(mgr, ResidentGate)
	acc := model.Account{ID: "4", MyRole: model.RoleResident}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, signIn(t, mgr, acc, http.MethodGet, "/page"))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/onboarding", rec.Header().Get(echo.HeaderLocation))
}

func TestRequestLoggerKeepsIncomingID(t *testing.T) {
	e := echo.New()
	e.Use(RequestLogger())
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestIdentity(t *testing.T) {
	assert.Equal(t, "a@b.c", identity("a@b.c", "", "1"))
	assert.Equal(t, "1", identity("", "opaque", "1"))
	assert.Equal(t, "guest", identity("", "", ""))
}

func TestTokenBucket(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            10 * time.Minute,
		KeyStrategy:    "ip_route",
		Prefix:         "rl",
	}
	e := echo.New()
	e.POST("/login", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, NewTokenBucket(cfg, rdb))

	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:4000"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}
	assert.Equal(t, http.StatusOK, post().Code)
	rec := post()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = post()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.True(t, mr.Exists("rl:ip:10.0.0.1:route:POST /login"))
}

func TestTokenBucketDisabledWithoutRedis(t *testing.T) {
	e := echo.New()
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1}
	e.POST("/login", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, NewTokenBucket(cfg, nil))
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
