package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malo-app/malo-web/internal/apiclient"
	"github.com/malo-app/malo-web/internal/handler"
	"github.com/malo-app/malo-web/internal/middleware"
	"github.com/malo-app/malo-web/internal/session"
	"github.com/malo-app/malo-web/web"
)

func newEcho(t *testing.T) *echo.Echo {
	t.Helper()
	sessions := session.NewManager([]byte("0123456789abcdef0123456789abcdef"), session.NewMemoryStore(), session.Options{TTL: time.Hour})
	base := &handler.Base{
		API:      apiclient.New(apiclient.Options{BaseURL: "http://127.0.0.1:1", Timeout: time.Second}),
		Sessions: sessions,
	}
	renderer, err := handler.NewRenderer(web.FS)
	require.NoError(t, err)

	e := echo.New()
	e.Renderer = renderer
	e.HTTPErrorHandler = handler.ErrorHandler(base)
	e.Use(middleware.LoadSession(sessions))

	auth := handler.NewAuthHandler(base, "", "")
	noLimit := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	RegisterRoutes(e, echo.MustSubFS(web.FS, "static"))
	RegisterAuth(e, auth, noLimit)
	RegisterAdmin(e, sessions, AdminHandlers{
		Auth:      auth,
		Admin:     handler.NewAdminHandler(base),
		Residents: handler.NewResidentRoster(base),
		Staff:     handler.NewStaffRoster(base),
		Profile:   handler.NewAdminProfileHandler(base),
	})
	RegisterResident(e, sessions, ResidentHandlers{
		Auth:     auth,
		Resident: handler.NewResidentHandler(base, nil),
		Profile:  handler.NewResidentProfileHandler(base),
	})
	return e
}

func serve(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestPublicRoutes(t *testing.T) {
	e := newEcho(t)

	rec := serve(e, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = serve(e, http.MethodGet, "/static/app.css")
	assert.Equal(t, http.StatusOK, rec.Code)

	for _, path := range []string{"/login", "/admin/login", "/admin/register"} {
		rec = serve(e, http.MethodGet, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRootRedirects(t *testing.T) {
	e := newEcho(t)

	rec := serve(e, http.MethodGet, "/")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = serve(e, http.MethodGet, "/admin")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/dashboard", rec.Header().Get("Location"))
}

func TestPortalPagesRequireSession(t *testing.T) {
	e := newEcho(t)
	cases := map[string]string{
		"/dashboard":                "/login",
		"/visits/new":               "/login",
		"/onboarding":               "/login",
		"/admin/dashboard":          "/admin/login",
		"/admin/onboarding":         "/admin/login",
		"/admin/staff/new":          "/admin/login",
		"/admin/residents/x/edit":   "/admin/login",
		"/admin/residents/x/visits": "/admin/login",
	}
	for path, login := range cases {
		rec := serve(e, http.MethodGet, path)
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, login, rec.Header().Get("Location"), path)
	}
}

func TestUnknownPathIsNotFound(t *testing.T) {
	e := newEcho(t)

	rec := serve(e, http.MethodGet, "/no/such/page")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not Found")
}
