package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/malo-app/malo-web/internal/apiclient"
	"github.com/malo-app/malo-web/internal/middleware"
	"github.com/malo-app/malo-web/internal/model"
	"github.com/malo-app/malo-web/internal/queue"
	"github.com/malo-app/malo-web/internal/session"
	"github.com/malo-app/malo-web/web"
)

type call struct {
	Method string
	Path   string
	Query  string
	Body   string
}

type reply struct {
	status int
	body   string
}

// fakeAPI answers "METHOD /path" keys with canned replies and records every
// request.  Unknown routes answer 404.
type fakeAPI struct {
	mu     sync.Mutex
	routes map[string]reply
	calls  []call
}

func (f *fakeAPI) on(method, path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = reply{status, body}
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, call{r.Method, r.URL.Path, r.URL.RawQuery, string(b)})
	rep, ok := f.routes[r.Method+" "+r.URL.Path]
	f.mu.Unlock()
	if !ok {
		rep = reply{http.StatusNotFound, `{"message":"no such route"}`}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rep.status)
	_, _ = io.WriteString(w, rep.body)
}

func (f *fakeAPI) recorded(method, path string) []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []call
	for _, c := range f.calls {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeAPI) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []queue.VisitRequestedEvent
}

func (p *fakePublisher) PublishVisitRequested(_ context.Context, ev queue.VisitRequestedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

type testApp struct {
	e         *echo.Echo
	api       *fakeAPI
	sessions  *session.Manager
	publisher *fakePublisher
}

// newTestApp wires the handlers the way cmd/server does, without CSRF and
// rate limiting, against a fake upstream.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	api := &fakeAPI{routes: map[string]reply{}}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	sessions := session.NewManager([]byte("0123456789abcdef0123456789abcdef"), session.NewMemoryStore(), session.Options{TTL: time.Hour})
	base := &Base{
		API:      apiclient.New(apiclient.Options{BaseURL: srv.URL, Timeout: 5 * time.Second, Tokens: session.ContextTokens{}}),
		Sessions: sessions,
	}
	renderer, err := NewRenderer(web.FS)
	require.NoError(t, err)

	e := echo.New()
	e.Renderer = renderer
	e.HTTPErrorHandler = ErrorHandler(base)
	e.Use(middleware.RequestLogger(), middleware.LoadSession(sessions))

	pub := &fakePublisher{}
	auth := NewAuthHandler(base, "", "http://localhost:8080")
	resident := NewResidentHandler(base, pub)
	resident.Now = func() time.Time { return time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC) }
	residents := NewResidentRoster(base)
	staff := NewStaffRoster(base)
	admin := NewAdminHandler(base)
	adminProfile := NewAdminProfileHandler(base)
	residentProfile := NewResidentProfileHandler(base)

	adminGate := []echo.MiddlewareFunc{middleware.RequireRole(sessions, middleware.AdminGate), middleware.RequireOnboarded(middleware.AdminGate)}
	residentGate := []echo.MiddlewareFunc{middleware.RequireRole(sessions, middleware.ResidentGate), middleware.RequireOnboarded(middleware.ResidentGate)}

	e.GET("/login", auth.LoginPage(middleware.ResidentGate))
	e.POST("/login", auth.Login(middleware.ResidentGate))
	e.POST("/auth/google", auth.Google(middleware.ResidentGate))
	e.GET("/admin/login", auth.LoginPage(middleware.AdminGate))
	e.POST("/admin/login", auth.Login(middleware.AdminGate))
	e.POST("/admin/register", auth.Register)
	e.POST("/admin/logout", auth.Logout(middleware.AdminGate))
	e.POST("/admin/onboarding", auth.AdminOnboarding, adminGate[0])
	e.POST("/onboarding", auth.Onboarding, residentGate[0])

	e.GET("/admin/dashboard", admin.Dashboard, adminGate...)
	e.GET("/admin/reports", admin.Reports, adminGate...)
	e.GET("/admin/profile", adminProfile.Show, adminGate...)
	e.POST("/admin/profile", adminProfile.Save, adminGate...)
	e.GET("/admin/residents", residents.List, adminGate...)
	e.POST("/admin/residents", residents.Create, adminGate...)
	e.GET("/admin/residents/:username/edit", residents.Edit, adminGate...)
	e.POST("/admin/residents/:username", residents.Update, adminGate...)
	e.GET("/admin/residents/:username/visits", admin.ResidentVisits, adminGate...)
	e.GET("/admin/residents/:username/delete", residents.ConfirmDelete, adminGate...)
	e.POST("/admin/residents/:username/delete", residents.Delete, adminGate...)
	e.POST("/admin/staff/:username", staff.Update, adminGate...)
	e.POST("/admin/staff/:username/approve", staff.Approve, adminGate...)

	e.GET("/dashboard", resident.Dashboard, residentGate...)
	e.GET("/visits", resident.History, residentGate...)
	e.GET("/visits/new", resident.NewVisit, residentGate...)
	e.POST("/visits/new", resident.RequestVisit, residentGate...)
	e.GET("/profile", residentProfile.Show, residentGate...)
	e.POST("/profile", residentProfile.Save, residentGate...)

	return &testApp{e: e, api: api, sessions: sessions, publisher: pub}
}

var (
	manager = model.Account{ID: "7", Name: "Maria", Email: "maria@example.com", MyRole: model.RoleManager, PropertyID: "p1", IsOnboarded: true, Token: "mgr-token"}
	tenant  = model.Account{ID: "12", Name: "Jane", Email: "jane@example.com", MyRole: model.RoleResident, PropertyID: "p1", IsOnboarded: true, Token: "res-token"}
)

// browser is a cookie jar for one simulated user.
type browser struct {
	app     *testApp
	cookies map[string]*http.Cookie
}

func (a *testApp) browser() *browser {
	return &browser{app: a, cookies: map[string]*http.Cookie{}}
}

// signedIn returns a browser already holding a session for acc.
func (a *testApp) signedIn(t *testing.T, acc model.Account) *browser {
	t.Helper()
	b := a.browser()
	rec := httptest.NewRecorder()
	require.NoError(t, a.sessions.Login(rec, httptest.NewRequest(http.MethodPost, "/", nil), acc))
	b.keep(rec)
	return b
}

// keep stores the cookies of a response.  Later Set-Cookie headers for the
// same name win, as in a real browser.
func (b *browser) keep(rec *httptest.ResponseRecorder) {
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.app.e.ServeHTTP(rec, req)
	b.keep(rec)
	return rec
}

func (b *browser) get(target string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (b *browser) post(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return b.do(req)
}

func (b *browser) account(t *testing.T) (model.Account, bool) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	return b.app.sessions.Current(req)
}
