package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/malo-app/malo-web/internal/apiclient"
	"github.com/malo-app/malo-web/internal/logger"
	"github.com/malo-app/malo-web/internal/middleware"
	"github.com/malo-app/malo-web/internal/model"
	"github.com/malo-app/malo-web/internal/portal"
)

// googleCSRFCookie is the double-submit token Google Identity Services sets
// before posting a credential back in redirect mode.
const googleCSRFCookie = "g_csrf_token"

// AuthHandler serves the sign-in, registration, onboarding and sign-out
// pages of both portals.
type AuthHandler struct {
	*Base
	// GoogleClientID enables the Google button when set.
	GoogleClientID string
	// PublicBaseURL is where Google posts the credential back to.
	PublicBaseURL string
}

func NewAuthHandler(b *Base, googleClientID, publicBaseURL string) *AuthHandler {
	return &AuthHandler{Base: b, GoogleClientID: googleClientID, PublicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

type loginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

type loginView struct {
	Form           loginForm
	Action         string
	GoogleClientID string
	GoogleLoginURI string
}

func (h *AuthHandler) loginView(g middleware.Gate, f loginForm) loginView {
	googlePath := "/auth/google"
	if g.LoginPath == middleware.AdminGate.LoginPath {
		googlePath = "/admin/auth/google"
	}
	return loginView{
		Form:           loginForm{Email: f.Email},
		Action:         g.LoginPath,
		GoogleClientID: h.GoogleClientID,
		GoogleLoginURI: h.PublicBaseURL + googlePath,
	}
}

// LoginPage shows the sign-in form of the portal guarded by g.  Accounts
// that already belong here go straight home.
func (h *AuthHandler) LoginPage(g middleware.Gate) echo.HandlerFunc {
	return func(c echo.Context) error {
		if acc, ok := middleware.Account(c); ok && g.Allows(acc) {
			return c.Redirect(http.StatusSeeOther, acc.HomePath())
		}
		return h.render(c, http.StatusOK, "login", "Sign in", h.loginView(g, loginForm{}))
	}
}

// Login signs in with email and password.
func (h *AuthHandler) Login(g middleware.Gate) echo.HandlerFunc {
	return func(c echo.Context) error {
		var f loginForm
		if err := c.Bind(&f); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
		}
		f.Email = strings.TrimSpace(f.Email)
		if f.Email == "" || f.Password == "" {
			return h.render(c, http.StatusUnprocessableEntity, "login", "Sign in", h.loginView(g, f),
				portal.FromError(apiclient.Validation("Email and password are required")))
		}
		acc, err := h.API.Login(c.Request().Context(), f.Email, f.Password)
		if err != nil {
			return h.render(c, http.StatusOK, "login", "Sign in", h.loginView(g, f), failed(c, "login", err))
		}
		return h.signIn(c, g, acc, h.loginView(g, f))
	}
}

// Google exchanges a Google Identity Services credential.
func (h *AuthHandler) Google(g middleware.Gate) echo.HandlerFunc {
	return func(c echo.Context) error {
		view := h.loginView(g, loginForm{})
		if !googleCSRFValid(c) {
			return h.render(c, http.StatusBadRequest, "login", "Sign in", view,
				portal.FromError(apiclient.Validation("Google sign-in could not be verified. Please try again.")))
		}
		credential := c.FormValue("credential")
		if credential == "" {
			return h.render(c, http.StatusBadRequest, "login", "Sign in", view,
				portal.FromError(apiclient.Validation("Google sign-in did not return a credential.")))
		}
		acc, err := h.API.GoogleLogin(c.Request().Context(), credential)
		if err != nil {
			return h.render(c, http.StatusOK, "login", "Sign in", view, failed(c, "google login", err))
		}
		return h.signIn(c, g, acc, view)
	}
}

// signIn stores acc unless it belongs to the other portal, in which case
// the login page is shown again with the portal's refusal and nothing is
// stored.
func (h *AuthHandler) signIn(c echo.Context, g middleware.Gate, acc model.Account, view loginView) error {
	if !g.Allows(acc) {
		logger.FromContext(c.Request().Context()).WithField("role", acc.MyRole).Info("sign-in refused for portal")
		n := portal.Notice{Level: portal.LevelError, Kind: apiclient.KindRejected.String(), Message: g.Denied}
		return h.render(c, http.StatusForbidden, "login", "Sign in", view, n)
	}
	if err := h.Sessions.Login(c.Response(), c.Request(), acc); err != nil {
		return err
	}
	logger.FromContext(c.Request().Context()).WithField("account", acc.ID).Info("signed in")
	return c.Redirect(http.StatusSeeOther, acc.HomePath())
}

func googleCSRFValid(c echo.Context) bool {
	cookie, err := c.Cookie(googleCSRFCookie)
	if err != nil || cookie.Value == "" {
		return false
	}
	return cookie.Value == c.FormValue(googleCSRFCookie)
}

type registerForm struct {
	Name     string `form:"name"`
	Email    string `form:"email"`
	Password string `form:"password"`
	Confirm  string `form:"confirm"`
}

// validate checks the form before anything is sent upstream.
func (f registerForm) validate() error {
	if strings.TrimSpace(f.Name) == "" || strings.TrimSpace(f.Email) == "" || f.Password == "" {
		return apiclient.Validation("Name, email and password are required")
	}
	if f.Password != f.Confirm {
		return apiclient.Validation("Passwords do not match")
	}
	return nil
}

func (h *AuthHandler) RegisterPage(c echo.Context) error {
	return h.render(c, http.StatusOK, "register", "Create account", registerForm{})
}

// Register creates a managing staff account and signs it in.
func (h *AuthHandler) Register(c echo.Context) error {
	var f registerForm
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	view := registerForm{Name: f.Name, Email: f.Email}
	if err := f.validate(); err != nil {
		return h.render(c, http.StatusUnprocessableEntity, "register", "Create account", view, portal.FromError(err))
	}
	acc, err := h.API.Register(c.Request().Context(), apiclient.RegisterRequest{
		Name:     strings.TrimSpace(f.Name),
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
		MyRole:   model.RoleManager,
	})
	if err != nil {
		return h.render(c, http.StatusOK, "register", "Create account", view, failed(c, "register", err))
	}
	if acc.MyRole == "" {
		acc.MyRole = model.RoleManager
	}
	if err := h.Sessions.Login(c.Response(), c.Request(), acc); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, acc.HomePath())
}

type adminOnboardingView struct {
	Form  model.Property
	Types []string
}

func (h *AuthHandler) AdminOnboardingPage(c echo.Context) error {
	return h.render(c, http.StatusOK, "admin_onboarding", "Set up your property",
		adminOnboardingView{Types: model.PropertyTypes})
}

// AdminOnboarding registers the manager's property and marks the session
// onboarded with the new property id.
func (h *AuthHandler) AdminOnboarding(c echo.Context) error {
	f := model.Property{
		Name:         strings.TrimSpace(c.FormValue("name")),
		Address:      strings.TrimSpace(c.FormValue("address")),
		PropertyType: c.FormValue("propertyType"),
	}
	view := adminOnboardingView{Form: f, Types: model.PropertyTypes}
	if f.Name == "" || f.Address == "" || f.PropertyType == "" {
		return h.render(c, http.StatusUnprocessableEntity, "admin_onboarding", "Set up your property", view,
			portal.FromError(apiclient.Validation("Property name, address and type are required")))
	}
	resp, err := h.API.AdminOnboarding(c.Request().Context(), f)
	if err != nil {
		return h.render(c, http.StatusOK, "admin_onboarding", "Set up your property", view, failed(c, "admin onboarding", err))
	}
	acc := portal.MergeAccount(current(c), resp.User)
	if resp.Property.ID != "" {
		acc.PropertyID = resp.Property.ID
	}
	acc.IsOnboarded = true
	if err := h.Sessions.Update(c.Response(), c.Request(), acc); err != nil {
		return err
	}
	return h.redirect(c, acc.HomePath(), portal.Success("Your property is set up."))
}

type onboardingView struct {
	Form       model.ResidentOnboarding
	Properties []model.Property
	Genders    []string
}

func (h *AuthHandler) onboardingView(c echo.Context, f model.ResidentOnboarding) (onboardingView, []portal.Notice) {
	view := onboardingView{Form: f, Genders: model.Genders}
	props, err := h.API.ListProperties(c.Request().Context())
	if err != nil {
		return view, []portal.Notice{failed(c, "list properties", err)}
	}
	view.Properties = props
	return view, nil
}

func (h *AuthHandler) OnboardingPage(c echo.Context) error {
	view, notices := h.onboardingView(c, model.ResidentOnboarding{})
	return h.render(c, http.StatusOK, "onboarding", "Complete your profile", view, notices...)
}

// Onboarding completes the resident profile and merges the returned
// account onto the session.
func (h *AuthHandler) Onboarding(c echo.Context) error {
	var f model.ResidentOnboarding
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if f.PropertyID == "" || strings.TrimSpace(f.Room) == "" {
		view, notices := h.onboardingView(c, f)
		notices = append(notices, portal.FromError(apiclient.Validation("Please choose a property and enter your room")))
		return h.render(c, http.StatusUnprocessableEntity, "onboarding", "Complete your profile", view, notices...)
	}
	user, err := h.API.ResidentOnboarding(c.Request().Context(), f)
	if err != nil {
		view, notices := h.onboardingView(c, f)
		notices = append(notices, failed(c, "resident onboarding", err))
		return h.render(c, http.StatusOK, "onboarding", "Complete your profile", view, notices...)
	}
	acc := portal.MergeAccount(current(c), user)
	if acc.PropertyID == "" {
		acc.PropertyID = f.PropertyID
	}
	acc.IsOnboarded = true
	if err := h.Sessions.Update(c.Response(), c.Request(), acc); err != nil {
		return err
	}
	return h.redirect(c, acc.HomePath(), portal.Success("Welcome! Your profile is complete."))
}

// Logout ends the session and returns to the portal's login page.
func (h *AuthHandler) Logout(g middleware.Gate) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := h.Sessions.Logout(c.Response(), c.Request()); err != nil {
			return err
		}
		return h.redirect(c, g.LoginPath, portal.Info("You have been signed out."))
	}
}
