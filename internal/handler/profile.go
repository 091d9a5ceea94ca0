package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/malo-app/malo-web/internal/model"
	"github.com/malo-app/malo-web/internal/portal"
)

// ProfileHandler edits the signed-in account's profile.  The admin portal
// addresses the profile by account id; residents use the "me" endpoints.
type ProfileHandler struct {
	*Base
	Action string
	get    func(ctx context.Context, acc model.Account) (model.Profile, error)
	put    func(ctx context.Context, acc model.Account, p model.Profile) error
}

// NewAdminProfileHandler serves /admin/profile.
func NewAdminProfileHandler(b *Base) *ProfileHandler {
	return &ProfileHandler{
		Base:   b,
		Action: "/admin/profile",
		get: func(ctx context.Context, acc model.Account) (model.Profile, error) {
			return b.API.GetProfile(ctx, acc.ID.String())
		},
		put: func(ctx context.Context, acc model.Account, p model.Profile) error {
			return b.API.UpdateProfile(ctx, acc.ID.String(), p)
		},
	}
}

// NewResidentProfileHandler serves /profile.
func NewResidentProfileHandler(b *Base) *ProfileHandler {
	return &ProfileHandler{
		Base:   b,
		Action: "/profile",
		get: func(ctx context.Context, _ model.Account) (model.Profile, error) {
			return b.API.GetMyProfile(ctx)
		},
		put: func(ctx context.Context, _ model.Account, p model.Profile) error {
			return b.API.UpdateMyProfile(ctx, p)
		},
	}
}

type profileView struct {
	Action  string
	Fields  []string
	Profile model.Profile
	Genders []string
}

func (h *ProfileHandler) view(p model.Profile) profileView {
	return profileView{Action: h.Action, Fields: model.ProfileFields, Profile: p, Genders: model.GenderOptions(p.Get("gender"))}
}

func (h *ProfileHandler) Show(c echo.Context) error {
	p, err := h.get(c.Request().Context(), current(c))
	if err != nil {
		return h.render(c, http.StatusOK, "profile", "My profile", h.view(model.Profile{}), failed(c, "get profile", err))
	}
	return h.render(c, http.StatusOK, "profile", "My profile", h.view(p))
}

// Save re-reads the profile, lays the form over it and writes it back.
// Members the form does not change keep their original JSON.
func (h *ProfileHandler) Save(c echo.Context) error {
	ctx := c.Request().Context()
	acc := current(c)
	p, err := h.get(ctx, acc)
	if err != nil {
		return h.render(c, http.StatusOK, "profile", "My profile", h.view(model.Profile{}), failed(c, "get profile", err))
	}
	form := make(map[string]string, len(model.ProfileFields))
	params, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	for _, k := range model.ProfileFields {
		if _, ok := params[k]; ok {
			form[k] = params.Get(k)
		}
	}
	p.Apply(form)
	if err := h.put(ctx, acc, p); err != nil {
		return h.render(c, http.StatusOK, "profile", "My profile", h.view(p), failed(c, "update profile", err))
	}

	updated := acc
	if name := p.Get("name"); name != "" {
		updated.Name = name
	}
	if email := p.Get("email"); email != "" {
		updated.Email = email
	}
	if updated != acc {
		if err := h.Sessions.Update(c.Response(), c.Request(), updated); err != nil {
			return err
		}
	}
	return h.redirect(c, h.Action, portal.Success("Profile updated."))
}
