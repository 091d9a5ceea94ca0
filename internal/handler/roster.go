package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/malo-app/malo-web/internal/apiclient"
	"github.com/malo-app/malo-web/internal/model"
	"github.com/malo-app/malo-web/internal/portal"
)

// memberForm is the create/edit form shared by residents and staff.
type memberForm struct {
	Username string `form:"username"`
	Name     string `form:"name"`
	Email    string `form:"email"`
	Phone    string `form:"phone"`
	IC       string `form:"ic"`
	Gender   string `form:"gender"`
	Address  string `form:"address"`
	Room     string `form:"room"`
	Password string `form:"password"`
}

// input is the create/edit body.  It never carries the approval flag.
func (f memberForm) input() model.MemberInput {
	return model.MemberInput{
		Username: strings.TrimSpace(f.Username),
		Name:     strings.TrimSpace(f.Name),
		Email:    strings.TrimSpace(f.Email),
		Phone:    strings.TrimSpace(f.Phone),
		IC:       strings.TrimSpace(f.IC),
		Gender:   f.Gender,
		Address:  strings.TrimSpace(f.Address),
	}
}

func formOf(p model.Person) memberForm {
	return memberForm{
		Username: p.Username,
		Name:     p.Name,
		Email:    p.Email,
		Phone:    p.Phone,
		IC:       p.IC,
		Gender:   p.Gender,
		Address:  p.Address,
	}
}

// rosterMeta is what the templates need to know about the roster kind.
type rosterMeta struct {
	Path     string
	Singular string
	Plural   string
	HasRoom  bool
}

// Roster serves the list, create, edit, delete and approve pages of one
// kind of member.  Every change is followed by a redirect to the list,
// which refetches from upstream.
type Roster[T model.Member] struct {
	*Base
	rosterMeta
	list    func(ctx context.Context, propertyID string) ([]T, error)
	create  func(ctx context.Context, f memberForm, propertyID model.ID) error
	update  func(ctx context.Context, username string, f memberForm) error
	remove  func(ctx context.Context, username string) error
	approve func(ctx context.Context, username string) error
	form    func(T) memberForm
}

// NewResidentRoster serves /admin/residents.
func NewResidentRoster(b *Base) *Roster[model.Resident] {
	return &Roster[model.Resident]{
		Base:       b,
		rosterMeta: rosterMeta{Path: "/admin/residents", Singular: "Resident", Plural: "Residents", HasRoom: true},
		list:       b.API.ListResidents,
		create: func(ctx context.Context, f memberForm, propertyID model.ID) error {
			in := f.input()
			in.Password = f.Password
			in.PropertyID = propertyID
			return b.API.CreateResident(ctx, model.ResidentInput{MemberInput: in, Room: strings.TrimSpace(f.Room)})
		},
		update: func(ctx context.Context, username string, f memberForm) error {
			in := f.input()
			in.Username = username
			return b.API.UpdateResident(ctx, username, model.ResidentInput{MemberInput: in, Room: strings.TrimSpace(f.Room)})
		},
		remove:  b.API.DeleteResident,
		approve: b.API.ApproveResident,
		form: func(r model.Resident) memberForm {
			f := formOf(r.Person)
			f.Room = r.Room
			return f
		},
	}
}

// NewStaffRoster serves /admin/staff.
func NewStaffRoster(b *Base) *Roster[model.Staff] {
	return &Roster[model.Staff]{
		Base:       b,
		rosterMeta: rosterMeta{Path: "/admin/staff", Singular: "Staff member", Plural: "Staff"},
		list:       b.API.ListStaff,
		create: func(ctx context.Context, f memberForm, propertyID model.ID) error {
			in := f.input()
			in.Password = f.Password
			in.PropertyID = propertyID
			return b.API.CreateStaff(ctx, model.StaffInput{MemberInput: in})
		},
		update: func(ctx context.Context, username string, f memberForm) error {
			in := f.input()
			in.Username = username
			return b.API.UpdateStaff(ctx, username, model.StaffInput{MemberInput: in})
		},
		remove:  b.API.DeleteStaff,
		approve: b.API.ApproveStaff,
		form:    func(s model.Staff) memberForm { return formOf(s.Person) },
	}
}

type rosterListView[T model.Member] struct {
	rosterMeta
	Rows     []T
	Term     string
	Status   portal.StatusFilter
	Statuses []portal.StatusFilter
	Counts   portal.Counts
}

type rosterFormView struct {
	rosterMeta
	Form    memberForm
	Editing bool
	Action  string
	Genders []string
}

type rosterDeleteView struct {
	rosterMeta
	Person model.Person
}

// List shows the property's members filtered by ?q= and ?status=.  The
// tab counts always cover the whole list.
func (h *Roster[T]) List(c echo.Context) error {
	view := rosterListView[T]{
		rosterMeta: h.rosterMeta,
		Term:       c.QueryParam("q"),
		Status:     portal.ParseStatusFilter(c.QueryParam("status")),
		Statuses:   []portal.StatusFilter{portal.StatusAll, portal.StatusPending, portal.StatusApproved},
	}
	rows, err := h.list(c.Request().Context(), current(c).PropertyID.String())
	if err != nil {
		return h.render(c, http.StatusOK, "roster", h.Plural, view, failed(c, "list "+h.Path, err))
	}
	view.Rows = portal.FilterPeople(rows, view.Term, view.Status)
	view.Counts = portal.CountPeople(rows)
	return h.render(c, http.StatusOK, "roster", h.Plural, view)
}

func (h *Roster[T]) formView(f memberForm, username string) rosterFormView {
	v := rosterFormView{rosterMeta: h.rosterMeta, Form: f, Action: h.Path, Genders: model.GenderOptions(f.Gender)}
	if username != "" {
		v.Editing = true
		v.Action = h.Path + "/" + username
	}
	return v
}

func (h *Roster[T]) New(c echo.Context) error {
	return h.render(c, http.StatusOK, "roster_form", "Add "+strings.ToLower(h.Singular), h.formView(memberForm{}, ""))
}

// Create adds a member to the signed-in manager's property.
func (h *Roster[T]) Create(c echo.Context) error {
	var f memberForm
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	title := "Add " + strings.ToLower(h.Singular)
	view := h.formView(f, "")
	view.Form.Password = ""
	p := f.input()
	if p.Username == "" || p.Name == "" || p.Email == "" || f.Password == "" {
		return h.render(c, http.StatusUnprocessableEntity, "roster_form", title, view,
			portal.FromError(apiclient.Validation("Username, name, email and password are required")))
	}
	if err := h.create(c.Request().Context(), f, current(c).PropertyID); err != nil {
		return h.render(c, http.StatusOK, "roster_form", title, view, failed(c, "create "+h.Path, err))
	}
	return h.redirect(c, h.Path, portal.Success(h.Singular+" "+p.Username+" created."))
}

// find refetches the list and picks username; there is no single-member
// endpoint upstream.
func (h *Roster[T]) find(c echo.Context, username string) (T, error) {
	rows, err := h.list(c.Request().Context(), current(c).PropertyID.String())
	if err != nil {
		var zero T
		return zero, err
	}
	m, ok := portal.FindPerson(rows, username)
	if !ok {
		var zero T
		return zero, &apiclient.Error{Kind: apiclient.KindRejected, Status: http.StatusNotFound, Message: h.Singular + " " + username + " was not found."}
	}
	return m, nil
}

// Edit shows the form pre-filled; the username cannot be changed.
func (h *Roster[T]) Edit(c echo.Context) error {
	username := c.Param("username")
	m, err := h.find(c, username)
	if err != nil {
		return h.redirect(c, h.Path, failed(c, "find "+h.Path, err))
	}
	return h.render(c, http.StatusOK, "roster_form", "Edit "+strings.ToLower(h.Singular), h.formView(h.form(m), username))
}

// Update sends the edited member with PUT.  The username always comes from
// the path since the form never submits it.
func (h *Roster[T]) Update(c echo.Context) error {
	username := c.Param("username")
	var f memberForm
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	f.Username = username
	f.Password = ""
	title := "Edit " + strings.ToLower(h.Singular)
	view := h.formView(f, username)
	if p := f.input(); p.Name == "" || p.Email == "" {
		return h.render(c, http.StatusUnprocessableEntity, "roster_form", title, view,
			portal.FromError(apiclient.Validation("Name and email are required")))
	}
	if err := h.update(c.Request().Context(), username, f); err != nil {
		return h.render(c, http.StatusOK, "roster_form", title, view, failed(c, "update "+h.Path, err))
	}
	return h.redirect(c, h.Path, portal.Success(h.Singular+" "+username+" updated."))
}

// ConfirmDelete asks before deleting.  A member missing from the list is
// still offered by username.
func (h *Roster[T]) ConfirmDelete(c echo.Context) error {
	username := c.Param("username")
	view := rosterDeleteView{rosterMeta: h.rosterMeta, Person: model.Person{Username: username}}
	if m, err := h.find(c, username); err == nil {
		view.Person = m.Details()
	}
	return h.render(c, http.StatusOK, "roster_delete", "Delete "+strings.ToLower(h.Singular), view)
}

func (h *Roster[T]) Delete(c echo.Context) error {
	username := c.Param("username")
	if err := h.remove(c.Request().Context(), username); err != nil {
		return h.redirect(c, h.Path, failed(c, "delete "+h.Path, err))
	}
	return h.redirect(c, h.Path, portal.Success(h.Singular+" "+username+" deleted."))
}

func (h *Roster[T]) Approve(c echo.Context) error {
	username := c.Param("username")
	if err := h.approve(c.Request().Context(), username); err != nil {
		return h.redirect(c, h.Path, failed(c, "approve "+h.Path, err))
	}
	return h.redirect(c, h.Path, portal.Success(h.Singular+" "+username+" approved."))
}
