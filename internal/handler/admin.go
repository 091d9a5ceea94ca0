package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/malo-app/malo-web/internal/apiclient"
	"github.com/malo-app/malo-web/internal/model"
	"github.com/malo-app/malo-web/internal/portal"
)

// AdminHandler serves the managing staff dashboard and reports.
type AdminHandler struct {
	*Base
}

func NewAdminHandler(b *Base) *AdminHandler {
	return &AdminHandler{Base: b}
}

type overviewView struct {
	Stats  model.DashboardStats
	Gender model.GenderDistribution
}

// Dashboard shows the counters and the dashboard gender breakdown.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	return h.overview(c, "admin_dashboard", "Dashboard", h.API.DashboardGenderDistribution)
}

// Reports shows the property wide gender distribution and visit totals.
func (h *AdminHandler) Reports(c echo.Context) error {
	return h.overview(c, "reports", "Reports", h.API.GenderDistribution)
}

// overview fetches the counters and a gender breakdown in parallel.  A
// failed fetch leaves its part at zero and adds a notice; the other part
// is still shown.  Nothing is cached between page loads.
func (h *AdminHandler) overview(c echo.Context, page, title string,
	gender func(ctx context.Context, propertyID string) (model.GenderDistribution, error)) error {
	ctx := c.Request().Context()
	propertyID := current(c).PropertyID.String()

	var (
		stats               model.DashboardStats
		dist                model.GenderDistribution
		statsErr, genderErr error
		g                   errgroup.Group
	)
	g.Go(func() error {
		stats, statsErr = h.API.DashboardStats(ctx, propertyID)
		return statsErr
	})
	g.Go(func() error {
		dist, genderErr = gender(ctx, propertyID)
		return genderErr
	})
	_ = g.Wait()

	var (
		view    overviewView
		notices []portal.Notice
	)
	if statsErr != nil {
		notices = append(notices, failed(c, "stats", statsErr))
	} else {
		view.Stats = stats
	}
	if genderErr != nil {
		notices = append(notices, failed(c, "gender distribution", genderErr))
	} else {
		view.Gender = dist
	}
	return h.render(c, http.StatusOK, page, title, view, notices...)
}

type residentVisitsView struct {
	Resident model.Resident
	Visits   []model.Visit
}

// ResidentVisits lists the visits requested by one resident of the
// manager's property.  Residents of other properties are not found.
func (h *AdminHandler) ResidentVisits(c echo.Context) error {
	const list = "/admin/residents"
	username := c.Param("username")
	ctx := c.Request().Context()
	rows, err := h.API.ListResidents(ctx, current(c).PropertyID.String())
	if err != nil {
		return h.redirect(c, list, failed(c, "find resident", err))
	}
	r, ok := portal.FindPerson(rows, username)
	if !ok {
		err := &apiclient.Error{Kind: apiclient.KindRejected, Status: http.StatusNotFound, Message: "Resident " + username + " was not found."}
		return h.redirect(c, list, failed(c, "find resident", err))
	}
	view := residentVisitsView{Resident: r}
	title := "Visits of " + r.Name
	visits, err := h.API.VisitHistoryFor(ctx, r.VisitKey())
	if err != nil {
		return h.render(c, http.StatusOK, "resident_visits", title, view, failed(c, "resident visit history", err))
	}
	view.Visits = visits
	return h.render(c, http.StatusOK, "resident_visits", title, view)
}
