package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/malo-app/malo-web/internal/apiclient"
	"github.com/malo-app/malo-web/internal/logger"
	"github.com/malo-app/malo-web/internal/model"
	"github.com/malo-app/malo-web/internal/portal"
	"github.com/malo-app/malo-web/internal/queue"
)

// VisitPublisher announces accepted visit requests to the security desk.
type VisitPublisher interface {
	PublishVisitRequested(ctx context.Context, ev queue.VisitRequestedEvent) error
}

// publishTimeout bounds the broker round trip after a visit request.
const publishTimeout = 3 * time.Second

// ResidentHandler serves the resident dashboard and the visit pages.
type ResidentHandler struct {
	*Base
	Events VisitPublisher // optional
	Now    func() time.Time
}

func NewResidentHandler(b *Base, events VisitPublisher) *ResidentHandler {
	return &ResidentHandler{Base: b, Events: events, Now: time.Now}
}

type residentDashboardView struct {
	Summary portal.ResidentSummary
	Manager model.ManagerContact
}

// Dashboard summarises the resident's visits next to the manager contact.
// Both are fetched in parallel and fail independently.
func (h *ResidentHandler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		visits                []model.Visit
		manager               model.ManagerContact
		visitsErr, contactErr error
		g                     errgroup.Group
	)
	g.Go(func() error {
		visits, visitsErr = h.API.VisitHistory(ctx)
		return visitsErr
	})
	g.Go(func() error {
		manager, contactErr = h.API.GetManagerContact(ctx)
		return contactErr
	})
	_ = g.Wait()

	var (
		view    residentDashboardView
		notices []portal.Notice
	)
	if visitsErr != nil {
		notices = append(notices, failed(c, "visit history", visitsErr))
		visits = nil
	}
	view.Summary = portal.SummarizeVisits(visits, h.Now())
	if contactErr != nil {
		if !apiclient.IsNotFound(contactErr) {
			notices = append(notices, failed(c, "manager contact", contactErr))
		}
	} else {
		view.Manager = manager
	}
	return h.render(c, http.StatusOK, "dashboard", "Dashboard", view, notices...)
}

type visitFormView struct {
	Form      model.VisitRequest
	Missing   map[string]bool
	Submitted *model.Visit
	Today     string
}

// visitForm never carries the visitor password back to the browser.
func (h *ResidentHandler) visitForm(f model.VisitRequest) visitFormView {
	f.VisitorPassword = ""
	return visitFormView{Form: f, Today: h.Now().Format("2006-01-02")}
}

func (h *ResidentHandler) NewVisit(c echo.Context) error {
	return h.render(c, http.StatusOK, "visit_new", "Request a visit", h.visitForm(model.VisitRequest{}))
}

// RequestVisit sends exactly one request upstream per valid submission.
// On success the form is shown again empty together with the created pass.
func (h *ResidentHandler) RequestVisit(c echo.Context) error {
	var f model.VisitRequest
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if missing := f.Missing(); len(missing) > 0 {
		view := h.visitForm(f)
		view.Missing = make(map[string]bool, len(missing))
		for _, m := range missing {
			view.Missing[m] = true
		}
		return h.render(c, http.StatusUnprocessableEntity, "visit_new", "Request a visit", view,
			portal.FromError(apiclient.Validation("Please fill in all required fields")))
	}

	acc := current(c)
	f.ResidentID = acc.ID
	ctx := c.Request().Context()
	created, err := h.API.RequestVisit(ctx, f)
	if err != nil {
		return h.render(c, http.StatusOK, "visit_new", "Request a visit", h.visitForm(f), failed(c, "request visit", err))
	}
	if created.VisitorName == "" {
		created = model.Visit{
			ID:              created.ID,
			VisitorName:     f.VisitorName,
			VisitorUsername: f.VisitorUsername,
			VisitDate:       f.VisitDate,
			Purpose:         f.Purpose,
			ResidentID:      acc.ID,
			Status:          model.VisitPending,
		}
	}
	created.VisitorPassword = ""
	if created.Status == "" {
		created.Status = model.VisitPending
	}
	h.announce(ctx, acc, created)

	view := h.visitForm(model.VisitRequest{})
	view.Submitted = &created
	return h.render(c, http.StatusOK, "visit_new", "Request a visit", view,
		portal.Success("Visit request submitted. It is pending approval."))
}

// announce publishes the event best effort; failures are only logged.
func (h *ResidentHandler) announce(ctx context.Context, acc model.Account, v model.Visit) {
	if h.Events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	ev := queue.VisitRequestedEvent{
		VisitID:         v.ID.String(),
		ResidentID:      acc.ID.String(),
		ResidentName:    acc.Name,
		PropertyID:      acc.PropertyID.String(),
		VisitorName:     v.VisitorName,
		VisitorUsername: v.VisitorUsername,
		VisitDate:       v.VisitDate,
		Purpose:         v.Purpose,
		RequestedAt:     h.Now().UTC().Format(time.RFC3339),
	}
	if err := h.Events.PublishVisitRequested(ctx, ev); err != nil {
		logger.FromContext(ctx).WithError(err).Warn("visit event not published")
	}
}

type visitHistoryView struct {
	Visits []model.Visit
	Term   string
	Total  int
}

// History lists the visits filtered by ?q= over visitor name and username.
func (h *ResidentHandler) History(c echo.Context) error {
	view := visitHistoryView{Term: c.QueryParam("q")}
	visits, err := h.API.VisitHistory(c.Request().Context())
	if err != nil {
		return h.render(c, http.StatusOK, "visits", "Visit history", view, failed(c, "visit history", err))
	}
	view.Total = len(visits)
	view.Visits = portal.FilterVisits(visits, view.Term)
	return h.render(c, http.StatusOK, "visits", "Visit history", view)
}
