package apiclient

import (
	"context"
	"net/http"

	"github.com/malo-app/malo-web/internal/model"
)

// RequestVisit creates a pending visit pass.  The created visit is returned
// when the server echoes it.
func (c *Client) RequestVisit(ctx context.Context, req model.VisitRequest) (model.Visit, error) {
	var v model.Visit
	err := c.do(ctx, http.MethodPost, "/api/visits/request", req, &v)
	return v, err
}

// VisitHistory lists the signed-in resident's visits in upstream order.
func (c *Client) VisitHistory(ctx context.Context) ([]model.Visit, error) {
	var out listOf[model.Visit]
	if err := c.do(ctx, http.MethodGet, "/api/visits/history", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// VisitHistoryFor lists the visits of one resident.
func (c *Client) VisitHistoryFor(ctx context.Context, residentID string) ([]model.Visit, error) {
	var out listOf[model.Visit]
	if err := c.do(ctx, http.MethodGet, "/api/visits/history/"+escape(residentID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
