package apiclient

import (
	"context"
	"net/http"

	"github.com/malo-app/malo-web/internal/model"
)

// ListResidents returns the residents of a property in upstream order.
func (c *Client) ListResidents(ctx context.Context, propertyID string) ([]model.Resident, error) {
	var out listOf[model.Resident]
	if err := c.do(ctx, http.MethodGet, withProperty("/api/admin/residents", propertyID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateResident(ctx context.Context, in model.ResidentInput) error {
	return c.do(ctx, http.MethodPost, "/api/admin/residents", in, nil)
}

// UpdateResident replaces the resident identified by username.
func (c *Client) UpdateResident(ctx context.Context, username string, in model.ResidentInput) error {
	return c.do(ctx, http.MethodPut, "/api/admin/residents/"+escape(username), in, nil)
}

func (c *Client) DeleteResident(ctx context.Context, username string) error {
	return c.do(ctx, http.MethodDelete, "/api/admin/residents/"+escape(username), nil, nil)
}

func (c *Client) ApproveResident(ctx context.Context, username string) error {
	return c.do(ctx, http.MethodPost, "/api/admin/approve-resident/"+escape(username), nil, nil)
}

// ListStaff returns the staff of a property in upstream order.
func (c *Client) ListStaff(ctx context.Context, propertyID string) ([]model.Staff, error) {
	var out listOf[model.Staff]
	if err := c.do(ctx, http.MethodGet, withProperty("/api/admin/staff", propertyID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateStaff(ctx context.Context, in model.StaffInput) error {
	return c.do(ctx, http.MethodPost, "/api/admin/staff", in, nil)
}

func (c *Client) UpdateStaff(ctx context.Context, username string, in model.StaffInput) error {
	return c.do(ctx, http.MethodPut, "/api/admin/staff/"+escape(username), in, nil)
}

func (c *Client) DeleteStaff(ctx context.Context, username string) error {
	return c.do(ctx, http.MethodDelete, "/api/admin/staff/"+escape(username), nil, nil)
}

func (c *Client) ApproveStaff(ctx context.Context, username string) error {
	return c.do(ctx, http.MethodPost, "/api/admin/approve-staff/"+escape(username), nil, nil)
}
