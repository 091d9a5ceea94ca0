package apiclient

import (
	"context"
	"net/http"

	"github.com/malo-app/malo-web/internal/model"
)

// GetProfile reads the profile with the given account id.
func (c *Client) GetProfile(ctx context.Context, id string) (model.Profile, error) {
	var p model.Profile
	err := c.do(ctx, http.MethodGet, "/api/profile/"+escape(id), nil, &p)
	return p, err
}

// UpdateProfile writes p back; client-only members are dropped on encode.
func (c *Client) UpdateProfile(ctx context.Context, id string, p model.Profile) error {
	return c.do(ctx, http.MethodPut, "/api/profile/"+escape(id), p, nil)
}

func (c *Client) GetMyProfile(ctx context.Context) (model.Profile, error) {
	var p model.Profile
	err := c.do(ctx, http.MethodGet, "/api/profile/me", nil, &p)
	return p, err
}

func (c *Client) UpdateMyProfile(ctx context.Context, p model.Profile) error {
	return c.do(ctx, http.MethodPut, "/api/profile/me", p, nil)
}

// GetManagerContact returns the manager of the resident's property.
func (c *Client) GetManagerContact(ctx context.Context) (model.ManagerContact, error) {
	var mc model.ManagerContact
	err := c.do(ctx, http.MethodGet, "/api/profile/manager", nil, &mc)
	return mc, err
}
