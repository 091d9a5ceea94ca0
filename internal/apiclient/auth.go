package apiclient

import (
	"context"
	"net/http"

	"github.com/malo-app/malo-web/internal/model"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest creates an account.  MyRole selects the portal.
type RegisterRequest struct {
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	MyRole   model.Role `json:"myRole,omitempty"`
}

// Login exchanges credentials for the account and its token.
func (c *Client) Login(ctx context.Context, email, password string) (model.Account, error) {
	var resp model.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", credentials{Email: email, Password: password}, &resp); err != nil {
		return model.Account{}, err
	}
	return resp.Account(), nil
}

// GoogleLogin exchanges a Google Identity Services credential.
func (c *Client) GoogleLogin(ctx context.Context, credential string) (model.Account, error) {
	var resp model.AuthResponse
	body := map[string]string{"credential": credential}
	if err := c.do(ctx, http.MethodPost, "/api/auth/google", body, &resp); err != nil {
		return model.Account{}, err
	}
	return resp.Account(), nil
}

// Register creates an account and returns it signed in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (model.Account, error) {
	var resp model.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", req, &resp); err != nil {
		return model.Account{}, err
	}
	return resp.Account(), nil
}

// AdminOnboarding registers the manager's property.
func (c *Client) AdminOnboarding(ctx context.Context, p model.Property) (model.AdminOnboardingResponse, error) {
	var resp model.AdminOnboardingResponse
	body := struct {
		Name         string `json:"name"`
		Address      string `json:"address"`
		PropertyType string `json:"propertyType"`
	}{p.Name, p.Address, p.PropertyType}
	err := c.do(ctx, http.MethodPost, "/api/auth/admin/onboarding", body, &resp)
	return resp, err
}

// ResidentOnboarding completes a resident profile.  The returned account is
// nil when the server answers without a user.
func (c *Client) ResidentOnboarding(ctx context.Context, form model.ResidentOnboarding) (*model.Account, error) {
	var resp struct {
		User *model.Account `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/onboarding", form, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// ListProperties lists properties a resident can sign up for.  Answers are
// shared by every visitor and may come from the response cache.
func (c *Client) ListProperties(ctx context.Context) ([]model.Property, error) {
	var out listOf[model.Property]
	if err := c.doCached(ctx, "/api/auth/properties", &out); err != nil {
		return nil, err
	}
	return out, nil
}
