package apiclient

import (
	"context"
	"net/http"

	"github.com/malo-app/malo-web/internal/model"
)

func (c *Client) DashboardStats(ctx context.Context, propertyID string) (model.DashboardStats, error) {
	var s model.DashboardStats
	err := c.do(ctx, http.MethodGet, withProperty("/api/dashboard/stats", propertyID), nil, &s)
	return s, err
}

func (c *Client) DashboardGenderDistribution(ctx context.Context, propertyID string) (model.GenderDistribution, error) {
	var out model.GenderDistribution
	err := c.do(ctx, http.MethodGet, withProperty("/api/dashboard/gender-distribution", propertyID), nil, &out)
	return out, err
}

// GenderDistribution is the reports variant served under /api/stats.
func (c *Client) GenderDistribution(ctx context.Context, propertyID string) (model.GenderDistribution, error) {
	var out model.GenderDistribution
	err := c.do(ctx, http.MethodGet, withProperty("/api/stats/gender-distribution", propertyID), nil, &out)
	return out, err
}
