package model

import (
	"bytes"
	"sort"

	"github.com/goccy/go-json"
)

// DashboardStats are the admin dashboard counters.
type DashboardStats struct {
	TotalResidents   int `json:"totalResidents"`
	TotalStaff       int `json:"totalStaff"`
	PendingApprovals int `json:"pendingApprovals"`
	TotalVisits      int `json:"totalVisits"`
	PendingVisits    int `json:"pendingVisits"`
	ApprovedVisits   int `json:"approvedVisits"`
}

// GenderCount is one bar of the gender distribution chart.
type GenderCount struct {
	Gender string `json:"gender"`
	Count  int    `json:"count"`
}

// GenderDistribution is the breakdown returned by the stats endpoints.
type GenderDistribution []GenderCount

// Total sums all buckets.
func (g GenderDistribution) Total() int {
	n := 0
	for _, c := range g {
		n += c.Count
	}
	return n
}

// Percent returns the share of c in the whole distribution, 0..100.
func (g GenderDistribution) Percent(c GenderCount) int {
	total := g.Total()
	if total == 0 {
		return 0
	}
	return c.Count * 100 / total
}

// UnmarshalJSON accepts [{"gender":"Male","count":3}], {"Male":3,"Female":2}
// and {"data":[...]}.  Object buckets are ordered by gender name.
func (g *GenderDistribution) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*g = nil
		return nil
	}
	if b[0] == '[' {
		var items []GenderCount
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		*g = items
		return nil
	}
	var counts map[string]int
	if err := json.Unmarshal(b, &counts); err == nil {
		out := make(GenderDistribution, 0, len(counts))
		for k, v := range counts {
			out = append(out, GenderCount{Gender: k, Count: v})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Gender < out[j].Gender })
		*g = out
		return nil
	}
	var wrapped struct {
		Data []GenderCount `json:"data"`
	}
	if err := json.Unmarshal(b, &wrapped); err != nil {
		return err
	}
	*g = wrapped.Data
	return nil
}
