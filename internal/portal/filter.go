// Package portal holds the view logic shared by the page handlers: list
// filters, dashboard summaries, account merging and the notice convention.
// Everything here is a pure function of its inputs.
package portal

import (
	"strings"

	"github.com/malo-app/malo-web/internal/model"
)

// StatusFilter selects people by approval state.
type StatusFilter string

const (
	StatusAll      StatusFilter = "all"
	StatusPending  StatusFilter = "pending"
	StatusApproved StatusFilter = "approved"
)

// ParseStatusFilter maps query input; anything unknown means all.
func ParseStatusFilter(s string) StatusFilter {
	switch StatusFilter(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending
	case StatusApproved:
		return StatusApproved
	}
	return StatusAll
}

func (f StatusFilter) keeps(approved bool) bool {
	switch f {
	case StatusPending:
		return !approved
	case StatusApproved:
		return approved
	}
	return true
}

// matches reports a case-insensitive substring hit on any of fields.  An
// empty term matches everything.
func matches(term string, fields ...string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// FilterPeople keeps the members whose name or username contains term and
// whose approval state passes status, in upstream order.
func FilterPeople[T model.Member](list []T, term string, status StatusFilter) []T {
	out := make([]T, 0, len(list))
	for _, m := range list {
		p := m.Details()
		if status.keeps(p.Approved) && matches(term, p.Name, p.Username) {
			out = append(out, m)
		}
	}
	return out
}

// FindPerson returns the member with username, for pre-filling the edit form.
func FindPerson[T model.Member](list []T, username string) (T, bool) {
	for _, m := range list {
		if m.Details().Username == username {
			return m, true
		}
	}
	var zero T
	return zero, false
}

// Counts is the tab header of a people list.
type Counts struct {
	All, Pending, Approved int
}

// CountPeople counts by approval state.
func CountPeople[T model.Member](list []T) Counts {
	var c Counts
	for _, m := range list {
		c.All++
		if m.Details().Approved {
			c.Approved++
		} else {
			c.Pending++
		}
	}
	return c
}

// FilterVisits matches on visitor name or visitor username.
func FilterVisits(list []model.Visit, term string) []model.Visit {
	out := make([]model.Visit, 0, len(list))
	for _, v := range list {
		if matches(term, v.VisitorName, v.VisitorUsername) {
			out = append(out, v)
		}
	}
	return out
}
