package portal

import (
	"time"

	"github.com/malo-app/malo-web/internal/model"
)

const visitDateLayout = "2006-01-02"

// NoUpcoming is shown when a resident has no future visit.
const NoUpcoming = "No Upcoming"

// ResidentSummary is the resident dashboard header.
type ResidentSummary struct {
	Pending  int
	Approved int
	Next     *model.Visit
}

// NextLabel is the next visit date or NoUpcoming.
func (s ResidentSummary) NextLabel() string {
	if s.Next == nil {
		return NoUpcoming
	}
	return s.Next.VisitDate
}

// SummarizeVisits counts pending and approved visits and picks the
// earliest non-rejected visit dated today or later.  Ties keep the first in
// upstream order; undated or unparsable visits are never "next".
func SummarizeVisits(visits []model.Visit, today time.Time) ResidentSummary {
	var s ResidentSummary
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	var nextAt time.Time
	for i := range visits {
		v := visits[i]
		status := v.Status.Normalized()
		switch status {
		case model.VisitPending:
			s.Pending++
		case model.VisitApproved:
			s.Approved++
		}
		if status == model.VisitRejected {
			continue
		}
		at, ok := parseVisitDate(v.VisitDate)
		if !ok || at.Before(day) {
			continue
		}
		if s.Next == nil || at.Before(nextAt) {
			s.Next = &visits[i]
			nextAt = at
		}
	}
	return s
}

// parseVisitDate accepts the date input format and RFC 3339 timestamps.
func parseVisitDate(s string) (time.Time, bool) {
	if t, err := time.Parse(visitDateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.UTC()
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}
