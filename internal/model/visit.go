package model

import "strings"

// VisitStatus is the lifecycle state of a visit pass.  Transitions happen
// upstream; the portal only renders the value it is given.
type VisitStatus string

const (
	VisitPending  VisitStatus = "Pending"
	VisitApproved VisitStatus = "Approved"
	VisitRejected VisitStatus = "Rejected"
)

// ParseVisitStatus maps an upstream value case-insensitively.  ok is false
// for values outside the three known states.
func ParseVisitStatus(s string) (VisitStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return VisitPending, true
	case "approved":
		return VisitApproved, true
	case "rejected":
		return VisitRejected, true
	}
	return VisitStatus(s), false
}

// Normalized returns the canonical spelling of a known status and the raw
// value otherwise.
func (s VisitStatus) Normalized() VisitStatus {
	v, _ := ParseVisitStatus(string(s))
	return v
}

// Badge is the CSS modifier used by the status badge.
func (s VisitStatus) Badge() string {
	switch s.Normalized() {
	case VisitApproved:
		return "badge-approved"
	case VisitRejected:
		return "badge-rejected"
	case VisitPending:
		return "badge-pending"
	}
	return "badge-unknown"
}

// Label is the text shown in the badge.
func (s VisitStatus) Label() string {
	if v, ok := ParseVisitStatus(string(s)); ok {
		return string(v)
	}
	return "Unknown"
}

// Visit is a guest-access request tied to a resident.
type Visit struct {
	ID               ID          `json:"id"`
	VisitorName      string      `json:"visitorName"`
	VisitorUsername  string      `json:"visitorUsername"`
	VisitorPassword  string      `json:"visitorPassword,omitempty"`
	VisitDate        string      `json:"visitDate"`
	Purpose          string      `json:"purpose"`
	ResidentUsername string      `json:"residentUsername,omitempty"`
	ResidentID       ID          `json:"residentId,omitempty"`
	Status           VisitStatus `json:"status"`
}

// VisitRequest is the resident's form.  The zero value is the reset form.
type VisitRequest struct {
	VisitorName      string `json:"visitorName" form:"visitorName"`
	VisitorUsername  string `json:"visitorUsername" form:"visitorUsername"`
	VisitorPassword  string `json:"visitorPassword" form:"visitorPassword"`
	VisitDate        string `json:"visitDate" form:"visitDate"`
	Purpose          string `json:"purpose" form:"purpose"`
	ResidentID       ID     `json:"residentId,omitempty"`
	ResidentUsername string `json:"residentUsername,omitempty"`
}

// Missing lists the required form fields left blank, in form order.
func (v VisitRequest) Missing() []string {
	var out []string
	for _, f := range []struct{ name, val string }{
		{"visitorName", v.VisitorName},
		{"visitorUsername", v.VisitorUsername},
		{"visitorPassword", v.VisitorPassword},
		{"visitDate", v.VisitDate},
		{"purpose", v.Purpose},
	} {
		if strings.TrimSpace(f.val) == "" {
			out = append(out, f.name)
		}
	}
	return out
}
