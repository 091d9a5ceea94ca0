// Package queue defines the visit events exchanged over RabbitMQ and the
// desk consumer that records them.
package queue

// VisitRequestedQueue is the durable queue carrying VisitRequestedEvent.
const VisitRequestedQueue = "visit.requested"

// VisitRequestedEvent is published after a resident's visit request was
// accepted upstream.  It carries what the security desk needs without
// asking the API; the visitor password is never included.
type VisitRequestedEvent struct {
	VisitID         string `json:"visit_id,omitempty"`
	ResidentID      string `json:"resident_id"`
	ResidentName    string `json:"resident_name"`
	PropertyID      string `json:"property_id,omitempty"`
	VisitorName     string `json:"visitor_name"`
	VisitorUsername string `json:"visitor_username"`
	VisitDate       string `json:"visit_date"`
	Purpose         string `json:"purpose"`
	RequestedAt     string `json:"requested_at"`
}
