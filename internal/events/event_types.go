package events

import (
	"time"

	"github.com/spec-kit/gas-utility-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAccountRegistered    EventType = "account_registered"
	EventRequestSubmitted     EventType = "request_submitted"
	EventRequestStatusChanged EventType = "request_status_changed"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	AccountID int64       `json:"account_id,omitempty"`
	Role      domain.Role `json:"role,omitempty"`
}

// ActorFrom builds the actor block from a principal.
func ActorFrom(p domain.Principal) Actor {
	return Actor{AccountID: p.AccountID, Role: p.Role}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID int64       `json:"subject_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// AccountRegisteredPayload payload.
type AccountRegisteredPayload struct {
	Username   string `json:"username"`
	CustomerID string `json:"customer_id"`
	SelfServe  bool   `json:"self_serve"`
}

// RequestSubmittedPayload payload.
type RequestSubmittedPayload struct {
	CustomerID    int64  `json:"customer_id"`
	TypeOfRequest string `json:"type_of_request"`
}

// RequestStatusChangedPayload payload.
type RequestStatusChangedPayload struct {
	OldStatus    domain.RequestStatus `json:"old_status"`
	NewStatus    domain.RequestStatus `json:"new_status"`
	DateResolved *time.Time           `json:"date_resolved,omitempty"`
	Resolved     bool                 `json:"resolved"`
}
