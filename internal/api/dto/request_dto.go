package dto

import (
	"time"

	"github.com/spec-kit/gas-utility-service/internal/domain"
)

// SubmitRequestRequest payload.
type SubmitRequestRequest struct {
	TypeOfRequest string `json:"type_of_request"`
	Details       string `json:"details"`
}

// UpdateRequestRequest is a partial edit; absent fields keep their value.
type UpdateRequestRequest struct {
	TypeOfRequest *string               `json:"type_of_request"`
	Details       *string               `json:"details"`
	Status        *domain.RequestStatus `json:"status"`
}

// CustomerSummary identifies the request owner.
type CustomerSummary struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Name       string `json:"name"`
	CustomerID string `json:"customer_id"`
}

// SubmittedRequest is the record echoed after submission.
type SubmittedRequest struct {
	ID            int64                `json:"id"`
	TypeOfRequest string               `json:"type_of_request"`
	Status        domain.RequestStatus `json:"status"`
	DateSubmitted time.Time            `json:"date_submitted"`
	Details       string               `json:"details"`
}

// SubmitRequestResponse answers a submission.
type SubmitRequestResponse struct {
	Message string           `json:"message"`
	Request SubmittedRequest `json:"request"`
}

// TrackedRequest is a customer's view of their own request.
type TrackedRequest struct {
	ID            int64                `json:"id"`
	TypeOfRequest string               `json:"type_of_request"`
	Status        domain.RequestStatus `json:"status"`
	DateSubmitted time.Time            `json:"date_submitted"`
	DateResolved  *time.Time           `json:"date_resolved"`
	Details       string               `json:"details"`
}

// AdminRequestResponse is the administrator view with the embedded owner.
type AdminRequestResponse struct {
	ID            int64                `json:"id"`
	Customer      *CustomerSummary     `json:"customer"`
	TypeOfRequest string               `json:"type_of_request"`
	Details       string               `json:"details"`
	Status        domain.RequestStatus `json:"status"`
	DateSubmitted time.Time            `json:"date_submitted"`
	DateResolved  *time.Time           `json:"date_resolved"`
}
