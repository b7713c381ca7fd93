package domain

import "time"

// RequestStatus is an open set; unknown values are stored as given.
type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "Pending"
	RequestStatusInProgress RequestStatus = "In Progress"
	RequestStatusCompleted  RequestStatus = "Completed"
	RequestStatusCancelled  RequestStatus = "Cancelled"
)

// ServiceRequest is a ticket submitted by a customer.
type ServiceRequest struct {
	ID            int64
	CustomerID    *int64
	Customer      *CustomerSummary
	TypeOfRequest string
	Details       string
	Status        RequestStatus
	DateSubmitted time.Time
	DateResolved  *time.Time
}

// Resolved reports whether the resolution timestamp has been stamped.
func (r *ServiceRequest) Resolved() bool {
	return r.DateResolved != nil
}

// ServiceRequestUpdate carries an administrator's partial edit.
type ServiceRequestUpdate struct {
	TypeOfRequest *string
	Details       *string
	Status        *RequestStatus
}

// Empty reports whether the update changes nothing.
func (u ServiceRequestUpdate) Empty() bool {
	return u.TypeOfRequest == nil && u.Details == nil && u.Status == nil
}
