package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/gas-utility-service/internal/domain"
	"github.com/spec-kit/gas-utility-service/internal/events"
	"github.com/spec-kit/gas-utility-service/internal/observability"
	"github.com/spec-kit/gas-utility-service/internal/repository"
	apperrors "github.com/spec-kit/gas-utility-service/pkg/util/errorutil"
)

// SubmitRequestInput is a customer's new service request.
type SubmitRequestInput struct {
	TypeOfRequest string `form:"type_of_request" validate:"required,max=100"`
	Details       string `form:"details" validate:"required"`
}

// RequestService implements the service request lifecycle.
type RequestService struct {
	requests   repository.ServiceRequestRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	validator  *Validator
	now        func() time.Time
}

// RequestDependencies bundles collaborators for the request service.
type RequestDependencies struct {
	RequestRepo repository.ServiceRequestRepository
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// NewRequestService builds the service.
func NewRequestService(deps RequestDependencies) *RequestService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{
		requests:   deps.RequestRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		validator:  NewValidator(),
		now:        time.Now,
	}
}

// SubmitRequest files a new Pending request owned by the caller.
func (s *RequestService) SubmitRequest(ctx context.Context, principal domain.Principal, input SubmitRequestInput) (*domain.ServiceRequest, error) {
	if !principal.Authenticated() {
		return nil, apperrors.NewUnauthorized("Authentication credentials were not provided.")
	}

	input.TypeOfRequest = strings.TrimSpace(input.TypeOfRequest)
	input.Details = strings.TrimSpace(input.Details)

	errs := FieldErrors{}
	s.validator.Struct(input, errs)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	owner := principal.AccountID
	req := &domain.ServiceRequest{
		CustomerID:    &owner,
		TypeOfRequest: input.TypeOfRequest,
		Details:       input.Details,
		Status:        domain.RequestStatusPending,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		s.logger.Warn("failed to persist service request", zap.Int64("account_id", owner), zap.Error(err))
		return nil, apperrors.NewBadRequest(err.Error())
	}

	s.metrics.RequestSubmitted()
	s.publish(ctx, events.Event{
		Type:      events.EventRequestSubmitted,
		SubjectID: req.ID,
		Actor:     events.ActorFrom(principal),
		Payload: events.RequestSubmittedPayload{
			CustomerID:    owner,
			TypeOfRequest: req.TypeOfRequest,
		},
	})
	return req, nil
}

// TrackOwnRequests lists the caller's requests, newest first.
func (s *RequestService) TrackOwnRequests(ctx context.Context, principal domain.Principal) ([]domain.ServiceRequest, error) {
	if !principal.Authenticated() {
		return nil, apperrors.NewUnauthorized("Authentication credentials were not provided.")
	}
	owner := principal.AccountID
	requests, err := s.requests.List(ctx, repository.ServiceRequestFilter{CustomerID: &owner})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return requests, nil
}

// AdminListRequests lists every request matching the filter with its customer summary.
func (s *RequestService) AdminListRequests(ctx context.Context, _ domain.Principal, filter repository.ServiceRequestFilter) ([]domain.ServiceRequest, error) {
	requests, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return requests, nil
}

// AdminGetRequest fetches a request by id.
func (s *RequestService) AdminGetRequest(ctx context.Context, _ domain.Principal, id int64) (*domain.ServiceRequest, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, mapRequestLookup(err)
	}
	return req, nil
}

// AdminUpdateRequest applies a partial edit. Moving to Completed stamps the
// resolution time once; later updates never touch it.
func (s *RequestService) AdminUpdateRequest(ctx context.Context, principal domain.Principal, id int64, update domain.ServiceRequestUpdate) (*domain.ServiceRequest, error) {
	current, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, mapRequestLookup(err)
	}
	if update.Empty() {
		return current, nil
	}

	errs := FieldErrors{}
	if update.TypeOfRequest != nil {
		s.validator.Var("type_of_request", strings.TrimSpace(*update.TypeOfRequest), "required,max=100", errs)
	}
	if update.Details != nil && strings.TrimSpace(*update.Details) == "" {
		errs.Add("details", msgBlank)
	}
	if update.Status != nil {
		s.validator.Var("status", string(*update.Status), "required,max=50", errs)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	updated, err := s.requests.Update(ctx, id, update)
	if err != nil {
		return nil, mapRequestLookup(err)
	}

	if update.Status != nil && *update.Status != current.Status {
		s.publish(ctx, events.Event{
			Type:      events.EventRequestStatusChanged,
			SubjectID: updated.ID,
			Actor:     events.ActorFrom(principal),
			Payload: events.RequestStatusChangedPayload{
				OldStatus:    current.Status,
				NewStatus:    updated.Status,
				DateResolved: updated.DateResolved,
				Resolved:     !current.Resolved() && updated.Resolved(),
			},
		})
	}
	if !current.Resolved() && updated.Resolved() {
		s.metrics.RequestResolved()
	}
	return updated, nil
}

// AdminDeleteRequest removes a request unconditionally.
func (s *RequestService) AdminDeleteRequest(ctx context.Context, _ domain.Principal, id int64) error {
	if err := s.requests.Delete(ctx, id); err != nil {
		return mapRequestLookup(err)
	}
	return nil
}

func (s *RequestService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = s.now()
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func mapRequestLookup(err error) error {
	if apperrors.IsNotFound(err) {
		return apperrors.NewNotFound("Service request", nil)
	}
	return apperrors.MapError(err)
}
