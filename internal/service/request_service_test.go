package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/gas-utility-service/internal/domain"
	"github.com/spec-kit/gas-utility-service/internal/events"
	"github.com/spec-kit/gas-utility-service/internal/observability"
	"github.com/spec-kit/gas-utility-service/internal/repository"
)

func newTestRequestService(repo *MockServiceRequestRepository) (*RequestService, events.Dispatcher, *observability.Metrics) {
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics("test")
	return NewRequestService(RequestDependencies{
		RequestRepo: repo,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
	}), dispatcher, metrics
}

var customer = domain.Principal{AccountID: 11, Username: "alice", Role: domain.RoleCustomer, SessionID: "sid"}

func statusPtr(s domain.RequestStatus) *domain.RequestStatus { return &s }

func TestRequestService_SubmitRequest(t *testing.T) {
	repo := new(MockServiceRequestRepository)
	svc, dispatcher, metrics := newTestRequestService(repo)

	var published []events.Event
	dispatcher.Subscribe(events.EventRequestSubmitted, func(_ context.Context, e events.Event) error {
		published = append(published, e)
		return nil
	})

	repo.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.ServiceRequest) bool {
		return r.CustomerID != nil && *r.CustomerID == 11 &&
			r.Status == domain.RequestStatusPending &&
			r.TypeOfRequest == "leak" && r.Details == "smell of gas"
	})).Run(func(args mock.Arguments) {
		r := args.Get(1).(*domain.ServiceRequest)
		r.ID = 100
		r.DateSubmitted = time.Now()
	}).Return(nil)

	req, err := svc.SubmitRequest(context.Background(), customer, SubmitRequestInput{
		TypeOfRequest: "leak",
		Details:       "smell of gas",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), req.ID)
	assert.Nil(t, req.DateResolved)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RequestsSubmitted))

	require.Len(t, published, 1)
	assert.Equal(t, int64(100), published[0].SubjectID)
	assert.Equal(t, int64(11), published[0].Actor.AccountID)
	repo.AssertExpectations(t)
}

func TestRequestService_SubmitRequestValidation(t *testing.T) {
	repo := new(MockServiceRequestRepository)
	svc, _, _ := newTestRequestService(repo)

	_, err := svc.SubmitRequest(context.Background(), customer, SubmitRequestInput{TypeOfRequest: "leak"})
	domainErr := asDomainError(t, err)
	assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus)
	assert.Equal(t, []string{msgRequired}, domainErr.Fields["details"])
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRequestService_SubmitRequestPersistenceFailure(t *testing.T) {
	repo := new(MockServiceRequestRepository)
	svc, _, _ := newTestRequestService(repo)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	_, err := svc.SubmitRequest(context.Background(), customer, SubmitRequestInput{TypeOfRequest: "leak", Details: "x"})
	domainErr := asDomainError(t, err)
	assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus)
	assert.Equal(t, "connection reset", domainErr.Message)
}

func TestRequestService_SubmitRequestAnonymous(t *testing.T) {
	svc, _, _ := newTestRequestService(new(MockServiceRequestRepository))
	_, err := svc.SubmitRequest(context.Background(), domain.Principal{}, SubmitRequestInput{TypeOfRequest: "leak", Details: "x"})
	assert.Equal(t, http.StatusUnauthorized, asDomainError(t, err).HTTPStatus)
}

func TestRequestService_TrackOwnRequestsFiltersByCaller(t *testing.T) {
	repo := new(MockServiceRequestRepository)
	svc, _, _ := newTestRequestService(repo)

	owner := int64(11)
	repo.On("List", mock.Anything, repository.ServiceRequestFilter{CustomerID: &owner}).
		Return([]domain.ServiceRequest{{ID: 1, CustomerID: &owner}}, nil)

	requests, err := svc.TrackOwnRequests(context.Background(), customer)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, owner, *requests[0].CustomerID)
	repo.AssertExpectations(t)
}

func TestRequestService_AdminUpdateRequest(t *testing.T) {
	admin := domain.Principal{AccountID: 1, Role: domain.RoleAdministrator}
	owner := int64(11)
	stamped := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("first completion stamps and publishes", func(t *testing.T) {
		repo := new(MockServiceRequestRepository)
		svc, dispatcher, metrics := newTestRequestService(repo)

		var payload events.RequestStatusChangedPayload
		dispatcher.Subscribe(events.EventRequestStatusChanged, func(_ context.Context, e events.Event) error {
			payload = e.Payload.(events.RequestStatusChangedPayload)
			return nil
		})

		update := domain.ServiceRequestUpdate{Status: statusPtr(domain.RequestStatusCompleted)}
		repo.On("GetByID", mock.Anything, int64(4)).
			Return(&domain.ServiceRequest{ID: 4, CustomerID: &owner, Status: domain.RequestStatusPending}, nil)
		repo.On("Update", mock.Anything, int64(4), update).
			Return(&domain.ServiceRequest{ID: 4, CustomerID: &owner, Status: domain.RequestStatusCompleted, DateResolved: &stamped}, nil)

		updated, err := svc.AdminUpdateRequest(context.Background(), admin, 4, update)
		require.NoError(t, err)
		assert.Equal(t, stamped, *updated.DateResolved)
		assert.True(t, payload.Resolved)
		assert.Equal(t, domain.RequestStatusPending, payload.OldStatus)
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RequestsResolved))
	})

	t.Run("already resolved is not counted again", func(t *testing.T) {
		repo := new(MockServiceRequestRepository)
		svc, _, metrics := newTestRequestService(repo)

		update := domain.ServiceRequestUpdate{Status: statusPtr(domain.RequestStatusCompleted)}
		repo.On("GetByID", mock.Anything, int64(4)).
			Return(&domain.ServiceRequest{ID: 4, Status: domain.RequestStatusPending, DateResolved: &stamped}, nil)
		repo.On("Update", mock.Anything, int64(4), update).
			Return(&domain.ServiceRequest{ID: 4, Status: domain.RequestStatusCompleted, DateResolved: &stamped}, nil)

		updated, err := svc.AdminUpdateRequest(context.Background(), admin, 4, update)
		require.NoError(t, err)
		assert.Equal(t, stamped, *updated.DateResolved)
		assert.Equal(t, 0.0, testutil.ToFloat64(metrics.RequestsResolved))
	})

	t.Run("empty update is a no-op", func(t *testing.T) {
		repo := new(MockServiceRequestRepository)
		svc, _, _ := newTestRequestService(repo)
		repo.On("GetByID", mock.Anything, int64(4)).
			Return(&domain.ServiceRequest{ID: 4, Status: domain.RequestStatusPending}, nil)

		updated, err := svc.AdminUpdateRequest(context.Background(), admin, 4, domain.ServiceRequestUpdate{})
		require.NoError(t, err)
		assert.Equal(t, domain.RequestStatusPending, updated.Status)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("blank details rejected", func(t *testing.T) {
		repo := new(MockServiceRequestRepository)
		svc, _, _ := newTestRequestService(repo)
		repo.On("GetByID", mock.Anything, int64(4)).Return(&domain.ServiceRequest{ID: 4}, nil)

		blank := " "
		_, err := svc.AdminUpdateRequest(context.Background(), admin, 4, domain.ServiceRequestUpdate{Details: &blank})
		assert.Equal(t, []string{msgBlank}, asDomainError(t, err).Fields["details"])
	})

	t.Run("absent", func(t *testing.T) {
		repo := new(MockServiceRequestRepository)
		svc, _, _ := newTestRequestService(repo)
		repo.On("GetByID", mock.Anything, int64(4)).Return(nil, pgx.ErrNoRows)

		_, err := svc.AdminUpdateRequest(context.Background(), admin, 4, domain.ServiceRequestUpdate{Status: statusPtr("Pending")})
		domainErr := asDomainError(t, err)
		assert.Equal(t, http.StatusNotFound, domainErr.HTTPStatus)
		assert.Equal(t, "Service request not found", domainErr.Message)
	})
}

func TestRequestService_AdminDeleteRequest(t *testing.T) {
	repo := new(MockServiceRequestRepository)
	svc, _, _ := newTestRequestService(repo)
	repo.On("Delete", mock.Anything, int64(4)).Return(nil).Once()
	repo.On("Delete", mock.Anything, int64(5)).Return(pgx.ErrNoRows).Once()

	require.NoError(t, svc.AdminDeleteRequest(context.Background(), domain.Principal{}, 4))
	err := svc.AdminDeleteRequest(context.Background(), domain.Principal{}, 5)
	assert.Equal(t, http.StatusNotFound, asDomainError(t, err).HTTPStatus)
}
