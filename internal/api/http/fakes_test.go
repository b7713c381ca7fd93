package http

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/gas-utility-service/internal/domain"
	"github.com/spec-kit/gas-utility-service/internal/repository"
)

// memStore mirrors the Postgres constraints the repositories rely on:
// unique username/email/customer id and the request foreign key guard.
type memStore struct {
	mu          sync.Mutex
	accounts    map[int64]domain.Account
	requests    map[int64]domain.ServiceRequest
	nextAccount int64
	nextRequest int64
}

func newMemStore() *memStore {
	return &memStore{
		accounts: map[int64]domain.Account{},
		requests: map[int64]domain.ServiceRequest{},
	}
}

type memAccounts struct{ s *memStore }

type memRequests struct{ s *memStore }

func (s *memStore) conflict(a *domain.Account) error {
	for id, other := range s.accounts {
		if id == a.ID {
			continue
		}
		switch {
		case other.Username == a.Username:
			return repository.ErrDuplicateUsername
		case other.Email == a.Email:
			return repository.ErrDuplicateEmail
		case other.CustomerID == a.CustomerID:
			return repository.ErrDuplicateCustomerID
		}
	}
	return nil
}

func (r memAccounts) Create(_ context.Context, a *domain.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.conflict(a); err != nil {
		return err
	}
	r.s.nextAccount++
	a.ID = r.s.nextAccount
	a.DateJoined = time.Now()
	r.s.accounts[a.ID] = *a
	return nil
}

func (r memAccounts) Update(_ context.Context, a *domain.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.accounts[a.ID]; !ok {
		return pgx.ErrNoRows
	}
	if err := r.s.conflict(a); err != nil {
		return err
	}
	r.s.accounts[a.ID] = *a
	return nil
}

func (r memAccounts) GetByID(_ context.Context, id int64) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &a, nil
}

func (r memAccounts) find(match func(domain.Account) bool) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.accounts {
		if match(a) {
			found := a
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r memAccounts) GetByUsername(_ context.Context, username string) (*domain.Account, error) {
	return r.find(func(a domain.Account) bool { return a.Username == username })
}

func (r memAccounts) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	return r.find(func(a domain.Account) bool { return a.Email == email })
}

func (r memAccounts) List(_ context.Context, filter repository.AccountFilter) ([]domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Account{}
	for _, a := range r.s.accounts {
		if filter.IsStaff != nil && a.IsStaff != *filter.IsStaff {
			continue
		}
		if filter.SearchTerm != nil && !strings.Contains(strings.ToLower(a.Username), strings.ToLower(*filter.SearchTerm)) {
			continue
		}
		out = append(out, a)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Username < out[j-1].Username; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}

func (r memAccounts) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.accounts[id]; !ok {
		return pgx.ErrNoRows
	}
	for _, req := range r.s.requests {
		if req.CustomerID != nil && *req.CustomerID == id {
			return repository.ErrAccountHasRequests
		}
	}
	delete(r.s.accounts, id)
	return nil
}

func (r memRequests) withCustomer(req domain.ServiceRequest) domain.ServiceRequest {
	if req.CustomerID != nil {
		if a, ok := r.s.accounts[*req.CustomerID]; ok {
			summary := a.Summary()
			req.Customer = &summary
		}
	}
	return req
}

func (r memRequests) Create(_ context.Context, req *domain.ServiceRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextRequest++
	req.ID = r.s.nextRequest
	req.DateSubmitted = time.Now()
	r.s.requests[req.ID] = *req
	return nil
}

func (r memRequests) GetByID(_ context.Context, id int64) (*domain.ServiceRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.requests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	req = r.withCustomer(req)
	return &req, nil
}

func (r memRequests) List(_ context.Context, filter repository.ServiceRequestFilter) ([]domain.ServiceRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.ServiceRequest{}
	for id := r.s.nextRequest; id > 0; id-- {
		req, ok := r.s.requests[id]
		if !ok {
			continue
		}
		if filter.CustomerID != nil && (req.CustomerID == nil || *req.CustomerID != *filter.CustomerID) {
			continue
		}
		if filter.Status != nil && req.Status != *filter.Status {
			continue
		}
		if filter.SubmittedAfter != nil && req.DateSubmitted.Before(*filter.SubmittedAfter) {
			continue
		}
		if filter.SubmittedBefore != nil && !req.DateSubmitted.Before(*filter.SubmittedBefore) {
			continue
		}
		out = append(out, r.withCustomer(req))
	}
	return out, nil
}

func (r memRequests) Update(_ context.Context, id int64, update domain.ServiceRequestUpdate) (*domain.ServiceRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.requests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if update.TypeOfRequest != nil {
		req.TypeOfRequest = *update.TypeOfRequest
	}
	if update.Details != nil {
		req.Details = *update.Details
	}
	if update.Status != nil {
		req.Status = *update.Status
		if req.Status == domain.RequestStatusCompleted && req.DateResolved == nil {
			now := time.Now()
			req.DateResolved = &now
		}
	}
	r.s.requests[id] = req
	req = r.withCustomer(req)
	return &req, nil
}

func (r memRequests) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.requests[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.requests, id)
	return nil
}
