package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/gas-utility-service/internal/domain"
)

// ServiceRequestFilter captures administrator search parameters. The
// submission bounds are inclusive after and exclusive before.
type ServiceRequestFilter struct {
	CustomerID      *int64
	Status          *domain.RequestStatus
	TypeOfRequest   *string
	SearchTerm      *string
	SubmittedAfter  *time.Time
	SubmittedBefore *time.Time
}

// ServiceRequestRepository encapsulates service request persistence.
type ServiceRequestRepository interface {
	Create(ctx context.Context, req *domain.ServiceRequest) error
	GetByID(ctx context.Context, id int64) (*domain.ServiceRequest, error)
	List(ctx context.Context, filter ServiceRequestFilter) ([]domain.ServiceRequest, error)
	Update(ctx context.Context, id int64, update domain.ServiceRequestUpdate) (*domain.ServiceRequest, error)
	Delete(ctx context.Context, id int64) error
}

type serviceRequestRepository struct {
	pool *pgxpool.Pool
}

// NewServiceRequestRepository instantiates repository.
func NewServiceRequestRepository(pool *pgxpool.Pool) ServiceRequestRepository {
	return &serviceRequestRepository{pool: pool}
}

const serviceRequestSelect = `
        SELECT r.id, r.customer_id, r.type_of_request, r.details, r.status,
               r.date_submitted, r.date_resolved,
               a.username, a.name, a.customer_id
        FROM service_requests r
        LEFT JOIN accounts a ON a.id = r.customer_id`

func (r *serviceRequestRepository) Create(ctx context.Context, req *domain.ServiceRequest) error {
	const query = `
        INSERT INTO service_requests (customer_id, type_of_request, details, status)
        VALUES ($1, $2, $3, $4)
        RETURNING id, date_submitted`
	return r.pool.QueryRow(ctx, query,
		req.CustomerID,
		req.TypeOfRequest,
		req.Details,
		req.Status,
	).Scan(&req.ID, &req.DateSubmitted)
}

func (r *serviceRequestRepository) GetByID(ctx context.Context, id int64) (*domain.ServiceRequest, error) {
	return scanServiceRequest(r.pool.QueryRow(ctx, serviceRequestSelect+` WHERE r.id=$1`, id))
}

func (r *serviceRequestRepository) List(ctx context.Context, filter ServiceRequestFilter) ([]domain.ServiceRequest, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		clauses = append(clauses, fmt.Sprintf("r.customer_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("r.status=$%d", len(args)))
	}
	if filter.TypeOfRequest != nil {
		args = append(args, *filter.TypeOfRequest)
		clauses = append(clauses, fmt.Sprintf("r.type_of_request=$%d", len(args)))
	}
	if filter.SubmittedAfter != nil {
		args = append(args, *filter.SubmittedAfter)
		clauses = append(clauses, fmt.Sprintf("r.date_submitted>=$%d", len(args)))
	}
	if filter.SubmittedBefore != nil {
		args = append(args, *filter.SubmittedBefore)
		clauses = append(clauses, fmt.Sprintf("r.date_submitted<$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		p := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(a.username) LIKE %[1]s OR LOWER(a.email) LIKE %[1]s OR LOWER(r.details) LIKE %[1]s)", p))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY r.date_submitted DESC, r.id DESC`,
		serviceRequestSelect, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.ServiceRequest{}
	for rows.Next() {
		req, err := scanServiceRequest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *req)
	}
	return result, rows.Err()
}

// Update applies a partial edit in one statement. The resolution timestamp is
// stamped only when the incoming status is Completed and none is set yet; the
// row lock taken by UPDATE serializes concurrent status changes.
func (r *serviceRequestRepository) Update(ctx context.Context, id int64, update domain.ServiceRequestUpdate) (*domain.ServiceRequest, error) {
	const query = `
        UPDATE service_requests SET
            type_of_request = COALESCE($1::text, type_of_request),
            details         = COALESCE($2::text, details),
            status          = COALESCE($3::text, status),
            date_resolved   = CASE
                WHEN $3::text = $4::text AND date_resolved IS NULL THEN NOW()
                ELSE date_resolved
            END
        WHERE id=$5`

	var status *string
	if update.Status != nil {
		s := string(*update.Status)
		status = &s
	}

	cmd, err := r.pool.Exec(ctx, query,
		update.TypeOfRequest,
		update.Details,
		status,
		string(domain.RequestStatusCompleted),
		id,
	)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, pgx.ErrNoRows
	}
	return r.GetByID(ctx, id)
}

func (r *serviceRequestRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM service_requests WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanServiceRequest(row pgx.Row) (*domain.ServiceRequest, error) {
	var (
		req                          domain.ServiceRequest
		status                       string
		username, name, customerCode *string
	)
	if err := row.Scan(
		&req.ID,
		&req.CustomerID,
		&req.TypeOfRequest,
		&req.Details,
		&status,
		&req.DateSubmitted,
		&req.DateResolved,
		&username,
		&name,
		&customerCode,
	); err != nil {
		return nil, err
	}
	req.Status = domain.RequestStatus(status)
	if req.CustomerID != nil && username != nil {
		owner := domain.Account{
			ID:         *req.CustomerID,
			Username:   *username,
			Name:       deref(name),
			CustomerID: deref(customerCode),
		}
		summary := owner.Summary()
		req.Customer = &summary
	}
	return &req, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
