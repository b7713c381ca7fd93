package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/gas-utility-service/internal/domain"
)

// AccountFilter captures administrator search parameters.
type AccountFilter struct {
	SearchTerm  *string
	IsActive    *bool
	IsStaff     *bool
	IsSuperuser *bool
}

// AccountRepository defines persistence access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	Update(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	List(ctx context.Context, filter AccountFilter) ([]domain.Account, error)
	Delete(ctx context.Context, id int64) error
}

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

const accountColumns = `id, username, email, name, phone_number, address, customer_id,
               password_hash, is_active, is_staff, is_superuser, date_joined`

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	const query = `
        INSERT INTO accounts (username, email, name, phone_number, address, customer_id,
                              password_hash, is_active, is_staff, is_superuser)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id, date_joined`

	err := r.pool.QueryRow(ctx, query,
		account.Username,
		account.Email,
		account.Name,
		account.PhoneNumber,
		account.Address,
		account.CustomerID,
		account.PasswordHash,
		account.IsActive,
		account.IsStaff,
		account.IsSuperuser,
	).Scan(&account.ID, &account.DateJoined)
	return translateAccountError(err)
}

// Update writes every mutable column. The customer id and join date never change.
func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	const query = `
        UPDATE accounts SET username=$1, email=$2, name=$3, phone_number=$4, address=$5,
            password_hash=$6, is_active=$7, is_staff=$8, is_superuser=$9
        WHERE id=$10`

	cmd, err := r.pool.Exec(ctx, query,
		account.Username,
		account.Email,
		account.Name,
		account.PhoneNumber,
		account.Address,
		account.PasswordHash,
		account.IsActive,
		account.IsStaff,
		account.IsSuperuser,
		account.ID,
	)
	if err != nil {
		return translateAccountError(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id=$1`
	return scanAccount(r.pool.QueryRow(ctx, query, id))
}

func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE username=$1`
	return scanAccount(r.pool.QueryRow(ctx, query, username))
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email=$1`
	return scanAccount(r.pool.QueryRow(ctx, query, email))
}

func (r *accountRepository) List(ctx context.Context, filter AccountFilter) ([]domain.Account, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		clauses = append(clauses, fmt.Sprintf("is_active=$%d", len(args)))
	}
	if filter.IsStaff != nil {
		args = append(args, *filter.IsStaff)
		clauses = append(clauses, fmt.Sprintf("is_staff=$%d", len(args)))
	}
	if filter.IsSuperuser != nil {
		args = append(args, *filter.IsSuperuser)
		clauses = append(clauses, fmt.Sprintf("is_superuser=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		p := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(username) LIKE %[1]s OR LOWER(email) LIKE %[1]s OR LOWER(name) LIKE %[1]s OR phone_number LIKE %[1]s OR LOWER(customer_id) LIKE %[1]s)", p))
	}

	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE %s ORDER BY username`,
		accountColumns, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *account)
	}
	return result, rows.Err()
}

// Delete removes the account unless a service request references it. The
// account row is locked first so a concurrent submission either completes
// before the check or fails on the foreign key afterwards.
func (r *accountRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var locked int64
	if err := tx.QueryRow(ctx, `SELECT id FROM accounts WHERE id=$1 FOR UPDATE`, id).Scan(&locked); err != nil {
		return err
	}

	var referenced bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM service_requests WHERE customer_id=$1)`, id,
	).Scan(&referenced); err != nil {
		return err
	}
	if referenced {
		return ErrAccountHasRequests
	}

	if _, err := tx.Exec(ctx, `DELETE FROM accounts WHERE id=$1`, id); err != nil {
		return translateAccountError(err)
	}
	return tx.Commit(ctx)
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var account domain.Account
	if err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.Name,
		&account.PhoneNumber,
		&account.Address,
		&account.CustomerID,
		&account.PasswordHash,
		&account.IsActive,
		&account.IsStaff,
		&account.IsSuperuser,
		&account.DateJoined,
	); err != nil {
		return nil, err
	}
	return &account, nil
}
