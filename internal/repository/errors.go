package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	constraintUsername   = "accounts_username_key"
	constraintEmail      = "accounts_email_key"
	constraintCustomerID = "accounts_customer_id_key"
)

var (
	// ErrDuplicateUsername is returned when the username is already taken.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrDuplicateCustomerID is returned when a generated customer id collides.
	ErrDuplicateCustomerID = errors.New("customer id already exists")
	// ErrAccountHasRequests is returned when deleting an account still referenced by requests.
	ErrAccountHasRequests = errors.New("account has service requests")
)

// translateAccountError maps constraint violations raised on the accounts table.
func translateAccountError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		switch pgErr.ConstraintName {
		case constraintUsername:
			return ErrDuplicateUsername
		case constraintEmail:
			return ErrDuplicateEmail
		case constraintCustomerID:
			return ErrDuplicateCustomerID
		}
	case pgForeignKeyViolation:
		return ErrAccountHasRequests
	}
	return err
}
