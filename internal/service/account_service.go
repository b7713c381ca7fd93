package service

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/gas-utility-service/internal/auth"
	"github.com/spec-kit/gas-utility-service/internal/config"
	"github.com/spec-kit/gas-utility-service/internal/domain"
	"github.com/spec-kit/gas-utility-service/internal/events"
	"github.com/spec-kit/gas-utility-service/internal/observability"
	"github.com/spec-kit/gas-utility-service/internal/repository"
	apperrors "github.com/spec-kit/gas-utility-service/pkg/util/errorutil"
)

const customerIDAttempts = 5

// SessionIssuer creates and revokes login sessions.
type SessionIssuer interface {
	Issue(ctx context.Context, accountID int64) (domain.Session, error)
	Revoke(ctx context.Context, sessionID string) error
	RevokeAll(ctx context.Context, accountID int64) error
}

// RegistrationInput is the credential-creation form shared by self
// registration and administrator creation.
type RegistrationInput struct {
	Username    string `form:"username" validate:"required,max=150,username"`
	Email       string `form:"email" validate:"required,max=254,email"`
	Name        string `form:"name" validate:"required,max=100"`
	PhoneNumber string `form:"phone_number" validate:"max=15"`
	Address     string `form:"address"`
	Password1   string `form:"password1" validate:"required"`
	Password2   string `form:"password2" validate:"required"`
}

// AdminAccountInput extends the registration form with privilege flags.
type AdminAccountInput struct {
	RegistrationInput
	IsActive    *bool
	IsStaff     bool
	IsSuperuser bool
}

// AuthResult is returned by flows that establish a session.
type AuthResult struct {
	Account *domain.Account
	Session domain.Session
}

// AccountService owns account identity, login and administrator lifecycle.
type AccountService struct {
	accounts      repository.AccountRepository
	sessions      SessionIssuer
	dispatcher    events.Dispatcher
	metrics       *observability.Metrics
	logger        *zap.Logger
	validator     *Validator
	bcryptCost    int
	newCustomerID func() string
	now           func() time.Time
}

// AccountDependencies bundles collaborators for the account service.
type AccountDependencies struct {
	AccountRepo repository.AccountRepository
	Sessions    SessionIssuer
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// NewAccountService builds the service.
func NewAccountService(cfg config.Config, deps AccountDependencies) *AccountService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		accounts:      deps.AccountRepo,
		sessions:      deps.Sessions,
		dispatcher:    deps.Dispatcher,
		metrics:       deps.Metrics,
		logger:        logger,
		validator:     NewValidator(),
		bcryptCost:    cfg.Auth.BcryptCost,
		newCustomerID: NewCustomerID,
		now:           time.Now,
	}
}

// NewCustomerID returns "CUST" followed by 8 upper-case hex characters.
func NewCustomerID() string {
	id := uuid.New()
	return domain.CustomerIDPrefix + strings.ToUpper(hex.EncodeToString(id[:4]))
}

// Register creates a customer account and logs the caller in. When no session
// can be issued the new account is removed again so the caller may retry.
func (s *AccountService) Register(ctx context.Context, input RegistrationInput) (*AuthResult, error) {
	account, err := s.createAccount(ctx, AdminAccountInput{RegistrationInput: input})
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.Issue(ctx, account.ID)
	if err != nil {
		if delErr := s.accounts.Delete(ctx, account.ID); delErr != nil {
			s.logger.Error("failed to remove account after session error",
				zap.Int64("account_id", account.ID), zap.Error(delErr))
		}
		return nil, apperrors.NewInternalError(err)
	}

	s.metrics.AccountCreated("register")
	s.publish(ctx, events.Event{
		Type:      events.EventAccountRegistered,
		SubjectID: account.ID,
		Actor:     events.Actor{AccountID: account.ID, Role: account.Role()},
		Payload: events.AccountRegisteredPayload{
			Username:   account.Username,
			CustomerID: account.CustomerID,
			SelfServe:  true,
		},
	})
	return &AuthResult{Account: account, Session: session}, nil
}

// Authenticate verifies credentials and opens a session. Unknown usernames and
// wrong passwords produce the same error.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*AuthResult, error) {
	if username == "" || password == "" {
		return nil, apperrors.NewBadRequest("Please provide both username and password")
	}

	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}
		auth.CompareDummy(password)
		return nil, s.invalidCredentials()
	}
	if err := auth.ComparePassword(account.PasswordHash, password); err != nil {
		return nil, s.invalidCredentials()
	}
	if !account.IsActive {
		return nil, s.invalidCredentials()
	}

	session, err := s.sessions.Issue(ctx, account.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &AuthResult{Account: account, Session: session}, nil
}

func (s *AccountService) invalidCredentials() error {
	s.metrics.LoginFailed()
	return apperrors.NewUnauthorized("Invalid credentials")
}

// Logout revokes the session the caller is using.
func (s *AccountService) Logout(ctx context.Context, principal domain.Principal) error {
	if !principal.Authenticated() {
		return apperrors.NewUnauthorized("Authentication credentials were not provided.")
	}
	if err := s.sessions.Revoke(ctx, principal.SessionID); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// GetOwnProfile returns the caller's account.
func (s *AccountService) GetOwnProfile(ctx context.Context, principal domain.Principal) (*domain.Account, error) {
	if !principal.Authenticated() {
		return nil, apperrors.NewUnauthorized("Authentication credentials were not provided.")
	}
	account, err := s.accounts.GetByID(ctx, principal.AccountID)
	if err != nil {
		return nil, mapAccountLookup(err)
	}
	return account, nil
}

// AdminListAccounts returns every account matching the filter, ordered by username.
func (s *AccountService) AdminListAccounts(ctx context.Context, _ domain.Principal, filter repository.AccountFilter) ([]domain.Account, error) {
	accounts, err := s.accounts.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return accounts, nil
}

// AdminCreateAccount creates an account on behalf of another identity. No session is opened.
func (s *AccountService) AdminCreateAccount(ctx context.Context, principal domain.Principal, input AdminAccountInput) (*domain.Account, error) {
	account, err := s.createAccount(ctx, input)
	if err != nil {
		return nil, err
	}
	s.metrics.AccountCreated("admin")
	s.publish(ctx, events.Event{
		Type:      events.EventAccountRegistered,
		SubjectID: account.ID,
		Actor:     events.ActorFrom(principal),
		Payload: events.AccountRegisteredPayload{
			Username:   account.Username,
			CustomerID: account.CustomerID,
		},
	})
	return account, nil
}

// AdminGetAccount fetches an account by id.
func (s *AccountService) AdminGetAccount(ctx context.Context, _ domain.Principal, id int64) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, mapAccountLookup(err)
	}
	return account, nil
}

// AdminUpdateAccount applies a partial edit. A supplied password is re-hashed;
// changing it or deactivating the account ends the account's sessions.
func (s *AccountService) AdminUpdateAccount(ctx context.Context, _ domain.Principal, id int64, update domain.AccountUpdate) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, mapAccountLookup(err)
	}

	update.Username = trimmed(update.Username)
	update.Name = trimmed(update.Name)
	update.PhoneNumber = trimmed(update.PhoneNumber)
	if update.Email != nil {
		normalized := normalizeEmail(*update.Email)
		update.Email = &normalized
	}
	if err := s.validateUpdate(ctx, account, update); err != nil {
		return nil, err
	}

	update.Apply(account)
	revoke := update.IsActive != nil && !*update.IsActive
	if update.Password != nil {
		hash, err := auth.HashPassword(*update.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		account.PasswordHash = hash
		revoke = true
	}

	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, mapAccountWrite(err)
	}
	if revoke {
		if err := s.sessions.RevokeAll(ctx, account.ID); err != nil {
			s.logger.Error("failed to revoke sessions", zap.Int64("account_id", account.ID), zap.Error(err))
		}
	}
	return account, nil
}

// AdminDeleteAccount removes an account that no service request references.
func (s *AccountService) AdminDeleteAccount(ctx context.Context, _ domain.Principal, id int64) error {
	if err := s.accounts.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrAccountHasRequests):
			return apperrors.NewConflict("Cannot delete user with existing service requests", nil)
		case errors.Is(err, pgx.ErrNoRows):
			return apperrors.NewNotFound("User", nil)
		default:
			return apperrors.MapError(err)
		}
	}
	if err := s.sessions.RevokeAll(ctx, id); err != nil {
		s.logger.Warn("failed to revoke sessions of deleted account", zap.Error(err))
	}
	return nil
}

// CreateSuperuser bootstraps an administrator with every privilege, for the CLI.
func (s *AccountService) CreateSuperuser(ctx context.Context, input RegistrationInput) (*domain.Account, error) {
	account, err := s.createAccount(ctx, AdminAccountInput{
		RegistrationInput: input,
		IsStaff:           true,
		IsSuperuser:       true,
	})
	if err != nil {
		return nil, err
	}
	s.metrics.AccountCreated("cli")
	return account, nil
}

func (s *AccountService) createAccount(ctx context.Context, input AdminAccountInput) (*domain.Account, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = normalizeEmail(input.Email)
	input.Name = strings.TrimSpace(input.Name)

	if err := s.validateRegistration(ctx, input.RegistrationInput); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password1, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	account := &domain.Account{
		Username:     input.Username,
		Email:        input.Email,
		Name:         input.Name,
		PhoneNumber:  strings.TrimSpace(input.PhoneNumber),
		Address:      input.Address,
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      input.IsStaff,
		IsSuperuser:  input.IsSuperuser,
	}
	if input.IsActive != nil {
		account.IsActive = *input.IsActive
	}

	for attempt := 0; attempt < customerIDAttempts; attempt++ {
		account.CustomerID = s.newCustomerID()
		err = s.accounts.Create(ctx, account)
		if !errors.Is(err, repository.ErrDuplicateCustomerID) {
			break
		}
		s.logger.Warn("customer id collision, retrying", zap.Int("attempt", attempt+1))
	}
	if err != nil {
		return nil, mapAccountWrite(err)
	}
	return account, nil
}

func (s *AccountService) validateRegistration(ctx context.Context, input RegistrationInput) error {
	errs := FieldErrors{}
	s.validator.Struct(input, errs)

	if input.Password1 != "" && input.Password2 != "" {
		if input.Password1 != input.Password2 {
			errs.Add("password2", msgPasswordMismatch)
		} else {
			checkPassword("password2", input.Password2, input.Username, errs)
		}
	}

	if _, bad := errs["username"]; !bad && input.Username != "" {
		taken, err := s.usernameTaken(ctx, input.Username, 0)
		if err != nil {
			return err
		}
		if taken {
			errs.Add("username", msgUsernameTaken)
		}
	}
	if _, bad := errs["email"]; !bad && input.Email != "" {
		taken, err := s.emailTaken(ctx, input.Email, 0)
		if err != nil {
			return err
		}
		if taken {
			errs.Add("email", msgEmailTaken)
		}
	}
	return errs.Err()
}

func (s *AccountService) validateUpdate(ctx context.Context, current *domain.Account, update domain.AccountUpdate) error {
	errs := FieldErrors{}
	if update.Username != nil {
		s.validator.Var("username", *update.Username, "required,max=150,username", errs)
		if _, bad := errs["username"]; !bad && *update.Username != current.Username {
			taken, err := s.usernameTaken(ctx, *update.Username, current.ID)
			if err != nil {
				return err
			}
			if taken {
				errs.Add("username", msgUsernameTaken)
			}
		}
	}
	if update.Email != nil {
		s.validator.Var("email", *update.Email, "required,max=254,email", errs)
		if _, bad := errs["email"]; !bad && *update.Email != current.Email {
			taken, err := s.emailTaken(ctx, *update.Email, current.ID)
			if err != nil {
				return err
			}
			if taken {
				errs.Add("email", msgEmailTaken)
			}
		}
	}
	if update.Name != nil {
		s.validator.Var("name", *update.Name, "required,max=100", errs)
	}
	if update.PhoneNumber != nil {
		s.validator.Var("phone_number", *update.PhoneNumber, "max=15", errs)
	}
	if update.Password != nil {
		if *update.Password == "" {
			errs.Add("password", msgBlank)
		}
		checkPasswordLength("password", *update.Password, errs)
	}
	return errs.Err()
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

func (s *AccountService) usernameTaken(ctx context.Context, username string, self int64) (bool, error) {
	existing, err := s.accounts.GetByUsername(ctx, username)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.MapError(err)
	}
	return existing.ID != self, nil
}

func (s *AccountService) emailTaken(ctx context.Context, email string, self int64) (bool, error) {
	existing, err := s.accounts.GetByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.MapError(err)
	}
	return existing.ID != self, nil
}

func (s *AccountService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = s.now()
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func mapAccountLookup(err error) error {
	if apperrors.IsNotFound(err) {
		return apperrors.NewNotFound("User", nil)
	}
	return apperrors.MapError(err)
}

// mapAccountWrite turns constraint violations that slipped past the pre-checks
// (concurrent writers) into the same field errors the pre-checks produce.
func mapAccountWrite(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateUsername):
		return apperrors.NewFieldValidationError(map[string][]string{"username": {msgUsernameTaken}})
	case errors.Is(err, repository.ErrDuplicateEmail):
		return apperrors.NewFieldValidationError(map[string][]string{"email": {msgEmailTaken}})
	case apperrors.IsNotFound(err):
		return apperrors.NewNotFound("User", nil)
	default:
		return apperrors.MapError(err)
	}
}
