package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/gas-utility-service/internal/api/dto"
	"github.com/spec-kit/gas-utility-service/internal/auth"
	"github.com/spec-kit/gas-utility-service/internal/domain"
	"github.com/spec-kit/gas-utility-service/internal/repository"
	"github.com/spec-kit/gas-utility-service/internal/service"
	apperrors "github.com/spec-kit/gas-utility-service/pkg/util/errorutil"
)

// AdminAccountsHandler manages account administration endpoints.
type AdminAccountsHandler struct {
	accounts *service.AccountService
}

// NewAdminAccountsHandler constructs handler.
func NewAdminAccountsHandler(accountService *service.AccountService) *AdminAccountsHandler {
	return &AdminAccountsHandler{accounts: accountService}
}

// List GET /api/admin/users/.
func (h *AdminAccountsHandler) List(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	filter, err := parseAccountQuery(c)
	if err != nil {
		return err
	}
	accounts, err := h.accounts.AdminListAccounts(c.UserContext(), principal, filter)
	if err != nil {
		return err
	}
	items := make([]dto.AccountResponse, 0, len(accounts))
	for i := range accounts {
		items = append(items, accountResponse(&accounts[i]))
	}
	return c.JSON(items)
}

// Create POST /api/admin/users/create/.
func (h *AdminAccountsHandler) Create(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	var req dto.AdminCreateAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	account, err := h.accounts.AdminCreateAccount(c.UserContext(), principal, service.AdminAccountInput{
		RegistrationInput: registrationInput(req.RegisterRequest),
		IsActive:          req.IsActive,
		IsStaff:           req.IsStaff,
		IsSuperuser:       req.IsSuperuser,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.CreatedUserResponse{
		Message: "User created successfully",
		User: dto.CreatedUser{
			ID:         account.ID,
			Username:   account.Username,
			Email:      account.Email,
			Name:       account.Name,
			CustomerID: account.CustomerID,
		},
	})
}

// Get GET /api/admin/users/:id/.
func (h *AdminAccountsHandler) Get(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	id, err := pathID(c, "User")
	if err != nil {
		return err
	}
	account, err := h.accounts.AdminGetAccount(c.UserContext(), principal, id)
	if err != nil {
		return err
	}
	return c.JSON(accountResponse(account))
}

// Update PUT /api/admin/users/:id/.
func (h *AdminAccountsHandler) Update(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	id, err := pathID(c, "User")
	if err != nil {
		return err
	}
	var req dto.AdminUpdateAccountRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}

	_, err = h.accounts.AdminUpdateAccount(c.UserContext(), principal, id, domain.AccountUpdate{
		Username:    req.Username,
		Email:       req.Email,
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		IsActive:    req.IsActive,
		IsStaff:     req.IsStaff,
		IsSuperuser: req.IsSuperuser,
		Password:    req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "User updated successfully"})
}

// Delete DELETE /api/admin/users/:id/.
func (h *AdminAccountsHandler) Delete(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	id, err := pathID(c, "User")
	if err != nil {
		return err
	}
	if err := h.accounts.AdminDeleteAccount(c.UserContext(), principal, id); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "User deleted successfully"})
}

func parseAccountQuery(c *fiber.Ctx) (repository.AccountFilter, error) {
	filter := repository.AccountFilter{}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filter.SearchTerm = &search
	}
	var err error
	if filter.IsActive, err = queryBool(c, "is_active"); err != nil {
		return filter, err
	}
	if filter.IsStaff, err = queryBool(c, "is_staff"); err != nil {
		return filter, err
	}
	if filter.IsSuperuser, err = queryBool(c, "is_superuser"); err != nil {
		return filter, err
	}
	return filter, nil
}

func queryBool(c *fiber.Ctx, key string) (*bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperrors.NewFieldValidationError(map[string][]string{key: {"Must be a valid boolean."}})
	}
	return &parsed, nil
}

// pathID reads the numeric :id segment. Anything else names no record.
func pathID(c *fiber.Ctx, resource string) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewNotFound(resource, nil)
	}
	return id, nil
}

func accountResponse(account *domain.Account) dto.AccountResponse {
	return dto.AccountResponse{
		ID:          account.ID,
		Username:    account.Username,
		Email:       account.Email,
		Name:        account.Name,
		PhoneNumber: account.PhoneNumber,
		Address:     account.Address,
		CustomerID:  account.CustomerID,
		IsActive:    account.IsActive,
		IsStaff:     account.IsStaff,
		IsSuperuser: account.IsSuperuser,
		DateJoined:  account.DateJoined,
	}
}
