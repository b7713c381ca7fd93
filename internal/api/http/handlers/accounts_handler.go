package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/gas-utility-service/internal/api/dto"
	"github.com/spec-kit/gas-utility-service/internal/auth"
	"github.com/spec-kit/gas-utility-service/internal/domain"
	"github.com/spec-kit/gas-utility-service/internal/service"
	apperrors "github.com/spec-kit/gas-utility-service/pkg/util/errorutil"
)

// AccountsHandler exposes registration, login and profile endpoints.
type AccountsHandler struct {
	accounts *service.AccountService
}

// NewAccountsHandler constructs handler.
func NewAccountsHandler(accountService *service.AccountService) *AccountsHandler {
	return &AccountsHandler{accounts: accountService}
}

// Register handles POST /api/register/.
func (h *AccountsHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.accounts.Register(c.UserContext(), registrationInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(authResponse("Registration successful", result))
}

// Login handles POST /api/login/.
func (h *AccountsHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.accounts.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(authResponse("Login successful", result))
}

// Logout handles POST /api/logout/.
func (h *AccountsHandler) Logout(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	if err := h.accounts.Logout(c.UserContext(), principal); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Logout successful"})
}

// Account handles GET /api/account/.
func (h *AccountsHandler) Account(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	account, err := h.accounts.GetOwnProfile(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(dto.ProfileResponse{
		Username:    account.Username,
		Email:       account.Email,
		Name:        account.Name,
		PhoneNumber: account.PhoneNumber,
		Address:     account.Address,
		CustomerID:  account.CustomerID,
	})
}

func registrationInput(req dto.RegisterRequest) service.RegistrationInput {
	return service.RegistrationInput{
		Username:    req.Username,
		Email:       req.Email,
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		Password1:   req.Password1,
		Password2:   req.Password2,
	}
}

func authResponse(message string, result *service.AuthResult) dto.AuthResponse {
	return dto.AuthResponse{
		Message:   message,
		User:      userSummary(result.Account),
		Token:     result.Session.Token,
		ExpiresAt: result.Session.ExpiresAt,
	}
}

func userSummary(account *domain.Account) dto.UserSummary {
	return dto.UserSummary{
		Username:   account.Username,
		Email:      account.Email,
		Name:       account.Name,
		CustomerID: account.CustomerID,
	}
}
