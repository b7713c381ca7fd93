package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/gas-utility-service/internal/api/dto"
	"github.com/spec-kit/gas-utility-service/internal/auth"
	"github.com/spec-kit/gas-utility-service/internal/service"
	apperrors "github.com/spec-kit/gas-utility-service/pkg/util/errorutil"
)

// RequestsHandler manages customer service request endpoints.
type RequestsHandler struct {
	requests *service.RequestService
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(requestService *service.RequestService) *RequestsHandler {
	return &RequestsHandler{requests: requestService}
}

// Submit POST /api/submit/.
func (h *RequestsHandler) Submit(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	var req dto.SubmitRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	created, err := h.requests.SubmitRequest(c.UserContext(), principal, service.SubmitRequestInput{
		TypeOfRequest: req.TypeOfRequest,
		Details:       req.Details,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.SubmitRequestResponse{
		Message: "Service request submitted successfully",
		Request: dto.SubmittedRequest{
			ID:            created.ID,
			TypeOfRequest: created.TypeOfRequest,
			Status:        created.Status,
			DateSubmitted: created.DateSubmitted,
			Details:       created.Details,
		},
	})
}

// Track GET /api/track/.
func (h *RequestsHandler) Track(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	requests, err := h.requests.TrackOwnRequests(c.UserContext(), principal)
	if err != nil {
		return err
	}
	items := make([]dto.TrackedRequest, 0, len(requests))
	for _, r := range requests {
		items = append(items, dto.TrackedRequest{
			ID:            r.ID,
			TypeOfRequest: r.TypeOfRequest,
			Status:        r.Status,
			DateSubmitted: r.DateSubmitted,
			DateResolved:  r.DateResolved,
			Details:       r.Details,
		})
	}
	return c.JSON(items)
}
