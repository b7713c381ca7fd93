package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/gas-utility-service/internal/api/dto"
	"github.com/spec-kit/gas-utility-service/internal/auth"
	"github.com/spec-kit/gas-utility-service/internal/domain"
	"github.com/spec-kit/gas-utility-service/internal/repository"
	"github.com/spec-kit/gas-utility-service/internal/service"
	apperrors "github.com/spec-kit/gas-utility-service/pkg/util/errorutil"
)

// AdminRequestsHandler manages service request administration endpoints.
type AdminRequestsHandler struct {
	requests *service.RequestService
}

// NewAdminRequestsHandler constructs handler.
func NewAdminRequestsHandler(requestService *service.RequestService) *AdminRequestsHandler {
	return &AdminRequestsHandler{requests: requestService}
}

// List GET /api/admin/requests/.
func (h *AdminRequestsHandler) List(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	filter, err := parseRequestQuery(c)
	if err != nil {
		return err
	}
	requests, err := h.requests.AdminListRequests(c.UserContext(), principal, filter)
	if err != nil {
		return err
	}
	items := make([]dto.AdminRequestResponse, 0, len(requests))
	for i := range requests {
		items = append(items, adminRequestResponse(&requests[i]))
	}
	return c.JSON(items)
}

// Get GET /api/admin/requests/:id/.
func (h *AdminRequestsHandler) Get(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	id, err := pathID(c, "Service request")
	if err != nil {
		return err
	}
	req, err := h.requests.AdminGetRequest(c.UserContext(), principal, id)
	if err != nil {
		return err
	}
	return c.JSON(adminRequestResponse(req))
}

// Update PUT /api/admin/requests/:id/.
func (h *AdminRequestsHandler) Update(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	id, err := pathID(c, "Service request")
	if err != nil {
		return err
	}
	var req dto.UpdateRequestRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}

	_, err = h.requests.AdminUpdateRequest(c.UserContext(), principal, id, domain.ServiceRequestUpdate{
		TypeOfRequest: req.TypeOfRequest,
		Details:       req.Details,
		Status:        req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Service request updated successfully"})
}

// Delete DELETE /api/admin/requests/:id/.
func (h *AdminRequestsHandler) Delete(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	id, err := pathID(c, "Service request")
	if err != nil {
		return err
	}
	if err := h.requests.AdminDeleteRequest(c.UserContext(), principal, id); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Service request deleted successfully"})
}

func parseRequestQuery(c *fiber.Ctx) (repository.ServiceRequestFilter, error) {
	filter := repository.ServiceRequestFilter{}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		s := domain.RequestStatus(status)
		filter.Status = &s
	}
	if kind := strings.TrimSpace(c.Query("type_of_request")); kind != "" {
		filter.TypeOfRequest = &kind
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filter.SearchTerm = &search
	}
	if raw := c.Query("customer"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, apperrors.NewFieldValidationError(map[string][]string{"customer": {"A valid integer is required."}})
		}
		filter.CustomerID = &id
	}
	var err error
	if filter.SubmittedAfter, err = queryTime(c, "submitted_after"); err != nil {
		return filter, err
	}
	if filter.SubmittedBefore, err = queryTime(c, "submitted_before"); err != nil {
		return filter, err
	}
	return filter, nil
}

// queryTime accepts an RFC 3339 timestamp or a bare YYYY-MM-DD date (UTC midnight).
func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return &parsed, nil
		}
	}
	return nil, apperrors.NewFieldValidationError(map[string][]string{key: {"Enter a valid date/time."}})
}

func adminRequestResponse(req *domain.ServiceRequest) dto.AdminRequestResponse {
	resp := dto.AdminRequestResponse{
		ID:            req.ID,
		TypeOfRequest: req.TypeOfRequest,
		Details:       req.Details,
		Status:        req.Status,
		DateSubmitted: req.DateSubmitted,
		DateResolved:  req.DateResolved,
	}
	if req.Customer != nil {
		resp.Customer = &dto.CustomerSummary{
			ID:         req.Customer.ID,
			Username:   req.Customer.Username,
			Name:       req.Customer.Name,
			CustomerID: req.Customer.CustomerID,
		}
	}
	return resp
}
