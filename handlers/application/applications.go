package application

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/edu-platform-api/handlers"
	"github.com/sahilchouksey/edu-platform-api/repository"
	"github.com/sahilchouksey/edu-platform-api/services"
	"github.com/sahilchouksey/edu-platform-api/utils/middleware"
	"github.com/sahilchouksey/edu-platform-api/utils/response"
	"github.com/sahilchouksey/edu-platform-api/utils/validation"
)

// ApplicationHandler handles application (lead) requests
type ApplicationHandler struct {
	applications *services.ApplicationService
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(applications *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applications: applications}
}

// ListQuery pages the admin listing
type ListQuery struct {
	Page   int    `query:"page" validate:"min=0"`
	Limit  int    `query:"limit" validate:"min=0,max=100"`
	Status string `query:"status" validate:"omitempty,oneof=new confirmed rejected"`
}

// CreateApplication handles POST /applications (public)
func (h *ApplicationHandler) CreateApplication(c *fiber.Ctx) error {
	var req services.CreateApplicationInput
	if err := validation.ParseBody(c, &req); err != nil {
		return err
	}

	app, err := h.applications.Create(c.UserContext(), req)
	if err != nil {
		return err
	}
	return response.Created(c, app)
}

// ListApplications handles GET /applications
func (h *ApplicationHandler) ListApplications(c *fiber.Ctx) error {
	var q ListQuery
	if err := validation.ParseQuery(c, &q); err != nil {
		return err
	}

	page, err := h.applications.List(c.UserContext(), repository.PageRequest{Page: q.Page, Limit: q.Limit}, q.Status)
	if err != nil {
		return err
	}
	return response.Paginated(c, page.Items, response.CalculatePagination(page.Page, page.Limit, page.Total))
}

// GetApplication handles GET /applications/:id
func (h *ApplicationHandler) GetApplication(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return err
	}

	app, err := h.applications.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return response.Success(c, app)
}

// UpdateApplication handles PATCH /applications/:id. Confirming an
// application links a student account and seats it in the chosen group.
func (h *ApplicationHandler) UpdateApplication(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return err
	}

	var req services.UpdateApplicationInput
	if err := validation.ParseBody(c, &req); err != nil {
		return err
	}

	var adminID *uint
	if uid, ok := middleware.GetUserID(c); ok {
		adminID = &uid
	}

	app, err := h.applications.Update(c.UserContext(), adminID, id, req)
	if err != nil {
		return err
	}
	return response.Success(c, app)
}

// DeleteApplication handles DELETE /applications/:id
func (h *ApplicationHandler) DeleteApplication(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return err
	}

	if err := h.applications.Remove(c.UserContext(), id); err != nil {
		return err
	}
	return response.SuccessWithMessage(c, "Application deleted successfully", nil)
}
