package enrollment

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/edu-platform-api/handlers"
	"github.com/sahilchouksey/edu-platform-api/repository"
	"github.com/sahilchouksey/edu-platform-api/services"
	"github.com/sahilchouksey/edu-platform-api/utils/response"
	"github.com/sahilchouksey/edu-platform-api/utils/validation"
)

// EnrollmentHandler handles enrollment requests
type EnrollmentHandler struct {
	enrollments *services.EnrollmentService
}

// NewEnrollmentHandler creates a new enrollment handler
func NewEnrollmentHandler(enrollments *services.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// ListEnrollments handles GET /enrollments?page=&limit=&user_id=
func (h *EnrollmentHandler) ListEnrollments(c *fiber.Ctx) error {
	userID, err := handlers.QueryID(c, "user_id")
	if err != nil {
		return err
	}

	p := repository.PageRequest{Page: c.QueryInt("page", 1), Limit: c.QueryInt("limit", 10)}
	page, err := h.enrollments.List(c.UserContext(), p, userID)
	if err != nil {
		return err
	}
	return response.Paginated(c, page.Items, response.CalculatePagination(page.Page, page.Limit, page.Total))
}

// GetEnrollment handles GET /enrollments/:id
func (h *EnrollmentHandler) GetEnrollment(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return err
	}

	e, err := h.enrollments.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return response.Success(c, e)
}

// CreateEnrollment handles POST /enrollments
func (h *EnrollmentHandler) CreateEnrollment(c *fiber.Ctx) error {
	var req services.CreateEnrollmentInput
	if err := validation.ParseBody(c, &req); err != nil {
		return err
	}

	e, err := h.enrollments.Create(c.UserContext(), req)
	if err != nil {
		return err
	}
	return response.Created(c, e)
}

// UpdateEnrollment handles PATCH /enrollments/:id
func (h *EnrollmentHandler) UpdateEnrollment(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return err
	}

	var req services.UpdateEnrollmentInput
	if err := validation.ParseBody(c, &req); err != nil {
		return err
	}

	e, err := h.enrollments.Update(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return response.Success(c, e)
}

// DeleteEnrollment handles DELETE /enrollments/:id
func (h *EnrollmentHandler) DeleteEnrollment(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return err
	}

	if err := h.enrollments.Remove(c.UserContext(), id); err != nil {
		return err
	}
	return response.SuccessWithMessage(c, "Enrollment deleted successfully", nil)
}
