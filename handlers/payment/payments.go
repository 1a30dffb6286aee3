package payment

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/edu-platform-api/handlers"
	"github.com/sahilchouksey/edu-platform-api/repository"
	"github.com/sahilchouksey/edu-platform-api/services"
	"github.com/sahilchouksey/edu-platform-api/utils/response"
	"github.com/sahilchouksey/edu-platform-api/utils/validation"
)

type PaymentHandler struct {
	payments *services.PaymentService
}

func NewPaymentHandler(payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// ListPayments handles GET /payments?course_id=&page=&limit=
func (h *PaymentHandler) ListPayments(c *fiber.Ctx) error {
	courseID, err := handlers.QueryID(c, "course_id")
	if err != nil {
		return err
	}

	p := repository.PageRequest{Page: c.QueryInt("page", 1), Limit: c.QueryInt("limit", 10)}
	page, err := h.payments.List(c.UserContext(), p, courseID)
	if err != nil {
		return err
	}
	return response.Paginated(c, page.Items, response.CalculatePagination(page.Page, page.Limit, page.Total))
}

// CreatePayment handles POST /payments
func (h *PaymentHandler) CreatePayment(c *fiber.Ctx) error {
	var req services.PaymentInput
	if err := validation.ParseBody(c, &req); err != nil {
		return err
	}

	payment, err := h.payments.Create(c.UserContext(), req)
	if err != nil {
		return err
	}
	return response.Created(c, payment)
}
