package category

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/edu-platform-api/handlers"
	"github.com/sahilchouksey/edu-platform-api/services"
	"github.com/sahilchouksey/edu-platform-api/utils/response"
	"github.com/sahilchouksey/edu-platform-api/utils/validation"
)

// CategoryHandler handles category requests
type CategoryHandler struct {
	categories *services.CategoryService
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categories *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// ListCategories handles GET /category (admin, with course and student counts)
func (h *CategoryHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.categories.ListWithStats(c.UserContext())
	if err != nil {
		return err
	}
	return response.Success(c, categories)
}

// ListPublicCategories handles GET /category/public
func (h *CategoryHandler) ListPublicCategories(c *fiber.Ctx) error {
	categories, err := h.categories.ListPublic(c.UserContext())
	if err != nil {
		return err
	}
	return response.Success(c, categories)
}

// GetCategory handles GET /category/:id
func (h *CategoryHandler) GetCategory(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return err
	}

	category, err := h.categories.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return response.Success(c, category)
}

// CreateCategory handles POST /category
func (h *CategoryHandler) CreateCategory(c *fiber.Ctx) error {
	var req services.CategoryInput
	if err := validation.ParseBody(c, &req); err != nil {
		return err
	}

	category, err := h.categories.Create(c.UserContext(), req)
	if err != nil {
		return err
	}
	return response.Created(c, category)
}

// UpdateCategory handles PATCH /category/:id
func (h *CategoryHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return err
	}

	var req services.UpdateCategoryInput
	if err := validation.ParseBody(c, &req); err != nil {
		return err
	}

	category, err := h.categories.Update(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return response.Success(c, category)
}

// DeleteCategory handles DELETE /category/:id
func (h *CategoryHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return err
	}

	if err := h.categories.Remove(c.UserContext(), id); err != nil {
		return err
	}
	return response.SuccessWithMessage(c, "Category deleted successfully", nil)
}
