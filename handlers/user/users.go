package user

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/edu-platform-api/handlers"
	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/sahilchouksey/edu-platform-api/services"
	"github.com/sahilchouksey/edu-platform-api/utils/response"
	"github.com/sahilchouksey/edu-platform-api/utils/validation"
)

// UserHandler handles user management requests
type UserHandler struct {
	users *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// ListUsers handles GET /users?role=teacher
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	role := c.Query("role")
	if role != "" && !model.ValidRole(role) {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid role")
	}

	users, err := h.users.List(c.UserContext(), role)
	if err != nil {
		return err
	}
	return response.Success(c, users)
}

// GetUser handles GET /users/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return err
	}

	user, err := h.users.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return response.Success(c, user)
}

// CreateUser handles POST /users
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req services.CreateUserInput
	if err := validation.ParseBody(c, &req); err != nil {
		return err
	}

	user, err := h.users.Create(c.UserContext(), req)
	if err != nil {
		return err
	}
	return response.Created(c, user)
}

// UpdateUser handles PATCH /users/:id
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return err
	}

	var req services.UpdateUserInput
	if err := validation.ParseBody(c, &req); err != nil {
		return err
	}

	user, err := h.users.Update(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return response.Success(c, user)
}

// DeleteUser handles DELETE /users/:id
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return err
	}

	if err := h.users.Remove(c.UserContext(), id); err != nil {
		return err
	}
	return response.SuccessWithMessage(c, "User deleted successfully", nil)
}
