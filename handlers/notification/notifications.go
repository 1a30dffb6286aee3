package notification

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/edu-platform-api/handlers"
	"github.com/sahilchouksey/edu-platform-api/services"
	"github.com/sahilchouksey/edu-platform-api/utils/middleware"
	"github.com/sahilchouksey/edu-platform-api/utils/response"
	"github.com/sahilchouksey/edu-platform-api/utils/validation"
)

// NotificationHandler handles notification-related API endpoints
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// GetNotifications handles GET /notif
// Returns up to five unread notifications of the caller, then the read ones
func (h *NotificationHandler) GetNotifications(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	notifications, err := h.notificationService.ListOwn(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return response.Success(c, notifications)
}

// GetAdminNotifications handles GET /notif/admin
func (h *NotificationHandler) GetAdminNotifications(c *fiber.Ctx) error {
	notifications, err := h.notificationService.ListAdmin(c.UserContext())
	if err != nil {
		return err
	}
	return response.Success(c, notifications)
}

// GetNotification handles GET /notif/:id
func (h *NotificationHandler) GetNotification(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return err
	}

	n, err := h.notificationService.Get(c.UserContext(), id, user)
	if err != nil {
		return err
	}
	return response.Success(c, n)
}

// MarkAsRead handles PATCH /notif/:id/read
func (h *NotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return err
	}

	if err := h.notificationService.MarkRead(c.UserContext(), id, userID); err != nil {
		return err
	}
	return response.SuccessWithMessage(c, "Notification marked as read", nil)
}

// MarkAllAsRead handles PATCH /notif/read-all
func (h *NotificationHandler) MarkAllAsRead(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req handlers.IDList
	if err := validation.ParseBody(c, &req); err != nil {
		return err
	}

	updated, err := h.notificationService.MarkAllRead(c.UserContext(), req.IDs, userID)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.Map{"updated": updated})
}

// MarkAllAsReadAdmin handles PATCH /notif/admin/read-all
func (h *NotificationHandler) MarkAllAsReadAdmin(c *fiber.Ctx) error {
	var req handlers.IDList
	if err := validation.ParseBody(c, &req); err != nil {
		return err
	}

	updated, err := h.notificationService.MarkAllReadAdmin(c.UserContext(), req.IDs)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.Map{"updated": updated})
}

// DeleteNotification handles DELETE /notif/:id
func (h *NotificationHandler) DeleteNotification(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return err
	}

	if err := h.notificationService.Remove(c.UserContext(), id, user); err != nil {
		return err
	}
	return response.SuccessWithMessage(c, "Notification deleted successfully", nil)
}
