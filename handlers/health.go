package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/edu-platform-api/database"
	"github.com/sahilchouksey/edu-platform-api/utils/cache"
)

// HealthHandler reports the state of the backing services
type HealthHandler struct {
	store database.Storage
	cache *cache.RedisCache
}

// NewHealthHandler creates a health handler. redisCache may be nil.
func NewHealthHandler(store database.Storage, redisCache *cache.RedisCache) *HealthHandler {
	return &HealthHandler{store: store, cache: redisCache}
}

// Check handles GET /health
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	status := fiber.StatusOK
	body := fiber.Map{"status": "ok", "database": "up", "redis": "disabled"}

	if err := h.store.HealthCheck(ctx); err != nil {
		status = fiber.StatusServiceUnavailable
		body["status"] = "degraded"
		body["database"] = "down"
	}

	if h.cache != nil {
		body["redis"] = "up"
		if err := h.cache.Ping(ctx); err != nil {
			body["redis"] = "down"
			body["status"] = "degraded"
		}
	}

	return c.Status(status).JSON(body)
}
