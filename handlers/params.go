package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

var errBadID = errors.New("id must be a positive integer")

// ParseID parses a positive integer id
func ParseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, errBadID
	}
	return uint(id), nil
}

// ParamID parses a positive numeric path parameter
func ParamID(c *fiber.Ctx, name string) (uint, error) {
	id, err := ParseID(c.Params(name))
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return id, nil
}

// QueryID parses an optional numeric query parameter. A missing value yields nil.
func QueryID(c *fiber.Ctx, name string) (*uint, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := ParseID(raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return &id, nil
}

// IDList is a request body carrying a set of ids
type IDList struct {
	IDs []uint `json:"ids" validate:"required,min=1,dive,min=1"`
}
