package middleware

import (
	"errors"
	"log"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/edu-platform-api/utils/apperror"
	"github.com/sahilchouksey/edu-platform-api/utils/response"
	"github.com/sahilchouksey/edu-platform-api/utils/validation"
	"gorm.io/gorm"
)

// ErrorHandler is installed as fiber.Config.ErrorHandler. Every error a
// handler returns ends up here and leaves as a response.ErrorBody.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status, message := classify(err)

	if status >= fiber.StatusInternalServerError {
		log.Printf("[ERROR] %s %s - %d: %v", c.Method(), c.OriginalURL(), status, err)
	} else {
		log.Printf("[HTTP] %s %s - %d: %s", c.Method(), c.OriginalURL(), status, message)
	}

	return c.Status(status).JSON(response.NewErrorBody(c, status, message))
}

func classify(err error) (int, string) {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fe.Message
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return fiber.StatusBadRequest, validationMessage(ve)
	}

	if status := apperror.Status(err); status != 0 {
		return status, err.Error()
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fiber.StatusNotFound, "Resource not found"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fiber.StatusConflict, "Resource already exists"
	case errors.Is(err, gorm.ErrForeignKeyViolated), errors.Is(err, gorm.ErrCheckConstraintViolated):
		return fiber.StatusBadRequest, "Database Error"
	}

	return fiber.StatusInternalServerError, "Internal server error"
}

func validationMessage(ve validator.ValidationErrors) string {
	fields := validation.FormatValidationErrors(ve)
	msgs := make([]string, 0, len(fields))
	for _, m := range fields {
		msgs = append(msgs, m)
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}
