package lesson

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/edu-platform-api/handlers"
	"github.com/sahilchouksey/edu-platform-api/services"
	"github.com/sahilchouksey/edu-platform-api/utils/response"
	"github.com/sahilchouksey/edu-platform-api/utils/validation"
)

type LessonHandler struct {
	lessons *services.LessonService
}

func NewLessonHandler(lessons *services.LessonService) *LessonHandler {
	return &LessonHandler{lessons: lessons}
}

// ListLessons handles GET /lessons?course_id=, ordered by lesson order
func (h *LessonHandler) ListLessons(c *fiber.Ctx) error {
	courseID, err := handlers.QueryID(c, "course_id")
	if err != nil {
		return err
	}

	lessons, err := h.lessons.List(c.UserContext(), courseID)
	if err != nil {
		return err
	}
	return response.Success(c, lessons)
}

func (h *LessonHandler) GetLesson(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return err
	}

	lesson, err := h.lessons.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return response.Success(c, lesson)
}

func (h *LessonHandler) CreateLesson(c *fiber.Ctx) error {
	var req services.LessonInput
	if err := validation.ParseBody(c, &req); err != nil {
		return err
	}

	lesson, err := h.lessons.Create(c.UserContext(), req)
	if err != nil {
		return err
	}
	return response.Created(c, lesson)
}

func (h *LessonHandler) UpdateLesson(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return err
	}

	var req services.UpdateLessonInput
	if err := validation.ParseBody(c, &req); err != nil {
		return err
	}

	lesson, err := h.lessons.Update(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return response.Success(c, lesson)
}

func (h *LessonHandler) DeleteLesson(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return err
	}

	if err := h.lessons.Remove(c.UserContext(), id); err != nil {
		return err
	}
	return response.SuccessWithMessage(c, "Lesson deleted successfully", nil)
}
