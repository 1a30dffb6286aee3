package course

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/edu-platform-api/handlers"
	"github.com/sahilchouksey/edu-platform-api/repository"
	"github.com/sahilchouksey/edu-platform-api/services"
	"github.com/sahilchouksey/edu-platform-api/utils/middleware"
	"github.com/sahilchouksey/edu-platform-api/utils/response"
	"github.com/sahilchouksey/edu-platform-api/utils/validation"
)

// CourseHandler handles course-related requests
type CourseHandler struct {
	courses *services.CourseService
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(courses *services.CourseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// CatalogQuery holds the public catalog filters.
// categories may repeat or be comma separated.
type CatalogQuery struct {
	Categories []uint   `query:"categories"`
	MinPrice   *float64 `query:"minPrice" validate:"omitempty,min=0"`
	MaxPrice   *float64 `query:"maxPrice" validate:"omitempty,min=0"`
	Level      string   `query:"level" validate:"max=50"`
	Search     string   `query:"search" validate:"max=255"`
	Page       int      `query:"page" validate:"min=0"`
	Limit      int      `query:"limit" validate:"min=0,max=100"`
}

func actorID(c *fiber.Ctx) *uint {
	if id, ok := middleware.GetUserID(c); ok {
		return &id
	}
	return nil
}

// ListPublicCourses handles GET /courses/public
func (h *CourseHandler) ListPublicCourses(c *fiber.Ctx) error {
	var q CatalogQuery
	if err := validation.ParseQuery(c, &q); err != nil {
		return err
	}

	page, err := h.courses.ListPublic(c.UserContext(), repository.CourseFilter{
		Categories: q.Categories,
		MinPrice:   q.MinPrice,
		MaxPrice:   q.MaxPrice,
		Level:      q.Level,
		Search:     q.Search,
		Page:       q.Page,
		Limit:      q.Limit,
	})
	if err != nil {
		return err
	}
	return response.Paginated(c, page.Items, response.CalculatePagination(page.Page, page.Limit, page.Total))
}

// ListCourses handles GET /courses (admin listing with counts)
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	courses, err := h.courses.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return response.Success(c, courses)
}

// ListInstructorCourses handles GET /courses/instructor/:id
func (h *CourseHandler) ListInstructorCourses(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return err
	}

	courses, err := h.courses.ListByInstructor(c.UserContext(), id)
	if err != nil {
		return err
	}
	return response.Success(c, courses)
}

// GetCourse handles GET /courses/:id
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return err
	}

	course, err := h.courses.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return response.Success(c, course)
}

// GetCourseByURL handles GET /courses/url/:url
func (h *CourseHandler) GetCourseByURL(c *fiber.Ctx) error {
	course, err := h.courses.GetByURL(c.UserContext(), c.Params("url"))
	if err != nil {
		return err
	}
	return response.Success(c, course)
}

// ListCourseGroups handles GET /courses/:id/groups
func (h *CourseHandler) ListCourseGroups(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return err
	}

	groups, err := h.courses.Groups(c.UserContext(), id)
	if err != nil {
		return err
	}
	return response.Success(c, groups)
}

// CreateCourse handles POST /courses
func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	var req services.CreateCourseInput
	if err := validation.ParseBody(c, &req); err != nil {
		return err
	}

	course, err := h.courses.Create(c.UserContext(), actorID(c), req)
	if err != nil {
		return err
	}
	return response.Created(c, course)
}

// UpdateCourse handles PATCH /courses/:id
func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return err
	}

	var req services.UpdateCourseInput
	if err := validation.ParseBody(c, &req); err != nil {
		return err
	}

	course, err := h.courses.Update(c.UserContext(), actorID(c), id, req)
	if err != nil {
		return err
	}
	return response.Success(c, course)
}

// DeleteCourse handles DELETE /courses/:id
func (h *CourseHandler) DeleteCourse(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return err
	}

	if err := h.courses.Remove(c.UserContext(), id); err != nil {
		return err
	}
	return response.SuccessWithMessage(c, "Course deleted successfully", nil)
}
