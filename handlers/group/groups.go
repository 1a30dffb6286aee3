package group

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/edu-platform-api/handlers"
	"github.com/sahilchouksey/edu-platform-api/services"
	"github.com/sahilchouksey/edu-platform-api/utils/response"
	"github.com/sahilchouksey/edu-platform-api/utils/validation"
)

// GroupHandler handles group and seat requests
type GroupHandler struct {
	groups *services.GroupService
}

// NewGroupHandler creates a new group handler
func NewGroupHandler(groups *services.GroupService) *GroupHandler {
	return &GroupHandler{groups: groups}
}

// AddStudentRequest seats a student in a group
type AddStudentRequest struct {
	StudentID uint `json:"student_id" validate:"required,min=1"`
}

// ListGroups handles GET /groups?course_id=
func (h *GroupHandler) ListGroups(c *fiber.Ctx) error {
	courseID, err := handlers.QueryID(c, "course_id")
	if err != nil {
		return err
	}

	groups, err := h.groups.List(c.UserContext(), courseID)
	if err != nil {
		return err
	}
	return response.Success(c, groups)
}

// ListAgeRanges handles GET /groups/age-ranges
func (h *GroupHandler) ListAgeRanges(c *fiber.Ctx) error {
	ranges, err := h.groups.AgeRanges(c.UserContext())
	if err != nil {
		return err
	}
	return response.Success(c, ranges)
}

// GetGroup handles GET /groups/:id
func (h *GroupHandler) GetGroup(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return err
	}

	group, err := h.groups.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return response.Success(c, group)
}

// CreateGroup handles POST /groups
func (h *GroupHandler) CreateGroup(c *fiber.Ctx) error {
	var req services.CreateGroupInput
	if err := validation.ParseBody(c, &req); err != nil {
		return err
	}

	group, err := h.groups.Create(c.UserContext(), req)
	if err != nil {
		return err
	}
	return response.Created(c, group)
}

// UpdateGroup handles PATCH /groups/:id
func (h *GroupHandler) UpdateGroup(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return err
	}

	var req services.UpdateGroupInput
	if err := validation.ParseBody(c, &req); err != nil {
		return err
	}

	group, err := h.groups.Update(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return response.Success(c, group)
}

// DeleteGroup handles DELETE /groups/:id
func (h *GroupHandler) DeleteGroup(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return err
	}

	if err := h.groups.Remove(c.UserContext(), id); err != nil {
		return err
	}
	return response.SuccessWithMessage(c, "Group deleted successfully", nil)
}

// ListStudents handles GET /groups/:id/students
func (h *GroupHandler) ListStudents(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return err
	}

	members, err := h.groups.ListStudents(c.UserContext(), id)
	if err != nil {
		return err
	}
	return response.Success(c, members)
}

// AddStudent handles POST /groups/:id/students
func (h *GroupHandler) AddStudent(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return err
	}

	var req AddStudentRequest
	if err := validation.ParseBody(c, &req); err != nil {
		return err
	}

	if err := h.groups.AddStudent(c.UserContext(), id, req.StudentID); err != nil {
		return err
	}
	group, err := h.groups.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return response.Created(c, group)
}

// RemoveStudent handles DELETE /groups/:id/students/:studentId
func (h *GroupHandler) RemoveStudent(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return err
	}
	studentID, err := handlers.ParamID(c, "studentId")
	if err != nil {
		return err
	}

	if err := h.groups.RemoveStudent(c.UserContext(), id, studentID); err != nil {
		return err
	}
	return response.SuccessWithMessage(c, "Student removed from group", nil)
}
