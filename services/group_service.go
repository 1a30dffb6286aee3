package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/sahilchouksey/edu-platform-api/repository"
	"github.com/sahilchouksey/edu-platform-api/utils/apperror"
)

// ScheduleInput is one weekly slot in a group request
type ScheduleInput struct {
	DayOfWeek string `json:"day_of_week" validate:"required,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	StartTime string `json:"start_time" validate:"required,clock"`
	EndTime   string `json:"end_time" validate:"required,clock"`
}

// CreateGroupInput represents the request body for creating a group
type CreateGroupInput struct {
	GroupNumber string          `json:"group_number" validate:"required,max=50"`
	AgeRange    string          `json:"age_range" validate:"omitempty,max=50"`
	MaxStudents *int            `json:"max_students" validate:"omitempty,min=1,max=500"`
	CourseID    uint            `json:"course_id" validate:"required,min=1"`
	Schedule    []ScheduleInput `json:"schedule" validate:"omitempty,dive"`
}

// UpdateGroupInput represents a partial group update. Nil fields are left as they are
// and a non-nil Schedule replaces the whole schedule.
type UpdateGroupInput struct {
	GroupNumber *string          `json:"group_number" validate:"omitempty,max=50"`
	AgeRange    *string          `json:"age_range" validate:"omitempty,max=50"`
	MaxStudents *int             `json:"max_students" validate:"omitempty,min=1,max=500"`
	CourseID    *uint            `json:"course_id" validate:"omitempty,min=1"`
	Schedule    *[]ScheduleInput `json:"schedule" validate:"omitempty,dive"`
}

// CourseInvalidator drops cached course views. Cached courses embed their
// groups with seat counts, so group writes go through it.
type CourseInvalidator interface {
	InvalidateCourse(ctx context.Context, courseID uint)
}

// GroupService owns groups, their schedule and their seat accounting
type GroupService struct {
	groups      repository.GroupRepository
	courses     repository.CourseRepository
	users       repository.UserRepository
	courseCache CourseInvalidator
}

// NewGroupService creates a new group service. courseCache may be nil.
func NewGroupService(
	groups repository.GroupRepository,
	courses repository.CourseRepository,
	users repository.UserRepository,
	courseCache CourseInvalidator,
) *GroupService {
	return &GroupService{groups: groups, courses: courses, users: users, courseCache: courseCache}
}

func (s *GroupService) coursesChanged(ctx context.Context, courseIDs ...uint) {
	if s.courseCache == nil {
		return
	}
	seen := make(map[uint]bool, len(courseIDs))
	for _, id := range courseIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		s.courseCache.InvalidateCourse(ctx, id)
	}
}

func toSchedule(in []ScheduleInput) []model.GroupSchedule {
	out := make([]model.GroupSchedule, 0, len(in))
	for _, s := range in {
		out = append(out, model.GroupSchedule{
			DayOfWeek: strings.ToLower(s.DayOfWeek),
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
		})
	}
	return out
}

func (s *GroupService) requireCourse(ctx context.Context, courseID uint) error {
	ok, err := s.courses.Exists(ctx, courseID)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NotFound("course", courseID)
	}
	return nil
}

func (s *GroupService) Create(ctx context.Context, in CreateGroupInput) (*model.Group, error) {
	if err := s.requireCourse(ctx, in.CourseID); err != nil {
		return nil, err
	}
	taken, err := s.groups.GroupNumberTaken(ctx, in.GroupNumber, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperror.Conflict("group number %q", in.GroupNumber)
	}

	group := &model.Group{
		GroupNumber: in.GroupNumber,
		AgeRange:    strings.TrimSpace(in.AgeRange),
		MaxStudents: model.DefaultGroupCapacity,
		CourseID:    in.CourseID,
		Schedule:    toSchedule(in.Schedule),
	}
	if in.MaxStudents != nil {
		group.MaxStudents = *in.MaxStudents
	}

	if err := s.groups.Create(ctx, group); err != nil {
		return nil, err
	}
	s.coursesChanged(ctx, group.CourseID)
	return group, nil
}

func (s *GroupService) Get(ctx context.Context, id uint) (*model.Group, error) {
	return s.groups.FindByID(ctx, id)
}

func (s *GroupService) List(ctx context.Context, courseID *uint) ([]model.Group, error) {
	return s.groups.List(ctx, courseID)
}

// AgeRanges returns the distinct age ranges in use, normalized and sorted
func (s *GroupService) AgeRanges(ctx context.Context) ([]string, error) {
	raw, err := s.groups.AgeRanges(ctx)
	if err != nil {
		return nil, err
	}
	return NormalizeAgeRanges(raw), nil
}

// NormalizeAgeRanges trims, collapses whitespace, lower-cases and de-duplicates
func NormalizeAgeRanges(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		v := strings.ToLower(strings.Join(strings.Fields(r), " "))
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func (s *GroupService) Update(ctx context.Context, id uint, in UpdateGroupInput) (*model.Group, error) {
	group, err := s.groups.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previousCourse := group.CourseID

	if in.GroupNumber != nil && *in.GroupNumber != group.GroupNumber {
		taken, err := s.groups.GroupNumberTaken(ctx, *in.GroupNumber, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperror.Conflict("group number %q", *in.GroupNumber)
		}
		group.GroupNumber = *in.GroupNumber
	}
	if in.AgeRange != nil {
		group.AgeRange = strings.TrimSpace(*in.AgeRange)
	}
	if in.CourseID != nil && *in.CourseID != group.CourseID {
		if err := s.requireCourse(ctx, *in.CourseID); err != nil {
			return nil, err
		}
		group.CourseID = *in.CourseID
	}

	var capacity *int
	if in.MaxStudents != nil && *in.MaxStudents != group.MaxStudents {
		if *in.MaxStudents < 1 {
			return nil, apperror.Invalid("maxStudents must be at least 1")
		}
		capacity = in.MaxStudents
	}

	var schedule []model.GroupSchedule
	if in.Schedule != nil {
		schedule = toSchedule(*in.Schedule)
	}
	if err := s.groups.Update(ctx, group, schedule, capacity); err != nil {
		return nil, err
	}
	s.coursesChanged(ctx, previousCourse, group.CourseID)
	return s.groups.FindByID(ctx, id)
}

func (s *GroupService) Remove(ctx context.Context, id uint) error {
	group, err := s.groups.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.groups.Delete(ctx, id); err != nil {
		return err
	}
	s.coursesChanged(ctx, group.CourseID)
	return nil
}

// AddStudent seats a student in a group. The capacity check, the membership
// insert and the counter increment happen atomically in the repository.
func (s *GroupService) AddStudent(ctx context.Context, groupID, studentID uint) error {
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return err
	}
	student, err := s.users.FindByID(ctx, studentID)
	if err != nil {
		return err
	}
	if student.Role != model.RoleStudent {
		return fmt.Errorf("%w: user %d has role %q, only students can join a group",
			apperror.ErrInvalidState, studentID, student.Role)
	}
	if err := s.groups.AddMember(ctx, repository.Membership{GroupID: groupID, StudentID: studentID}); err != nil {
		return err
	}
	s.coursesChanged(ctx, group.CourseID)
	return nil
}

func (s *GroupService) RemoveStudent(ctx context.Context, groupID, studentID uint) error {
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return err
	}
	if err := s.groups.RemoveMember(ctx, groupID, studentID); err != nil {
		return err
	}
	s.coursesChanged(ctx, group.CourseID)
	return nil
}

// UpdateMaxStudents fails with ErrInvalidArgument when capacity is below the seats already taken
func (s *GroupService) UpdateMaxStudents(ctx context.Context, groupID uint, capacity int) error {
	if capacity < 1 {
		return apperror.Invalid("maxStudents must be at least 1")
	}
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return err
	}
	if err := s.groups.UpdateMaxStudents(ctx, groupID, capacity); err != nil {
		return err
	}
	s.coursesChanged(ctx, group.CourseID)
	return nil
}

func (s *GroupService) ListStudents(ctx context.Context, groupID uint) ([]model.GroupStudent, error) {
	if _, err := s.groups.FindByID(ctx, groupID); err != nil {
		return nil, err
	}
	return s.groups.ListMembers(ctx, groupID)
}
