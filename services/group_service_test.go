package services

import (
	"context"
	"testing"

	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/sahilchouksey/edu-platform-api/utils/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type groupFixture struct {
	svc         *GroupService
	groups      *memGroups
	courses     *memCourses
	users       *memUsers
	invalidated *courseInvalidations
}

func newGroupFixture(t *testing.T) *groupFixture {
	t.Helper()
	f := &groupFixture{groups: newMemGroups(), courses: newMemCourses(), users: newMemUsers(), invalidated: &courseInvalidations{}}
	f.svc = NewGroupService(f.groups, f.courses, f.users, f.invalidated)
	require.NoError(t, f.courses.Create(context.Background(), &model.Course{Name: "Algebra I"}))
	return f
}

func (f *groupFixture) student(email string) uint {
	return f.users.seed(model.User{Email: email, Name: email, Role: model.RoleStudent, Status: model.UserStatusActive}).ID
}

func (f *groupFixture) assertCounter(t *testing.T, groupID uint, want int) {
	t.Helper()
	g, err := f.groups.FindByID(context.Background(), groupID)
	require.NoError(t, err)
	assert.Equal(t, want, g.CurrentStudents)
	assert.Equal(t, want, f.groups.memberCount(groupID))
	assert.LessOrEqual(t, g.CurrentStudents, g.MaxStudents)
}

func TestCreateGroupDefaultsCapacity(t *testing.T) {
	f := newGroupFixture(t)
	ctx := context.Background()

	g, err := f.svc.Create(ctx, CreateGroupInput{GroupNumber: "A-1", CourseID: 1, AgeRange: " 7-9 "})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultGroupCapacity, g.MaxStudents)
	assert.Equal(t, "7-9", g.AgeRange)

	_, err = f.svc.Create(ctx, CreateGroupInput{GroupNumber: "A-1", CourseID: 1})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	_, err = f.svc.Create(ctx, CreateGroupInput{GroupNumber: "B-1", CourseID: 42})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestAddStudentStopsAtCapacity(t *testing.T) {
	f := newGroupFixture(t)
	ctx := context.Background()

	g, err := f.svc.Create(ctx, CreateGroupInput{GroupNumber: "A-1", CourseID: 1, MaxStudents: intPtr(2)})
	require.NoError(t, err)

	a, b, c := f.student("a@example.com"), f.student("b@example.com"), f.student("c@example.com")

	require.NoError(t, f.svc.AddStudent(ctx, g.ID, a))
	f.assertCounter(t, g.ID, 1)
	require.NoError(t, f.svc.AddStudent(ctx, g.ID, b))
	f.assertCounter(t, g.ID, 2)

	err = f.svc.AddStudent(ctx, g.ID, c)
	assert.ErrorIs(t, err, apperror.ErrCapacityExceeded)
	f.assertCounter(t, g.ID, 2)
}

func TestAddStudentRejections(t *testing.T) {
	f := newGroupFixture(t)
	ctx := context.Background()

	g, err := f.svc.Create(ctx, CreateGroupInput{GroupNumber: "A-1", CourseID: 1})
	require.NoError(t, err)
	a := f.student("a@example.com")
	teacher := f.users.seed(model.User{Email: "t@example.com", Role: model.RoleTeacher}).ID

	require.NoError(t, f.svc.AddStudent(ctx, g.ID, a))

	tests := []struct {
		name      string
		groupID   uint
		studentID uint
		want      error
	}{
		{"duplicate membership", g.ID, a, apperror.ErrConflict},
		{"missing group", 99, a, apperror.ErrNotFound},
		{"missing student", g.ID, 99, apperror.ErrNotFound},
		{"not a student", g.ID, teacher, apperror.ErrInvalidState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.svc.AddStudent(ctx, tt.groupID, tt.studentID)
			assert.ErrorIs(t, err, tt.want)
			f.assertCounter(t, g.ID, 1)
		})
	}
}

func TestRemoveStudent(t *testing.T) {
	f := newGroupFixture(t)
	ctx := context.Background()

	g, err := f.svc.Create(ctx, CreateGroupInput{GroupNumber: "A-1", CourseID: 1})
	require.NoError(t, err)
	a := f.student("a@example.com")
	require.NoError(t, f.svc.AddStudent(ctx, g.ID, a))

	require.NoError(t, f.svc.RemoveStudent(ctx, g.ID, a))
	f.assertCounter(t, g.ID, 0)

	err = f.svc.RemoveStudent(ctx, g.ID, a)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	f.assertCounter(t, g.ID, 0)
}

func TestUpdateMaxStudentsBelowCurrent(t *testing.T) {
	f := newGroupFixture(t)
	ctx := context.Background()

	g, err := f.svc.Create(ctx, CreateGroupInput{GroupNumber: "A-1", CourseID: 1, MaxStudents: intPtr(5)})
	require.NoError(t, err)
	require.NoError(t, f.svc.AddStudent(ctx, g.ID, f.student("a@example.com")))
	require.NoError(t, f.svc.AddStudent(ctx, g.ID, f.student("b@example.com")))

	assert.ErrorIs(t, f.svc.UpdateMaxStudents(ctx, g.ID, 1), apperror.ErrInvalidArgument)
	assert.ErrorIs(t, f.svc.UpdateMaxStudents(ctx, g.ID, 0), apperror.ErrInvalidArgument)
	require.NoError(t, f.svc.UpdateMaxStudents(ctx, g.ID, 2))

	updated, err := f.svc.Update(ctx, g.ID, UpdateGroupInput{MaxStudents: intPtr(1)})
	assert.ErrorIs(t, err, apperror.ErrInvalidArgument)
	assert.Nil(t, updated)
}

func TestUpdateGroupReplacesSchedule(t *testing.T) {
	f := newGroupFixture(t)
	ctx := context.Background()

	g, err := f.svc.Create(ctx, CreateGroupInput{
		GroupNumber: "A-1",
		CourseID:    1,
		Schedule:    []ScheduleInput{{DayOfWeek: "Monday", StartTime: "10:00", EndTime: "11:00"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "monday", g.Schedule[0].DayOfWeek)

	next := []ScheduleInput{
		{DayOfWeek: "tuesday", StartTime: "09:00", EndTime: "10:00"},
		{DayOfWeek: "friday", StartTime: "15:00", EndTime: "16:30"},
	}
	updated, err := f.svc.Update(ctx, g.ID, UpdateGroupInput{Schedule: &next, GroupNumber: strPtr("A-2")})
	require.NoError(t, err)
	assert.Equal(t, "A-2", updated.GroupNumber)
	require.Len(t, updated.Schedule, 2)
	assert.Equal(t, "friday", updated.Schedule[1].DayOfWeek)
}

func TestNormalizeAgeRanges(t *testing.T) {
	got := NormalizeAgeRanges([]string{" 7-9 ", "10 -  12", "7-9", "", "ADULTS", "adults", "10 - 12"})
	assert.Equal(t, []string{"10 - 12", "7-9", "adults"}, got)
}

func TestUpdateGroupIsAllOrNothing(t *testing.T) {
	f := newGroupFixture(t)
	ctx := context.Background()

	g, err := f.svc.Create(ctx, CreateGroupInput{GroupNumber: "A-1", CourseID: 1, MaxStudents: intPtr(5)})
	require.NoError(t, err)

	// the group number write loses a race on the unique index
	f.groups.updateErr = apperror.Conflict("group number %q", "B-1")
	_, err = f.svc.Update(ctx, g.ID, UpdateGroupInput{GroupNumber: strPtr("B-1"), MaxStudents: intPtr(9)})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	stored, err := f.groups.FindByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.MaxStudents)
	assert.Equal(t, "A-1", stored.GroupNumber)

	f.groups.updateErr = nil
	updated, err := f.svc.Update(ctx, g.ID, UpdateGroupInput{MaxStudents: intPtr(9)})
	require.NoError(t, err)
	assert.Equal(t, 9, updated.MaxStudents)
}

func TestGroupWritesDropCachedCourses(t *testing.T) {
	f := newGroupFixture(t)
	ctx := context.Background()
	other := &model.Course{Name: "Geometry"}
	require.NoError(t, f.courses.Create(ctx, other))

	g, err := f.svc.Create(ctx, CreateGroupInput{GroupNumber: "A-1", CourseID: 1})
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, f.invalidated.reset())

	student := f.student("a@example.com")
	require.NoError(t, f.svc.AddStudent(ctx, g.ID, student))
	assert.Equal(t, []uint{1}, f.invalidated.reset())

	require.NoError(t, f.svc.RemoveStudent(ctx, g.ID, student))
	assert.Equal(t, []uint{1}, f.invalidated.reset())

	require.NoError(t, f.svc.UpdateMaxStudents(ctx, g.ID, 20))
	assert.Equal(t, []uint{1}, f.invalidated.reset())

	_, err = f.svc.Update(ctx, g.ID, UpdateGroupInput{CourseID: &other.ID})
	require.NoError(t, err)
	assert.Equal(t, []uint{1, other.ID}, f.invalidated.reset(), "moving a group touches both courses")

	require.NoError(t, f.svc.Remove(ctx, g.ID))
	assert.Equal(t, []uint{other.ID}, f.invalidated.reset())

	// failed writes leave the cache alone
	assert.Error(t, f.svc.AddStudent(ctx, g.ID, student))
	assert.Empty(t, f.invalidated.reset())
}
