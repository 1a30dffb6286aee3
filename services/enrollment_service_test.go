package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/sahilchouksey/edu-platform-api/repository"
	"github.com/sahilchouksey/edu-platform-api/services/events"
	"github.com/sahilchouksey/edu-platform-api/utils/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memEnrollments struct {
	nextID uint
	rows   map[uint]model.Enrollment
}

func (r *memEnrollments) Create(_ context.Context, e *model.Enrollment) error {
	r.nextID++
	e.ID = r.nextID
	r.rows[e.ID] = *e
	return nil
}

func (r *memEnrollments) FindByID(_ context.Context, id uint) (*model.Enrollment, error) {
	e, ok := r.rows[id]
	if !ok {
		return nil, apperror.NotFound("enrollment", id)
	}
	return &e, nil
}

func (r *memEnrollments) Exists(_ context.Context, userID, courseID uint) (bool, error) {
	for _, e := range r.rows {
		if e.UserID == userID && e.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memEnrollments) List(_ context.Context, p repository.PageRequest, _ *uint) (repository.Page[model.Enrollment], error) {
	return repository.Page[model.Enrollment]{Page: p.Page, Limit: p.Limit}, nil
}

func (r *memEnrollments) Save(_ context.Context, e *model.Enrollment) error {
	r.rows[e.ID] = *e
	return nil
}

func (r *memEnrollments) Delete(_ context.Context, id uint) error {
	delete(r.rows, id)
	return nil
}

func TestEnrollmentLifecycle(t *testing.T) {
	ctx := context.Background()
	users := newMemUsers()
	courses := newMemCourses()
	jobs := &fakeJobs{}
	bus := &events.Recorder{}
	svc := NewEnrollmentService(&memEnrollments{rows: map[uint]model.Enrollment{}}, users, courses, jobs, bus)

	student := users.seed(model.User{Email: "s@example.com", Name: "Sam", Role: model.RoleStudent})
	course := &model.Course{Name: "Algebra I"}
	require.NoError(t, courses.Create(ctx, course))

	_, err := svc.Create(ctx, CreateEnrollmentInput{UserID: student.ID, CourseID: course.ID, CompletionPercentage: floatPtr(120)})
	assert.ErrorIs(t, err, apperror.ErrInvalidArgument)

	e, err := svc.Create(ctx, CreateEnrollmentInput{UserID: student.ID, CourseID: course.ID})
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentStatusActive, e.Status)
	require.Len(t, bus.Named(events.NameCourseEnrolled), 1)
	require.Len(t, jobs.enrollments, 1)
	assert.Equal(t, "Algebra I", jobs.enrollments[0].CourseName)

	_, err = svc.Create(ctx, CreateEnrollmentInput{UserID: student.ID, CourseID: course.ID})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	done := model.EnrollmentStatusCompleted
	_, err = svc.Update(ctx, e.ID, UpdateEnrollmentInput{Status: &done, CompletionPercentage: floatPtr(100)})
	require.NoError(t, err)
	_, err = svc.Update(ctx, e.ID, UpdateEnrollmentInput{Status: &done})
	require.NoError(t, err)

	completed := bus.Named(events.NameCourseCompleted)
	require.Len(t, completed, 1)
	assert.Equal(t, "Algebra I", completed[0].(events.CourseCompleted).CourseName)
}

func TestPromotionToTeacherPublishesUserUpdated(t *testing.T) {
	ctx := context.Background()
	bus := &events.Recorder{}
	svc := NewUserService(newMemUsers(), nil, bus)

	u, err := svc.Create(ctx, CreateUserInput{Name: "Ada", Email: "ada@example.com", Password: "correct horse"})
	require.NoError(t, err)

	teacher := model.RoleTeacher
	_, err = svc.Update(ctx, u.ID, UpdateUserInput{Role: &teacher})
	require.NoError(t, err)
	_, err = svc.Update(ctx, u.ID, UpdateUserInput{Role: &teacher, Phone: strPtr("+1")})
	require.NoError(t, err)

	assert.Len(t, bus.Named(events.NameUserUpdated), 1)
}

func TestOptionalDistinguishesNullFromAbsent(t *testing.T) {
	var in struct {
		A Optional[uint]      `json:"a"`
		B Optional[uint]      `json:"b"`
		C Optional[time.Time] `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": null, "c": "2024-05-01T00:00:00Z"}`), &in))

	assert.True(t, in.A.Set)
	assert.Nil(t, in.A.Value)
	assert.False(t, in.B.Set)
	require.NotNil(t, in.C.Value)
	assert.Equal(t, 2024, in.C.Value.Year())

	id := uintPtr(4)
	in.B.apply(&id)
	assert.Equal(t, uint(4), *id)
	in.A.apply(&id)
	assert.Nil(t, id)
}

func TestMergeMonthly(t *testing.T) {
	got := mergeMonthly(
		[]monthCount{{Month: "2024-03", Count: 4}, {Month: "2024-01", Count: 2}},
		[]monthCount{{Month: "2024-03", Count: 1}, {Month: "2024-02", Count: 5}},
	)
	assert.Equal(t, []MonthlyProgress{
		{Name: "2024-01", Enrollments: 2},
		{Name: "2024-02", Completions: 5},
		{Name: "2024-03", Enrollments: 4, Completions: 1},
	}, got)
}

func TestDayStartTruncatesToUTCMidnight(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	got := dayStart(time.Date(2024, 5, 2, 3, 30, 0, 0, loc))
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), got)
}
