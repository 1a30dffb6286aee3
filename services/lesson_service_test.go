package services

import (
	"context"
	"sort"
	"testing"

	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/sahilchouksey/edu-platform-api/services/events"
	"github.com/sahilchouksey/edu-platform-api/utils/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memLessons struct {
	nextID uint
	rows   map[uint]model.Lesson
}

func (r *memLessons) Create(_ context.Context, l *model.Lesson) error {
	r.nextID++
	l.ID = r.nextID
	r.rows[l.ID] = *l
	return nil
}

func (r *memLessons) FindByID(_ context.Context, id uint) (*model.Lesson, error) {
	l, ok := r.rows[id]
	if !ok {
		return nil, apperror.NotFound("lesson", id)
	}
	return &l, nil
}

func (r *memLessons) ListByCourse(_ context.Context, courseID *uint) ([]model.Lesson, error) {
	var out []model.Lesson
	for _, l := range r.rows {
		if courseID == nil || l.CourseID == *courseID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r *memLessons) Save(_ context.Context, l *model.Lesson) error {
	r.rows[l.ID] = *l
	return nil
}

func (r *memLessons) Delete(_ context.Context, id uint) error {
	delete(r.rows, id)
	return nil
}

func TestLessonsBelongToExistingCourses(t *testing.T) {
	ctx := context.Background()
	courses := newMemCourses()
	bus := &events.Recorder{}
	svc := NewLessonService(&memLessons{rows: map[uint]model.Lesson{}}, courses, bus)

	_, err := svc.Create(ctx, LessonInput{Title: "Intro", CourseID: 42})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Empty(t, bus.Events())

	course := &model.Course{Name: "Algebra I"}
	require.NoError(t, courses.Create(ctx, course))

	second, err := svc.Create(ctx, LessonInput{Title: " Fractions ", Order: 2, CourseID: course.ID})
	require.NoError(t, err)
	assert.Equal(t, "Fractions", second.Title)
	_, err = svc.Create(ctx, LessonInput{Title: "Intro", Order: 1, CourseID: course.ID})
	require.NoError(t, err)

	created := bus.Named(events.NameLessonCreated)
	require.Len(t, created, 2)
	assert.Equal(t, "Algebra I", created[0].(events.LessonCreated).CourseName)

	list, err := svc.List(ctx, &course.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Intro", list[0].Title)

	_, err = svc.Update(ctx, second.ID, UpdateLessonInput{CourseID: uintPtr(99)})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	updated, err := svc.Update(ctx, second.ID, UpdateLessonInput{Order: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Order)
	assert.Len(t, bus.Named(events.NameLessonCreated), 2, "updates do not publish")
}
