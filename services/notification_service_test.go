package services

import (
	"context"
	"errors"
	"testing"

	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/sahilchouksey/edu-platform-api/services/events"
	"github.com/sahilchouksey/edu-platform-api/utils/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type strangeEvent struct{}

func (strangeEvent) EventName() events.Name { return "course.archived" }
func (strangeEvent) Entity() string { return "course" }

func TestBuildNotification(t *testing.T) {
	tests := []struct {
		name     string
		event    events.Event
		wantType model.NotificationType
		title    string
		message  string
		userID   *uint
	}{
		{
			name:     "course created prefers the acting user",
			event:    events.CourseCreated{ID: 1, Name: "Algebra I", Description: "Numbers", UserID: uintPtr(2), InstructorID: uintPtr(3)},
			wantType: model.NotificationTypeNewCourse,
			title:    "Created a new course: Algebra I",
			message:  "Numbers",
			userID:   uintPtr(2),
		},
		{
			name:     "course created falls back to the instructor",
			event:    events.CourseCreated{ID: 1, Name: "Algebra I", InstructorID: uintPtr(3)},
			wantType: model.NotificationTypeNewCourse,
			title:    "Created a new course: Algebra I",
			userID:   uintPtr(3),
		},
		{
			name:     "course created without anyone is a broadcast",
			event:    events.CourseCreated{ID: 1, Name: "Algebra I"},
			wantType: model.NotificationTypeNewCourse,
			title:    "Created a new course: Algebra I",
		},
		{
			name:     "application status targets the admin",
			event:    events.ApplicationStatus{AdminID: uintPtr(9), ApplicationID: 4, ChildName: "Mia", Status: "confirmed"},
			wantType: model.NotificationTypeApplicationStatus,
			title:    "Application status: completed",
			message:  "Mia: enrolled in course",
			userID:   uintPtr(9),
		},
		{
			name:     "user updated targets the user",
			event:    events.UserUpdated{ID: 6, Name: "Ada", Email: "ada@example.com", Role: model.RoleTeacher},
			wantType: model.NotificationTypeNewTeacher,
			title:    "New teacher: Ada",
			message:  "Ada (ada@example.com) is now a teacher",
			userID:   uintPtr(6),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := BuildNotification(tt.event)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, n.Type)
			assert.Equal(t, tt.title, n.Title)
			assert.Equal(t, tt.message, n.Message)
			assert.Equal(t, tt.userID, n.UserID)
			assert.Equal(t, tt.event.Entity(), n.EntityType)
		})
	}

	_, err := BuildNotification(strangeEvent{})
	assert.Error(t, err)
}

func TestListenerSwallowsFailures(t *testing.T) {
	repo := &memNotifications{}
	listener := NewNotificationListener(repo)
	ctx := context.Background()

	assert.NoError(t, listener.Handle(ctx, strangeEvent{}))
	assert.Empty(t, repo.rows)

	repo.createErr = errors.New("db down")
	assert.NoError(t, listener.Handle(ctx, events.LessonCreated{ID: 1, Title: "Intro", CourseID: 2}))

	repo.createErr = nil
	require.NoError(t, listener.Handle(ctx, events.CourseEnrolled{EnrollmentID: 3, UserID: 4, CourseID: 2, CourseName: "Algebra I"}))
	require.Len(t, repo.rows, 1)
	assert.Equal(t, model.NotificationTypeCourseEnrollment, repo.rows[0].Type)
}

func TestListOwnLeadsWithUnread(t *testing.T) {
	repo := &memNotifications{}
	svc := NewNotificationService(repo)
	ctx := context.Background()
	owner := uintPtr(1)

	for i := 0; i < 7; i++ {
		require.NoError(t, repo.Create(ctx, &model.Notification{UserID: owner, Title: "n", Type: model.NotificationTypeNewLesson}))
	}
	_, err := svc.MarkAllRead(ctx, []uint{1, 2}, *owner)
	require.NoError(t, err)

	got, err := svc.ListOwn(ctx, *owner)
	require.NoError(t, err)
	require.Len(t, got, 7)
	for _, n := range got[:5] {
		assert.False(t, n.IsRead)
	}
	assert.True(t, got[5].IsRead)
	assert.True(t, got[6].IsRead)
}

func TestOtherUsersCannotSeeNotification(t *testing.T) {
	repo := &memNotifications{}
	svc := NewNotificationService(repo)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &model.Notification{UserID: uintPtr(1), Title: "mine"}))

	_, err := svc.Get(ctx, 1, &model.User{ID: 2, Role: model.RoleStudent})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.ErrorIs(t, svc.MarkRead(ctx, 1, 2), apperror.ErrNotFound)

	n, err := svc.Get(ctx, 1, &model.User{ID: 3, Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, "mine", n.Title)

	count, err := svc.MarkAllReadAdmin(ctx, []uint{1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
