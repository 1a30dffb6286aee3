package services

import (
	"context"
	"fmt"
	"log"

	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/sahilchouksey/edu-platform-api/repository"
	"github.com/sahilchouksey/edu-platform-api/services/events"
)

// NotificationService reads and acknowledges notifications. Rows are only
// ever created by NotificationListener.
type NotificationService struct {
	notifications repository.NotificationRepository
}

// NewNotificationService creates a new notification service
func NewNotificationService(notifications repository.NotificationRepository) *NotificationService {
	return &NotificationService{notifications: notifications}
}

// ListOwn returns up to UnreadPreviewLimit unread notifications followed by the read ones
func (s *NotificationService) ListOwn(ctx context.Context, userID uint) ([]model.Notification, error) {
	unread, err := s.notifications.ListUnread(ctx, userID, repository.UnreadPreviewLimit)
	if err != nil {
		return nil, err
	}
	read, err := s.notifications.ListRead(ctx, userID)
	if err != nil {
		return nil, err
	}
	return append(unread, read...), nil
}

// ListAdmin returns every notification, the ones admins have not seen first
func (s *NotificationService) ListAdmin(ctx context.Context) ([]model.Notification, error) {
	return s.notifications.ListAdmin(ctx)
}

// Get returns a notification; non-staff users only see their own
func (s *NotificationService) Get(ctx context.Context, id uint, viewer *model.User) (*model.Notification, error) {
	if viewer.IsStaff() {
		return s.notifications.FindByID(ctx, id)
	}
	return s.notifications.FindForUser(ctx, id, viewer.ID)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID uint) error {
	if _, err := s.notifications.FindForUser(ctx, id, userID); err != nil {
		return err
	}
	_, err := s.notifications.MarkRead(ctx, []uint{id}, userID)
	return err
}

// MarkAllRead marks the given notifications of userID as read and reports how many changed
func (s *NotificationService) MarkAllRead(ctx context.Context, ids []uint, userID uint) (int64, error) {
	return s.notifications.MarkRead(ctx, ids, userID)
}

func (s *NotificationService) MarkAllReadAdmin(ctx context.Context, ids []uint) (int64, error) {
	return s.notifications.MarkReadAdmin(ctx, ids)
}

func (s *NotificationService) Remove(ctx context.Context, id uint, viewer *model.User) error {
	if _, err := s.Get(ctx, id, viewer); err != nil {
		return err
	}
	return s.notifications.Delete(ctx, id)
}

// NotificationListener turns every domain event into a notification row
type NotificationListener struct {
	notifications repository.NotificationRepository
}

// NewNotificationListener creates the listener; register Handle with events.Subscribe
func NewNotificationListener(notifications repository.NotificationRepository) *NotificationListener {
	return &NotificationListener{notifications: notifications}
}

// Handle never fails: a notification that cannot be built or stored is logged and dropped
func (l *NotificationListener) Handle(ctx context.Context, e events.Event) error {
	n, err := BuildNotification(e)
	if err != nil {
		log.Printf("[EVENTS] %v", err)
		return nil
	}
	if err := l.notifications.Create(ctx, n); err != nil {
		log.Printf("[EVENTS] failed to store notification for %s: %v", e.EventName(), err)
	}
	return nil
}

// BuildNotification maps an event to its notification
func BuildNotification(e events.Event) (*model.Notification, error) {
	n := &model.Notification{EntityType: e.Entity()}

	switch ev := e.(type) {
	case events.CourseCreated:
		n.Type = model.NotificationTypeNewCourse
		n.Title = "Created a new course: " + ev.Name
		n.Message = ev.Description
		n.UserID = firstSet(ev.UserID, ev.AuthorID, ev.InstructorID)
		n.EntityID = &ev.ID
	case events.UserUpdated:
		n.Type = model.NotificationTypeNewTeacher
		n.Title = "New teacher: " + ev.Name
		n.Message = fmt.Sprintf("%s (%s) is now a teacher", ev.Name, ev.Email)
		n.UserID = &ev.ID
		n.EntityID = &ev.ID
	case events.ApplicationStatus:
		n.Type = model.NotificationTypeApplicationStatus
		n.Title = "Application status: completed"
		n.Message = ev.ChildName + ": enrolled in course"
		n.UserID = ev.AdminID
		n.EntityID = &ev.ApplicationID
	case events.LessonCreated:
		n.Type = model.NotificationTypeNewLesson
		n.Title = "New lesson: " + ev.Title
		n.Message = "Added to " + ev.CourseName
		n.UserID = ev.InstructorID
		n.EntityID = &ev.ID
	case events.CourseEnrolled:
		n.Type = model.NotificationTypeCourseEnrollment
		n.Title = "Enrolled in " + ev.CourseName
		n.Message = fmt.Sprintf("Enrollment %d for course %s", ev.EnrollmentID, ev.CourseName)
		n.UserID = &ev.UserID
		n.EntityID = &ev.EnrollmentID
	case events.CourseCompleted:
		n.Type = model.NotificationTypeCourseCompletion
		n.Title = "Course completed: " + ev.CourseName
		n.Message = "Congratulations on finishing " + ev.CourseName
		n.UserID = &ev.UserID
		n.EntityID = &ev.EnrollmentID
	default:
		return nil, fmt.Errorf("no notification mapping for event %q (%T)", e.EventName(), e)
	}
	return n, nil
}

func firstSet(ids ...*uint) *uint {
	for _, id := range ids {
		if id != nil {
			return id
		}
	}
	return nil
}
