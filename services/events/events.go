// Package events defines the closed set of domain events published by the
// services and their wire envelope.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Topic carries every domain event
const Topic = "domain.events"

// Name identifies an event variant
type Name string

const (
	NameCourseCreated     Name = "course.created"
	NameUserUpdated       Name = "user.updated"
	NameApplicationStatus Name = "application.status"
	NameLessonCreated     Name = "lesson.created"
	NameCourseEnrolled    Name = "course.enrolled"
	NameCourseCompleted   Name = "course.completed"
)

// ErrUnknownEvent is returned by Decode for names outside the closed set
var ErrUnknownEvent = errors.New("unknown event")

// Event is implemented by every variant below
type Event interface {
	EventName() Name
	Entity() string
}

// CourseCreated fires when a course becomes published
type CourseCreated struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	UserID       *uint  `json:"userId,omitempty"`
	AuthorID     *uint  `json:"authorId,omitempty"`
	InstructorID *uint  `json:"instructorId,omitempty"`
}

func (CourseCreated) EventName() Name { return NameCourseCreated }
func (CourseCreated) Entity() string { return "course" }

// UserUpdated fires when a user is promoted to teacher
type UserUpdated struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (UserUpdated) EventName() Name { return NameUserUpdated }
func (UserUpdated) Entity() string { return "user" }

// ApplicationStatus fires when an application is confirmed or moved to a new group
type ApplicationStatus struct {
	AdminID       *uint  `json:"adminId,omitempty"`
	ApplicationID uint   `json:"id"`
	ChildName     string `json:"childName"`
	Status        string `json:"status"`
	UserID        *uint  `json:"userId,omitempty"`
	GroupID       *uint  `json:"groupId,omitempty"`
	CourseID      *uint  `json:"courseId,omitempty"`
}

func (ApplicationStatus) EventName() Name { return NameApplicationStatus }
func (ApplicationStatus) Entity() string { return "application" }

// LessonCreated fires after a lesson is added to a course
type LessonCreated struct {
	ID           uint   `json:"id"`
	Title        string `json:"title"`
	CourseID     uint   `json:"courseId"`
	CourseName   string `json:"courseName"`
	InstructorID *uint  `json:"instructorId,omitempty"`
}

func (LessonCreated) EventName() Name { return NameLessonCreated }
func (LessonCreated) Entity() string { return "lesson" }

// CourseEnrolled fires after an enrollment row is created
type CourseEnrolled struct {
	EnrollmentID uint   `json:"id"`
	UserID       uint   `json:"userId"`
	CourseID     uint   `json:"courseId"`
	CourseName   string `json:"courseName"`
}

func (CourseEnrolled) EventName() Name { return NameCourseEnrolled }
func (CourseEnrolled) Entity() string { return "enrollment" }

// CourseCompleted fires when an enrollment moves to completed
type CourseCompleted struct {
	EnrollmentID uint   `json:"id"`
	UserID       uint   `json:"userId"`
	CourseID     uint   `json:"courseId"`
	CourseName   string `json:"courseName"`
}

func (CourseCompleted) EventName() Name { return NameCourseCompleted }
func (CourseCompleted) Entity() string { return "enrollment" }

var registry = map[Name]func() Event{
	NameCourseCreated:     func() Event { return &CourseCreated{} },
	NameUserUpdated:       func() Event { return &UserUpdated{} },
	NameApplicationStatus: func() Event { return &ApplicationStatus{} },
	NameLessonCreated:     func() Event { return &LessonCreated{} },
	NameCourseEnrolled:    func() Event { return &CourseEnrolled{} },
	NameCourseCompleted:   func() Event { return &CourseCompleted{} },
}

type envelope struct {
	EventName Name            `json:"eventName"`
	Entity    string          `json:"entity"`
	Data      json.RawMessage `json:"data"`
}

// Encode wraps an event in its {eventName, entity, data} envelope
func Encode(e Event) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", e.EventName(), err)
	}
	return json.Marshal(envelope{
		EventName: e.EventName(),
		Entity:    e.Entity(),
		Data:      data,
	})
}

// Decode restores the typed event. Decoded variants are values, not pointers.
func Decode(payload []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}

	factory, ok := registry[env.EventName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.EventName)
	}

	ptr := factory()
	if err := json.Unmarshal(env.Data, ptr); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", env.EventName, err)
	}
	return deref(ptr), nil
}

func deref(e Event) Event {
	switch v := e.(type) {
	case *CourseCreated:
		return *v
	case *UserUpdated:
		return *v
	case *ApplicationStatus:
		return *v
	case *LessonCreated:
		return *v
	case *CourseEnrolled:
		return *v
	case *CourseCompleted:
		return *v
	}
	return e
}
