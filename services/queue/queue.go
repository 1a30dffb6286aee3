// Package queue runs side-channel jobs, such as transactional email,
// outside the request that triggered them.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

const (
	TopicWelcomeEmail     = "welcome-email"
	TopicCourseEnrollment = "course-enrollment"
)

// WelcomeEmail is sent after a user account is created
type WelcomeEmail struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// EnrollmentEmail confirms a new enrollment
type EnrollmentEmail struct {
	UserID     uint   `json:"user_id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	CourseID   uint   `json:"course_id"`
	CourseName string `json:"course_name"`
}

// Enqueuer is what domain services depend on
type Enqueuer interface {
	EnqueueWelcomeEmail(ctx context.Context, job WelcomeEmail) error
	EnqueueEnrollmentEmail(ctx context.Context, job EnrollmentEmail) error
}

// Queue publishes jobs as JSON messages
type Queue struct {
	pub message.Publisher
}

// NewQueue creates a queue on top of a watermill publisher
func NewQueue(pub message.Publisher) *Queue {
	return &Queue{pub: pub}
}

func (q *Queue) EnqueueWelcomeEmail(ctx context.Context, job WelcomeEmail) error {
	return q.enqueue(TopicWelcomeEmail, job)
}

func (q *Queue) EnqueueEnrollmentEmail(ctx context.Context, job EnrollmentEmail) error {
	return q.enqueue(TopicCourseEnrollment, job)
}

func (q *Queue) enqueue(topic string, job interface{}) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal %s job: %w", topic, err)
	}
	return q.pub.Publish(topic, message.NewMessage(watermill.NewUUID(), payload))
}
