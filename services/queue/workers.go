package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// Mailer delivers the emails behind each job
type Mailer interface {
	SendWelcomeEmail(ctx context.Context, to, name string) error
	SendEnrollmentEmail(ctx context.Context, to, name, courseName string) error
}

// RetryPolicy configures exponential backoff for failed jobs
type RetryPolicy struct {
	MaxRetries      int
	InitialInterval time.Duration
}

// RegisterWorkers adds one handler per job topic. A job that still fails
// after MaxRetries is logged and acknowledged.
func RegisterWorkers(router *message.Router, sub message.Subscriber, mailer Mailer, policy RetryPolicy) {
	retry := middleware.Retry{
		MaxRetries:      policy.MaxRetries,
		InitialInterval: policy.InitialInterval,
		MaxInterval:     time.Minute,
		Multiplier:      2,
		OnRetryHook: func(retryNum int, delay time.Duration) {
			log.Printf("[QUEUE] retry %d in %s", retryNum, delay)
		},
	}

	router.AddNoPublisherHandler("welcome_email_worker", TopicWelcomeEmail, sub,
		worker(TopicWelcomeEmail, retry, func(ctx context.Context, payload []byte) error {
			var job WelcomeEmail
			if err := json.Unmarshal(payload, &job); err != nil {
				return err
			}
			return mailer.SendWelcomeEmail(ctx, job.Email, job.Name)
		}))

	router.AddNoPublisherHandler("enrollment_email_worker", TopicCourseEnrollment, sub,
		worker(TopicCourseEnrollment, retry, func(ctx context.Context, payload []byte) error {
			var job EnrollmentEmail
			if err := json.Unmarshal(payload, &job); err != nil {
				return err
			}
			return mailer.SendEnrollmentEmail(ctx, job.Email, job.Name, job.CourseName)
		}))
}

func worker(topic string, retry middleware.Retry, run func(ctx context.Context, payload []byte) error) message.NoPublishHandlerFunc {
	h := retry.Middleware(func(msg *message.Message) ([]*message.Message, error) {
		return nil, run(msg.Context(), msg.Payload)
	})

	return func(msg *message.Message) error {
		if _, err := h(msg); err != nil {
			log.Printf("[QUEUE] %s job %s failed permanently: %v", topic, msg.UUID, err)
		}
		return nil
	}
}
