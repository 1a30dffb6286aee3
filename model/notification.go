package model

import (
	"time"
)

// NotificationType is derived from the domain event that produced the notification
type NotificationType string

const (
	NotificationTypeNewCourse          NotificationType = "NEW_COURSE"
	NotificationTypeSystemAnnouncement NotificationType = "SYSTEM_ANNOUNCEMENT"
	NotificationTypeNewTeacher         NotificationType = "NEW_TEACHER"
	NotificationTypeApplicationStatus  NotificationType = "APPLICATION_STATUS"
	NotificationTypeCourseEnrollment   NotificationType = "COURSE_ENROLLMENT"
	NotificationTypeCourseCompletion   NotificationType = "COURSE_COMPLETION"
	NotificationTypeNewLesson          NotificationType = "NEW_LESSON"
)

// Notification is a user-facing message. A nil UserID is an admin broadcast.
type Notification struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time        `gorm:"index" json:"created_at"`
	UserID      *uint            `gorm:"index" json:"user_id"`
	Title       string           `gorm:"type:varchar(255);not null" json:"title"`
	Message     string           `gorm:"type:text" json:"message"`
	Type        NotificationType `gorm:"type:varchar(40);not null" json:"type"`
	IsRead      bool             `gorm:"default:false;index" json:"is_read"`
	IsReadAdmin bool             `gorm:"default:false" json:"is_read_admin"`
	EntityID    *uint            `json:"entity_id"`
	EntityType  string           `gorm:"type:varchar(50)" json:"entity_type"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
