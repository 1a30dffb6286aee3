package model

import (
	"time"
)

// Statistics is one daily platform-wide snapshot
type Statistics struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Date           time.Time `gorm:"type:date;uniqueIndex;not null" json:"date"`
	TotalStudents  int64     `json:"total_students"`
	ActiveCourses  int64     `json:"active_courses"`
	TotalRevenue   float64   `gorm:"type:decimal(12,2)" json:"total_revenue"`
	CompletionRate float64   `gorm:"type:decimal(5,2)" json:"completion_rate"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// EnrollmentStatistics is the per-course enrollment snapshot for a day
type EnrollmentStatistics struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Date              time.Time `gorm:"type:date;not null;uniqueIndex:idx_enrollment_stats_day" json:"date"`
	CourseID          uint      `gorm:"not null;uniqueIndex:idx_enrollment_stats_day" json:"course_id"`
	TotalEnrollments  int64     `json:"total_enrollments"`
	ActiveEnrollments int64     `json:"active_enrollments"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	Course *Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}

// RevenueStatistics is the per-course revenue snapshot for a day
type RevenueStatistics struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Date         time.Time `gorm:"type:date;not null;uniqueIndex:idx_revenue_stats_day" json:"date"`
	CourseID     uint      `gorm:"not null;uniqueIndex:idx_revenue_stats_day" json:"course_id"`
	Revenue      float64   `gorm:"type:decimal(12,2)" json:"revenue"`
	PaymentCount int64     `json:"payment_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Course *Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}

// CompletionStatistics is the per-course completion snapshot for a day
type CompletionStatistics struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	Date                  time.Time `gorm:"type:date;not null;uniqueIndex:idx_completion_stats_day" json:"date"`
	CourseID              uint      `gorm:"not null;uniqueIndex:idx_completion_stats_day" json:"course_id"`
	CompletedCount        int64     `json:"completed_count"`
	AverageCompletionRate float64   `gorm:"type:decimal(5,2)" json:"average_completion_rate"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`

	Course *Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}

// TableName specifies the table name for Statistics
func (Statistics) TableName() string { return "statistics" }

// TableName specifies the table name for EnrollmentStatistics
func (EnrollmentStatistics) TableName() string { return "enrollment_statistics" }

// TableName specifies the table name for RevenueStatistics
func (RevenueStatistics) TableName() string { return "revenue_statistics" }

// TableName specifies the table name for CompletionStatistics
func (CompletionStatistics) TableName() string { return "completion_statistics" }
