package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	CourseStatusDraft     = "draft"
	CourseStatusPublished = "published"
)

// Category groups courses in the public catalog
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `gorm:"uniqueIndex;not null" json:"name"`
	URL         string    `gorm:"type:varchar(255)" json:"url"`
	Description string    `gorm:"type:text" json:"description"`
	Status      string    `gorm:"type:varchar(20);default:'active'" json:"status"`

	Courses []Course `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"courses,omitempty"`
}

// CategoryStats is a category with its computed aggregates
type CategoryStats struct {
	Category
	CoursesCount int64 `json:"courses_count"`
	StudentCount int64 `json:"student_count"`
}

// Course is a sellable program with lessons and scheduled groups
type Course struct {
	ID                  uint                        `gorm:"primaryKey" json:"id"`
	CreatedAt           time.Time                   `json:"created_at"`
	UpdatedAt           time.Time                   `json:"updated_at"`
	Name                string                      `gorm:"uniqueIndex;not null" json:"name"`
	Heading             string                      `json:"heading"`
	Description         string                      `gorm:"type:text" json:"description"`
	DetailedDescription string                      `gorm:"type:text" json:"detailed_description"`
	Price               float64                     `gorm:"type:decimal(10,2);default:0" json:"price"`
	URL                 string                      `gorm:"type:varchar(255);index" json:"url"`
	Duration            string                      `gorm:"type:varchar(100)" json:"duration"`
	Level               string                      `gorm:"type:varchar(100)" json:"level"`
	Color               string                      `gorm:"type:varchar(20)" json:"color"`
	Status              string                      `gorm:"type:varchar(20);default:'draft';index" json:"status"`
	IsShow              bool                        `gorm:"default:true" json:"is_show"`
	MetaTitle           string                      `json:"meta_title"`
	MetaDescription     string                      `gorm:"type:text" json:"meta_description"`
	Keywords            string                      `gorm:"type:text" json:"keywords"`
	Images              datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"images"`
	CategoryID          *uint                       `gorm:"index" json:"category_id"`
	InstructorID        *uint                       `gorm:"index" json:"instructor_id"`

	// Relationships
	Category    *Category    `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
	Instructor  *User        `gorm:"foreignKey:InstructorID;constraint:OnDelete:SET NULL" json:"instructor,omitempty"`
	Lessons     []Lesson     `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"lessons,omitempty"`
	Groups      []Group      `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"groups,omitempty"`
	Enrollments []Enrollment `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsPublished reports whether the course is visible in the public catalog
func (c *Course) IsPublished() bool {
	return c.Status == CourseStatusPublished
}

// Lesson is a unit of course content
type Lesson struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Title           string    `gorm:"not null" json:"title"`
	Content         string    `gorm:"type:text" json:"content"`
	VideoURL        string    `json:"video_url"`
	Order           int       `gorm:"column:sort_order;default:0" json:"order"`
	DurationMinutes int       `gorm:"default:0" json:"duration_minutes"`
	CourseID        uint      `gorm:"not null;index" json:"course_id"`
}

// Enrollment statuses
const (
	EnrollmentStatusActive    = "active"
	EnrollmentStatusCompleted = "completed"
	EnrollmentStatusCancelled = "cancelled"
)

// Enrollment records a user taking a course
type Enrollment struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	UserID               uint      `gorm:"not null;uniqueIndex:idx_enrollment_user_course" json:"user_id"`
	CourseID             uint      `gorm:"not null;uniqueIndex:idx_enrollment_user_course;index" json:"course_id"`
	Status               string    `gorm:"type:varchar(20);default:'active'" json:"status"`
	CompletionPercentage float64   `gorm:"type:decimal(5,2);default:0" json:"completion_percentage"`
	EnrollmentDate       time.Time `gorm:"autoCreateTime" json:"enrollment_date"`
	UpdatedAt            time.Time `json:"updated_at"`

	User   *User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Course *Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}
