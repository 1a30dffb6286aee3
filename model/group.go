package model

import (
	"time"
)

// DefaultGroupCapacity is used when a group is created without maxStudents
const DefaultGroupCapacity = 15

// Group is a scheduled cohort of students taking a course
type Group struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	GroupNumber     string          `gorm:"uniqueIndex;not null" json:"group_number"`
	AgeRange        string          `gorm:"type:varchar(50)" json:"age_range"`
	MaxStudents     int             `gorm:"not null;default:15" json:"max_students"`
	CurrentStudents int             `gorm:"not null;default:0;check:current_students >= 0" json:"current_students"`
	CourseID        uint            `gorm:"not null;index" json:"course_id"`
	Schedule        []GroupSchedule `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"schedule"`

	Course  *Course        `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
	Members []GroupStudent `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
}

// SeatsLeft returns the number of free seats, never negative
func (g *Group) SeatsLeft() int {
	if g.CurrentStudents >= g.MaxStudents {
		return 0
	}
	return g.MaxStudents - g.CurrentStudents
}

// GroupSchedule is one weekly time slot of a group
type GroupSchedule struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	GroupID   uint   `gorm:"not null;index" json:"group_id"`
	DayOfWeek string `gorm:"type:varchar(20);not null" json:"day_of_week"`
	StartTime string `gorm:"type:varchar(10);not null" json:"start_time"`
	EndTime   string `gorm:"type:varchar(10);not null" json:"end_time"`
}

// GroupStudent is the membership of a student in a group
type GroupStudent struct {
	GroupID       uint      `gorm:"primaryKey" json:"group_id"`
	StudentID     uint      `gorm:"primaryKey" json:"student_id"`
	ApplicationID *uint     `gorm:"index" json:"application_id,omitempty"`
	JoinedAt      time.Time `gorm:"autoCreateTime" json:"joined_at"`

	Group       *Group       `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
	Student     *User        `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
	Application *Application `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GroupStudent
func (GroupStudent) TableName() string {
	return "group_students"
}

// Application statuses
const (
	ApplicationStatusNew       = "new"
	ApplicationStatusConfirmed = "confirmed"
	ApplicationStatusRejected  = "rejected"
)

// Application is an inbound registration request from a parent
type Application struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ChildName   string     `gorm:"not null" json:"child_name"`
	Age         int        `json:"age"`
	ParentPhone string     `gorm:"type:varchar(30);not null" json:"parent_phone"`
	ParentEmail *string    `gorm:"type:varchar(255)" json:"parent_email"`
	CourseID    *uint      `gorm:"index" json:"course_id"`
	GroupID     *uint      `gorm:"index" json:"group_id"`
	Date        *time.Time `json:"date"`
	Status      string     `gorm:"type:varchar(20);default:'new';index" json:"status"`
	Photo       string     `json:"photo"`
	Message     string     `gorm:"type:text" json:"message"`
	UserID      *uint      `gorm:"index" json:"user_id"`

	Course *Course `gorm:"foreignKey:CourseID;constraint:OnDelete:SET NULL" json:"course,omitempty"`
	Group  *Group  `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL" json:"group,omitempty"`
	User   *User   `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"user,omitempty"`
}

// IsConfirmed reports whether the application was accepted
func (a *Application) IsConfirmed() bool {
	return a.Status == ApplicationStatusConfirmed
}
