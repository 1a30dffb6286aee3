package model

import (
	"time"
)

// Role values accepted for User.Role
const (
	RoleStudent    = "student"
	RoleTeacher    = "teacher"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
	RoleEditor     = "editor"
)

const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User represents a registered account: students, teachers and staff
type User struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	Email            string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash     string    `gorm:"not null" json:"-"` // Never expose password in JSON
	Name             string    `gorm:"not null" json:"name"`
	Phone            string    `gorm:"type:varchar(30)" json:"phone"`
	Role             string    `gorm:"type:varchar(20);default:'student';index" json:"role"`
	Status           string    `gorm:"type:varchar(20);default:'active'" json:"status"`
	Avatar           string    `json:"avatar"`
	Biography        string    `gorm:"type:text" json:"biography"`
	RegistrationDate time.Time `gorm:"autoCreateTime" json:"registration_date"`
	TokenVersion     int       `gorm:"default:0" json:"-"` // Increment to invalidate all user tokens

	// Relationships
	Enrollments    []Enrollment        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Payments       []Payment           `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	RefreshTokens  []RefreshToken      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	TokenBlacklist []JWTTokenBlacklist `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsStaff reports whether the user can manage platform content
func (u *User) IsStaff() bool {
	switch u.Role {
	case RoleAdmin, RoleSuperAdmin, RoleTeacher:
		return true
	}
	return false
}

// ValidRole reports whether r is one of the known roles
func ValidRole(r string) bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin, RoleSuperAdmin, RoleEditor:
		return true
	}
	return false
}
