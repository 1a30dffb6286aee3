package model

import (
	"time"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// Payment represents money received for a course
type Payment struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	TransactionID  string    `gorm:"type:varchar(100);uniqueIndex" json:"transaction_id"`
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	CourseID       uint      `gorm:"not null;index" json:"course_id"`
	Amount         float64   `gorm:"type:decimal(10,2);not null" json:"amount"`
	DiscountAmount float64   `gorm:"type:decimal(10,2);default:0" json:"discount_amount"`
	Status         string    `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	Method         string    `gorm:"type:varchar(50)" json:"method"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relationships
	User   *User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Course *Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "payments"
}
