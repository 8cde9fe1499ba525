package booking

import (
	"time"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

// Booking is one student's attendance at one event. At most one
// non-cancelled booking exists per (student, product, calendar day);
// EventID is set only by the capacity-admission step.
type Booking struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	StudentID  uint      `gorm:"not null;index" json:"student_id"`
	ProductID  uint      `gorm:"not null;index" json:"product_id"`
	LocationID uint      `gorm:"not null" json:"location_id"`
	StartAt    time.Time `gorm:"not null;index" json:"start_at"`
	EndAt      time.Time `gorm:"not null" json:"end_at"`
	Status     Status    `gorm:"type:varchar(20);default:'PENDING';index" json:"status"`
	EventID    *uint     `gorm:"index" json:"event_id,omitempty"`
	TotalPrice float64   `gorm:"type:decimal(10,2);default:0" json:"total_price"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Filter narrows admin booking searches. Typed rather than an ad hoc
// map so it can be validated before reaching storage.
type Filter struct {
	StudentID *uint
	ProductID *uint
	EventID   *uint
	Status    Status
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}
