package notification

import (
	"time"
)

// Well-known notification kinds published on the booking-events topic.
const (
	KindBookingConfirmed = "booking_confirmed"
	KindBookingCancelled = "booking_cancelled"
	KindEventCancelled   = "event_cancelled"
	KindOrderPaid        = "order_paid"
	KindRepairCompleted  = "repair_completed"

	// Manual follow-up kinds: the operation itself did not fully succeed
	// and an operator must step in.
	KindCapacityExceeded = "capacity_exceeded"
	KindCalendarConflict = "calendar_conflict"
)

// Message is the payload published to Kafka and fanned out to channels.
type Message struct {
	Kind       string    `json:"kind"`
	OrderID    *uint     `json:"order_id,omitempty"`
	BookingID  *uint     `json:"booking_id,omitempty"`
	EventID    *uint     `json:"event_id,omitempty"`
	Recipient  string    `json:"recipient,omitempty"` // customer email
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	OccurredAt time.Time `json:"occurred_at"`
}

// InAppNotification is a per-admin bell notification materialised from the
// booking-events topic by the consumer.
type InAppNotification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Kind      string    `gorm:"size:30;not null;index" json:"kind"`
	Title     string    `gorm:"size:150;not null" json:"title"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	OrderID   *uint     `gorm:"index" json:"order_id,omitempty"`
	BookingID *uint     `gorm:"index" json:"booking_id,omitempty"`
	EventID   *uint     `gorm:"index" json:"event_id,omitempty"`
	IsRead    bool      `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (InAppNotification) TableName() string {
	return "in_app_notifications"
}
