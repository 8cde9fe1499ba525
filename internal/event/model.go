package event

import (
	"time"
)

// Status is the lifecycle state of an event. SCHEDULED moves forward to
// IN_PROGRESS and COMPLETED only; CANCELLED is terminal and cascades to
// linked bookings.
type Status string

const (
	StatusScheduled  Status = "SCHEDULED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
	StatusNoShow     Status = "NO_SHOW"
)

// Event is one concrete, dated occurrence of a bookable session.
// CurrentCount never exceeds Capacity; every mutation of CurrentCount
// goes through the Ledger.
type Event struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	Title               string    `gorm:"type:varchar(255);not null" json:"title"`
	EventType           string    `gorm:"type:varchar(50);not null;index" json:"event_type"`
	Status              Status    `gorm:"type:varchar(20);default:'SCHEDULED';index" json:"status"`
	StartAt             time.Time `gorm:"not null;index" json:"start_at"`
	EndAt               time.Time `gorm:"not null" json:"end_at"`
	LocationID          uint      `gorm:"not null;index" json:"location_id"`
	Capacity            int       `gorm:"not null" json:"capacity"`
	CurrentCount        int       `gorm:"default:0" json:"current_count"`
	RecurringTemplateID *uint     `gorm:"index" json:"recurring_template_id,omitempty"`
	ProductID           *uint     `gorm:"index" json:"product_id,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// forwardTransitions lists the allowed status moves. Completion always
// passes through IN_PROGRESS; a session nobody attended never starts,
// so NO_SHOW is entered from SCHEDULED.
var forwardTransitions = map[Status][]Status{
	StatusScheduled:  {StatusInProgress, StatusCancelled, StatusNoShow},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range forwardTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
