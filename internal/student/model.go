package student

import (
	"time"
)

// Student is a child attending sessions. Never auto-deleted while
// referenced by bookings or order items.
type Student struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"type:varchar(255);not null" json:"name"`
	Birthdate *time.Time `gorm:"type:date" json:"birthdate,omitempty"`
	Allergies string     `gorm:"type:text" json:"allergies,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CreateStudentRequest struct {
	Name      string `json:"name" binding:"required"`
	Birthdate string `json:"birthdate,omitempty"` // "2006-01-02"
	Allergies string `json:"allergies,omitempty"`
}
