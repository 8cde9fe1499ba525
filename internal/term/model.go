package term

import (
	"time"
)

// Term is one school term. Terms are disjoint and ordered by StartDate;
// a date belongs to at most one term.
type Term struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	StartDate time.Time `gorm:"type:date;not null;index" json:"start_date"`
	EndDate   time.Time `gorm:"type:date;not null" json:"end_date"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ClosureDate is a date the business is closed (public holiday, staff
// day). Closed dates are skipped during template expansion.
type ClosureDate struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Date      time.Time `gorm:"type:date;not null;uniqueIndex" json:"date"`
	Reason    string    `gorm:"type:varchar(255)" json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// ============================
// Request DTOs

type CreateTermRequest struct {
	Name      string `json:"name" binding:"required"`
	StartDate string `json:"start_date" binding:"required"` // "2006-01-02"
	EndDate   string `json:"end_date" binding:"required"`   // "2006-01-02"
}

type CreateClosureRequest struct {
	Date   string `json:"date" binding:"required"` // "2006-01-02"
	Reason string `json:"reason"`
}
