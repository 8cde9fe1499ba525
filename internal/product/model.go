package product

import (
	"time"
)

// SessionWindow selects the fixed daily window a product's sessions run
// in. It is set at data entry, never inferred from the product name.
type SessionWindow string

const (
	WindowStandard SessionWindow = "standard" // 09:00–15:00
	WindowFullDay  SessionWindow = "full_day" // 09:00–17:00
)

// Product types.
const (
	TypeCamp   = "camp"
	TypeWeekly = "weekly"
	TypeParty  = "party"
)

// Product is a bookable offering (a camp week, a weekly class, a party
// package).
type Product struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	Name            string        `gorm:"type:varchar(255);not null" json:"name"`
	ProductType     string        `gorm:"type:varchar(50);not null;index" json:"product_type"`
	Description     string        `gorm:"type:text" json:"description"`
	Price           float64       `gorm:"type:decimal(10,2);default:0" json:"price"`
	SessionWindow   SessionWindow `gorm:"type:varchar(20);default:'standard'" json:"session_window"`
	DefaultCapacity int           `gorm:"default:20" json:"default_capacity"`
	LocationID      *uint         `gorm:"index" json:"location_id,omitempty"` // default location; nil = first active
	IsActive        bool          `gorm:"default:true" json:"is_active"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// SessionTimes combines a calendar day with the product's window policy.
func (p *Product) SessionTimes(day time.Time, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, loc)
	endHour := 15
	if p.SessionWindow == WindowFullDay {
		endHour = 17
	}
	end := time.Date(day.Year(), day.Month(), day.Day(), endHour, 0, 0, 0, loc)
	return start, end
}

type CreateProductRequest struct {
	Name            string  `json:"name" binding:"required"`
	ProductType     string  `json:"product_type" binding:"required"`
	Description     string  `json:"description"`
	Price           float64 `json:"price"`
	SessionWindow   string  `json:"session_window"`
	DefaultCapacity int     `json:"default_capacity"`
	LocationID      *uint   `json:"location_id,omitempty"`
}
