package template

import (
	"time"

	"gorm.io/datatypes"
)

// RecurringTemplate is the admin-defined recipe for a repeating weekly
// session: which weekdays, what time window, how many places, where.
// Templates are never hard-deleted while events reference them; they are
// deactivated instead.
type RecurringTemplate struct {
	ID         uint                     `gorm:"primaryKey" json:"id"`
	Name       string                   `gorm:"type:varchar(255);not null" json:"name"`
	ProductID  uint                     `gorm:"not null;index" json:"product_id"`
	LocationID uint                     `gorm:"not null;index" json:"location_id"`
	DaysOfWeek datatypes.JSONSlice[int] `gorm:"not null" json:"days_of_week"` // 0=Sunday .. 6=Saturday
	StartTime  string                   `gorm:"type:varchar(10);not null" json:"start_time"` // "15:04"
	EndTime    string                   `gorm:"type:varchar(10);not null" json:"end_time"`   // "15:04"
	Capacity   int                      `gorm:"not null" json:"capacity"`
	ValidFrom  time.Time                `gorm:"type:date;not null" json:"valid_from"`
	ValidTo    *time.Time               `gorm:"type:date" json:"valid_to,omitempty"`
	Active     bool                     `gorm:"default:true;index" json:"active"`
	CreatedAt  time.Time                `json:"created_at"`
	UpdatedAt  time.Time                `json:"updated_at"`
}

// Weekdays converts the stored day numbers to time.Weekday values,
// dropping anything out of range.
func (t *RecurringTemplate) Weekdays() []time.Weekday {
	var days []time.Weekday
	for _, d := range t.DaysOfWeek {
		if d >= 0 && d <= 6 {
			days = append(days, time.Weekday(d))
		}
	}
	return days
}

type CreateTemplateRequest struct {
	Name       string `json:"name" binding:"required"`
	ProductID  uint   `json:"product_id" binding:"required"`
	LocationID uint   `json:"location_id" binding:"required"`
	DaysOfWeek []int  `json:"days_of_week" binding:"required"`
	StartTime  string `json:"start_time" binding:"required"` // "15:04"
	EndTime    string `json:"end_time" binding:"required"`   // "15:04"
	Capacity   int    `json:"capacity" binding:"required"`
	ValidFrom  string `json:"valid_from" binding:"required"` // "2006-01-02"
	ValidTo    string `json:"valid_to,omitempty"`
}

type UpdateTemplateRequest struct {
	Name       string `json:"name"`
	DaysOfWeek []int  `json:"days_of_week"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Capacity   int    `json:"capacity"`
	Active     *bool  `json:"active,omitempty"`
}
