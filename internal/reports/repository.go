package reports

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/brightkids/activity-booking-backend/internal/booking"
	"github.com/brightkids/activity-booking-backend/internal/event"
	"github.com/brightkids/activity-booking-backend/internal/location"
	"github.com/brightkids/activity-booking-backend/internal/order"
	"github.com/brightkids/activity-booking-backend/internal/product"
	"github.com/brightkids/activity-booking-backend/internal/student"
)

var ErrNotFound = errors.New("report subject not found")

type Repository interface {
	RosterForEvent(ctx context.Context, eventID uint) (*RosterData, error)
	ReceiptForOrder(ctx context.Context, orderID uint) (*ReceiptData, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) RosterForEvent(ctx context.Context, eventID uint) (*RosterData, error) {
	var ev event.Event
	if err := r.db.WithContext(ctx).First(&ev, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var loc location.Location
	_ = r.db.WithContext(ctx).First(&loc, ev.LocationID).Error

	data := &RosterData{
		EventID:    ev.ID,
		EventTitle: ev.Title,
		StartAt:    ev.StartAt,
		EndAt:      ev.EndAt,
		Location:   loc.Name,
		Capacity:   ev.Capacity,
	}

	var bookings []booking.Booking
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND status <> ?", ev.ID, booking.StatusCancelled).
		Order("created_at ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}

	for _, b := range bookings {
		var st student.Student
		if err := r.db.WithContext(ctx).First(&st, b.StudentID).Error; err != nil {
			continue
		}
		data.Rows = append(data.Rows, RosterRow{
			BookingID:   b.ID,
			StudentName: st.Name,
			Birthdate:   st.Birthdate,
			Allergies:   st.Allergies,
			Status:      string(b.Status),
			BookedAt:    b.CreatedAt,
		})
	}
	return data, nil
}

func (r *repository) ReceiptForOrder(ctx context.Context, orderID uint) (*ReceiptData, error) {
	var o order.Order
	err := r.db.WithContext(ctx).Preload("OrderItems").First(&o, orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	data := &ReceiptData{
		OrderID:       o.ID,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt,
		Total:         o.TotalAmount,
	}
	if o.PaymentRef != nil {
		data.PaymentRef = *o.PaymentRef
	}

	for _, item := range o.OrderItems {
		var st student.Student
		_ = r.db.WithContext(ctx).First(&st, item.StudentID).Error
		var prod product.Product
		_ = r.db.WithContext(ctx).First(&prod, item.ProductID).Error

		data.Lines = append(data.Lines, ReceiptLine{
			StudentName: st.Name,
			ProductName: prod.Name,
			BookingDate: item.BookingDate,
			Price:       item.Price,
		})
	}
	return data, nil
}
